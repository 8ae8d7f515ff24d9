package statsstore_test

import (
	"errors"
	"testing"
	"time"

	claimstore "github.com/dalemusser/sharebite/internal/app/store/claims"
	foodstore "github.com/dalemusser/sharebite/internal/app/store/fooditems"
	statsstore "github.com/dalemusser/sharebite/internal/app/store/stats"
	userstore "github.com/dalemusser/sharebite/internal/app/store/users"
	"github.com/dalemusser/sharebite/internal/domain/models"
	"github.com/dalemusser/sharebite/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

func newStore(db *mongo.Database) *statsstore.Store {
	return statsstore.New(db, userstore.New(db), claimstore.New(db))
}

func TestComputeTotals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	items := foodstore.New(db)
	claims := claimstore.New(db)
	store := newStore(db)

	donorA := fx.CreateDonor(ctx, "greenpantry")
	donorB := fx.CreateDonor(ctx, "cornerbakery")
	client := fx.CreateClient(ctx, "shelter")

	fx.CreateFoodItem(ctx, donorA, "Soup", 10)
	fx.CreateFoodItem(ctx, donorA, "Bread", 20)
	claimed := fx.CreateFoodItem(ctx, donorB, "Bagels", 30)
	if _, err := items.ClaimAvailable(ctx, claimed.ID, client.ID); err != nil {
		t.Fatalf("claim setup: %v", err)
	}
	if err := claims.Record(ctx, client.ID, claimed.ID); err != nil {
		t.Fatalf("claim record setup: %v", err)
	}

	snap, err := store.Compute(ctx)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if snap.ItemsDonated != 3 {
		t.Errorf("items donated = %d, want 3", snap.ItemsDonated)
	}
	if snap.ServingsShared != 60 {
		t.Errorf("servings shared = %d, want 60", snap.ServingsShared)
	}
	if snap.ServingsClaimed != 30 {
		t.Errorf("servings claimed = %d, want 30", snap.ServingsClaimed)
	}
	if snap.ActiveDonors != 2 {
		t.Errorf("active donors = %d, want 2", snap.ActiveDonors)
	}
	if snap.RegisteredDonors != 2 {
		t.Errorf("registered donors = %d, want 2", snap.RegisteredDonors)
	}
	if snap.RegisteredClients != 1 {
		t.Errorf("registered clients = %d, want 1", snap.RegisteredClients)
	}
	if snap.TotalClaims != 1 {
		t.Errorf("total claims = %d, want 1", snap.TotalClaims)
	}
	if snap.ComputedAt.IsZero() {
		t.Error("computed_at not set")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := newStore(db)

	if _, err := store.LatestSnapshot(ctx); !errors.Is(err, statsstore.ErrNoSnapshot) {
		t.Fatalf("empty store: got %v, want ErrNoSnapshot", err)
	}

	older := models.StatsSnapshot{ItemsDonated: 1, ComputedAt: time.Now().UTC().Add(-time.Hour)}
	newer := models.StatsSnapshot{ItemsDonated: 5, ComputedAt: time.Now().UTC()}
	if err := store.SaveSnapshot(ctx, older); err != nil {
		t.Fatalf("SaveSnapshot older: %v", err)
	}
	if err := store.SaveSnapshot(ctx, newer); err != nil {
		t.Fatalf("SaveSnapshot newer: %v", err)
	}

	latest, err := store.LatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if latest.ItemsDonated != 5 {
		t.Errorf("latest items donated = %d, want the newer snapshot", latest.ItemsDonated)
	}
}

func TestLeaderboardRanking(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := newStore(db)

	big := fx.CreateDonor(ctx, "bigkitchen")
	small := fx.CreateDonor(ctx, "smallcafe")

	fx.CreateFoodItem(ctx, big, "Trays", 100)
	fx.CreateFoodItem(ctx, big, "More trays", 50)
	fx.CreateFoodItem(ctx, small, "Muffins", 12)

	leaders, err := store.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(leaders) != 2 {
		t.Fatalf("leaders = %d, want 2", len(leaders))
	}

	if leaders[0].DonorID != big.ID {
		t.Errorf("top donor = %s, want bigkitchen", leaders[0].Username)
	}
	if leaders[0].ServingsShared != 150 || leaders[0].ItemsDonated != 2 {
		t.Errorf("top entry = %+v", leaders[0])
	}
	if leaders[0].Username != "bigkitchen" {
		t.Errorf("username join failed: %+v", leaders[0])
	}
	if leaders[1].DonorID != small.ID {
		t.Errorf("second donor = %+v", leaders[1])
	}
}

func TestLeaderboardLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := newStore(db)

	for _, name := range []string{"a", "b", "c"} {
		donor := fx.CreateDonor(ctx, "donor-"+name)
		fx.CreateFoodItem(ctx, donor, "Tray", 5)
	}

	leaders, err := store.Leaderboard(ctx, 2)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(leaders) != 2 {
		t.Errorf("leaders = %d, want 2", len(leaders))
	}
}
