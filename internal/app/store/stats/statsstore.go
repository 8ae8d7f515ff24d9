// internal/app/store/stats/statsstore.go

// Package statsstore computes platform totals by aggregation over the
// food_items collection plus counts from the user and claim stores, and
// persists periodic snapshots.
package statsstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/sharebite/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNoSnapshot = errors.New("no stats snapshot recorded yet")

// UserCounter is the slice of the user store the totals need.
type UserCounter interface {
	CountByRole(ctx context.Context, role string) (int64, error)
}

// ClaimCounter is the slice of the claim store the totals need.
type ClaimCounter interface {
	Count(ctx context.Context) (int64, error)
}

type Store struct {
	items     *mongo.Collection
	snapshots *mongo.Collection
	users     UserCounter
	claims    ClaimCounter
}

func New(db *mongo.Database, users UserCounter, claims ClaimCounter) *Store {
	return &Store{
		items:     db.Collection("food_items"),
		snapshots: db.Collection("stats"),
		users:     users,
		claims:    claims,
	}
}

// Compute aggregates the live totals.
func (s *Store) Compute(ctx context.Context) (models.StatsSnapshot, error) {
	snap := models.StatsSnapshot{ComputedAt: time.Now().UTC()}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "items", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "servings", Value: bson.D{{Key: "$sum", Value: "$quantity"}}},
		}}},
	}
	cur, err := s.items.Aggregate(ctx, pipeline)
	if err != nil {
		return models.StatsSnapshot{}, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			Status   string `bson:"_id"`
			Items    int64  `bson:"items"`
			Servings int64  `bson:"servings"`
		}
		if err := cur.Decode(&row); err != nil {
			return models.StatsSnapshot{}, err
		}
		snap.ItemsDonated += row.Items
		snap.ServingsShared += row.Servings
		if row.Status != models.StatusAvailable {
			snap.ServingsClaimed += row.Servings
		}
	}
	if err := cur.Err(); err != nil {
		return models.StatsSnapshot{}, err
	}

	donors, err := s.items.Distinct(ctx, "donor_id", bson.M{})
	if err != nil {
		return models.StatsSnapshot{}, err
	}
	snap.ActiveDonors = int64(len(donors))

	if snap.RegisteredDonors, err = s.users.CountByRole(ctx, models.RoleDonor); err != nil {
		return models.StatsSnapshot{}, err
	}
	if snap.RegisteredClients, err = s.users.CountByRole(ctx, models.RoleClient); err != nil {
		return models.StatsSnapshot{}, err
	}
	if snap.TotalClaims, err = s.claims.Count(ctx); err != nil {
		return models.StatsSnapshot{}, err
	}

	return snap, nil
}

// SaveSnapshot persists a computed snapshot for history.
func (s *Store) SaveSnapshot(ctx context.Context, snap models.StatsSnapshot) error {
	if snap.ID == primitive.NilObjectID {
		snap.ID = primitive.NewObjectID()
	}
	_, err := s.snapshots.InsertOne(ctx, snap)
	return err
}

// LatestSnapshot returns the most recently persisted snapshot.
func (s *Store) LatestSnapshot(ctx context.Context) (models.StatsSnapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "computed_at", Value: -1}})

	var snap models.StatsSnapshot
	err := s.snapshots.FindOne(ctx, bson.M{}, opts).Decode(&snap)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.StatsSnapshot{}, ErrNoSnapshot
		}
		return models.StatsSnapshot{}, err
	}
	return snap, nil
}

// Leaderboard returns the top donors ranked by servings shared, joining
// usernames in via $lookup.
func (s *Store) Leaderboard(ctx context.Context, limit int64) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$donor_id"},
			{Key: "items_donated", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "servings_shared", Value: bson.D{{Key: "$sum", Value: "$quantity"}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "servings_shared", Value: -1},
			{Key: "_id", Value: 1},
		}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "donor"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$donor"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "items_donated", Value: 1},
			{Key: "servings_shared", Value: 1},
			{Key: "username", Value: "$donor.username"},
			{Key: "organization_name", Value: "$donor.organization_name"},
		}}},
	}

	cur, err := s.items.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []models.LeaderboardEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
