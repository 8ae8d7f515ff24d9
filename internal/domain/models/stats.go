// internal/domain/models/stats.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatsSnapshot is a periodic aggregate of platform activity, written by
// the background stats worker. The /api/stats endpoint computes its
// figures live; snapshots exist for history and dashboards.
type StatsSnapshot struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ItemsDonated    int64              `bson:"items_donated" json:"items_donated"`
	ServingsShared  int64              `bson:"servings_shared" json:"servings_shared"`
	ServingsClaimed int64              `bson:"servings_claimed" json:"servings_claimed"`
	// ActiveDonors counts donors with at least one listing;
	// RegisteredDonors counts every donor account.
	ActiveDonors      int64     `bson:"active_donors" json:"active_donors"`
	RegisteredDonors  int64     `bson:"registered_donors" json:"registered_donors"`
	RegisteredClients int64     `bson:"registered_clients" json:"registered_clients"`
	TotalClaims       int64     `bson:"total_claims" json:"total_claims"`
	ComputedAt        time.Time `bson:"computed_at" json:"computed_at"`
}

// LeaderboardEntry is one row of the donor leaderboard, computed by
// aggregation over food_items rather than stored as a rank table.
type LeaderboardEntry struct {
	DonorID          primitive.ObjectID `bson:"_id" json:"donor_id"`
	Username         string             `bson:"username" json:"username"`
	OrganizationName string             `bson:"organization_name,omitempty" json:"organization_name,omitempty"`
	ItemsDonated     int64              `bson:"items_donated" json:"items_donated"`
	ServingsShared   int64              `bson:"servings_shared" json:"servings_shared"`
}
