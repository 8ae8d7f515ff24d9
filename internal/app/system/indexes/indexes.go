// internal/app/system/indexes/indexes.go

// Package indexes reconciles MongoDB indexes at startup. Each ensure
// function is idempotent; problems are aggregated so startup can fail
// fast with everything that is wrong, not just the first thing.
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureAll creates the indexes the application depends on.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureFoodItems(ctx, db); err != nil {
		problems = append(problems, "food_items: "+err.Error())
	}
	if err := ensureClaims(ctx, db); err != nil {
		problems = append(problems, "claims: "+err.Error())
	}
	if err := ensureStats(ctx, db); err != nil {
		problems = append(problems, "stats: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	for _, m := range models {
		name := ""
		if m.Options != nil && m.Options.Name != nil {
			name = *m.Options.Name
		}
		zap.L().Info("ensuring index",
			zap.String("collection", coll.Name()),
			zap.String("name", name))

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			// An index with the same keys under a different name from a
			// previous deploy; drop and recreate under the desired name.
			if strings.Contains(err.Error(), "IndexOptionsConflict") && name != "" {
				if _, dropErr := coll.Indexes().DropOne(ctx, name); dropErr == nil {
					if _, err2 := coll.Indexes().CreateOne(ctx, m); err2 == nil {
						continue
					}
				}
			}
			return err
		}
	}
	return nil
}

// users: unique username and email (via their CI forms), plus role for
// the stats aggregations.
func ensureUsers(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection("users")
	unique := true
	return ensureIndexSet(ctx, coll, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username_ci", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("uniq_username_ci"), Unique: &unique},
		},
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("uniq_email_ci"), Unique: &unique},
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("role")},
		},
	})
}

// food_items: the available listing filters on status; donor and
// claimer power the "my listings" / "my claims" views. The claim path
// itself needs no extra index beyond _id.
func ensureFoodItems(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection("food_items")
	return ensureIndexSet(ctx, coll, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "_id", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("status_id")},
		},
		{
			Keys:    bson.D{{Key: "donor_id", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("donor")},
		},
		{
			Keys:    bson.D{{Key: "claimed_by", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("claimer")},
		},
	})
}

func ensureClaims(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection("claims")
	unique := true
	return ensureIndexSet(ctx, coll, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "client_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: &options.IndexOptions{Name: strPtr("client_recent")},
		},
		// One winning claim per item, enforced twice over: the atomic
		// conditional update is the primary guard, this index backstops it.
		{
			Keys:    bson.D{{Key: "food_item_id", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("uniq_item"), Unique: &unique},
		},
	})
}

func ensureStats(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection("stats")
	return ensureIndexSet(ctx, coll, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "computed_at", Value: -1}},
			Options: &options.IndexOptions{Name: strPtr("computed_at")},
		},
	})
}

func strPtr(s string) *string { return &s }
