// internal/app/store/claims/claimstore.go
package claimstore

import (
	"context"
	"time"

	"github.com/dalemusser/sharebite/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("claims")}
}

// Record writes the audit record for a winning claim. The unique index
// on food_item_id makes a duplicate record a no-op rather than an
// error; the item document already holds the authoritative state.
func (s *Store) Record(ctx context.Context, clientID, foodItemID primitive.ObjectID) error {
	rec := models.ClaimRecord{
		ID:         primitive.NewObjectID(),
		ClientID:   clientID,
		FoodItemID: foodItemID,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, rec); err != nil {
		if wafflemongo.IsDup(err) {
			return nil
		}
		return err
	}
	return nil
}

// ListByClient returns a client's claim history, most recent first.
func (s *Store) ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]models.ClaimRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"client_id": clientID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var recs []models.ClaimRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// Count returns the total number of recorded claims.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
