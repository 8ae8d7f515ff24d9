// internal/app/store/fooditems/foodstore.go

// Package foodstore persists food items. The claim path is a single
// conditional FindOneAndUpdate so that at most one caller can move an
// item out of Available, regardless of how many server processes share
// the database.
package foodstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/sharebite/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("food item not found")

	// ErrNoMatch means the conditional write matched zero documents:
	// the item is either gone or no longer Available. Callers who need
	// to tell those apart re-fetch by id.
	ErrNoMatch = errors.New("no document matched the precondition")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("food_items")}
}

// Insert stores a new item. The caller is responsible for validation;
// the store only fills in identity, CI form, and timestamps.
func (s *Store) Insert(ctx context.Context, item models.FoodItem) (models.FoodItem, error) {
	item.ID = primitive.NewObjectID()
	item.NameCI = text.Fold(item.Name)
	item.Status = models.StatusAvailable
	item.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, item); err != nil {
		return models.FoodItem{}, err
	}
	return item, nil
}

// GetByID returns an item by its ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.FoodItem, error) {
	var item models.FoodItem
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.FoodItem{}, ErrNotFound
		}
		return models.FoodItem{}, err
	}
	return item, nil
}

// ClaimAvailable atomically transitions an item from Available to
// Claimed on behalf of claimerID. The status precondition is part of
// the write itself; if another caller got there first the filter
// matches nothing and ErrNoMatch comes back. This is the only way an
// item leaves the Available state on the claim path.
func (s *Store) ClaimAvailable(ctx context.Context, itemID, claimerID primitive.ObjectID) (models.FoodItem, error) {
	now := time.Now().UTC()

	filter := bson.M{
		"_id":      itemID,
		"status":   models.StatusAvailable,
		"donor_id": bson.M{"$ne": claimerID},
	}
	update := bson.M{"$set": bson.M{
		"status":     models.StatusClaimed,
		"claimed_by": claimerID,
		"claimed_at": now,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var item models.FoodItem
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.FoodItem{}, ErrNoMatch
		}
		return models.FoodItem{}, err
	}
	return item, nil
}

// SetStatus overwrites the status field and returns the updated item.
// This is the administrative path, not the claim path; it carries no
// precondition beyond existence.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (models.FoodItem, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var item models.FoodItem
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
		opts,
	).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.FoodItem{}, ErrNotFound
		}
		return models.FoodItem{}, err
	}
	return item, nil
}

// DeleteByID removes an item keyed strictly by its ObjectID and reports
// how many documents were removed (0 or 1). Descriptive fields are
// never used to target a delete.
func (s *Store) DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByDonor returns a donor's own listings in insertion order.
func (s *Store) ListByDonor(ctx context.Context, donorID primitive.ObjectID) ([]models.FoodItem, error) {
	return s.find(ctx, bson.M{"donor_id": donorID}, nil)
}

// ListAvailable returns Available items in insertion order, keyset
// paginated: pass the last seen id as after (NilObjectID for the first
// page) and a positive limit.
func (s *Store) ListAvailable(ctx context.Context, after primitive.ObjectID, limit int64) ([]models.FoodItem, error) {
	filter := bson.M{"status": models.StatusAvailable}
	if after != primitive.NilObjectID {
		filter["_id"] = bson.M{"$gt": after}
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return s.find(ctx, filter, opts)
}

// ListClaimedBy returns the items a client has claimed, in insertion
// order.
func (s *Store) ListClaimedBy(ctx context.Context, clientID primitive.ObjectID) ([]models.FoodItem, error) {
	return s.find(ctx, bson.M{
		"status":     models.StatusClaimed,
		"claimed_by": clientID,
	}, nil)
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.FoodItem, error) {
	var cur *mongo.Cursor
	var err error
	if opts != nil {
		cur, err = s.c.Find(ctx, filter, opts)
	} else {
		cur, err = s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	}
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []models.FoodItem
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
