// internal/app/coordinator/coordinator.go

// Package coordinator owns the food-item lifecycle: who may create,
// claim, re-status, and delete a listing, and which events each
// transition emits. The at-most-one-winner guarantee for claims is
// delegated entirely to the store's atomic conditional update; the
// coordinator itself holds no locks, so any number of server processes
// can run against the same database.
package coordinator

import (
	"context"
	"errors"

	foodstore "github.com/dalemusser/sharebite/internal/app/store/fooditems"
	userstore "github.com/dalemusser/sharebite/internal/app/store/users"
	"github.com/dalemusser/sharebite/internal/app/system/apierr"
	"github.com/dalemusser/sharebite/internal/app/system/auth"
	"github.com/dalemusser/sharebite/internal/app/system/sanitize"
	"github.com/dalemusser/sharebite/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ItemStore is the slice of the food-item store the coordinator needs.
// ClaimAvailable must be atomic: the Available precondition is checked
// and the transition applied in a single store operation.
type ItemStore interface {
	Insert(ctx context.Context, item models.FoodItem) (models.FoodItem, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.FoodItem, error)
	ClaimAvailable(ctx context.Context, itemID, claimerID primitive.ObjectID) (models.FoodItem, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) (models.FoodItem, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// UserDirectory resolves caller ids to user records.
type UserDirectory interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// ClaimLog records winning claims. Failures here are logged, not
// surfaced: the item transition has already committed.
type ClaimLog interface {
	Record(ctx context.Context, clientID, foodItemID primitive.ObjectID) error
}

// Publisher is the best-effort notification channel. Publish never
// blocks and its failures never fail the operation that triggered it.
type Publisher interface {
	Publish(event string, payload any)
}

// Coordinator wires the stores and the notification channel together.
type Coordinator struct {
	items  ItemStore
	users  UserDirectory
	claims ClaimLog
	bus    Publisher
	log    *zap.Logger
}

// New constructs a Coordinator. claims may be nil when no claim history
// is wanted (tests).
func New(items ItemStore, users UserDirectory, claims ClaimLog, bus Publisher, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{items: items, users: users, claims: claims, bus: bus, log: log}
}

// CreateInput carries the donor-supplied fields for a new listing.
type CreateInput struct {
	Name           string `json:"name" validate:"required,max=200"`
	Description    string `json:"description" validate:"omitempty,max=2000"`
	Quantity       int    `json:"quantity" validate:"required,gt=0"`
	Diet           string `json:"diet" validate:"omitempty,oneof=Veg Non-Veg"`
	Packed         bool   `json:"packed"`
	ShelfLifeHours int    `json:"shelf_life_hours" validate:"required,gt=0"`
}

// Create validates the input, copies the donor's stored location into
// the listing, inserts it as Available, and emits ItemAdded. Validation
// failures store nothing and emit nothing.
func (c *Coordinator) Create(ctx context.Context, caller auth.Identity, in CreateInput) (models.FoodItem, error) {
	donorID, err := callerID(caller)
	if err != nil {
		return models.FoodItem{}, err
	}
	if caller.Role != models.RoleDonor {
		return models.FoodItem{}, apierr.Forbidden("only donors can create listings")
	}

	in.Name = sanitize.Text(in.Name)
	in.Description = sanitize.Text(in.Description)
	if in.Name == "" {
		return models.FoodItem{}, apierr.Validation("name is required")
	}
	if in.Quantity <= 0 {
		return models.FoodItem{}, apierr.Validation("quantity must be a positive number of servings")
	}
	if in.ShelfLifeHours <= 0 {
		return models.FoodItem{}, apierr.Validation("shelf life must be a positive number of hours")
	}
	if in.Diet != "" && !models.IsValidDiet(in.Diet) {
		return models.FoodItem{}, apierr.Validation("diet must be %q or %q", models.DietVeg, models.DietNonVeg)
	}

	donor, err := c.users.GetByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return models.FoodItem{}, apierr.NotFound("donor account not found")
		}
		return models.FoodItem{}, apierr.Unavailable(err, "could not load donor profile")
	}

	item := models.FoodItem{
		Name:           in.Name,
		Description:    in.Description,
		Quantity:       in.Quantity,
		Diet:           in.Diet,
		Packed:         in.Packed,
		ShelfLifeHours: in.ShelfLifeHours,
		DonorID:        donorID,
		Location:       donor.Location,
		Coordinates:    donor.Coordinates,
	}

	created, err := c.items.Insert(ctx, item)
	if err != nil {
		return models.FoodItem{}, apierr.Unavailable(err, "could not store the listing")
	}

	c.bus.Publish(EventItemAdded, created)
	c.log.Info("food item created",
		zap.String("item_id", created.ID.Hex()),
		zap.String("donor_id", donorID.Hex()))
	return created, nil
}

// Claim attempts to transition an item from Available to Claimed for
// the caller. Exactly one of N concurrent callers wins; the rest get
// Conflict. NotFound and Conflict stay distinct so a client can tell
// "gone" from "someone beat me to it".
func (c *Coordinator) Claim(ctx context.Context, caller auth.Identity, itemID primitive.ObjectID) (models.FoodItem, error) {
	clientID, err := callerID(caller)
	if err != nil {
		return models.FoodItem{}, err
	}
	if caller.Role != models.RoleClient {
		return models.FoodItem{}, apierr.Forbidden("only clients can claim listings")
	}

	item, err := c.items.ClaimAvailable(ctx, itemID, clientID)
	if err != nil {
		if errors.Is(err, foodstore.ErrNoMatch) {
			// Zero rows matched: disambiguate with a point lookup.
			if _, lookupErr := c.items.GetByID(ctx, itemID); lookupErr != nil {
				if errors.Is(lookupErr, foodstore.ErrNotFound) {
					return models.FoodItem{}, apierr.NotFound("food item not found")
				}
				return models.FoodItem{}, apierr.Unavailable(lookupErr, "could not look up the listing")
			}
			return models.FoodItem{}, apierr.Conflict("food item is no longer available")
		}
		return models.FoodItem{}, apierr.Unavailable(err, "could not claim the listing")
	}

	if c.claims != nil {
		if err := c.claims.Record(ctx, clientID, item.ID); err != nil {
			// The transition has committed; the history record is
			// best-effort on top of it.
			c.log.Warn("recording claim failed",
				zap.String("item_id", item.ID.Hex()),
				zap.Error(err))
		}
	}

	c.bus.Publish(EventItemClaimed, ClaimedPayload{
		FoodItemID: item.ID.Hex(),
		ClaimedBy:  clientID.Hex(),
	})
	c.log.Info("food item claimed",
		zap.String("item_id", item.ID.Hex()),
		zap.String("client_id", clientID.Hex()))
	return item, nil
}

// SetStatus is the donor's administrative override, distinct from the
// claim path. Only the owning donor may use it.
func (c *Coordinator) SetStatus(ctx context.Context, caller auth.Identity, itemID primitive.ObjectID, status string) (models.FoodItem, error) {
	donorID, err := callerID(caller)
	if err != nil {
		return models.FoodItem{}, err
	}
	if caller.Role != models.RoleDonor {
		return models.FoodItem{}, apierr.Forbidden("only donors can update listing status")
	}
	if !models.IsValidStatus(status) {
		return models.FoodItem{}, apierr.Validation("unknown status %q", status)
	}

	current, err := c.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, foodstore.ErrNotFound) {
			return models.FoodItem{}, apierr.NotFound("food item not found")
		}
		return models.FoodItem{}, apierr.Unavailable(err, "could not look up the listing")
	}
	if current.DonorID != donorID {
		return models.FoodItem{}, apierr.Forbidden("only the listing's donor can update it")
	}

	updated, err := c.items.SetStatus(ctx, itemID, status)
	if err != nil {
		if errors.Is(err, foodstore.ErrNotFound) {
			return models.FoodItem{}, apierr.NotFound("food item not found")
		}
		return models.FoodItem{}, apierr.Unavailable(err, "could not update the listing")
	}

	c.bus.Publish(EventItemUpdated, updated)
	c.log.Info("food item status updated",
		zap.String("item_id", updated.ID.Hex()),
		zap.String("status", status))
	return updated, nil
}

// Delete removes a listing. The caller must be the owning donor; the
// delete itself is keyed by id only. Deleting an already-deleted item
// reports NotFound.
func (c *Coordinator) Delete(ctx context.Context, caller auth.Identity, itemID primitive.ObjectID) error {
	requesterID, err := callerID(caller)
	if err != nil {
		return err
	}

	item, err := c.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, foodstore.ErrNotFound) {
			return apierr.NotFound("food item not found")
		}
		return apierr.Unavailable(err, "could not look up the listing")
	}

	if item.DonorID != requesterID {
		return apierr.Forbidden("only the listing's donor can delete it")
	}

	deleted, err := c.items.DeleteByID(ctx, itemID)
	if err != nil {
		return apierr.Unavailable(err, "could not delete the listing")
	}
	if deleted == 0 {
		// Raced with another delete of the same item.
		return apierr.NotFound("food item not found")
	}

	c.bus.Publish(EventItemDeleted, DeletedPayload{FoodItemID: itemID.Hex()})
	c.log.Info("food item deleted",
		zap.String("item_id", itemID.Hex()),
		zap.String("donor_id", requesterID.Hex()))
	return nil
}

func callerID(caller auth.Identity) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(caller.ID)
	if err != nil {
		return primitive.NilObjectID, apierr.Unauthorized("malformed caller identity")
	}
	return id, nil
}
