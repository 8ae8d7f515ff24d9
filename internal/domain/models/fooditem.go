// internal/domain/models/fooditem.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Food item lifecycle states. An item starts Available and moves forward
// only: Available -> Claimed -> Delivered. There is no path backwards.
const (
	StatusAvailable = "Available"
	StatusClaimed   = "Claimed"
	StatusDelivered = "Delivered"
)

// IsValidStatus reports whether s is one of the known lifecycle states.
func IsValidStatus(s string) bool {
	return s == StatusAvailable || s == StatusClaimed || s == StatusDelivered
}

// Dietary flags for a food item.
const (
	DietVeg    = "Veg"
	DietNonVeg = "Non-Veg"
)

// IsValidDiet reports whether d is a known dietary flag.
func IsValidDiet(d string) bool {
	return d == DietVeg || d == DietNonVeg
}

// FoodItem represents one donation offer.
//
// Invariant: ClaimedBy is set if and only if the item has left the
// Available state. Location and Coordinates are copied from the donor's
// user record at creation time and are not edited afterwards.
type FoodItem struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped

	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Quantity    int    `bson:"quantity" json:"quantity"` // servings, > 0
	Diet        string `bson:"diet,omitempty" json:"diet,omitempty"`
	Packed      bool   `bson:"packed" json:"packed"`

	// Hours until spoilage, counted from CreatedAt. Stored but not yet
	// enforced; nothing transitions an item out of Available when it
	// lapses.
	ShelfLifeHours int `bson:"shelf_life_hours" json:"shelf_life_hours"`

	Status string `bson:"status" json:"status"` // Available | Claimed | Delivered

	DonorID   primitive.ObjectID  `bson:"donor_id" json:"donor_id"`
	ClaimedBy *primitive.ObjectID `bson:"claimed_by,omitempty" json:"claimed_by,omitempty"`

	Location    string      `bson:"location" json:"location"`
	Coordinates Coordinates `bson:"coordinates" json:"coordinates"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	ClaimedAt *time.Time `bson:"claimed_at,omitempty" json:"claimed_at,omitempty"`
}

// IsAvailable reports whether the item can still be claimed.
func (f *FoodItem) IsAvailable() bool {
	return f.Status == StatusAvailable
}
