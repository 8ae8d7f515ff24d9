// internal/domain/models/claimrecord.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClaimRecord is the audit trail of a successful claim. One record is
// written per winning claim; the food item itself remains the source of
// truth for current status.
type ClaimRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID   primitive.ObjectID `bson:"client_id" json:"client_id"`
	FoodItemID primitive.ObjectID `bson:"food_item_id" json:"food_item_id"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}
