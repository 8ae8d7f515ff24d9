// internal/app/coordinator/events.go
package coordinator

// Event names pushed over the notification channel. These are the wire
// names the browser frontend listens for; renaming them is a breaking
// change.
const (
	EventItemAdded   = "foodItemAdded"
	EventItemUpdated = "foodItemUpdated"
	EventItemClaimed = "foodItemClaimedUpdate"
	EventItemDeleted = "foodItemDeleted"
)

// ClaimedPayload is the body of an EventItemClaimed broadcast.
type ClaimedPayload struct {
	FoodItemID string `json:"foodItemId"`
	ClaimedBy  string `json:"claimedBy"`
}

// DeletedPayload is the body of an EventItemDeleted broadcast.
type DeletedPayload struct {
	FoodItemID string `json:"foodItemId"`
}
