package coordinator_test

import (
	"context"
	"sync"
	"time"

	foodstore "github.com/dalemusser/sharebite/internal/app/store/fooditems"
	userstore "github.com/dalemusser/sharebite/internal/app/store/users"
	"github.com/dalemusser/sharebite/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memItemStore is an in-memory ItemStore whose conditional update is
// atomic under a mutex, mirroring the single-document atomicity the
// real store gets from MongoDB.
type memItemStore struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.FoodItem
}

func newMemItemStore() *memItemStore {
	return &memItemStore{items: make(map[primitive.ObjectID]models.FoodItem)}
}

func (s *memItemStore) Insert(_ context.Context, item models.FoodItem) (models.FoodItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = primitive.NewObjectID()
	item.Status = models.StatusAvailable
	item.CreatedAt = time.Now().UTC()
	s.items[item.ID] = item
	return item, nil
}

func (s *memItemStore) GetByID(_ context.Context, id primitive.ObjectID) (models.FoodItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return models.FoodItem{}, foodstore.ErrNotFound
	}
	return item, nil
}

func (s *memItemStore) ClaimAvailable(_ context.Context, itemID, claimerID primitive.ObjectID) (models.FoodItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok || item.Status != models.StatusAvailable || item.DonorID == claimerID {
		return models.FoodItem{}, foodstore.ErrNoMatch
	}

	now := time.Now().UTC()
	item.Status = models.StatusClaimed
	item.ClaimedBy = &claimerID
	item.ClaimedAt = &now
	s.items[itemID] = item
	return item, nil
}

func (s *memItemStore) SetStatus(_ context.Context, id primitive.ObjectID, status string) (models.FoodItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return models.FoodItem{}, foodstore.ErrNotFound
	}
	item.Status = status
	s.items[id] = item
	return item, nil
}

func (s *memItemStore) DeleteByID(_ context.Context, id primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return 0, nil
	}
	delete(s.items, id)
	return 1, nil
}

// memUserDirectory serves fixed user records.
type memUserDirectory struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newMemUserDirectory() *memUserDirectory {
	return &memUserDirectory{users: make(map[primitive.ObjectID]models.User)}
}

func (d *memUserDirectory) add(username, role string) models.User {
	d.mu.Lock()
	defer d.mu.Unlock()

	u := models.User{
		ID:       primitive.NewObjectID(),
		Username: username,
		Role:     role,
		Location: "Test Kitchen, Springfield",
		Coordinates: models.Coordinates{
			Latitude:  38.70,
			Longitude: -90.30,
		},
	}
	d.users[u.ID] = u
	return u
}

func (d *memUserDirectory) GetByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[id]
	if !ok {
		return models.User{}, userstore.ErrNotFound
	}
	return u, nil
}

// capturingBus records every published event in order.
type capturingBus struct {
	mu     sync.Mutex
	events []capturedEvent
}

type capturedEvent struct {
	name    string
	payload any
}

func (b *capturingBus) Publish(event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, capturedEvent{name: event, payload: payload})
}

func (b *capturingBus) byName(name string) []capturedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []capturedEvent
	for _, ev := range b.events {
		if ev.name == name {
			out = append(out, ev)
		}
	}
	return out
}

func (b *capturingBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// memClaimLog records claim history entries.
type memClaimLog struct {
	mu      sync.Mutex
	records []primitive.ObjectID // food item ids
}

func (l *memClaimLog) Record(_ context.Context, _, foodItemID primitive.ObjectID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, foodItemID)
	return nil
}
