// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/sharebite/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) createUser(ctx context.Context, username, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	email := username + "@example.org"
	user := models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		UsernameCI:   text.Fold(username),
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: "$2a$10$fixture.not.a.real.hash",
		Location:     "12 Market St, Springfield",
		Coordinates: models.Coordinates{
			Latitude:  38.70,
			Longitude: -90.30,
		},
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateDonor creates a donor account with the given username.
func (f *Fixtures) CreateDonor(ctx context.Context, username string) models.User {
	f.t.Helper()
	return f.createUser(ctx, username, models.RoleDonor)
}

// CreateClient creates a client account with the given username.
func (f *Fixtures) CreateClient(ctx context.Context, username string) models.User {
	f.t.Helper()
	return f.createUser(ctx, username, models.RoleClient)
}

// CreateFoodItem creates an Available food item owned by the donor.
func (f *Fixtures) CreateFoodItem(ctx context.Context, donor models.User, name string, quantity int) models.FoodItem {
	f.t.Helper()

	item := models.FoodItem{
		ID:             primitive.NewObjectID(),
		Name:           name,
		NameCI:         text.Fold(name),
		Quantity:       quantity,
		Diet:           models.DietVeg,
		Packed:         true,
		ShelfLifeHours: 6,
		Status:         models.StatusAvailable,
		DonorID:        donor.ID,
		Location:       donor.Location,
		Coordinates:    donor.Coordinates,
		CreatedAt:      time.Now().UTC(),
	}

	if _, err := f.db.Collection("food_items").InsertOne(ctx, item); err != nil {
		f.t.Fatalf("failed to create test food item: %v", err)
	}
	return item
}
