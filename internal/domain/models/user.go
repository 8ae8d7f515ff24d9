// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles. A user is either a donor (creates listings) or a client
// (browses and claims them). The role is fixed at registration.
const (
	RoleDonor  = "donor"
	RoleClient = "client"
)

// IsValidRole reports whether role is one of the known user roles.
func IsValidRole(role string) bool {
	return role == RoleDonor || role == RoleClient
}

// Coordinates is a latitude/longitude pair. Both values are required
// whenever the pair is present.
type Coordinates struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// User represents a donor or client account.
//
// PasswordHash is never serialized into API responses; only the store
// and the accounts feature touch it.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username   string             `bson:"username" json:"username"`
	UsernameCI string             `bson:"username_ci" json:"-"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	EmailCI    string             `bson:"email_ci" json:"-"`

	PasswordHash string `bson:"password_hash" json:"-"`

	OrganizationName string      `bson:"organization_name,omitempty" json:"organization_name,omitempty"`
	Location         string      `bson:"location" json:"location"`
	Coordinates      Coordinates `bson:"coordinates" json:"coordinates"`
	Phone            string      `bson:"phone,omitempty" json:"phone,omitempty"`

	Role string `bson:"role" json:"role"` // donor | client

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
