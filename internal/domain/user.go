package domain

import (
	"github.com/google/uuid"
)

// UserID is a value object for user identity.
type UserID struct{ uuid.UUID }

// NewUserID creates a new UserID from uuid.
func NewUserID(id uuid.UUID) UserID { return UserID{UUID: id} }

// String returns the canonical string form.
func (u UserID) String() string { return u.UUID.String() }

// Actor is the authenticated identity supplied by the request layer.
// Authentication itself happens upstream; this core only consumes it.
type Actor struct {
	ID    UserID
	Email string
}
