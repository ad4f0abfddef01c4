package domain

import (
	"time"

	"github.com/google/uuid"
)

// InvitationID is a value object for invitation identity.
type InvitationID struct{ uuid.UUID }

// NewInvitationID creates a new InvitationID from uuid.
func NewInvitationID(id uuid.UUID) InvitationID { return InvitationID{UUID: id} }

// String returns the canonical string form.
func (i InvitationID) String() string { return i.UUID.String() }

// Invitation grants a role (and therefore group membership) on a target
// entity to the holder of an email address. Terminal states: accepted
// (record retained, Accepted=true) or deleted (reject/cancel).
type Invitation struct {
	ID        InvitationID
	Email     string
	EntityID  EntityID
	Role      RoleName
	InvitedBy UserID
	Accepted  bool
	CreatedAt time.Time
}
