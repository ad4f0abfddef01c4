package domain

import (
	"time"

	"github.com/google/uuid"
)

// GroupID is a value object for access group identity.
type GroupID struct{ uuid.UUID }

// NewGroupID creates a new GroupID from uuid.
func NewGroupID(id uuid.UUID) GroupID { return GroupID{UUID: id} }

// String returns the canonical string form.
func (g GroupID) String() string { return g.UUID.String() }

// AccessGroup is one role-scoped group of users attached to exactly one
// entity instance. Its action set is snapshotted from the schema's role
// definition at creation time and never recomputed.
type AccessGroup struct {
	ID        GroupID
	EntityID  EntityID
	Role      RoleName
	Name      string
	Actions   []Action
	CreatedAt time.Time
}

// Grants reports whether the group's snapshotted action set includes
// action.
func (g *AccessGroup) Grants(action Action) bool {
	for _, a := range g.Actions {
		if a == action {
			return true
		}
	}
	return false
}
