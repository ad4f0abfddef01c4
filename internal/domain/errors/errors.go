package errors

import "errors"

// Sentinel errors for handlers to map to HTTP status.
var (
	ErrInvalidHierarchy   = errors.New("entity violates hierarchy invariants")
	ErrForbidden          = errors.New("actor lacks required permission on target entity")
	ErrAlreadyAccepted    = errors.New("invitation already accepted")
	ErrEntityNotFound     = errors.New("entity not found")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrGroupNotFound      = errors.New("access group not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnknownEntityType  = errors.New("entity type not in hierarchy schema")
	ErrUnknownRole        = errors.New("role not in hierarchy schema")
)
