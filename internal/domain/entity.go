package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	domerrors "github.com/ngjiaxun/platter/internal/domain/errors"
)

// EntityID is a value object for entity identity.
type EntityID struct{ uuid.UUID }

// NewEntityID creates a new EntityID from uuid.
func NewEntityID(id uuid.UUID) EntityID { return EntityID{UUID: id} }

// String returns the canonical string form.
func (e EntityID) String() string { return e.UUID.String() }

// Content is the type-specific payload of an entity. It is a sealed
// tagged union over the known hierarchy levels; dispatch is an
// exhaustive switch on Kind, never a runtime lookup.
type Content interface {
	Kind() EntityType
	DisplayName() string
	content() // seals the union
}

// OrganisationContent is the payload of a top-level organisation.
type OrganisationContent struct {
	Name               string
	OrganisationFields string
}

func (OrganisationContent) Kind() EntityType { return EntityTypeOrganisation }

func (c OrganisationContent) DisplayName() string { return c.Name }

func (OrganisationContent) content() {}

// BusinessContent is the payload of a business under an organisation.
type BusinessContent struct {
	Name           string
	BusinessFields string
}

func (BusinessContent) Kind() EntityType { return EntityTypeBusiness }

func (c BusinessContent) DisplayName() string { return c.Name }

func (BusinessContent) content() {}

// BranchContent is the payload of a branch under a business.
type BranchContent struct {
	Name         string
	BranchFields string
}

func (BranchContent) Kind() EntityType { return EntityTypeBranch }

func (c BranchContent) DisplayName() string { return c.Name }

func (BranchContent) content() {}

// Entity is one node of the organizational hierarchy.
type Entity struct {
	ID        EntityID
	Type      EntityType
	ParentID  *EntityID // nil iff the type is at rank 0
	CreatedBy UserID
	Content   Content
	CreatedAt time.Time
}

// Rank returns the entity's position in the hierarchy per the schema.
func (e *Entity) Rank(s *Schema) (int, error) {
	return s.RankOf(e.Type)
}

// GroupName is the deterministic, human-readable natural key of the
// entity's group for a role, e.g. "ABC Corp_<id>_organisation_admins".
func (e *Entity) GroupName(role Role) string {
	return fmt.Sprintf("%s_%s_%s_%s", e.Content.DisplayName(), e.ID, e.Type, role.GroupSuffix)
}

// Validate enforces the hierarchy invariants before persisting:
// a root entity has no parent, a non-root entity has a parent of the
// adjacent higher rank. Rank monotonicity along the parent chain keeps
// it acyclic without any cycle search. parent must be the resolved
// parent entity when ParentID is set.
func (e *Entity) Validate(s *Schema, parent *Entity) error {
	rank, err := e.Rank(s)
	if err != nil {
		return err
	}
	if e.Content == nil {
		return fmt.Errorf("%w: entity has no content", domerrors.ErrInvalidHierarchy)
	}
	if e.Content.Kind() != e.Type {
		return fmt.Errorf("%w: content kind %q does not match entity type %q",
			domerrors.ErrInvalidHierarchy, e.Content.Kind(), e.Type)
	}
	if rank == 0 {
		if e.ParentID != nil {
			return fmt.Errorf("%w: top level entities cannot have parents", domerrors.ErrInvalidHierarchy)
		}
		return nil
	}
	if e.ParentID == nil || parent == nil {
		return fmt.Errorf("%w: non top level entities must have parents", domerrors.ErrInvalidHierarchy)
	}
	if parent.ID != *e.ParentID {
		return fmt.Errorf("%w: parent does not match parent id", domerrors.ErrInvalidHierarchy)
	}
	parentRank, err := parent.Rank(s)
	if err != nil {
		return err
	}
	if parentRank != rank-1 {
		return fmt.Errorf("%w: parent must be of the correct type", domerrors.ErrInvalidHierarchy)
	}
	return nil
}

// NewContent builds an empty payload for the given type. Exhaustive
// over the sealed union.
func NewContent(t EntityType, name, fields string) (Content, error) {
	switch t {
	case EntityTypeOrganisation:
		return OrganisationContent{Name: name, OrganisationFields: fields}, nil
	case EntityTypeBusiness:
		return BusinessContent{Name: name, BusinessFields: fields}, nil
	case EntityTypeBranch:
		return BranchContent{Name: name, BranchFields: fields}, nil
	}
	return nil, fmt.Errorf("%w: %q", domerrors.ErrUnknownEntityType, t)
}

// ContentFields returns the type-specific fields string of the payload.
func ContentFields(c Content) string {
	switch v := c.(type) {
	case OrganisationContent:
		return v.OrganisationFields
	case BusinessContent:
		return v.BusinessFields
	case BranchContent:
		return v.BranchFields
	}
	return ""
}
