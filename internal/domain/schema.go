package domain

import (
	"fmt"

	domerrors "github.com/ngjiaxun/platter/internal/domain/errors"
)

// EntityType tags a level of the organizational hierarchy.
type EntityType string

const (
	EntityTypeOrganisation EntityType = "organisation"
	EntityTypeBusiness     EntityType = "business"
	EntityTypeBranch       EntityType = "branch"
)

// ParseEntityType returns the known type for s, or ErrUnknownEntityType.
func ParseEntityType(s string) (EntityType, error) {
	switch EntityType(s) {
	case EntityTypeOrganisation, EntityTypeBusiness, EntityTypeBranch:
		return EntityType(s), nil
	}
	return "", fmt.Errorf("%w: %q", domerrors.ErrUnknownEntityType, s)
}

// Action is a permission verb checked against an entity.
type Action string

const (
	ActionView   Action = "view"
	ActionChange Action = "change"
	ActionDelete Action = "delete"
)

// ParseAction returns the known action for s, or an error.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionView, ActionChange, ActionDelete:
		return Action(s), nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// RoleName identifies a role definition in the schema.
type RoleName string

const (
	RoleAdmin RoleName = "admin"
	RoleUser  RoleName = "user"
)

// Role maps a role name to its group-name suffix and granted action set.
type Role struct {
	Name        RoleName
	GroupSuffix string
	Actions     []Action
}

// Grants reports whether the role's action set includes action.
func (r Role) Grants(action Action) bool {
	for _, a := range r.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Schema is the immutable description of the entity-type chain and role
// definitions. Built once at startup and passed to every component.
type Schema struct {
	order     []EntityType
	ranks     map[EntityType]int
	roles     []Role
	adminRole RoleName
}

// NewSchema builds a schema from an ordered type chain (index 0 = root)
// and role definitions. adminRole names the role whose group receives the
// entity creator on provisioning.
func NewSchema(order []EntityType, roles []Role, adminRole RoleName) (*Schema, error) {
	if len(order) == 0 {
		return nil, fmt.Errorf("%w: empty hierarchy", domerrors.ErrUnknownEntityType)
	}
	ranks := make(map[EntityType]int, len(order))
	for i, t := range order {
		if _, err := ParseEntityType(string(t)); err != nil {
			return nil, err
		}
		if _, dup := ranks[t]; dup {
			return nil, fmt.Errorf("duplicate entity type %q in hierarchy", t)
		}
		ranks[t] = i
	}
	if len(roles) == 0 {
		return nil, fmt.Errorf("%w: no roles defined", domerrors.ErrUnknownRole)
	}
	found := false
	for _, r := range roles {
		if r.Name == adminRole {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: admin role %q not defined", domerrors.ErrUnknownRole, adminRole)
	}
	return &Schema{order: order, ranks: ranks, roles: roles, adminRole: adminRole}, nil
}

// DefaultSchema is the Organisation > Business > Branch chain with the
// stock admin/user roles.
func DefaultSchema() *Schema {
	s, err := NewSchema(
		[]EntityType{EntityTypeOrganisation, EntityTypeBusiness, EntityTypeBranch},
		DefaultRoles(),
		RoleAdmin,
	)
	if err != nil {
		panic(err) // static configuration, cannot fail
	}
	return s
}

// DefaultRoles returns the stock role definitions: admins hold every
// action, users hold view only.
func DefaultRoles() []Role {
	return []Role{
		{Name: RoleAdmin, GroupSuffix: "admins", Actions: []Action{ActionView, ActionChange, ActionDelete}},
		{Name: RoleUser, GroupSuffix: "users", Actions: []Action{ActionView}},
	}
}

// RankOf returns the type's position in the chain, 0 = root.
func (s *Schema) RankOf(t EntityType) (int, error) {
	rank, ok := s.ranks[t]
	if !ok {
		return 0, fmt.Errorf("%w: %q not in hierarchy", domerrors.ErrUnknownEntityType, t)
	}
	return rank, nil
}

// TypeAtRank returns the type at the given rank.
func (s *Schema) TypeAtRank(rank int) (EntityType, error) {
	if rank < 0 || rank >= len(s.order) {
		return "", fmt.Errorf("%w: no type at rank %d", domerrors.ErrUnknownEntityType, rank)
	}
	return s.order[rank], nil
}

// ParentTypeOf returns the type one rank up, or false for the root type.
func (s *Schema) ParentTypeOf(t EntityType) (EntityType, bool, error) {
	rank, err := s.RankOf(t)
	if err != nil {
		return "", false, err
	}
	if rank == 0 {
		return "", false, nil
	}
	return s.order[rank-1], true, nil
}

// ChildTypeOf returns the type one rank down, or false for the leaf type.
func (s *Schema) ChildTypeOf(t EntityType) (EntityType, bool, error) {
	rank, err := s.RankOf(t)
	if err != nil {
		return "", false, err
	}
	if rank == len(s.order)-1 {
		return "", false, nil
	}
	return s.order[rank+1], true, nil
}

// Types returns the ordered type chain, root first.
func (s *Schema) Types() []EntityType {
	out := make([]EntityType, len(s.order))
	copy(out, s.order)
	return out
}

// Depth returns the number of levels in the hierarchy.
func (s *Schema) Depth() int { return len(s.order) }

// Roles returns the role definitions in declaration order.
func (s *Schema) Roles() []Role {
	out := make([]Role, len(s.roles))
	copy(out, s.roles)
	return out
}

// Role returns the definition for name, or ErrUnknownRole.
func (s *Schema) Role(name RoleName) (Role, error) {
	for _, r := range s.roles {
		if r.Name == name {
			return r, nil
		}
	}
	return Role{}, fmt.Errorf("%w: %q", domerrors.ErrUnknownRole, name)
}

// AdminRole returns the role whose group receives the entity creator.
func (s *Schema) AdminRole() Role {
	r, _ := s.Role(s.adminRole)
	return r
}
