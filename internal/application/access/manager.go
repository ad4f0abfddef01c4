package access

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ngjiaxun/platter/internal/application/ports"
	"github.com/ngjiaxun/platter/internal/domain"
	domerrors "github.com/ngjiaxun/platter/internal/domain/errors"
)

// Manager provisions and tears down the per-entity access groups and
// their grants. Every mutation joins the caller's transaction via the
// context, so entity creation plus provisioning is all-or-nothing.
type Manager struct {
	schema *domain.Schema
	groups ports.GroupRepository
}

// NewManager creates an access group manager over the grant store.
func NewManager(schema *domain.Schema, groups ports.GroupRepository) *Manager {
	return &Manager{schema: schema, groups: groups}
}

// Provision creates one group per schema role for the entity, grants
// each group its role's action set, and adds the creator to the admin
// group. Idempotent: re-invoking on a provisioned entity neither
// duplicates groups nor grants.
func (m *Manager) Provision(ctx context.Context, entity *domain.Entity) error {
	admin := m.schema.AdminRole()
	for _, role := range m.schema.Roles() {
		group := &domain.AccessGroup{
			ID:        domain.NewGroupID(uuid.New()),
			EntityID:  entity.ID,
			Role:      role.Name,
			Name:      entity.GroupName(role),
			Actions:   role.Actions,
			CreatedAt: time.Now(),
		}
		if err := m.groups.GetOrCreate(ctx, group); err != nil {
			return err
		}
		if err := m.groups.GrantActions(ctx, group.ID, role.Actions); err != nil {
			return err
		}
		if role.Name == admin.Name {
			if err := m.groups.AddMember(ctx, group.ID, entity.CreatedBy); err != nil {
				return err
			}
		}
	}
	return nil
}

// Deprovision deletes all groups keyed to the entity. Missing groups
// are a no-op.
func (m *Manager) Deprovision(ctx context.Context, entity *domain.Entity) error {
	return m.groups.DeleteForEntities(ctx, []domain.EntityID{entity.ID})
}

// DeprovisionMany deletes the groups of every listed entity, used by
// cascade deletion.
func (m *Manager) DeprovisionMany(ctx context.Context, entityIDs []domain.EntityID) error {
	if len(entityIDs) == 0 {
		return nil
	}
	return m.groups.DeleteForEntities(ctx, entityIDs)
}

// GroupFor looks up the entity's group for a role by its natural key.
func (m *Manager) GroupFor(ctx context.Context, entity *domain.Entity, role domain.RoleName) (*domain.AccessGroup, error) {
	if _, err := m.schema.Role(role); err != nil {
		return nil, err
	}
	group, err := m.groups.GetByEntityAndRole(ctx, entity.ID, role)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, domerrors.ErrGroupNotFound
	}
	return group, nil
}

// AddMember adds the user to the group in the external user directory's
// membership relation.
func (m *Manager) AddMember(ctx context.Context, group *domain.AccessGroup, userID domain.UserID) error {
	return m.groups.AddMember(ctx, group.ID, userID)
}

// RemoveMember removes the user from the group. Access granted by other
// groups is unaffected.
func (m *Manager) RemoveMember(ctx context.Context, group *domain.AccessGroup, userID domain.UserID) error {
	return m.groups.RemoveMember(ctx, group.ID, userID)
}
