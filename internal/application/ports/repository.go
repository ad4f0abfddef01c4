package ports

import (
	"context"

	"github.com/ngjiaxun/platter/internal/domain"
)

// EntityRepository defines persistence for hierarchy entities.
type EntityRepository interface {
	Create(ctx context.Context, entity *domain.Entity) error
	Get(ctx context.Context, id domain.EntityID) (*domain.Entity, error)
	ListByIDs(ctx context.Context, ids []domain.EntityID) ([]*domain.Entity, error)
	Children(ctx context.Context, parent domain.EntityID) ([]*domain.Entity, error)
	// ChildIDs expands one hop down the hierarchy: ids of entities whose
	// parent is in parents.
	ChildIDs(ctx context.Context, parents []domain.EntityID) ([]domain.EntityID, error)
	// DescendantIDs returns the ids of every entity below root, root
	// excluded.
	DescendantIDs(ctx context.Context, root domain.EntityID) ([]domain.EntityID, error)
	UpdateContent(ctx context.Context, id domain.EntityID, content domain.Content) error
	Delete(ctx context.Context, id domain.EntityID) error
}

// GroupRepository defines persistence for access groups, their granted
// actions and their members.
type GroupRepository interface {
	// GetOrCreate upserts on the (entity, role) natural key. On return
	// group.ID holds the persisted id whether the row was created or
	// already existed.
	GetOrCreate(ctx context.Context, group *domain.AccessGroup) error
	GrantActions(ctx context.Context, groupID domain.GroupID, actions []domain.Action) error
	GetByEntityAndRole(ctx context.Context, entityID domain.EntityID, role domain.RoleName) (*domain.AccessGroup, error)
	ListForEntity(ctx context.Context, entityID domain.EntityID) ([]*domain.AccessGroup, error)
	// DeleteForEntities removes all groups keyed to the given entities.
	// Missing groups are not an error.
	DeleteForEntities(ctx context.Context, entityIDs []domain.EntityID) error
	AddMember(ctx context.Context, groupID domain.GroupID, userID domain.UserID) error
	RemoveMember(ctx context.Context, groupID domain.GroupID, userID domain.UserID) error
	ListMembers(ctx context.Context, groupID domain.GroupID) ([]domain.UserID, error)
	// EntityIDsGranted returns ids of entityType instances where a group
	// granting action has userID as member. One rank at a time; the
	// resolver walks the ancestor chain itself.
	EntityIDsGranted(ctx context.Context, userID domain.UserID, entityType domain.EntityType, action domain.Action) ([]domain.EntityID, error)
}

// InvitationRepository defines persistence for invitations.
type InvitationRepository interface {
	Create(ctx context.Context, inv *domain.Invitation) error
	Get(ctx context.Context, id domain.InvitationID) (*domain.Invitation, error)
	// MarkAccepted flips the accepted flag iff it is still false and
	// reports whether this call won. A false return means a concurrent
	// accept got there first.
	MarkAccepted(ctx context.Context, id domain.InvitationID) (bool, error)
	Delete(ctx context.Context, id domain.InvitationID) error
	ListPendingByInviter(ctx context.Context, invitedBy domain.UserID) ([]*domain.Invitation, error)
}

// TxManager runs fn inside a single datastore transaction. Repositories
// called with the ctx passed to fn join that transaction; any error
// rolls everything back.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
