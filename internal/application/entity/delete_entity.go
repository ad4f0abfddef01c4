package entity

import (
	"context"

	"github.com/ngjiaxun/platter/internal/application/access"
	"github.com/ngjiaxun/platter/internal/application/ports"
	"github.com/ngjiaxun/platter/internal/domain"
	domerrors "github.com/ngjiaxun/platter/internal/domain/errors"
)

// DeleteEntity removes an entity and all its descendants, deprovisioning
// every affected access group, in one transaction.
type DeleteEntity struct {
	entities ports.EntityRepository
	groups   *access.Manager
	resolver *access.Resolver
	tx       ports.TxManager
}

func NewDeleteEntity(entities ports.EntityRepository, groups *access.Manager, resolver *access.Resolver, tx ports.TxManager) *DeleteEntity {
	return &DeleteEntity{entities: entities, groups: groups, resolver: resolver, tx: tx}
}

func (uc *DeleteEntity) Execute(ctx context.Context, id domain.EntityID, actor domain.UserID) error {
	entity, err := uc.entities.Get(ctx, id)
	if err != nil {
		return err
	}
	if entity == nil {
		return domerrors.ErrEntityNotFound
	}
	ok, err := uc.resolver.CanDo(ctx, entity, actor, domain.ActionDelete)
	if err != nil {
		return err
	}
	if !ok {
		return domerrors.ErrForbidden
	}

	return uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		descendants, err := uc.entities.DescendantIDs(ctx, entity.ID)
		if err != nil {
			return err
		}
		// Deprovision explicitly for the entity and every cascaded
		// descendant; the storage cascade then removes the entity rows.
		if err := uc.groups.DeprovisionMany(ctx, append(descendants, entity.ID)); err != nil {
			return err
		}
		return uc.entities.Delete(ctx, entity.ID)
	})
}
