package entity

import (
	"context"

	"github.com/ngjiaxun/platter/internal/application/access"
	"github.com/ngjiaxun/platter/internal/application/ports"
	"github.com/ngjiaxun/platter/internal/domain"
	domerrors "github.com/ngjiaxun/platter/internal/domain/errors"
)

// EntityDetail is an entity together with what the actor may do to it
// and its immediate children.
type EntityDetail struct {
	Entity    *domain.Entity
	CanChange bool
	CanDelete bool
	Children  []*domain.Entity
}

// GetEntity returns an entity's detail view, guarded by view access.
type GetEntity struct {
	entities ports.EntityRepository
	resolver *access.Resolver
}

func NewGetEntity(entities ports.EntityRepository, resolver *access.Resolver) *GetEntity {
	return &GetEntity{entities: entities, resolver: resolver}
}

func (uc *GetEntity) Execute(ctx context.Context, id domain.EntityID, actor domain.UserID) (*EntityDetail, error) {
	entity, err := uc.entities.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, domerrors.ErrEntityNotFound
	}
	ok, err := uc.resolver.CanDo(ctx, entity, actor, domain.ActionView)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domerrors.ErrForbidden
	}
	canChange, err := uc.resolver.CanDo(ctx, entity, actor, domain.ActionChange)
	if err != nil {
		return nil, err
	}
	canDelete, err := uc.resolver.CanDo(ctx, entity, actor, domain.ActionDelete)
	if err != nil {
		return nil, err
	}
	children, err := uc.entities.Children(ctx, entity.ID)
	if err != nil {
		return nil, err
	}
	return &EntityDetail{
		Entity:    entity,
		CanChange: canChange,
		CanDelete: canDelete,
		Children:  children,
	}, nil
}
