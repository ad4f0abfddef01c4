package entity

import (
	"context"

	"github.com/ngjiaxun/platter/internal/application/access"
	"github.com/ngjiaxun/platter/internal/application/ports"
	"github.com/ngjiaxun/platter/internal/domain"
)

// ListEntities returns the entities of one type the actor may view,
// directly or via ancestor grants.
type ListEntities struct {
	entities ports.EntityRepository
	resolver *access.Resolver
}

func NewListEntities(entities ports.EntityRepository, resolver *access.Resolver) *ListEntities {
	return &ListEntities{entities: entities, resolver: resolver}
}

func (uc *ListEntities) Execute(ctx context.Context, entityType domain.EntityType, actor domain.UserID) ([]*domain.Entity, error) {
	ids, err := uc.resolver.ObjectsAccessible(ctx, entityType, actor, domain.ActionView)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*domain.Entity{}, nil
	}
	return uc.entities.ListByIDs(ctx, ids)
}
