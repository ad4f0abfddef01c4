package entity

import (
	"context"

	"github.com/ngjiaxun/platter/internal/application/access"
	"github.com/ngjiaxun/platter/internal/application/ports"
	"github.com/ngjiaxun/platter/internal/domain"
	domerrors "github.com/ngjiaxun/platter/internal/domain/errors"
)

type UpdateEntityInput struct {
	ID     domain.EntityID
	Name   string
	Fields string
	Actor  domain.UserID
}

// UpdateEntity rewrites an entity's content payload, guarded by change
// access. The id, type and parent are immutable.
type UpdateEntity struct {
	entities ports.EntityRepository
	resolver *access.Resolver
}

func NewUpdateEntity(entities ports.EntityRepository, resolver *access.Resolver) *UpdateEntity {
	return &UpdateEntity{entities: entities, resolver: resolver}
}

func (uc *UpdateEntity) Execute(ctx context.Context, input UpdateEntityInput) (*domain.Entity, error) {
	entity, err := uc.entities.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, domerrors.ErrEntityNotFound
	}
	ok, err := uc.resolver.CanDo(ctx, entity, input.Actor, domain.ActionChange)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domerrors.ErrForbidden
	}
	content, err := domain.NewContent(entity.Type, input.Name, input.Fields)
	if err != nil {
		return nil, err
	}
	if err := uc.entities.UpdateContent(ctx, entity.ID, content); err != nil {
		return nil, err
	}
	entity.Content = content
	return entity, nil
}
