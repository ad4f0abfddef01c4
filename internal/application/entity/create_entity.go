package entity

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ngjiaxun/platter/internal/application/access"
	"github.com/ngjiaxun/platter/internal/application/ports"
	"github.com/ngjiaxun/platter/internal/domain"
	domerrors "github.com/ngjiaxun/platter/internal/domain/errors"
)

type CreateEntityInput struct {
	Type      domain.EntityType
	Name      string
	Fields    string
	ParentID  *domain.EntityID
	CreatedBy domain.UserID
}

// CreateEntity validates the hierarchy invariants, persists the entity
// and provisions its access groups in one transaction.
type CreateEntity struct {
	schema   *domain.Schema
	entities ports.EntityRepository
	groups   *access.Manager
	resolver *access.Resolver
	tx       ports.TxManager
}

func NewCreateEntity(schema *domain.Schema, entities ports.EntityRepository, groups *access.Manager, resolver *access.Resolver, tx ports.TxManager) *CreateEntity {
	return &CreateEntity{schema: schema, entities: entities, groups: groups, resolver: resolver, tx: tx}
}

func (uc *CreateEntity) Execute(ctx context.Context, input CreateEntityInput) (*domain.Entity, error) {
	rank, err := uc.schema.RankOf(input.Type)
	if err != nil {
		return nil, err
	}
	content, err := domain.NewContent(input.Type, input.Name, input.Fields)
	if err != nil {
		return nil, err
	}

	var parent *domain.Entity
	if rank > 0 {
		if input.ParentID == nil {
			return nil, domerrors.ErrInvalidHierarchy
		}
		parent, err = uc.entities.Get(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, domerrors.ErrEntityNotFound
		}
		// Only parents the creator may change are valid attachment points.
		ok, err := uc.resolver.CanDo(ctx, parent, input.CreatedBy, domain.ActionChange)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domerrors.ErrForbidden
		}
	}

	entity := &domain.Entity{
		ID:        domain.NewEntityID(uuid.New()),
		Type:      input.Type,
		ParentID:  input.ParentID,
		CreatedBy: input.CreatedBy,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := entity.Validate(uc.schema, parent); err != nil {
		return nil, err
	}

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.entities.Create(ctx, entity); err != nil {
			return err
		}
		return uc.groups.Provision(ctx, entity)
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}
