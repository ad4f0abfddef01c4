package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ngjiaxun/platter/internal/application/ports"
	"github.com/ngjiaxun/platter/internal/domain"
)

// EntityRepository implements ports.EntityRepository. The common entity
// row and the per-type content row live in separate tables; reads join
// them, writes dispatch on the content kind.
type EntityRepository struct {
	pool *pgxpool.Pool
}

func NewEntityRepository(pool *pgxpool.Pool) *EntityRepository {
	return &EntityRepository{pool: pool}
}

const (
	createEntitySQL = `INSERT INTO entities (id, entity_type, parent_id, created_by, created_at) VALUES ($1, $2, $3, $4, $5)`

	createOrganisationSQL = `INSERT INTO organisations (entity_id, name, organisation_fields) VALUES ($1, $2, $3)`
	createBusinessSQL     = `INSERT INTO businesses (entity_id, name, business_fields) VALUES ($1, $2, $3)`
	createBranchSQL       = `INSERT INTO branches (entity_id, name, branch_fields) VALUES ($1, $2, $3)`

	selectEntitySQL = `SELECT e.id, e.entity_type, e.parent_id, e.created_by, e.created_at,
		COALESCE(o.name, b.name, br.name, '') AS name,
		COALESCE(o.organisation_fields, b.business_fields, br.branch_fields, '') AS fields
	FROM entities e
	LEFT JOIN organisations o ON o.entity_id = e.id
	LEFT JOIN businesses b ON b.entity_id = e.id
	LEFT JOIN branches br ON br.entity_id = e.id`

	getEntitySQL       = selectEntitySQL + ` WHERE e.id = $1`
	listEntitiesSQL    = selectEntitySQL + ` WHERE e.id = ANY($1) ORDER BY e.created_at`
	childrenSQL        = selectEntitySQL + ` WHERE e.parent_id = $1 ORDER BY e.created_at`
	childIDsSQL        = `SELECT id FROM entities WHERE parent_id = ANY($1)`
	descendantIDsSQL   = `WITH RECURSIVE down AS (
		SELECT id FROM entities WHERE parent_id = $1
		UNION ALL
		SELECT e.id FROM entities e JOIN down d ON e.parent_id = d.id
	) SELECT id FROM down`
	updateOrganisationSQL = `UPDATE organisations SET name = $2, organisation_fields = $3 WHERE entity_id = $1`
	updateBusinessSQL     = `UPDATE businesses SET name = $2, business_fields = $3 WHERE entity_id = $1`
	updateBranchSQL       = `UPDATE branches SET name = $2, branch_fields = $3 WHERE entity_id = $1`
	deleteEntitySQL       = `DELETE FROM entities WHERE id = $1`
)

func (r *EntityRepository) Create(ctx context.Context, entity *domain.Entity) error {
	q := queryEngine(ctx, r.pool)
	var parentID *uuid.UUID
	if entity.ParentID != nil {
		parentID = &entity.ParentID.UUID
	}
	_, err := q.Exec(ctx, createEntitySQL, entity.ID.UUID, string(entity.Type), parentID, entity.CreatedBy.UUID, entity.CreatedAt)
	if err != nil {
		return err
	}
	name := entity.Content.DisplayName()
	fields := domain.ContentFields(entity.Content)
	switch entity.Content.Kind() {
	case domain.EntityTypeOrganisation:
		_, err = q.Exec(ctx, createOrganisationSQL, entity.ID.UUID, name, fields)
	case domain.EntityTypeBusiness:
		_, err = q.Exec(ctx, createBusinessSQL, entity.ID.UUID, name, fields)
	case domain.EntityTypeBranch:
		_, err = q.Exec(ctx, createBranchSQL, entity.ID.UUID, name, fields)
	default:
		err = fmt.Errorf("unhandled content kind %q", entity.Content.Kind())
	}
	return err
}

func (r *EntityRepository) Get(ctx context.Context, id domain.EntityID) (*domain.Entity, error) {
	row := queryEngine(ctx, r.pool).QueryRow(ctx, getEntitySQL, id.UUID)
	entity, err := scanEntity(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return entity, nil
}

func (r *EntityRepository) ListByIDs(ctx context.Context, ids []domain.EntityID) ([]*domain.Entity, error) {
	rows, err := queryEngine(ctx, r.pool).Query(ctx, listEntitiesSQL, entityUUIDs(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntities(rows)
}

func (r *EntityRepository) Children(ctx context.Context, parent domain.EntityID) ([]*domain.Entity, error) {
	rows, err := queryEngine(ctx, r.pool).Query(ctx, childrenSQL, parent.UUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntities(rows)
}

func (r *EntityRepository) ChildIDs(ctx context.Context, parents []domain.EntityID) ([]domain.EntityID, error) {
	rows, err := queryEngine(ctx, r.pool).Query(ctx, childIDsSQL, entityUUIDs(parents))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntityIDs(rows)
}

func (r *EntityRepository) DescendantIDs(ctx context.Context, root domain.EntityID) ([]domain.EntityID, error) {
	rows, err := queryEngine(ctx, r.pool).Query(ctx, descendantIDsSQL, root.UUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntityIDs(rows)
}

func (r *EntityRepository) UpdateContent(ctx context.Context, id domain.EntityID, content domain.Content) error {
	q := queryEngine(ctx, r.pool)
	name := content.DisplayName()
	fields := domain.ContentFields(content)
	var err error
	switch content.Kind() {
	case domain.EntityTypeOrganisation:
		_, err = q.Exec(ctx, updateOrganisationSQL, id.UUID, name, fields)
	case domain.EntityTypeBusiness:
		_, err = q.Exec(ctx, updateBusinessSQL, id.UUID, name, fields)
	case domain.EntityTypeBranch:
		_, err = q.Exec(ctx, updateBranchSQL, id.UUID, name, fields)
	default:
		err = fmt.Errorf("unhandled content kind %q", content.Kind())
	}
	return err
}

func (r *EntityRepository) Delete(ctx context.Context, id domain.EntityID) error {
	// Content rows, descendants, groups and invitations follow via
	// ON DELETE CASCADE.
	_, err := queryEngine(ctx, r.pool).Exec(ctx, deleteEntitySQL, id.UUID)
	return err
}

func scanEntity(row pgx.Row) (*domain.Entity, error) {
	var (
		id        uuid.UUID
		typeTag   string
		parentID  *uuid.UUID
		createdBy uuid.UUID
		entity    domain.Entity
		name      string
		fields    string
	)
	if err := row.Scan(&id, &typeTag, &parentID, &createdBy, &entity.CreatedAt, &name, &fields); err != nil {
		return nil, err
	}
	entityType, err := domain.ParseEntityType(typeTag)
	if err != nil {
		return nil, err
	}
	content, err := domain.NewContent(entityType, name, fields)
	if err != nil {
		return nil, err
	}
	entity.ID = domain.NewEntityID(id)
	entity.Type = entityType
	entity.CreatedBy = domain.NewUserID(createdBy)
	entity.Content = content
	if parentID != nil {
		pid := domain.NewEntityID(*parentID)
		entity.ParentID = &pid
	}
	return &entity, nil
}

func scanEntities(rows pgx.Rows) ([]*domain.Entity, error) {
	out := make([]*domain.Entity, 0)
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, rows.Err()
}

func scanEntityIDs(rows pgx.Rows) ([]domain.EntityID, error) {
	out := make([]domain.EntityID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, domain.NewEntityID(id))
	}
	return out, rows.Err()
}

func entityUUIDs(ids []domain.EntityID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	for i, id := range ids {
		out[i] = id.UUID
	}
	return out
}

var _ ports.EntityRepository = (*EntityRepository)(nil)
