package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ngjiaxun/platter/internal/application/ports"
	"github.com/ngjiaxun/platter/internal/domain"
)

// GroupRepository implements ports.GroupRepository. Groups upsert on
// their (entity_id, role) natural key so provisioning stays idempotent;
// grants and memberships are insert-if-absent.
type GroupRepository struct {
	pool *pgxpool.Pool
}

func NewGroupRepository(pool *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{pool: pool}
}

const (
	getOrCreateGroupSQL = `INSERT INTO access_groups (id, entity_id, role, name, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (entity_id, role) DO UPDATE SET role = access_groups.role
	RETURNING id, created_at`

	grantActionSQL = `INSERT INTO access_group_actions (group_id, action) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	getGroupSQL = `SELECT id, entity_id, role, name, created_at FROM access_groups WHERE entity_id = $1 AND role = $2`

	listGroupsForEntitySQL = `SELECT id, entity_id, role, name, created_at FROM access_groups WHERE entity_id = $1 ORDER BY role`

	listGroupActionsSQL = `SELECT action FROM access_group_actions WHERE group_id = $1 ORDER BY action`

	deleteGroupsSQL = `DELETE FROM access_groups WHERE entity_id = ANY($1)`

	addMemberSQL = `INSERT INTO access_group_members (group_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	removeMemberSQL = `DELETE FROM access_group_members WHERE group_id = $1 AND user_id = $2`

	listMembersSQL = `SELECT user_id FROM access_group_members WHERE group_id = $1 ORDER BY user_id`

	entityIDsGrantedSQL = `SELECT DISTINCT e.id
	FROM entities e
	JOIN access_groups g ON g.entity_id = e.id
	JOIN access_group_actions a ON a.group_id = g.id
	JOIN access_group_members m ON m.group_id = g.id
	WHERE e.entity_type = $1 AND a.action = $2 AND m.user_id = $3`
)

func (r *GroupRepository) GetOrCreate(ctx context.Context, group *domain.AccessGroup) error {
	// The no-op DO UPDATE makes RETURNING yield the surviving row's id
	// on conflict.
	row := queryEngine(ctx, r.pool).QueryRow(ctx, getOrCreateGroupSQL,
		group.ID.UUID, group.EntityID.UUID, string(group.Role), group.Name, group.CreatedAt)
	var id uuid.UUID
	if err := row.Scan(&id, &group.CreatedAt); err != nil {
		return err
	}
	group.ID = domain.NewGroupID(id)
	return nil
}

func (r *GroupRepository) GrantActions(ctx context.Context, groupID domain.GroupID, actions []domain.Action) error {
	q := queryEngine(ctx, r.pool)
	for _, action := range actions {
		if _, err := q.Exec(ctx, grantActionSQL, groupID.UUID, string(action)); err != nil {
			return err
		}
	}
	return nil
}

func (r *GroupRepository) GetByEntityAndRole(ctx context.Context, entityID domain.EntityID, role domain.RoleName) (*domain.AccessGroup, error) {
	q := queryEngine(ctx, r.pool)
	group, err := scanGroup(q.QueryRow(ctx, getGroupSQL, entityID.UUID, string(role)))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadActions(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (r *GroupRepository) ListForEntity(ctx context.Context, entityID domain.EntityID) ([]*domain.AccessGroup, error) {
	q := queryEngine(ctx, r.pool)
	rows, err := q.Query(ctx, listGroupsForEntitySQL, entityID.UUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	groups := make([]*domain.AccessGroup, 0)
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()
	for _, group := range groups {
		if err := r.loadActions(ctx, group); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

func (r *GroupRepository) DeleteForEntities(ctx context.Context, entityIDs []domain.EntityID) error {
	_, err := queryEngine(ctx, r.pool).Exec(ctx, deleteGroupsSQL, entityUUIDs(entityIDs))
	return err
}

func (r *GroupRepository) AddMember(ctx context.Context, groupID domain.GroupID, userID domain.UserID) error {
	_, err := queryEngine(ctx, r.pool).Exec(ctx, addMemberSQL, groupID.UUID, userID.UUID)
	return err
}

func (r *GroupRepository) RemoveMember(ctx context.Context, groupID domain.GroupID, userID domain.UserID) error {
	_, err := queryEngine(ctx, r.pool).Exec(ctx, removeMemberSQL, groupID.UUID, userID.UUID)
	return err
}

func (r *GroupRepository) ListMembers(ctx context.Context, groupID domain.GroupID) ([]domain.UserID, error) {
	rows, err := queryEngine(ctx, r.pool).Query(ctx, listMembersSQL, groupID.UUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]domain.UserID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, domain.NewUserID(id))
	}
	return out, rows.Err()
}

func (r *GroupRepository) EntityIDsGranted(ctx context.Context, userID domain.UserID, entityType domain.EntityType, action domain.Action) ([]domain.EntityID, error) {
	rows, err := queryEngine(ctx, r.pool).Query(ctx, entityIDsGrantedSQL, string(entityType), string(action), userID.UUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntityIDs(rows)
}

func (r *GroupRepository) loadActions(ctx context.Context, group *domain.AccessGroup) error {
	rows, err := queryEngine(ctx, r.pool).Query(ctx, listGroupActionsSQL, group.ID.UUID)
	if err != nil {
		return err
	}
	defer rows.Close()
	group.Actions = group.Actions[:0]
	for rows.Next() {
		var action string
		if err := rows.Scan(&action); err != nil {
			return err
		}
		group.Actions = append(group.Actions, domain.Action(action))
	}
	return rows.Err()
}

func scanGroup(row pgx.Row) (*domain.AccessGroup, error) {
	var (
		id       uuid.UUID
		entityID uuid.UUID
		role     string
		group    domain.AccessGroup
	)
	if err := row.Scan(&id, &entityID, &role, &group.Name, &group.CreatedAt); err != nil {
		return nil, err
	}
	group.ID = domain.NewGroupID(id)
	group.EntityID = domain.NewEntityID(entityID)
	group.Role = domain.RoleName(role)
	return &group, nil
}

var _ ports.GroupRepository = (*GroupRepository)(nil)
