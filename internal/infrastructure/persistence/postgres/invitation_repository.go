package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ngjiaxun/platter/internal/application/ports"
	"github.com/ngjiaxun/platter/internal/domain"
)

// InvitationRepository implements ports.InvitationRepository.
type InvitationRepository struct {
	pool *pgxpool.Pool
}

func NewInvitationRepository(pool *pgxpool.Pool) *InvitationRepository {
	return &InvitationRepository{pool: pool}
}

const (
	createInvitationSQL = `INSERT INTO invitations (id, email, entity_id, role, invited_by, accepted, created_at)
	VALUES ($1, $2, $3, $4, $5, false, $6)`

	getInvitationSQL = `SELECT id, email, entity_id, role, invited_by, accepted, created_at FROM invitations WHERE id = $1`

	// Conditional flip: zero rows affected means a concurrent accept won.
	markAcceptedSQL = `UPDATE invitations SET accepted = true WHERE id = $1 AND accepted = false`

	deleteInvitationSQL = `DELETE FROM invitations WHERE id = $1`

	listPendingByInviterSQL = `SELECT id, email, entity_id, role, invited_by, accepted, created_at
	FROM invitations WHERE invited_by = $1 AND accepted = false ORDER BY created_at`
)

func (r *InvitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	_, err := queryEngine(ctx, r.pool).Exec(ctx, createInvitationSQL,
		inv.ID.UUID, inv.Email, inv.EntityID.UUID, string(inv.Role), inv.InvitedBy.UUID, inv.CreatedAt)
	return err
}

func (r *InvitationRepository) Get(ctx context.Context, id domain.InvitationID) (*domain.Invitation, error) {
	inv, err := scanInvitation(queryEngine(ctx, r.pool).QueryRow(ctx, getInvitationSQL, id.UUID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return inv, nil
}

func (r *InvitationRepository) MarkAccepted(ctx context.Context, id domain.InvitationID) (bool, error) {
	tag, err := queryEngine(ctx, r.pool).Exec(ctx, markAcceptedSQL, id.UUID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *InvitationRepository) Delete(ctx context.Context, id domain.InvitationID) error {
	_, err := queryEngine(ctx, r.pool).Exec(ctx, deleteInvitationSQL, id.UUID)
	return err
}

func (r *InvitationRepository) ListPendingByInviter(ctx context.Context, invitedBy domain.UserID) ([]*domain.Invitation, error) {
	rows, err := queryEngine(ctx, r.pool).Query(ctx, listPendingByInviterSQL, invitedBy.UUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func scanInvitation(row pgx.Row) (*domain.Invitation, error) {
	var (
		id        uuid.UUID
		entityID  uuid.UUID
		role      string
		invitedBy uuid.UUID
		inv       domain.Invitation
	)
	if err := row.Scan(&id, &inv.Email, &entityID, &role, &invitedBy, &inv.Accepted, &inv.CreatedAt); err != nil {
		return nil, err
	}
	inv.ID = domain.NewInvitationID(id)
	inv.EntityID = domain.NewEntityID(entityID)
	inv.Role = domain.RoleName(role)
	inv.InvitedBy = domain.NewUserID(invitedBy)
	return &inv, nil
}

var _ ports.InvitationRepository = (*InvitationRepository)(nil)
