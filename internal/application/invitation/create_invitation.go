package invitation

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ngjiaxun/platter/internal/application/access"
	"github.com/ngjiaxun/platter/internal/application/ports"
	"github.com/ngjiaxun/platter/internal/domain"
	domerrors "github.com/ngjiaxun/platter/internal/domain/errors"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type CreateInvitationInput struct {
	Email     string
	EntityID  domain.EntityID
	Role      domain.RoleName
	InvitedBy domain.UserID
}

// CreateInvitation issues an invitation granting a role on a target
// entity. The inviter must hold change on the entity, directly or via
// an ancestor.
type CreateInvitation struct {
	schema      *domain.Schema
	entities    ports.EntityRepository
	invitations ports.InvitationRepository
	resolver    *access.Resolver
	tasks       ports.TaskEnqueuer
	log         zerolog.Logger
}

func NewCreateInvitation(schema *domain.Schema, entities ports.EntityRepository, invitations ports.InvitationRepository, resolver *access.Resolver, tasks ports.TaskEnqueuer, log zerolog.Logger) *CreateInvitation {
	return &CreateInvitation{schema: schema, entities: entities, invitations: invitations, resolver: resolver, tasks: tasks, log: log}
}

func (uc *CreateInvitation) Execute(ctx context.Context, input CreateInvitationInput) (*domain.Invitation, error) {
	if !emailRegex.MatchString(input.Email) {
		return nil, domerrors.ErrUserNotFound
	}
	if _, err := uc.schema.Role(input.Role); err != nil {
		return nil, err
	}
	entity, err := uc.entities.Get(ctx, input.EntityID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, domerrors.ErrEntityNotFound
	}
	ok, err := uc.resolver.CanDo(ctx, entity, input.InvitedBy, domain.ActionChange)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domerrors.ErrForbidden
	}

	inv := &domain.Invitation{
		ID:        domain.NewInvitationID(uuid.New()),
		Email:     input.Email,
		EntityID:  entity.ID,
		Role:      input.Role,
		InvitedBy: input.InvitedBy,
		CreatedAt: time.Now(),
	}
	if err := uc.invitations.Create(ctx, inv); err != nil {
		return nil, err
	}
	// Delivery is best-effort; the invitation is already persisted.
	if err := uc.tasks.EnqueueSendInvitation(ctx, inv.Email, entity.Content.DisplayName(), string(inv.Role), inv.ID.String()); err != nil {
		uc.log.Warn().Err(err).Str("invitation_id", inv.ID.String()).Msg("enqueue invitation email failed")
	}
	return inv, nil
}
