package invitation

import (
	"context"
	"strings"

	"github.com/ngjiaxun/platter/internal/application/ports"
	"github.com/ngjiaxun/platter/internal/domain"
	domerrors "github.com/ngjiaxun/platter/internal/domain/errors"
)

// RejectInvitation deletes a pending invitation. Only the invitee (the
// actor whose email matches the invitation) may reject.
type RejectInvitation struct {
	invitations ports.InvitationRepository
}

func NewRejectInvitation(invitations ports.InvitationRepository) *RejectInvitation {
	return &RejectInvitation{invitations: invitations}
}

func (uc *RejectInvitation) Execute(ctx context.Context, id domain.InvitationID, actor domain.Actor) error {
	inv, err := uc.invitations.Get(ctx, id)
	if err != nil {
		return err
	}
	if inv == nil {
		return domerrors.ErrInvitationNotFound
	}
	if !strings.EqualFold(inv.Email, actor.Email) {
		return domerrors.ErrForbidden
	}
	if inv.Accepted {
		return domerrors.ErrAlreadyAccepted
	}
	return uc.invitations.Delete(ctx, inv.ID)
}
