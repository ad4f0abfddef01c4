package invitation

import (
	"context"

	"github.com/ngjiaxun/platter/internal/application/ports"
	"github.com/ngjiaxun/platter/internal/domain"
	domerrors "github.com/ngjiaxun/platter/internal/domain/errors"
)

// CancelInvitation deletes a pending invitation. Only the inviter may
// cancel.
type CancelInvitation struct {
	invitations ports.InvitationRepository
}

func NewCancelInvitation(invitations ports.InvitationRepository) *CancelInvitation {
	return &CancelInvitation{invitations: invitations}
}

func (uc *CancelInvitation) Execute(ctx context.Context, id domain.InvitationID, inviter domain.UserID) error {
	inv, err := uc.invitations.Get(ctx, id)
	if err != nil {
		return err
	}
	if inv == nil {
		return domerrors.ErrInvitationNotFound
	}
	if inv.InvitedBy != inviter {
		return domerrors.ErrForbidden
	}
	if inv.Accepted {
		return domerrors.ErrAlreadyAccepted
	}
	return uc.invitations.Delete(ctx, inv.ID)
}
