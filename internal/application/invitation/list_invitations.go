package invitation

import (
	"context"

	"github.com/ngjiaxun/platter/internal/application/ports"
	"github.com/ngjiaxun/platter/internal/domain"
)

// ListInvitations returns the pending invitations issued by a user.
type ListInvitations struct {
	invitations ports.InvitationRepository
}

func NewListInvitations(invitations ports.InvitationRepository) *ListInvitations {
	return &ListInvitations{invitations: invitations}
}

func (uc *ListInvitations) Execute(ctx context.Context, invitedBy domain.UserID) ([]*domain.Invitation, error) {
	return uc.invitations.ListPendingByInviter(ctx, invitedBy)
}
