package invitation

import (
	"context"

	"github.com/ngjiaxun/platter/internal/application/access"
	"github.com/ngjiaxun/platter/internal/application/ports"
	"github.com/ngjiaxun/platter/internal/domain"
	domerrors "github.com/ngjiaxun/platter/internal/domain/errors"
)

// AcceptInvitation grants the invited role's group membership to the
// accepting user and marks the invitation accepted, in one transaction.
// Accepted is terminal: a second accept fails with ErrAlreadyAccepted,
// including under concurrency (the flag flip is conditional).
type AcceptInvitation struct {
	invitations ports.InvitationRepository
	entities    ports.EntityRepository
	groups      *access.Manager
	tx          ports.TxManager
}

func NewAcceptInvitation(invitations ports.InvitationRepository, entities ports.EntityRepository, groups *access.Manager, tx ports.TxManager) *AcceptInvitation {
	return &AcceptInvitation{invitations: invitations, entities: entities, groups: groups, tx: tx}
}

func (uc *AcceptInvitation) Execute(ctx context.Context, id domain.InvitationID, user domain.UserID) error {
	return uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		inv, err := uc.invitations.Get(ctx, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return domerrors.ErrInvitationNotFound
		}
		if inv.Accepted {
			return domerrors.ErrAlreadyAccepted
		}
		entity, err := uc.entities.Get(ctx, inv.EntityID)
		if err != nil {
			return err
		}
		if entity == nil {
			return domerrors.ErrEntityNotFound
		}
		group, err := uc.groups.GroupFor(ctx, entity, inv.Role)
		if err != nil {
			return err
		}
		if err := uc.groups.AddMember(ctx, group, user); err != nil {
			return err
		}
		won, err := uc.invitations.MarkAccepted(ctx, inv.ID)
		if err != nil {
			return err
		}
		if !won {
			// A concurrent accept flipped the flag first; roll back the
			// membership grant.
			return domerrors.ErrAlreadyAccepted
		}
		return nil
	})
}
