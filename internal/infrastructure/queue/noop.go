package queue

import (
	"context"

	"github.com/ngjiaxun/platter/internal/application/ports"
)

// NoopEnqueuer is a no-op enqueuer when Redis/Asynq is not configured.
type NoopEnqueuer struct{}

func NewNoopEnqueuer() *NoopEnqueuer {
	return &NoopEnqueuer{}
}

func (q *NoopEnqueuer) EnqueueSendInvitation(ctx context.Context, email, entityName, role, invitationID string) error {
	return nil
}

var _ ports.TaskEnqueuer = (*NoopEnqueuer)(nil)
