package ports

import "context"

// TaskEnqueuer enqueues background tasks (Asynq or noop).
type TaskEnqueuer interface {
	EnqueueSendInvitation(ctx context.Context, email, entityName, role, invitationID string) error
}
