package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/ngjiaxun/platter/internal/application/ports"
)

const (
	TypeSendInvitation = "email:invitation"
)

type TaskEnqueuer struct {
	client *asynq.Client
	log    zerolog.Logger
}

func NewAsynqEnqueuer(redisOpt asynq.RedisClientOpt, log zerolog.Logger) (*TaskEnqueuer, error) {
	client := asynq.NewClient(redisOpt)
	return &TaskEnqueuer{client: client, log: log}, nil
}

func (q *TaskEnqueuer) Close() error {
	return q.client.Close()
}

func (q *TaskEnqueuer) EnqueueSendInvitation(ctx context.Context, email, entityName, role, invitationID string) error {
	payload, _ := json.Marshal(map[string]string{
		"email":         email,
		"entity_name":   entityName,
		"role":          role,
		"invitation_id": invitationID,
	})
	task := asynq.NewTask(TypeSendInvitation, payload)
	_, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		q.log.Warn().Err(err).Str("email", email).Msg("enqueue invitation email failed")
		return err
	}
	return nil
}

var _ ports.TaskEnqueuer = (*TaskEnqueuer)(nil)
