package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// invitationPayload matches the JSON enqueued by TaskEnqueuer.EnqueueSendInvitation.
type invitationPayload struct {
	Email        string `json:"email"`
	EntityName   string `json:"entity_name"`
	Role         string `json:"role"`
	InvitationID string `json:"invitation_id"`
}

// Worker runs Asynq task handlers (e.g. send invitation email).
type Worker struct {
	srv *asynq.Server
	mux *asynq.ServeMux
	log zerolog.Logger
}

// NewWorker creates an Asynq server and registers handlers. Call Run() to start.
func NewWorker(redisOpt asynq.RedisClientOpt, log zerolog.Logger) *Worker {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 2,
		LogLevel:    asynq.InfoLevel,
	})
	mux := asynq.NewServeMux()
	w := &Worker{srv: srv, mux: mux, log: log}
	mux.HandleFunc(TypeSendInvitation, w.handleSendInvitation)
	return w
}

func (w *Worker) handleSendInvitation(ctx context.Context, t *asynq.Task) error {
	var p invitationPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		w.log.Error().Err(err).Msg("invitation task payload invalid")
		return err
	}
	// Dev: log the invitation; production would send email via SMTP/sendgrid etc.
	w.log.Info().
		Str("email", p.Email).
		Str("entity_name", p.EntityName).
		Str("role", p.Role).
		Str("invitation_id", p.InvitationID).
		Msg("invitation email (log only; configure SMTP for real email)")
	return nil
}

// Run blocks until shutdown. Use Shutdown for graceful stop.
func (w *Worker) Run() error {
	return w.srv.Run(w.mux)
}

// Shutdown stops the worker.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
