package tasks

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/hugh/secretstuffs/internal/auth"
)

// Enqueuer is the part of *asynq.Client the notifier needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueNotifier hands account emails to the worker instead of sending them
// inline. A failed enqueue is reported to the caller like a failed send.
type QueueNotifier struct {
	client Enqueuer
}

var _ auth.Notifier = (*QueueNotifier)(nil)

func NewQueueNotifier(client Enqueuer) *QueueNotifier {
	return &QueueNotifier{client: client}
}

func (n *QueueNotifier) SendVerificationEmail(ctx context.Context, email, link string) error {
	return n.enqueue(ctx, SendEmailPayload{Kind: EmailVerification, Email: email, Link: link})
}

func (n *QueueNotifier) SendForgotPasswordEmail(ctx context.Context, email, link string) error {
	return n.enqueue(ctx, SendEmailPayload{Kind: EmailPasswordReset, Email: email, Link: link})
}

func (n *QueueNotifier) enqueue(ctx context.Context, payload SendEmailPayload) error {
	task, err := NewSendEmailTask(payload)
	if err != nil {
		return fmt.Errorf("creating email task: %w", err)
	}
	if _, err := n.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueueing email task: %w", err)
	}
	return nil
}
