package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/secretstuffs/internal/auth"
)

type Handler struct {
	store  auth.Store
	mailer auth.Notifier
	now    func() time.Time
	logger *slog.Logger
}

func NewHandler(store auth.Store, mailer auth.Notifier, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		mailer: mailer,
		now:    time.Now,
		logger: logger,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypePurgeResetTokens, h.HandlePurgeResetTokens)
	mux.HandleFunc(TypeSendEmail, h.HandleSendEmail)
}

// HandlePurgeResetTokens removes reset tokens whose expiry has passed.
func (h *Handler) HandlePurgeResetTokens(ctx context.Context, t *asynq.Task) error {
	var payload PurgeResetTokensPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
	}

	before := payload.Before
	if before.IsZero() {
		before = h.now()
	}

	n, err := h.store.ResetTokens().DeleteExpired(ctx, before)
	if err != nil {
		return fmt.Errorf("purging reset tokens: %w", err)
	}

	h.logger.Info("purged expired reset tokens", "count", n, "before", before)
	return nil
}

// HandleSendEmail delivers a queued account email.
func (h *Handler) HandleSendEmail(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	var err error
	switch payload.Kind {
	case EmailVerification:
		err = h.mailer.SendVerificationEmail(ctx, payload.Email, payload.Link)
	case EmailPasswordReset:
		err = h.mailer.SendForgotPasswordEmail(ctx, payload.Email, payload.Link)
	default:
		return fmt.Errorf("unknown email kind %q: %w", payload.Kind, asynq.SkipRetry)
	}
	if err != nil {
		return fmt.Errorf("sending %s email: %w", payload.Kind, err)
	}

	h.logger.Debug("email sent", "kind", payload.Kind)
	return nil
}
