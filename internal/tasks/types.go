package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypePurgeResetTokens = "maintenance:purge_reset_tokens"
	TypeSendEmail        = "mail:send"
)

// Email kinds carried by SendEmailPayload
const (
	EmailVerification  = "verification"
	EmailPasswordReset = "password_reset"
)

// PurgeResetTokensPayload is empty when scheduled; the handler uses its own clock.
type PurgeResetTokensPayload struct {
	Before time.Time `json:"before,omitempty"`
}

func NewPurgeResetTokensTask() *asynq.Task {
	return asynq.NewTask(TypePurgeResetTokens, nil, asynq.Queue("low"), asynq.MaxRetry(3))
}

// SendEmailPayload contains one outgoing account email
type SendEmailPayload struct {
	Kind  string `json:"kind"`
	Email string `json:"email"`
	Link  string `json:"link"`
}

func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSendEmail, data, asynq.Queue("critical"), asynq.MaxRetry(5), asynq.Timeout(30*time.Second)), nil
}
