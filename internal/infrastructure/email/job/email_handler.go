package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"tours-backend/internal/infrastructure/email"
)

// ============================================
// Welcome Email Handler
// ============================================

type WelcomeEmailHandler struct {
	emailService email.EmailService
}

func NewWelcomeEmailHandler(emailService email.EmailService) *WelcomeEmailHandler {
	return &WelcomeEmailHandler{
		emailService: emailService,
	}
}

func (h *WelcomeEmailHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload email.WelcomePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal WelcomeEmail payload")
		// a malformed payload will never succeed
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	log.Info().
		Str("email", payload.Email).
		Msg("Processing welcome email")

	if err := h.emailService.Send(ctx, email.WelcomeEmail(payload)); err != nil {
		log.Error().Err(err).Msg("Failed to send welcome email")
		return fmt.Errorf("send welcome email: %w", err)
	}

	log.Info().
		Str("email", payload.Email).
		Msg("Welcome email sent successfully")

	return nil
}
