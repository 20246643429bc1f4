package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"tours-backend/internal/domains/user"
)

type CleanupExpiredResetTokensPayload struct {
	Date time.Time `json:"date,omitempty"`
}

// CleanupExpiredResetTokenHandler clears password reset tokens whose expiry
// has passed, so abandoned resets do not linger in the users table.
type CleanupExpiredResetTokenHandler struct {
	userRepo user.Repository
	now      func() time.Time
}

func NewCleanupExpiredResetTokenHandler(userRepo user.Repository) *CleanupExpiredResetTokenHandler {
	return &CleanupExpiredResetTokenHandler{
		userRepo: userRepo,
		now:      time.Now,
	}
}

func (h *CleanupExpiredResetTokenHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload CleanupExpiredResetTokensPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	cutoff := h.now()
	if !payload.Date.IsZero() {
		cutoff = payload.Date
	}

	log.Info().
		Time("cutoff", cutoff).
		Msg("Starting cleanup of expired reset tokens")

	cleared, err := h.userRepo.DeleteExpiredResetTokens(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Cleanup of expired reset tokens failed")
		return err
	}

	log.Info().
		Int64("reset_tokens_cleared", cleared).
		Msg("Expired reset tokens cleaned up")

	return nil
}
