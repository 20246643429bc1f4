package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"tours-backend/internal/domains/user/job"
	"tours-backend/internal/shared"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	cronSpec  string
}

func NewScheduler(redisOpt asynq.RedisClientOpt, cronSpec string) *Scheduler {
	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		cronSpec:  cronSpec,
	}
}

// RegisterJobs registers every periodic task.
func (s *Scheduler) RegisterJobs() error {
	payload, err := json.Marshal(job.CleanupExpiredResetTokensPayload{})
	if err != nil {
		return err
	}

	entryID, err := s.scheduler.Register(
		s.cronSpec,
		asynq.NewTask(shared.TypeCleanupExpiredResetTok, payload),
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		return fmt.Errorf("register reset token cleanup: %w", err)
	}

	log.Info().
		Str("entry_id", entryID).
		Str("schedule", s.cronSpec).
		Msg("Registered reset token cleanup job")

	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
