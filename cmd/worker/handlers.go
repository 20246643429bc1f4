package main

import (
	"github.com/hibiken/asynq"

	"tours-backend/internal/domains/user/job"
	emailjob "tours-backend/internal/infrastructure/email/job"
	"tours-backend/internal/shared"
	"tours-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	welcome *emailjob.WelcomeEmailHandler
	cleanup *job.CleanupExpiredResetTokenHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		welcome: emailjob.NewWelcomeEmailHandler(c.Mailer),
		cleanup: job.NewCleanupExpiredResetTokenHandler(c.UserRepo),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeSendWelcomeEmail, h.welcome.ProcessTask)
	mux.HandleFunc(shared.TypeCleanupExpiredResetTok, h.cleanup.ProcessTask)
}
