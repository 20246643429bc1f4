// Command worker runs the background jobs: welcome emails and the periodic
// reset token cleanup.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	infraCache "tours-backend/internal/infrastructure/cache"
	"tours-backend/pkg/container"
	"tours-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"))

	c, err := container.NewContainer()
	if err != nil {
		log.Fatal().Err(err).Msg("[Container] Failed to initialize")
	}
	defer c.Cleanup()

	cfg := c.Config
	redisOpt := asynq.RedisClientOpt{
		Addr:     infraCache.RedisConfig{Host: cfg.Redis.Host, Port: cfg.Redis.Port}.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	if err := startServices(redisOpt); err != nil {
		log.Fatal().Err(err).Msg("[Startup] Health check failed")
	}

	handlers := initializeHandlers(c)
	srv := setupAsynqServer(redisOpt, cfg.Queue.Concurrency, handlers)
	scheduler := setupScheduler(redisOpt, cfg.Queue.ResetTokenCronSpec)

	waitForShutdown(srv, scheduler)
}

func waitForShutdown(srv *asynqServer, scheduler *asynqScheduler) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("[Shutdown] Gracefully stopping...")
	scheduler.Shutdown()
	srv.Shutdown()
	log.Info().Msg("[Shutdown] Stopped")
}
