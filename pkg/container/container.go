package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"tours-backend/internal/config"
	infraCache "tours-backend/internal/infrastructure/cache"
	"tours-backend/internal/infrastructure/database"
	"tours-backend/internal/infrastructure/email"
	"tours-backend/internal/infrastructure/queue"
	"tours-backend/pkg/cache"
	"tours-backend/pkg/jwt"

	reviewHandler "tours-backend/internal/domains/review/handler"
	reviewRepo "tours-backend/internal/domains/review/repository"
	reviewService "tours-backend/internal/domains/review/service"
	tourHandler "tours-backend/internal/domains/tour/handler"
	tourRepo "tours-backend/internal/domains/tour/repository"
	tourService "tours-backend/internal/domains/tour/service"
	"tours-backend/internal/domains/user"
	userHandler "tours-backend/internal/domains/user/handler"
	userRepo "tours-backend/internal/domains/user/repository"
	userService "tours-backend/internal/domains/user/service"
	"tours-backend/internal/domains/view"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds every long-lived dependency of the API process.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config      *config.Config
	DB          *database.PostgresDB
	Cache       cache.Cache
	JWTManager  *jwt.Manager
	Mailer      email.EmailService
	QueueClient *queue.Client

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	UserRepo   user.Repository
	TourRepo   tourRepo.RepositoryInterface
	ReviewRepo reviewRepo.RepositoryInterface

	// ========================================
	// SERVICE LAYER
	// ========================================
	AuthService   user.AuthService
	UserService   user.Service
	TourService   tourService.ServiceInterface
	ReviewService reviewService.ServiceInterface

	// ========================================
	// HANDLER LAYER
	// ========================================
	AuthHandler   *userHandler.AuthHandler
	UserHandler   *userHandler.UserHandler
	TourHandler   *tourHandler.TourHandler
	ReviewHandler *reviewHandler.ReviewHandler
	ViewHandler   *view.Handler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer builds the dependency graph in order:
// config, infrastructure, repositories, services, handlers.
func NewContainer() (*Container, error) {
	log.Info().Msg("[CONTAINER] Initializing...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Info().Str("env", cfg.App.Environment).Msg("[CONTAINER] Config loaded")

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db

	// ========================================
	// STEP 3: INITIALIZE CACHE AND QUEUE
	// ========================================
	redisCfg := infraCache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	redisCache := infraCache.NewRedisCache(redisCfg)
	if err := redisCache.Connect(ctx); err != nil {
		// the cache and the rate limiter fail open
		log.Warn().Err(err).Msg("[CONTAINER] Redis unavailable, continuing without cache")
	}
	c.Cache = redisCache

	c.QueueClient = queue.NewClient(redisCfg.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	c.Mailer = email.NewSMTPEmailService(email.SMTPConfig{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
		FromName: cfg.Email.FromName,
	})
	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn)

	// ========================================
	// STEP 4-6: REPOSITORIES, SERVICES, HANDLERS
	// ========================================
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Msg("[CONTAINER] Initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool)
	c.TourRepo = tourRepo.NewCachedRepository(tourRepo.NewPostgresRepository(pool), c.Cache)
	c.ReviewRepo = reviewRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	c.AuthService = userService.NewAuthService(c.UserRepo, c.JWTManager, c.Mailer, c.QueueClient)
	c.UserService = userService.NewUserService(c.UserRepo)

	// reviews recompute the tour aggregate through the cached repository so
	// the cached entry is dropped with it
	c.ReviewService = reviewService.NewReviewService(c.ReviewRepo, c.TourRepo, c.UserRepo)
	c.TourService = tourService.NewTourService(c.TourRepo, c.UserRepo, c.ReviewService)
}

func (c *Container) initHandlers() {
	c.AuthHandler = userHandler.NewAuthHandler(c.AuthService, userHandler.CookieConfig{
		ExpiresInDays: c.Config.JWT.CookieExpiresInDays,
		Secure:        c.Config.App.IsProduction(),
	})
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.TourHandler = tourHandler.NewTourHandler(c.TourService)
	c.ReviewHandler = reviewHandler.NewReviewHandler(c.ReviewService)
	c.ViewHandler = view.NewHandler(c.TourService)
}

// ========================================
// HEALTH & CLEANUP
// ========================================

// Health reports the state of each backing service.
func (c *Container) Health(ctx context.Context) map[string]string {
	status := map[string]string{"database": "up", "redis": "up"}
	if err := c.DB.HealthCheck(ctx); err != nil {
		status["database"] = "down"
	}
	if err := c.Cache.Ping(ctx); err != nil {
		status["redis"] = "down"
	}
	return status
}

// Cleanup releases connections; called once on shutdown.
func (c *Container) Cleanup() {
	log.Info().Msg("[CONTAINER] Cleaning up resources...")

	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			log.Warn().Err(err).Msg("[CONTAINER] Failed to close queue client")
		}
	}

	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			log.Warn().Err(err).Msg("[CONTAINER] Failed to close Redis")
		}
	}

	if c.DB != nil {
		_ = c.DB.Close()
	}

	log.Info().Msg("[CONTAINER] Cleanup completed")
}
