package container

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdugdh24/devmatch-backend/internal/config"
	"github.com/gdugdh24/devmatch-backend/internal/delivery/http"
	"github.com/gdugdh24/devmatch-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/devmatch-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/devmatch-backend/internal/infrastructure/database"
	"github.com/gdugdh24/devmatch-backend/internal/infrastructure/email"
	"github.com/gdugdh24/devmatch-backend/internal/infrastructure/realtime"
	"github.com/gdugdh24/devmatch-backend/internal/infrastructure/server"
	"github.com/gdugdh24/devmatch-backend/internal/repository"
	"github.com/gdugdh24/devmatch-backend/internal/repository/memory"
	mongorepo "github.com/gdugdh24/devmatch-backend/internal/repository/mongo"
	"github.com/gdugdh24/devmatch-backend/internal/repository/postgres"
	redisrepo "github.com/gdugdh24/devmatch-backend/internal/repository/redis"
	"github.com/gdugdh24/devmatch-backend/internal/usecase/auth"
	"github.com/gdugdh24/devmatch-backend/internal/usecase/chat"
	"github.com/gdugdh24/devmatch-backend/internal/usecase/feed"
	"github.com/gdugdh24/devmatch-backend/internal/usecase/notification"
	"github.com/gdugdh24/devmatch-backend/internal/usecase/profile"
	"github.com/gdugdh24/devmatch-backend/internal/usecase/request"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Log        *slog.Logger
	DB         *sqlx.DB
	Mongo      *mongo.Client
	Redis      *redis.Client
	Server     *server.Server
	Hub        *realtime.Hub
	Dispatcher *notification.Dispatcher
	Scheduler  *notification.Scheduler
}

// NewContainer creates a new dependency injection container.
// On failure everything opened so far is closed again.
func NewContainer(cfg *config.Config, log *slog.Logger) (c *Container, err error) {
	c = &Container{Config: cfg, Log: log}
	defer func() {
		if err != nil {
			if closeErr := c.Close(); closeErr != nil {
				log.Error("cleanup after failed start", "error", closeErr)
			}
			c = nil
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize databases
	c.DB, err = database.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err = database.Migrate(ctx, c.DB); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	var chatDB *mongo.Database
	c.Mongo, chatDB, err = database.NewMongoDatabase(ctx, &cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mongo: %w", err)
	}

	// Redis is optional; without it chat fan-out and logout revocation stay in-process
	c.Redis, err = database.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}
	if c.Redis == nil {
		log.Warn("REDIS_HOST not set, chat fan-out and session revocation are local to this instance")
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepository(c.DB)
	requestRepo := postgres.NewConnectionRequestRepository(c.DB)
	chatRepo := mongorepo.NewChatRepository(chatDB)
	if err = chatRepo.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create chat indexes: %w", err)
	}

	var sessionRepo repository.SessionRepository = memory.NewSessionRepository()
	var broker realtime.Broker = realtime.NewLocalBroker()
	if c.Redis != nil {
		sessionRepo = redisrepo.NewSessionRepository(c.Redis)
		broker = realtime.NewRedisBroker(c.Redis, log)
	}

	// Notifications
	var sender notification.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		sender, err = email.NewSESSender(cfg.Email.AWSRegion, cfg.Email.FromAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SES: %w", err)
		}
	default:
		sender = email.NewLogSender(log)
	}
	c.Dispatcher = notification.NewDispatcher(
		notification.NewEmailNotifier(sender),
		log,
		cfg.Notification.Workers,
		cfg.Notification.QueueSize,
	)
	c.Scheduler = notification.NewScheduler(
		notification.NewDigestJob(requestRepo, userRepo, c.Dispatcher, log),
		cfg.Notification.DigestInterval,
		log,
	)

	// Realtime
	c.Hub = realtime.NewHub(broker, log)

	// Initialize use cases
	authUseCase := auth.NewAuthUseCase(
		userRepo,
		sessionRepo,
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.ExpiryHours)*time.Hour,
		log,
	)
	profileUseCase := profile.NewProfileUseCase(userRepo, log)
	requestUseCase := request.NewRequestUseCase(requestRepo, userRepo, c.Dispatcher, log)
	feedUseCase := feed.NewFeedUseCase(
		userRepo,
		requestUseCase,
		cfg.Feed.DefaultPageSize,
		cfg.Feed.MaxPageSize,
	)
	chatUseCase := chat.NewChatUseCase(chatRepo, userRepo, requestUseCase, c.Hub, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUseCase, cfg.Server.CookieSecure)
	profileHandler := handler.NewProfileHandler(profileUseCase)
	requestHandler := handler.NewRequestHandler(requestUseCase)
	userHandler := handler.NewUserHandler(requestUseCase, feedUseCase)
	chatHandler := handler.NewChatHandler(chatUseCase, c.Hub, cfg.Server.AllowedOrigins, log)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authUseCase)

	// Initialize router
	router := http.NewRouter(
		authHandler,
		profileHandler,
		requestHandler,
		userHandler,
		chatHandler,
		authMiddleware,
		cfg.Server.AllowedOrigins,
		log,
	)

	ginRouter, err := router.Setup()
	if err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}

	c.Server = server.NewServer(&cfg.Server, ginRouter, log)
	return c, nil
}

// StartBackground starts the websocket hub and the digest scheduler
func (c *Container) StartBackground() {
	c.Hub.Run()
	c.Scheduler.Start()
}

// Close stops background work and closes all connections
func (c *Container) Close() error {
	var errs []error

	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	if c.Hub != nil {
		c.Hub.Close()
	}
	if c.Dispatcher != nil {
		c.Dispatcher.Close()
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}

	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Mongo.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close mongo: %w", err))
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
