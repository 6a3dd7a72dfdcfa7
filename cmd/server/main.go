package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdugdh24/devmatch-backend/internal/config"
	"github.com/gdugdh24/devmatch-backend/internal/infrastructure/container"
	"github.com/gdugdh24/devmatch-backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "production").Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Server.Env)
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("devmatch stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server exited properly")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) (err error) {
	app, err := container.NewContainer(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			log.Error("error closing application", "error", closeErr)
		}
	}()

	app.StartBackground()

	return app.Server.Run(ctx)
}
