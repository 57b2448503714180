package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/doimih/mini-crm/internal/audit"
	"github.com/doimih/mini-crm/internal/cache"
	"github.com/doimih/mini-crm/internal/config"
	"github.com/doimih/mini-crm/internal/database"
	appmw "github.com/doimih/mini-crm/internal/middleware"
	"github.com/doimih/mini-crm/internal/modules/emailconfig"
	"github.com/doimih/mini-crm/internal/modules/user"
	"github.com/doimih/mini-crm/internal/notification"
	"github.com/doimih/mini-crm/internal/server"
)

// Options for the CLI.
type Options struct {
	Port int `help:"Port to listen on" short:"p" default:"3000"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
		cfg := config.Load()
		if cfg.JWTSecret == "" {
			logger.Error("JWT_SECRET is not set")
			os.Exit(1)
		}
		logger.Info("configuration loaded", "env", cfg.Server.Env)

		// --- Database & Cache ---
		dbPool := database.NewPostgresPool(cfg.Database.URL)
		hooks.OnStop(dbPool.Close)
		logger.Info("connected to postgres")

		redisClient := cache.NewRedisClient(cfg.Redis.URL)
		hooks.OnStop(func() { _ = redisClient.Close() })
		logger.Info("connected to redis")

		// --- Module Initialization (Bottom-Up) ---
		emailConfigRepo := emailconfig.NewRepository(dbPool)
		mailer := notification.NewMailer(cfg.SMTP, emailConfigRepo, cfg.AppURL, logger)
		auditRepo := audit.NewRepository(dbPool, logger)

		userRepo := user.NewRepository(dbPool)
		userService := user.NewService(&user.Config{
			Repo:   userRepo,
			Logger: logger,
			Config: cfg,
			Mailer: mailer,
			Audit:  auditRepo,
		})

		if err := userService.EnsureSuperadmin(context.Background()); err != nil {
			logger.Error("failed to ensure superadmin", "error", err)
			os.Exit(1)
		}

		limiter := appmw.NewRateLimiter(
			redisClient,
			cfg.RateLimit.Requests,
			time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
			logger,
		)

		router := server.New(server.Deps{
			Config:          cfg,
			Logger:          logger,
			UserService:     userService,
			UserRepo:        userRepo,
			EmailConfigRepo: emailConfigRepo,
			AuditRepo:       auditRepo,
			RateLimiter:     limiter,
		})

		hooks.OnStart(func() {
			logger.Info(fmt.Sprintf("starting server on port %d", options.Port))
			if err := http.ListenAndServe(fmt.Sprintf(":%d", options.Port), router); err != nil {
				logger.Error("server failed to start", "error", err)
				os.Exit(1)
			}
		})
	})
	cli.Run()
}
