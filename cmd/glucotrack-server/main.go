package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/glucotrack/glucotrack/internal/config"
	"github.com/glucotrack/glucotrack/internal/domain/admin"
	"github.com/glucotrack/glucotrack/internal/domain/notification"
	"github.com/glucotrack/glucotrack/internal/domain/patient"
	"github.com/glucotrack/glucotrack/internal/domain/prediction"
	"github.com/glucotrack/glucotrack/internal/domain/user"
	"github.com/glucotrack/glucotrack/internal/platform/auth"
	"github.com/glucotrack/glucotrack/internal/platform/db"
	"github.com/glucotrack/glucotrack/internal/platform/mail"
	"github.com/glucotrack/glucotrack/internal/platform/middleware"
)

func main() {
	root := &cobra.Command{
		Use:   "glucotrack-server",
		Short: "GlucoTrack diabetes-risk tracking API server",
	}
	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := newLogger(cfg)
			return runServer(cfg, logger)
		},
	}
}

func runServer(cfg *config.Config, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	cancel()
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	// repositories
	userRepo := user.NewRepoPG(pool)
	recordRepo := patient.NewRepoPG(pool)
	notificationRepo := notification.NewRepoPG(pool)

	// platform collaborators
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL())
	mailer := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
	gateway := prediction.NewHTTPGateway(cfg.PredictionURL, cfg.GatewayTimeout(), logger)

	dispatcher := prediction.NewDispatcher(notificationRepo, mailer, logger)
	dispatcher.Start()
	defer dispatcher.Close()

	// services
	userSvc := user.NewService(userRepo, issuer)
	recordSvc := patient.NewService(recordRepo)
	notificationSvc := notification.NewService(notificationRepo)
	predictionSvc := prediction.NewService(userRepo, recordRepo, gateway, dispatcher, logger)
	adminSvc := admin.NewService(userRepo, recordRepo)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	api := e.Group("/api/v1")
	user.NewHandler(userSvc).RegisterPublicRoutes(api)

	protected := api.Group("", auth.JWTMiddleware(cfg.JWTSecret))
	user.NewHandler(userSvc).RegisterRoutes(protected)
	patient.NewHandler(recordSvc).RegisterRoutes(protected)
	notification.NewHandler(notificationSvc).RegisterRoutes(protected)
	prediction.NewHandler(predictionSvc).RegisterRoutes(protected)
	admin.NewHandler(adminSvc).RegisterRoutes(protected)

	// graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	var migrationsDir string
	cmd.PersistentFlags().StringVar(&migrationsDir, "dir", "migrations", "directory containing migration files")

	withMigrator := func(fn func(ctx context.Context, m *db.Migrator, logger zerolog.Logger) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			pool, err := db.NewPool(ctx, cfg.DatabaseURL, 2, 1)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()

			return fn(ctx, db.NewMigrator(pool, migrationsDir), logger)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: withMigrator(func(ctx context.Context, m *db.Migrator, logger zerolog.Logger) error {
			applied, err := m.Up(ctx)
			if err != nil {
				return err
			}
			logger.Info().Int("applied", applied).Msg("migrations complete")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: withMigrator(func(ctx context.Context, m *db.Migrator, _ zerolog.Logger) error {
			statuses, err := m.Status(ctx)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied"
				}
				fmt.Printf("%03d  %-30s %s\n", s.Version, s.Name, state)
			}
			return nil
		}),
	})

	return cmd
}
