// @title			taskdesk API
// @version		1.0
// @description	Task assignment service with assignee notifications.
// @BasePath		/api/v1
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/mtlprog/taskdesk/internal/auth"
	"github.com/mtlprog/taskdesk/internal/config"
	"github.com/mtlprog/taskdesk/internal/database"
	"github.com/mtlprog/taskdesk/internal/handler"
	"github.com/mtlprog/taskdesk/internal/logger"
	"github.com/mtlprog/taskdesk/internal/metrics"
	"github.com/mtlprog/taskdesk/internal/repository"
	"github.com/mtlprog/taskdesk/internal/service"
)

func main() {
	loadEnvFiles()

	app := &cli.App{
		Name:  "taskdesk",
		Usage: "Task assignment and notification service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "json",
				Usage:   "Log format (json, text)",
				EnvVars: []string{"LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:     "database-url",
				Aliases:  []string{"d"},
				Value:    config.DefaultDatabaseURL,
				Usage:    "PostgreSQL database URL",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")), c.String("log-format"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the web server",
				Flags:  serveFlags(),
				Action: runServe,
			},
			{
				Name:  "migrate",
				Usage: "Manage database schema migrations",
				Subcommands: []*cli.Command{
					{
						Name:   "up",
						Usage:  "Apply all pending migrations",
						Action: withPool(database.RunMigrations),
					},
					{
						Name:   "down",
						Usage:  "Roll back the most recent migration",
						Action: withPool(database.RollbackMigration),
					},
					{
						Name:   "status",
						Usage:  "Print migration status",
						Action: withPool(database.MigrationStatus),
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// loadEnvFiles runs before flag parsing so EnvVars see values from .env files.
// Variables already set in the environment win.
func loadEnvFiles() {
	for _, name := range config.EnvFiles {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", name, err)
		}
	}
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Value:   config.DefaultPort,
			Usage:   "HTTP server port",
			EnvVars: []string{"PORT"},
		},
		&cli.StringFlag{
			Name:     "jwt-secret",
			Usage:    "HMAC secret used to sign access tokens",
			EnvVars:  []string{"JWT_SECRET"},
			Required: true,
		},
		&cli.DurationFlag{
			Name:    "jwt-ttl",
			Value:   config.DefaultTokenTTL,
			Usage:   "Access token lifetime",
			EnvVars: []string{"JWT_TTL"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Value:   config.DefaultRedisURL,
			Usage:   "Redis URL for the token revocation list (in-memory when empty)",
			EnvVars: []string{"REDIS_URL"},
		},
		&cli.IntFlag{
			Name:    "db-max-conns",
			Value:   int(database.DefaultPoolOptions.MaxConns),
			Usage:   "Maximum PostgreSQL pool connections",
			EnvVars: []string{"DB_MAX_CONNS"},
		},
		&cli.IntFlag{
			Name:    "notify-buffer",
			Value:   config.DefaultNotifyBuffer,
			Usage:   "Async notification queue size (0 writes inline)",
			EnvVars: []string{"NOTIFY_BUFFER"},
		},
	}
}

func runServe(c *cli.Context) error {
	ctx := c.Context

	port := c.String("port")
	if port == "" {
		port = config.DefaultPort
	}

	tokens, err := auth.NewTokenService(c.String("jwt-secret"), config.DefaultTokenIssuer, c.Duration("jwt-ttl"))
	if err != nil {
		return fmt.Errorf("failed to configure tokens: %w", err)
	}

	poolOpts := database.DefaultPoolOptions
	poolOpts.MaxConns = int32(c.Int("db-max-conns"))
	if poolOpts.MinConns > poolOpts.MaxConns {
		poolOpts.MinConns = poolOpts.MaxConns
	}

	db, err := database.NewWithOptions(ctx, c.String("database-url"), poolOpts)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	redisClient, err := database.NewRedis(ctx, c.String("redis-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	var revoked auth.RevocationList
	if redisClient != nil {
		defer redisClient.Close()
		revoked = auth.NewRedisRevocationList(redisClient)
	} else {
		slog.Warn("redis url not set, token revocation is kept in memory")
		revoked = auth.NewMemoryRevocationList()
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	users := repository.NewUserRepository(db.Pool())
	tasks := repository.NewTaskRepository(db.Pool())
	notifications := repository.NewNotificationRepository(db.Pool())

	notifier := service.NewNotifier(notifications,
		service.WithAsyncBuffer(c.Int("notify-buffer")),
		service.WithNotifierMetrics(m),
	)

	h := handler.New(
		db.Pool(),
		service.NewTaskService(tasks, users, notifier, m),
		service.NewNotificationService(notifications),
		service.NewAuthService(users, tokens, revoked),
		m,
	)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           h.Routes(),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "server_addr", "http://localhost:"+port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		notifier.Close()
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Handlers are gone; flush notifications still queued.
	notifier.Close()

	slog.Info("server stopped")
	return nil
}

// withPool opens the database for a one-shot migration command.
func withPool(run func(context.Context, *pgxpool.Pool) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		ctx := c.Context

		db, err := database.New(ctx, c.String("database-url"))
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		return run(ctx, db.Pool())
	}
}
