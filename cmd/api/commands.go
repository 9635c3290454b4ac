package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"taskmanager/configs"
	v1 "taskmanager/internal/api/v1"
	"taskmanager/internal/config"
	"taskmanager/internal/repository"
	myws "taskmanager/internal/websocket"
	"taskmanager/pkg/logger"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "api",
		Short: "Task manager REST API",
		Long: `Task manager REST API with HTTP Basic authentication.

Configuration is read from .env and the environment:
  APP_PORT, DB_DRIVER (sqlite|postgres|memory), SQLITE_PATH,
  DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME,
  REDIS_HOST, REDIS_PORT, REDIS_PASSWORD, CACHE_TTL,
  BASIC_AUTH_USERNAME, BASIC_AUTH_PASSWORD, BCRYPT_COST,
  RATE_LIMIT_MAX, LOG_DIR`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configs.LoadConfig())
		},
	}

	root.SilenceUsage = true

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), configs.LoadConfig())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create the users and tasks tables",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd.Context(), configs.LoadConfig(), func(ctx context.Context, db *databaseHandle) error {
					if err := repository.CreateTableIfNotExists(ctx, db.DB, db.Dialect); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Tables 'users' and 'tasks' are ready.")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "drop",
			Short: "Drop the users and tasks tables",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd.Context(), configs.LoadConfig(), func(ctx context.Context, db *databaseHandle) error {
					if err := repository.DeleteAllTable(ctx, db.DB); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Tables 'users' and 'tasks' are deleted.")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "create-user <username> <password>",
			Short: "Register a user without going through the API",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, cleanup, err := openStore(cmd.Context(), configs.LoadConfig())
				if err != nil {
					return err
				}
				defer cleanup()
				user, err := store.CreateUser(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "User '%s' is created with id %d.\n", user.Username, user.ID)
				return nil
			},
		},
	)
	return root
}

func runServe(ctx context.Context, cfg configs.Config) error {
	if err := logger.InitLoggers(cfg.LogDir); err != nil {
		return err
	}
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		logger.ErrorLogger.Error("Storage unavailable", zap.Error(err))
		return err
	}
	defer cleanup()
	logger.SystemLogger.Info("Storage ready", zap.String("driver", cfg.DBDriver), zap.Bool("cache", cfg.RedisHost != ""))

	hub := myws.NewHub()
	go hub.Run(ctx)

	deps := config.NewDependencies(store, hub, cfg.BasicAuthUsername, cfg.BasicAuthPassword)
	app := v1.NewApp(deps, hub, cfg.RateLimitMax)

	go func() {
		<-ctx.Done()
		logger.SystemLogger.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.ErrorLogger.Error("Error during shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.AppPort)
	logger.SystemLogger.Info("Application ready", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
		return err
	}
	return nil
}
