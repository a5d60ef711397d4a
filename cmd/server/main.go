// Package main implements the entry point for the task API server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/phrazzld/taskapp/internal/config"
	"github.com/phrazzld/taskapp/internal/platform/logger"
	"github.com/phrazzld/taskapp/internal/platform/postgres"
	"github.com/spf13/pflag"
)

func main() {
	migrateCmd := pflag.String("migrate", "",
		"run a migration command ("+strings.Join(postgres.MigrationCommands, "|")+") and exit")
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *migrateCmd); err != nil {
		fmt.Fprintf(os.Stderr, "taskapp: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run loads configuration, connects to the database and then either runs a
// migration command or serves HTTP until ctx is canceled.
func run(ctx context.Context, migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"mail_delivery", cfg.Mail.SendGridAPIKey != "")

	db, err := setupAppDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database connection", "error", closeErr)
			}
		}()
		return postgres.Migrate(ctx, db, migrateCmd, log)
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
