package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskapp/internal/config"
	"github.com/phrazzld/taskapp/internal/events"
	"github.com/phrazzld/taskapp/internal/imaging"
	"github.com/phrazzld/taskapp/internal/notify"
	"github.com/phrazzld/taskapp/internal/platform/mail"
	"github.com/phrazzld/taskapp/internal/platform/postgres"
	"github.com/phrazzld/taskapp/internal/service"
	"github.com/phrazzld/taskapp/internal/service/auth"
	"github.com/phrazzld/taskapp/internal/store"
)

// imageSize is the edge length, in pixels, of stored task images and avatars.
const imageSize = 250

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userService service.UserService
	taskService service.TaskService

	emitter  *events.InMemoryEventEmitter
	notifier *notify.Notifier
}

// infrastructure is what newApplication builds from the database and the
// mail configuration. Tests substitute it.
type infrastructure struct {
	userStore store.UserStore
	taskStore store.TaskStore
	sender    mail.Sender
}

// newApplication wires the Postgres stores and the configured mail sender
// into a ready application.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	return assembleApplication(cfg, logger, db, infrastructure{
		userStore: postgres.NewPostgresUserStore(db, logger),
		taskStore: postgres.NewPostgresTaskStore(db, logger),
		sender:    mail.NewSender(cfg.Mail, logger),
	})
}

// assembleApplication creates services over infra and starts the notifier.
func assembleApplication(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	infra infrastructure,
) (*application, error) {
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	hasher := auth.NewBcrypt(cfg.Auth.BcryptCost)
	resizer := imaging.NewResizer(imageSize, imageSize, logger)

	notifier := notify.NewNotifier(infra.sender, notify.Config{
		QueueSize:   cfg.Mail.QueueSize,
		WorkerCount: cfg.Mail.WorkerCount,
	}, logger)
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(notifier)

	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		userService: service.NewUserService(service.UserServiceDeps{
			UserStore: infra.userStore,
			Tokens:    jwtService,
			Hasher:    hasher,
			Verifier:  hasher,
			Emitter:   emitter,
			Images:    resizer,
			DB:        db,
			Logger:    logger,
		}),
		taskService: service.NewTaskService(infra.taskStore, resizer, db, logger),
		emitter:     emitter,
		notifier:    notifier,
	}

	notifier.Start()
	return app, nil
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup drains pending mail and closes the database.
func (app *application) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout())
	defer cancel()

	if app.notifier != nil {
		if err := app.notifier.Stop(ctx); err != nil {
			app.logger.Warn("notifier did not drain before shutdown", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
}

func (app *application) shutdownTimeout() time.Duration {
	seconds := app.config.Server.ShutdownTimeoutSeconds
	if seconds <= 0 {
		seconds = 10
	}
	return time.Duration(seconds) * time.Second
}
