// Package main implements the entry point for the task board API server:
// collaborative task tracking with project invitations and deduplicated
// notifications.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/loujainjnad/taskboard-api/internal/config"
	"github.com/loujainjnad/taskboard-api/internal/events"
	"github.com/loujainjnad/taskboard-api/internal/platform/logger"
	"github.com/loujainjnad/taskboard-api/internal/platform/postgres"
	"github.com/loujainjnad/taskboard-api/internal/scanner"
	"github.com/loujainjnad/taskboard-api/internal/service/auth"
	"github.com/loujainjnad/taskboard-api/internal/service/invite"
	"github.com/loujainjnad/taskboard-api/internal/service/membership"
	"github.com/loujainjnad/taskboard-api/internal/service/notification"
	"github.com/loujainjnad/taskboard-api/internal/service/project"
	"github.com/loujainjnad/taskboard-api/internal/service/task"
	"github.com/loujainjnad/taskboard-api/internal/store"
)

// application bundles the wired dependencies of the running server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore         store.UserStore
	projectStore      store.ProjectStore
	taskStore         store.TaskStore
	inviteStore       store.InviteStore
	notificationStore store.NotificationStore

	jwtService          auth.JWTService
	passwordHasher      auth.PasswordHasher
	inviteService       invite.Service
	taskService         task.Service
	projectService      project.Service
	notificationService notification.Service

	scanner *scanner.Scanner
}

func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.cleanup()

	app.scanner.Start()
	defer app.scanner.Stop()

	if err := app.startHTTPServer(context.Background(), app.setupRouter()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration, connects the database, applies
// migrations and wires every service.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	if err := postgres.RunMigrations(db, appLogger); err != nil {
		return nil, err
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	app := &application{
		config:         cfg,
		logger:         appLogger,
		db:             db,
		jwtService:     jwtService,
		passwordHasher: auth.NewBcryptHasher(cfg.Auth.BcryptCost),
	}

	app.userStore = postgres.NewPostgresUserStore(db, appLogger)
	app.projectStore = postgres.NewPostgresProjectStore(db, appLogger)
	app.taskStore = postgres.NewPostgresTaskStore(db, appLogger)
	app.inviteStore = postgres.NewPostgresInviteStore(db, appLogger)
	app.notificationStore = postgres.NewPostgresNotificationStore(db, appLogger)

	// The emitter couples mutation hooks, the invite ledger and the scanner
	// to the notification dispatcher without direct dependencies.
	emitter := events.NewInMemoryEmitter(appLogger)
	dispatcher := notification.NewDispatcher(app.notificationStore, app.userStore, appLogger)
	emitter.RegisterHandler(dispatcher)

	guard := membership.NewGuard(app.projectStore, appLogger)
	hooks := notification.NewHooks(emitter, appLogger)

	app.inviteService = invite.NewService(
		db, app.inviteStore, app.projectStore, app.userStore, emitter, appLogger)
	app.taskService = task.NewService(app.taskStore, guard, hooks, appLogger)
	app.projectService = project.NewService(app.projectStore, guard, appLogger)
	app.notificationService = notification.NewService(app.notificationStore, appLogger)

	app.scanner = scanner.New(app.taskStore, emitter, cfg.Scanner, appLogger)

	return app, nil
}

// setupDatabase opens the connection pool and verifies connectivity.
func setupDatabase(cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established")
	return db, nil
}

// cleanup releases resources on shutdown.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
	}
}
