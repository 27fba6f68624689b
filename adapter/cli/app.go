package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"github.com/tempora-app/tempora/internal/scheduling/application/commands"
	"github.com/tempora-app/tempora/internal/scheduling/application/preview"
	"github.com/tempora-app/tempora/internal/scheduling/application/queries"
	"github.com/tempora-app/tempora/internal/scheduling/domain"
	"github.com/tempora-app/tempora/internal/scheduling/engine"
	schedpersistence "github.com/tempora-app/tempora/internal/scheduling/infrastructure/persistence"
	"github.com/tempora-app/tempora/internal/shared/application"
	"github.com/tempora-app/tempora/internal/shared/infrastructure/eventbus"
	"github.com/tempora-app/tempora/internal/shared/infrastructure/migrations"
	sharedpersistence "github.com/tempora-app/tempora/internal/shared/infrastructure/persistence"
	"github.com/tempora-app/tempora/pkg/config"
)

// App holds the CLI application dependencies.
type App struct {
	// Preview workflow
	RunPreviewHandler    *commands.RunPreviewHandler
	ApplyPreviewHandler  *commands.ApplyPreviewHandler
	CancelPreviewHandler *commands.CancelPreviewHandler
	RetryPreviewHandler  *commands.RetryPreviewHandler

	// Placement and lifecycle
	PlaceTaskHandler      *commands.PlaceTaskHandler
	SweepMissedHandler    *commands.SweepMissedHandler
	CreateTaskHandler     *commands.CreateTaskHandler
	TransitionTaskHandler *commands.TransitionTaskHandler
	UnscheduleTaskHandler *commands.UnscheduleTaskHandler

	// Queries
	GetScheduleHandler        *queries.GetScheduleHandler
	FindAvailableSlotsHandler *queries.FindAvailableSlotsHandler
	ListTasksHandler          *queries.ListTasksHandler

	// Infrastructure handles, kept for shutdown
	Tasks     domain.TaskRepository
	Blocks    domain.BlockRepository
	Policies  domain.PolicyProvider
	Previews  preview.Store
	Publisher eventbus.Publisher

	EngineConfig engine.Config

	// Current user (configured per environment)
	CurrentUserID uuid.UUID

	db    *sql.DB
	pool  *pgxpool.Pool
	redis *redis.Client
}

// BuildApp assembles the full dependency graph from configuration:
// SQLite or Postgres persistence, in-memory or Redis preview sessions,
// and in-process or RabbitMQ event publishing.
func BuildApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	userID, err := uuid.Parse(cfg.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid TEMPORA_USER_ID: %w", err)
	}

	engineCfg := engine.Config{
		SlotDuration:       cfg.SlotDuration,
		MinChunk:           cfg.MinChunk,
		AutoSplitThreshold: cfg.AutoSplitThreshold,
		MissedGrace:        cfg.MissedGrace,
	}

	app := &App{
		EngineConfig:  engineCfg,
		CurrentUserID: userID,
	}

	var uow application.UnitOfWork

	switch cfg.DatabaseDriver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := migrations.ApplyPostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		app.pool = pool
		app.Tasks = schedpersistence.NewPostgresTaskRepository(pool)
		app.Blocks = schedpersistence.NewPostgresBlockRepository(pool)
		app.Policies = schedpersistence.NewPostgresPolicyRepository(pool)
		uow = sharedpersistence.NewPostgresUnitOfWork(pool)
	default:
		db, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		if err := migrations.ApplySQLite(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		app.db = db
		app.Tasks = schedpersistence.NewSQLiteTaskRepository(db)
		app.Blocks = schedpersistence.NewSQLiteBlockRepository(db)
		app.Policies = schedpersistence.NewSQLitePolicyRepository(db)
		uow = sharedpersistence.NewSQLiteUnitOfWork(db)
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		app.redis = redis.NewClient(opts)
		app.Previews = preview.NewRedisStore(app.redis, cfg.PreviewTTL)
	} else {
		app.Previews = preview.NewMemoryStore()
	}

	if cfg.RabbitMQURL != "" {
		pub, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, log)
		if err != nil {
			return nil, err
		}
		app.Publisher = pub
	} else {
		app.Publisher = eventbus.NewInProcessBus(log)
	}

	app.RunPreviewHandler = commands.NewRunPreviewHandler(app.Tasks, app.Blocks, app.Policies, app.Previews, engineCfg, log)
	app.ApplyPreviewHandler = commands.NewApplyPreviewHandler(app.Tasks, app.Blocks, app.Previews, uow, app.Publisher, log)
	app.CancelPreviewHandler = commands.NewCancelPreviewHandler(app.Previews, app.Publisher, log)
	app.RetryPreviewHandler = commands.NewRetryPreviewHandler(app.RunPreviewHandler, app.CancelPreviewHandler, app.Previews, log)
	app.PlaceTaskHandler = commands.NewPlaceTaskHandler(app.Tasks, app.Blocks, uow, app.Publisher, log)
	app.SweepMissedHandler = commands.NewSweepMissedHandler(app.Tasks, app.Blocks, uow, app.Publisher, engineCfg, log)
	app.CreateTaskHandler = commands.NewCreateTaskHandler(app.Tasks, app.Publisher, log)
	app.TransitionTaskHandler = commands.NewTransitionTaskHandler(app.Tasks, app.Blocks, uow, app.Publisher, log)
	app.UnscheduleTaskHandler = commands.NewUnscheduleTaskHandler(app.Tasks, app.Blocks, uow, app.Publisher, log)

	app.GetScheduleHandler = queries.NewGetScheduleHandler(app.Tasks, app.Blocks)
	app.FindAvailableSlotsHandler = queries.NewFindAvailableSlotsHandler(app.Blocks, app.Policies, engineCfg)
	app.ListTasksHandler = queries.NewListTasksHandler(app.Tasks)

	return app, nil
}

// Close releases all infrastructure handles.
func (a *App) Close() error {
	var firstErr error
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
