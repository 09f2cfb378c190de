// Package app wires configuration, storage, messaging, and the
// application services into one container.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	boardCommands "github.com/davidrzs/Timeboard/internal/board/application/commands"
	boardQueries "github.com/davidrzs/Timeboard/internal/board/application/queries"
	boardWorkers "github.com/davidrzs/Timeboard/internal/board/application/workers"
	boardPersistence "github.com/davidrzs/Timeboard/internal/board/infrastructure/persistence"
	calendarApp "github.com/davidrzs/Timeboard/internal/calendar/application"
	calendarQueries "github.com/davidrzs/Timeboard/internal/calendar/application/queries"
	calendarWorkers "github.com/davidrzs/Timeboard/internal/calendar/application/workers"
	calendarPersistence "github.com/davidrzs/Timeboard/internal/calendar/infrastructure/persistence"
	"github.com/davidrzs/Timeboard/internal/calendar/infrastructure/redislease"
	calendarSetup "github.com/davidrzs/Timeboard/internal/calendar/setup"
	schedulingApp "github.com/davidrzs/Timeboard/internal/scheduling/application"
	schedulingPersistence "github.com/davidrzs/Timeboard/internal/scheduling/infrastructure/persistence"
	"github.com/davidrzs/Timeboard/internal/shared/infrastructure/database"
	_ "github.com/davidrzs/Timeboard/internal/shared/infrastructure/database/postgres"
	_ "github.com/davidrzs/Timeboard/internal/shared/infrastructure/database/sqlite"
	"github.com/davidrzs/Timeboard/internal/shared/infrastructure/eventbus"
	"github.com/davidrzs/Timeboard/internal/shared/infrastructure/migrations"
	"github.com/davidrzs/Timeboard/pkg/config"
	"github.com/davidrzs/Timeboard/pkg/observability"
)

// Container holds the wired application. SQLite with in-process
// defaults needs no external services; postgres, RabbitMQ, and Redis
// switch on through configuration.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	UserID  uuid.UUID
	Metrics observability.Metrics
	Health  *observability.HealthRegistry

	conn      database.Connection
	publisher eventbus.Publisher
	redis     *redis.Client

	// Board
	TaskRepo      *boardPersistence.TaskRepository
	SubtaskRepo   *boardPersistence.SubtaskRepository
	ProjectRepo   *boardPersistence.ProjectRepository
	CreateTask    *boardCommands.CreateTaskHandler
	UpdateTask    *boardCommands.UpdateTaskHandler
	MoveTask      *boardCommands.MoveTaskHandler
	CompleteTask  *boardCommands.CompleteTaskHandler
	DeleteTask    *boardCommands.DeleteTaskHandler
	AddSubtask    *boardCommands.AddSubtaskHandler
	ToggleSubtask *boardCommands.ToggleSubtaskHandler
	DeleteSubtask *boardCommands.DeleteSubtaskHandler
	CreateProject *boardCommands.CreateProjectHandler
	Board         *boardQueries.BoardQuery
	Reminders     *boardWorkers.ReminderWorker

	// Calendar
	SyncStateRepo *calendarPersistence.SyncStateRepository
	EventRepo     *calendarPersistence.EventRepository
	SyncEngine    *calendarApp.SyncEngine
	Events        *calendarQueries.EventsQuery
	SyncWorker    *calendarWorkers.SyncWorker

	// Scheduling
	WindowRepo *schedulingPersistence.WindowRepository
	Planner    *schedulingApp.Planner
	CommitPlan *schedulingApp.CommitPlanHandler
}

// NewContainer builds the application from configuration, opening the
// database and running migrations.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	userID, err := uuid.Parse(cfg.UserID)
	if err != nil {
		return nil, fmt.Errorf("parse TIMEBOARD_USER_ID: %w", err)
	}

	conn, err := database.NewConnection(ctx, database.Config{
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := migrations.Run(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		UserID:  userID,
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
		conn:    conn,
	}
	c.Health.Register("database", observability.DatabaseHealthChecker(conn.Ping))

	if err := c.initMessaging(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	c.initBoard()
	c.initCalendar()
	c.initScheduling()
	return c, nil
}

// Ping checks the database connection.
func (c *Container) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// Close releases the container's external resources.
func (c *Container) Close() {
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			c.Logger.Warn("close publisher", "error", err)
		}
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.Logger.Warn("close redis", "error", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.Logger.Warn("close database", "error", err)
		}
	}
}

func (c *Container) initMessaging(ctx context.Context) error {
	if c.Config.RabbitMQURL != "" {
		pub, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		c.publisher = pub
	} else {
		c.publisher = eventbus.NewLogPublisher(c.Logger)
	}

	if c.Config.RedisURL != "" {
		opts, err := redis.ParseURL(c.Config.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		c.redis = client
		c.Health.Register("redis", observability.RedisHealthChecker(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}))
	}
	return nil
}

func (c *Container) initBoard() {
	c.TaskRepo = boardPersistence.NewTaskRepository(c.conn)
	c.SubtaskRepo = boardPersistence.NewSubtaskRepository(c.conn)
	c.ProjectRepo = boardPersistence.NewProjectRepository(c.conn)
	uow := database.NewUnitOfWork(c.conn)

	c.CreateTask = boardCommands.NewCreateTaskHandler(c.TaskRepo, uow, c.publisher, c.Logger)
	c.UpdateTask = boardCommands.NewUpdateTaskHandler(c.TaskRepo, uow, c.publisher, c.Logger)
	c.MoveTask = boardCommands.NewMoveTaskHandler(c.TaskRepo, uow, c.publisher, c.Logger)
	c.CompleteTask = boardCommands.NewCompleteTaskHandler(c.TaskRepo, uow, c.publisher, c.Logger)
	c.DeleteTask = boardCommands.NewDeleteTaskHandler(c.TaskRepo, uow, c.Logger)
	c.AddSubtask = boardCommands.NewAddSubtaskHandler(c.TaskRepo, c.SubtaskRepo, uow, c.Logger)
	c.ToggleSubtask = boardCommands.NewToggleSubtaskHandler(c.TaskRepo, c.SubtaskRepo, uow, c.Logger)
	c.DeleteSubtask = boardCommands.NewDeleteSubtaskHandler(c.TaskRepo, c.SubtaskRepo, uow, c.Logger)
	c.CreateProject = boardCommands.NewCreateProjectHandler(c.ProjectRepo, uow, c.Logger)
	c.Board = boardQueries.NewBoardQuery(c.TaskRepo, c.SubtaskRepo, c.ProjectRepo)
	c.Reminders = boardWorkers.NewReminderWorker(c.TaskRepo, &boardWorkers.LogSender{Logger: c.Logger}, c.UserID, c.Logger)
}

func (c *Container) initCalendar() {
	c.SyncStateRepo = calendarPersistence.NewSyncStateRepository(c.conn)
	c.EventRepo = calendarPersistence.NewEventRepository(c.conn)
	c.Events = calendarQueries.NewEventsQuery(c.SyncStateRepo, c.EventRepo)

	provider := calendarSetup.NewProvider(c.Config, c.Logger)
	if provider == nil {
		c.Logger.Debug("no calendar provider configured, sync disabled")
		return
	}

	var lease calendarApp.Lease = calendarApp.NewLocalLeaser()
	if c.redis != nil {
		lease = redislease.NewLeaser(c.redis, c.Logger)
	}

	syncCfg := calendarApp.SyncConfig{
		WindowPast:     c.Config.SyncWindowPast,
		WindowFuture:   c.Config.SyncWindowFuture,
		StaleThreshold: c.Config.SyncStaleThreshold,
		LeaseTTL:       calendarApp.DefaultSyncConfig().LeaseTTL,
		MaxErrors:      calendarApp.DefaultSyncConfig().MaxErrors,
		Concurrency:    calendarApp.DefaultSyncConfig().Concurrency,
	}
	uow := database.NewUnitOfWork(c.conn)
	c.SyncEngine = calendarApp.NewSyncEngine(provider, c.SyncStateRepo, c.EventRepo,
		uow, lease, c.publisher, c.Logger, syncCfg)
	c.SyncEngine.SetMetrics(c.Metrics)

	workerCfg := calendarWorkers.DefaultSyncWorkerConfig()
	workerCfg.Interval = c.Config.SyncInterval
	workerCfg.StaleThreshold = c.Config.SyncStaleThreshold
	c.SyncWorker = calendarWorkers.NewSyncWorker(c.SyncEngine, c.SyncStateRepo, workerCfg, c.Logger)
}

func (c *Container) initScheduling() {
	c.WindowRepo = schedulingPersistence.NewWindowRepository(c.conn)
	uow := database.NewUnitOfWork(c.conn)

	planCfg := schedulingApp.PlanConfig{
		BufferMinutes:      c.Config.PlanBufferMinutes,
		DefaultTaskMinutes: c.Config.PlanDefaultTaskMinutes,
		MaxTasks:           c.Config.PlanMaxTasks,
	}

	var fresh schedulingApp.Freshener
	if c.SyncEngine != nil {
		fresh = c.SyncEngine
	}
	c.Planner = schedulingApp.NewPlanner(c.TaskRepo, c.WindowRepo, c.Events, fresh, c.Logger, planCfg)
	c.Planner.SetMetrics(c.Metrics)
	c.CommitPlan = schedulingApp.NewCommitPlanHandler(c.TaskRepo, uow, c.publisher, c.Logger)
	c.CommitPlan.SetMetrics(c.Metrics)
}
