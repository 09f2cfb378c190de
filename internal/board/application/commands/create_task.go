package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/davidrzs/Timeboard/internal/board/domain/task"
	"github.com/davidrzs/Timeboard/internal/shared/application"
	"github.com/davidrzs/Timeboard/internal/shared/infrastructure/eventbus"
)

// CreateTaskCommand creates a task at the end of its horizon column.
type CreateTaskCommand struct {
	UserID           uuid.UUID
	Title            string
	Description      string
	DueDate          *time.Time
	Priority         task.Priority
	EstimatedMinutes int
	ProjectID        *uuid.UUID
	// Today overrides the clock, used by tests. Zero means now.
	Today time.Time
}

// CreateTaskHandler handles task creation.
type CreateTaskHandler struct {
	tasks     task.Repository
	uow       application.UnitOfWork
	publisher eventbus.Publisher
	logger    *slog.Logger
}

// NewCreateTaskHandler wires the handler.
func NewCreateTaskHandler(tasks task.Repository, uow application.UnitOfWork, publisher eventbus.Publisher, logger *slog.Logger) *CreateTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreateTaskHandler{tasks: tasks, uow: uow, publisher: publisher, logger: logger}
}

// Handle creates the task and appends it to its horizon bucket.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*task.Task, error) {
	today := resolveToday(cmd.Today)

	t, err := task.NewTask(cmd.UserID, cmd.Title)
	if err != nil {
		return nil, err
	}
	if cmd.Description != "" {
		t.SetDescription(cmd.Description)
	}
	if cmd.Priority != task.PriorityNone {
		t.SetPriority(cmd.Priority)
	}
	if cmd.EstimatedMinutes > 0 {
		t.SetEstimatedMinutes(cmd.EstimatedMinutes)
	}
	if cmd.ProjectID != nil {
		t.AssignProject(cmd.ProjectID)
	}
	if cmd.DueDate != nil {
		t.ApplyDueDate(cmd.DueDate, today)
	}

	err = application.WithUnitOfWork(ctx, h.uow, func(ctx context.Context) error {
		bucket := task.HorizonBucket(t.Horizon(today))
		n, err := h.tasks.CountBucket(ctx, cmd.UserID, bucket.Filter(today))
		if err != nil {
			return err
		}
		t.SetPosition(n)
		return h.tasks.Save(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	publishEvents(ctx, h.publisher, h.logger, t)
	h.logger.Info("task created", "task_id", t.ID(), "horizon", t.Horizon(today))
	return t, nil
}

func resolveToday(today time.Time) time.Time {
	if today.IsZero() {
		return task.DateOf(time.Now())
	}
	return task.DateOf(today)
}

func publishEvents(ctx context.Context, pub eventbus.Publisher, logger *slog.Logger, t *task.Task) {
	if pub == nil {
		t.ClearDomainEvents()
		return
	}
	if err := eventbus.PublishDomainEvents(ctx, pub, t); err != nil {
		logger.Warn("event publish failed", "task_id", t.ID(), "error", err)
	}
}
