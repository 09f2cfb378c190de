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

// UpdateTaskCommand edits task fields. Nil pointers leave a field
// untouched; SetDueDate distinguishes "clear it" from "keep it".
type UpdateTaskCommand struct {
	UserID           uuid.UUID
	TaskID           uuid.UUID
	Title            *string
	Description      *string
	Priority         *task.Priority
	EstimatedMinutes *int
	SetDueDate       bool
	DueDate          *time.Time
	// Today overrides the clock, used by tests. Zero means now.
	Today time.Time
}

// UpdateTaskHandler handles task edits.
type UpdateTaskHandler struct {
	tasks     task.Repository
	uow       application.UnitOfWork
	publisher eventbus.Publisher
	logger    *slog.Logger
}

// NewUpdateTaskHandler wires the handler.
func NewUpdateTaskHandler(tasks task.Repository, uow application.UnitOfWork, publisher eventbus.Publisher, logger *slog.Logger) *UpdateTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpdateTaskHandler{tasks: tasks, uow: uow, publisher: publisher, logger: logger}
}

// Handle applies the edits. Due date changes go through the
// postponement policy on the aggregate.
func (h *UpdateTaskHandler) Handle(ctx context.Context, cmd UpdateTaskCommand) (*task.Task, error) {
	today := resolveToday(cmd.Today)

	var updated *task.Task
	err := application.WithUnitOfWork(ctx, h.uow, func(ctx context.Context) error {
		t, err := h.tasks.FindByID(ctx, cmd.TaskID)
		if err != nil {
			return err
		}
		if t == nil || t.UserID() != cmd.UserID {
			return task.ErrTaskNotFound
		}

		if cmd.Title != nil {
			if err := t.SetTitle(*cmd.Title); err != nil {
				return err
			}
		}
		if cmd.Description != nil {
			t.SetDescription(*cmd.Description)
		}
		if cmd.Priority != nil {
			t.SetPriority(*cmd.Priority)
		}
		if cmd.EstimatedMinutes != nil {
			t.SetEstimatedMinutes(*cmd.EstimatedMinutes)
		}
		if cmd.SetDueDate {
			t.ApplyDueDate(cmd.DueDate, today)
		}

		updated = t
		return h.tasks.Save(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	publishEvents(ctx, h.publisher, h.logger, updated)
	return updated, nil
}
