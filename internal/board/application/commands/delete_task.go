package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/davidrzs/Timeboard/internal/board/domain/task"
	"github.com/davidrzs/Timeboard/internal/shared/application"
)

// DeleteTaskCommand removes a task and compacts the buckets it leaves.
type DeleteTaskCommand struct {
	UserID uuid.UUID
	TaskID uuid.UUID
	// Today overrides the clock, used by tests. Zero means now.
	Today time.Time
}

// DeleteTaskHandler handles deletion.
type DeleteTaskHandler struct {
	tasks  task.Repository
	uow    application.UnitOfWork
	logger *slog.Logger
}

// NewDeleteTaskHandler wires the handler.
func NewDeleteTaskHandler(tasks task.Repository, uow application.UnitOfWork, logger *slog.Logger) *DeleteTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeleteTaskHandler{tasks: tasks, uow: uow, logger: logger}
}

// Handle deletes the task.
func (h *DeleteTaskHandler) Handle(ctx context.Context, cmd DeleteTaskCommand) error {
	today := resolveToday(cmd.Today)

	return application.WithUnitOfWork(ctx, h.uow, func(ctx context.Context) error {
		t, err := h.tasks.FindByID(ctx, cmd.TaskID)
		if err != nil {
			return err
		}
		if t == nil || t.UserID() != cmd.UserID {
			return task.ErrTaskNotFound
		}

		if !t.IsCompleted() {
			for _, f := range occupiedBuckets(t, today) {
				if err := h.tasks.ShiftPositions(ctx, t.UserID(), f, t.Position()+1, -1, t.ID()); err != nil {
					return err
				}
			}
		}
		return h.tasks.Delete(ctx, t.ID())
	})
}
