package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/davidrzs/Timeboard/internal/board/domain/task"
	"github.com/davidrzs/Timeboard/internal/shared/application"
)

// DeleteSubtaskCommand removes a subtask and closes the gap it leaves.
type DeleteSubtaskCommand struct {
	UserID    uuid.UUID
	SubtaskID uuid.UUID
}

// DeleteSubtaskHandler handles subtask deletion.
type DeleteSubtaskHandler struct {
	tasks    task.Repository
	subtasks task.SubtaskRepository
	uow      application.UnitOfWork
	logger   *slog.Logger
}

// NewDeleteSubtaskHandler wires the handler.
func NewDeleteSubtaskHandler(tasks task.Repository, subtasks task.SubtaskRepository, uow application.UnitOfWork, logger *slog.Logger) *DeleteSubtaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeleteSubtaskHandler{tasks: tasks, subtasks: subtasks, uow: uow, logger: logger}
}

// Handle deletes the subtask and compacts the checklist positions.
func (h *DeleteSubtaskHandler) Handle(ctx context.Context, cmd DeleteSubtaskCommand) error {
	return application.WithUnitOfWork(ctx, h.uow, func(ctx context.Context) error {
		s, err := findOwnedSubtask(ctx, h.tasks, h.subtasks, cmd.UserID, cmd.SubtaskID)
		if err != nil {
			return err
		}
		if err := h.subtasks.Delete(ctx, s.ID()); err != nil {
			return err
		}
		return h.subtasks.ShiftPositions(ctx, s.TaskID(), s.Position()+1, -1)
	})
}
