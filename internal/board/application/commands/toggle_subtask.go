package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/davidrzs/Timeboard/internal/board/domain/task"
	"github.com/davidrzs/Timeboard/internal/shared/application"
)

// ToggleSubtaskCommand flips a subtask's completed flag.
type ToggleSubtaskCommand struct {
	UserID    uuid.UUID
	SubtaskID uuid.UUID
}

// ToggleSubtaskHandler handles subtask completion toggling.
type ToggleSubtaskHandler struct {
	tasks    task.Repository
	subtasks task.SubtaskRepository
	uow      application.UnitOfWork
	logger   *slog.Logger
}

// NewToggleSubtaskHandler wires the handler.
func NewToggleSubtaskHandler(tasks task.Repository, subtasks task.SubtaskRepository, uow application.UnitOfWork, logger *slog.Logger) *ToggleSubtaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ToggleSubtaskHandler{tasks: tasks, subtasks: subtasks, uow: uow, logger: logger}
}

// Handle toggles the subtask.
func (h *ToggleSubtaskHandler) Handle(ctx context.Context, cmd ToggleSubtaskCommand) (*task.Subtask, error) {
	var changed *task.Subtask
	err := application.WithUnitOfWork(ctx, h.uow, func(ctx context.Context) error {
		s, err := findOwnedSubtask(ctx, h.tasks, h.subtasks, cmd.UserID, cmd.SubtaskID)
		if err != nil {
			return err
		}
		s.Toggle()
		changed = s
		return h.subtasks.Save(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	return changed, nil
}
