package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/davidrzs/Timeboard/internal/board/domain/task"
	"github.com/davidrzs/Timeboard/internal/shared/application"
)

// AddSubtaskCommand appends a checklist step to a task.
type AddSubtaskCommand struct {
	UserID uuid.UUID
	TaskID uuid.UUID
	Title  string
}

// AddSubtaskHandler handles subtask creation.
type AddSubtaskHandler struct {
	tasks    task.Repository
	subtasks task.SubtaskRepository
	uow      application.UnitOfWork
	logger   *slog.Logger
}

// NewAddSubtaskHandler wires the handler.
func NewAddSubtaskHandler(tasks task.Repository, subtasks task.SubtaskRepository, uow application.UnitOfWork, logger *slog.Logger) *AddSubtaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AddSubtaskHandler{tasks: tasks, subtasks: subtasks, uow: uow, logger: logger}
}

// Handle creates the subtask at the end of the parent's checklist.
func (h *AddSubtaskHandler) Handle(ctx context.Context, cmd AddSubtaskCommand) (*task.Subtask, error) {
	var created *task.Subtask
	err := application.WithUnitOfWork(ctx, h.uow, func(ctx context.Context) error {
		t, err := h.tasks.FindByID(ctx, cmd.TaskID)
		if err != nil {
			return err
		}
		if t == nil || t.UserID() != cmd.UserID {
			return task.ErrTaskNotFound
		}

		s, err := task.NewSubtask(t.ID(), cmd.Title)
		if err != nil {
			return err
		}
		n, err := h.subtasks.CountByTask(ctx, t.ID())
		if err != nil {
			return err
		}
		s.SetPosition(n)

		created = s
		return h.subtasks.Save(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// findOwnedSubtask loads a subtask and verifies the parent task belongs
// to the user. Ownership failures read as not found.
func findOwnedSubtask(ctx context.Context, tasks task.Repository, subtasks task.SubtaskRepository, userID, subtaskID uuid.UUID) (*task.Subtask, error) {
	s, err := subtasks.FindByID(ctx, subtaskID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, task.ErrSubtaskNotFound
	}

	t, err := tasks.FindByID(ctx, s.TaskID())
	if err != nil {
		return nil, err
	}
	if t == nil || t.UserID() != userID {
		return nil, task.ErrSubtaskNotFound
	}
	return s, nil
}
