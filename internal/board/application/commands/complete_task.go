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

// CompleteTaskCommand marks a task done and compacts the buckets it
// leaves. Undo reopens it at the end of its horizon column.
type CompleteTaskCommand struct {
	UserID uuid.UUID
	TaskID uuid.UUID
	Undo   bool
	// Today overrides the clock, used by tests. Zero means now.
	Today time.Time
}

// CompleteTaskHandler handles completion and undo.
type CompleteTaskHandler struct {
	tasks     task.Repository
	uow       application.UnitOfWork
	publisher eventbus.Publisher
	logger    *slog.Logger
}

// NewCompleteTaskHandler wires the handler.
func NewCompleteTaskHandler(tasks task.Repository, uow application.UnitOfWork, publisher eventbus.Publisher, logger *slog.Logger) *CompleteTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompleteTaskHandler{tasks: tasks, uow: uow, publisher: publisher, logger: logger}
}

// Handle toggles completion.
func (h *CompleteTaskHandler) Handle(ctx context.Context, cmd CompleteTaskCommand) (*task.Task, error) {
	today := resolveToday(cmd.Today)

	var changed *task.Task
	err := application.WithUnitOfWork(ctx, h.uow, func(ctx context.Context) error {
		t, err := h.tasks.FindByID(ctx, cmd.TaskID)
		if err != nil {
			return err
		}
		if t == nil || t.UserID() != cmd.UserID {
			return task.ErrTaskNotFound
		}

		if cmd.Undo {
			if err := h.reopen(ctx, t, today); err != nil {
				return err
			}
		} else {
			if err := h.complete(ctx, t, today); err != nil {
				return err
			}
		}

		changed = t
		return h.tasks.Save(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	publishEvents(ctx, h.publisher, h.logger, changed)
	return changed, nil
}

func (h *CompleteTaskHandler) complete(ctx context.Context, t *task.Task, today time.Time) error {
	if err := t.Complete(); err != nil {
		return err
	}
	// The task leaves its ordered lists; close the gaps behind it.
	for _, f := range occupiedBuckets(t, today) {
		if err := h.tasks.ShiftPositions(ctx, t.UserID(), f, t.Position()+1, -1, t.ID()); err != nil {
			return err
		}
	}
	return nil
}

func (h *CompleteTaskHandler) reopen(ctx context.Context, t *task.Task, today time.Time) error {
	if !t.IsCompleted() {
		return nil
	}
	t.Uncomplete()
	bucket := task.HorizonBucket(t.Horizon(today))
	n, err := h.tasks.CountBucket(ctx, t.UserID(), bucket.Filter(today))
	if err != nil {
		return err
	}
	t.SetPosition(n)
	return nil
}

// occupiedBuckets lists the ordered lists the task currently sits in.
func occupiedBuckets(t *task.Task, today time.Time) []task.Filter {
	filters := []task.Filter{task.HorizonBucket(t.Horizon(today)).Filter(today)}
	if pid := t.ProjectID(); pid != nil {
		filters = append(filters, task.ProjectBucket(*pid).Filter(today))
	}
	return filters
}
