package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/davidrzs/Timeboard/internal/board/domain/task"
	"github.com/davidrzs/Timeboard/internal/shared/application"
	"github.com/davidrzs/Timeboard/internal/shared/infrastructure/eventbus"
)

// MoveTaskCommand places a task at an index inside a bucket. Dropping
// on a horizon column assigns the horizon's anchor due date; dropping
// on a project list assigns the project.
type MoveTaskCommand struct {
	UserID uuid.UUID
	TaskID uuid.UUID
	Target task.Bucket
	Index  int
	// Today overrides the clock, used by tests. Zero means now.
	Today time.Time
}

// MoveTaskHandler is the ordering store: it keeps bucket positions
// contiguous across moves and runs the whole move in one transaction.
type MoveTaskHandler struct {
	tasks     task.Repository
	uow       application.UnitOfWork
	publisher eventbus.Publisher
	logger    *slog.Logger
}

// NewMoveTaskHandler wires the handler.
func NewMoveTaskHandler(tasks task.Repository, uow application.UnitOfWork, publisher eventbus.Publisher, logger *slog.Logger) *MoveTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MoveTaskHandler{tasks: tasks, uow: uow, publisher: publisher, logger: logger}
}

// Handle moves the task. Out-of-range indexes are clamped, an unknown
// task yields task.ErrTaskNotFound.
func (h *MoveTaskHandler) Handle(ctx context.Context, cmd MoveTaskCommand) (*task.Task, error) {
	today := resolveToday(cmd.Today)

	var moved *task.Task
	err := application.WithUnitOfWork(ctx, h.uow, func(ctx context.Context) error {
		t, err := h.tasks.FindByID(ctx, cmd.TaskID)
		if err != nil {
			return err
		}
		if t == nil || t.UserID() != cmd.UserID {
			return task.ErrTaskNotFound
		}

		source, inTarget, err := sourceBucket(t, cmd.Target, today)
		if err != nil {
			return err
		}

		targetFilter := cmd.Target.Filter(today)
		n, err := h.tasks.CountBucket(ctx, cmd.UserID, targetFilter)
		if err != nil {
			return err
		}
		if inTarget && n > 0 {
			n--
		}
		index := clamp(cmd.Index, 0, n)

		// Close the gap the task leaves behind, then open one at the
		// target index. Both shifts exclude the task itself, so a move
		// within one bucket composes correctly.
		if source != nil {
			if err := h.tasks.ShiftPositions(ctx, cmd.UserID, *source, t.Position()+1, -1, t.ID()); err != nil {
				return err
			}
		}
		if err := h.tasks.ShiftPositions(ctx, cmd.UserID, targetFilter, index, 1, t.ID()); err != nil {
			return err
		}

		switch cmd.Target.Type {
		case task.BucketHorizon:
			horizon, ok := cmd.Target.Horizon()
			if !ok {
				return fmt.Errorf("unknown horizon bucket %q", cmd.Target.Key)
			}
			t.ApplyHorizonMove(horizon, today)
		case task.BucketProject:
			projectID, ok := cmd.Target.ProjectID()
			if !ok {
				return fmt.Errorf("invalid project bucket %q", cmd.Target.Key)
			}
			t.AssignProject(&projectID)
		default:
			return fmt.Errorf("unknown bucket type %q", cmd.Target.Type)
		}

		t.SetPosition(index)
		t.RecordMove(cmd.Target, index)
		moved = t
		return h.tasks.Save(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	publishEvents(ctx, h.publisher, h.logger, moved)
	h.logger.Info("task moved",
		"task_id", moved.ID(),
		"bucket_type", cmd.Target.Type,
		"bucket_key", cmd.Target.Key,
		"index", moved.Position(),
	)
	return moved, nil
}

// sourceBucket resolves the bucket of the target's kind the task
// currently occupies, and whether that already is the target.
func sourceBucket(t *task.Task, target task.Bucket, today time.Time) (*task.Filter, bool, error) {
	switch target.Type {
	case task.BucketHorizon:
		current := task.HorizonBucket(t.Horizon(today))
		f := current.Filter(today)
		return &f, current.Key == target.Key, nil
	case task.BucketProject:
		pid := t.ProjectID()
		if pid == nil {
			return nil, false, nil
		}
		current := task.ProjectBucket(*pid)
		f := current.Filter(today)
		return &f, current.Key == target.Key, nil
	default:
		return nil, false, fmt.Errorf("unknown bucket type %q", target.Type)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
