package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/davidrzs/Timeboard/internal/board/domain/task"
	sharedApplication "github.com/davidrzs/Timeboard/internal/shared/application"
	"github.com/davidrzs/Timeboard/internal/shared/infrastructure/eventbus"
	"github.com/davidrzs/Timeboard/pkg/observability"
)

// ErrCommitConflict means the board changed between plan generation
// and commit. Nothing is written; the caller regenerates the plan.
var ErrCommitConflict = errors.New("plan no longer matches the board")

// CommitPlanCommand applies a reviewed plan.
type CommitPlanCommand struct {
	Plan *Plan
}

// CommitPlanHandler writes a plan's slots onto the tasks. The commit
// is all or nothing: one conflicting task rolls back every slot.
type CommitPlanHandler struct {
	tasks     task.Repository
	uow       sharedApplication.UnitOfWork
	publisher eventbus.Publisher
	logger    *slog.Logger
	metrics   observability.Metrics
}

// NewCommitPlanHandler creates the handler.
func NewCommitPlanHandler(
	tasks task.Repository,
	uow sharedApplication.UnitOfWork,
	publisher eventbus.Publisher,
	logger *slog.Logger,
) *CommitPlanHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommitPlanHandler{
		tasks:     tasks,
		uow:       uow,
		publisher: publisher,
		logger:    logger,
		metrics:   observability.NoopMetrics{},
	}
}

// SetMetrics swaps the metrics collector, nil restores the no-op.
func (h *CommitPlanHandler) SetMetrics(m observability.Metrics) {
	if m == nil {
		m = observability.NoopMetrics{}
	}
	h.metrics = m
}

// Handle commits the plan.
func (h *CommitPlanHandler) Handle(ctx context.Context, cmd CommitPlanCommand) error {
	plan := cmd.Plan
	if plan == nil || len(plan.Slots) == 0 {
		return nil
	}

	scheduled := make([]*task.Task, 0, len(plan.Slots))
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(ctx context.Context) error {
		for _, slot := range plan.Slots {
			tk, err := h.tasks.FindByID(ctx, slot.TaskID)
			if err != nil {
				return err
			}
			if tk == nil || tk.UserID() != plan.UserID {
				return fmt.Errorf("%w: task %s is gone", ErrCommitConflict, slot.TaskID)
			}
			if tk.IsCompleted() {
				return fmt.Errorf("%w: task %q was completed", ErrCommitConflict, tk.Title())
			}
			if err := tk.Schedule(slot.Start, slot.End); err != nil {
				return err
			}
			if err := h.tasks.Save(ctx, tk); err != nil {
				return err
			}
			scheduled = append(scheduled, tk)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCommitConflict) {
			h.metrics.Counter(observability.MetricPlanConflicts, 1)
		}
		return err
	}
	h.metrics.Counter(observability.MetricPlanCommits, 1)

	for _, tk := range scheduled {
		if h.publisher == nil {
			tk.ClearDomainEvents()
			continue
		}
		if err := eventbus.PublishDomainEvents(ctx, h.publisher, tk); err != nil {
			h.logger.Warn("publish schedule events", "task_id", tk.ID(), "error", err)
		}
	}

	h.logger.Info("plan committed",
		"date", plan.Date.Format("2006-01-02"),
		"slots", len(plan.Slots),
		"unplaced", len(plan.Unplaced),
	)
	return nil
}
