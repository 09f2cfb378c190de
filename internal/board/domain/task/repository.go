package task

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists tasks. Implementations join the transaction in
// the context when one is present.
//
// FindByID returns (nil, nil) when the task does not exist.
type Repository interface {
	Save(ctx context.Context, t *Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByBucket returns the bucket's incomplete tasks ordered by
	// position.
	FindByBucket(ctx context.Context, userID uuid.UUID, f Filter) ([]*Task, error)

	// CountBucket counts the bucket's incomplete tasks.
	CountBucket(ctx context.Context, userID uuid.UUID, f Filter) (int, error)

	// ShiftPositions adds delta to the position of every incomplete
	// task in the bucket at position >= minPos, excluding the given
	// task. Pass uuid.Nil to shift all.
	ShiftPositions(ctx context.Context, userID uuid.UUID, f Filter, minPos, delta int, exclude uuid.UUID) error

	// FindDueBy returns incomplete tasks due on or before the date.
	FindDueBy(ctx context.Context, userID uuid.UUID, date time.Time) ([]*Task, error)

	// FindPlannable returns incomplete, unscheduled tasks ordered by
	// due date with undated tasks last, capped at limit.
	FindPlannable(ctx context.Context, userID uuid.UUID, limit int) ([]*Task, error)

	// FindScheduledInRange returns incomplete tasks whose scheduled
	// slot overlaps [from, to).
	FindScheduledInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*Task, error)
}
