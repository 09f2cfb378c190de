package task

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davidrzs/Timeboard/internal/shared/domain"
)

var (
	ErrEmptyTitle          = errors.New("task title cannot be empty")
	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskAlreadyComplete = errors.New("task is already completed")
	ErrInvalidSchedule     = errors.New("scheduled end must be after start")
)

// Priority ranks tasks for planning. Lower numbers are more urgent;
// zero means unranked and sorts after everything else.
type Priority int

const (
	PriorityNone   Priority = 0
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "none"
	}
}

// SortValue orders priorities for planning, with unranked last.
func (p Priority) SortValue() int {
	if p == PriorityNone {
		return int(PriorityLow) + 1
	}
	return int(p)
}

// Task is a unit of work on the board. Its horizon is derived from the
// due date on demand; its position orders it inside a bucket.
type Task struct {
	domain.BaseAggregateRoot
	userID           uuid.UUID
	projectID        *uuid.UUID
	title            string
	description      string
	dueDate          *time.Time
	priority         Priority
	estimatedMinutes int
	position         int
	completed        bool
	completedAt      *time.Time
	scheduledStart   *time.Time
	scheduledEnd     *time.Time
	rescheduleCount  int
}

// NewTask creates a task for the given user.
func NewTask(userID uuid.UUID, title string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	t := &Task{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(),
		userID:            userID,
		title:             title,
	}
	t.AddDomainEvent(NewTaskCreated(t.ID(), userID, title))
	return t, nil
}

// RehydrateTask rebuilds a task from persisted state.
func RehydrateTask(
	entity domain.BaseEntity,
	userID uuid.UUID,
	projectID *uuid.UUID,
	title, description string,
	dueDate *time.Time,
	priority Priority,
	estimatedMinutes, position int,
	completed bool,
	completedAt, scheduledStart, scheduledEnd *time.Time,
	rescheduleCount int,
) *Task {
	return &Task{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(entity, 0),
		userID:            userID,
		projectID:         projectID,
		title:             title,
		description:       description,
		dueDate:           dueDate,
		priority:          priority,
		estimatedMinutes:  estimatedMinutes,
		position:          position,
		completed:         completed,
		completedAt:       completedAt,
		scheduledStart:    scheduledStart,
		scheduledEnd:      scheduledEnd,
		rescheduleCount:   rescheduleCount,
	}
}

func (t *Task) UserID() uuid.UUID          { return t.userID }
func (t *Task) ProjectID() *uuid.UUID      { return t.projectID }
func (t *Task) Title() string              { return t.title }
func (t *Task) Description() string        { return t.description }
func (t *Task) DueDate() *time.Time        { return t.dueDate }
func (t *Task) Priority() Priority         { return t.priority }
func (t *Task) EstimatedMinutes() int      { return t.estimatedMinutes }
func (t *Task) Position() int              { return t.position }
func (t *Task) IsCompleted() bool          { return t.completed }
func (t *Task) CompletedAt() *time.Time    { return t.completedAt }
func (t *Task) ScheduledStart() *time.Time { return t.scheduledStart }
func (t *Task) ScheduledEnd() *time.Time   { return t.scheduledEnd }
func (t *Task) RescheduleCount() int       { return t.rescheduleCount }

// Horizon derives the task's horizon relative to today.
func (t *Task) Horizon(today time.Time) Horizon {
	return DeriveHorizon(t.dueDate, today)
}

// SetTitle updates the title.
func (t *Task) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	t.title = title
	t.Touch()
	return nil
}

// SetDescription updates the description.
func (t *Task) SetDescription(description string) {
	t.description = strings.TrimSpace(description)
	t.Touch()
}

// SetPriority updates the priority.
func (t *Task) SetPriority(p Priority) {
	t.priority = p
	t.Touch()
}

// SetEstimatedMinutes updates the planning estimate. Zero clears it.
func (t *Task) SetEstimatedMinutes(minutes int) {
	if minutes < 0 {
		minutes = 0
	}
	t.estimatedMinutes = minutes
	t.Touch()
}

// AssignProject moves the task into a project. Nil detaches it.
func (t *Task) AssignProject(projectID *uuid.UUID) {
	t.projectID = projectID
	t.Touch()
}

// SetPosition places the task at an index inside its bucket. Shifting
// the neighbors is the ordering store's job, not the aggregate's.
func (t *Task) SetPosition(position int) {
	if position < 0 {
		position = 0
	}
	t.position = position
	t.Touch()
}

// ApplyDueDate sets the due date and counts the change as a
// postponement when the task ends up due strictly later than before,
// or gains a due date beyond today.
func (t *Task) ApplyDueDate(due *time.Time, today time.Time) {
	if due != nil {
		d := DateOf(*due)
		due = &d
	}
	if isPostponement(t.dueDate, due, today) {
		t.rescheduleCount++
	}
	t.dueDate = due
	t.Touch()
}

// ApplyHorizonMove assigns the anchor due date for the target horizon.
func (t *Task) ApplyHorizonMove(h Horizon, today time.Time) {
	t.ApplyDueDate(DueDateForHorizon(h, today), today)
}

func isPostponement(old, next *time.Time, today time.Time) bool {
	if next == nil {
		return false
	}
	n := DateOf(*next)
	if old == nil {
		return n.After(DateOf(today))
	}
	return n.After(DateOf(*old))
}

// Complete marks the task done.
func (t *Task) Complete() error {
	if t.completed {
		return ErrTaskAlreadyComplete
	}
	now := time.Now().UTC()
	t.completed = true
	t.completedAt = &now
	t.Touch()
	t.AddDomainEvent(NewTaskCompleted(t.ID(), t.userID))
	return nil
}

// Uncomplete reopens a completed task.
func (t *Task) Uncomplete() {
	if !t.completed {
		return
	}
	t.completed = false
	t.completedAt = nil
	t.Touch()
}

// Schedule pins the task to a concrete time slot.
func (t *Task) Schedule(start, end time.Time) error {
	if !end.After(start) {
		return ErrInvalidSchedule
	}
	s, e := start.UTC(), end.UTC()
	t.scheduledStart = &s
	t.scheduledEnd = &e
	t.Touch()
	t.AddDomainEvent(NewTaskScheduled(t.ID(), t.userID, s, e))
	return nil
}

// ClearSchedule removes the scheduled slot.
func (t *Task) ClearSchedule() {
	t.scheduledStart = nil
	t.scheduledEnd = nil
	t.Touch()
}

// RecordMove emits the moved event after the ordering store has placed
// the task.
func (t *Task) RecordMove(bucket Bucket, index int) {
	t.AddDomainEvent(NewTaskMoved(t.ID(), t.userID, bucket, index))
}
