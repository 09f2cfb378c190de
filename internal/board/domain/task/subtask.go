package task

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/davidrzs/Timeboard/internal/shared/domain"
)

var (
	ErrEmptySubtaskTitle = errors.New("subtask title cannot be empty")
	ErrSubtaskNotFound   = errors.New("subtask not found")
)

// Subtask is a checklist step under a task. It orders by position
// within its parent and has no horizon or schedule of its own.
type Subtask struct {
	domain.BaseEntity
	taskID    uuid.UUID
	title     string
	completed bool
	position  int
}

// NewSubtask creates a subtask under the given task.
func NewSubtask(taskID uuid.UUID, title string) (*Subtask, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptySubtaskTitle
	}
	return &Subtask{
		BaseEntity: domain.NewBaseEntity(),
		taskID:     taskID,
		title:      title,
	}, nil
}

// RehydrateSubtask rebuilds a subtask from persisted state.
func RehydrateSubtask(entity domain.BaseEntity, taskID uuid.UUID, title string, completed bool, position int) *Subtask {
	return &Subtask{
		BaseEntity: entity,
		taskID:     taskID,
		title:      title,
		completed:  completed,
		position:   position,
	}
}

func (s *Subtask) TaskID() uuid.UUID { return s.taskID }
func (s *Subtask) Title() string     { return s.title }
func (s *Subtask) IsCompleted() bool { return s.completed }
func (s *Subtask) Position() int     { return s.position }

// SetTitle updates the title.
func (s *Subtask) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptySubtaskTitle
	}
	s.title = title
	s.Touch()
	return nil
}

// Toggle flips the completed flag.
func (s *Subtask) Toggle() {
	s.completed = !s.completed
	s.Touch()
}

// SetPosition orders the subtask among its siblings.
func (s *Subtask) SetPosition(position int) {
	if position < 0 {
		position = 0
	}
	s.position = position
	s.Touch()
}

// SubtaskRepository persists subtasks. Implementations join the
// transaction in the context when one is present.
//
// FindByID returns (nil, nil) when the subtask does not exist.
type SubtaskRepository interface {
	Save(ctx context.Context, s *Subtask) error
	FindByID(ctx context.Context, id uuid.UUID) (*Subtask, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByTask returns the task's subtasks ordered by position.
	FindByTask(ctx context.Context, taskID uuid.UUID) ([]*Subtask, error)

	// CountByTask counts the task's subtasks.
	CountByTask(ctx context.Context, taskID uuid.UUID) (int, error)

	// ShiftPositions adds delta to the position of every subtask of the
	// task at position >= minPos.
	ShiftPositions(ctx context.Context, taskID uuid.UUID, minPos, delta int) error
}
