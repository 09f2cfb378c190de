package task

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidrzs/Timeboard/internal/shared/domain"
)

const aggregateType = "task"

// TaskCreated is emitted when a task enters the board.
type TaskCreated struct {
	domain.BaseEvent
	TaskID uuid.UUID `json:"task_id"`
	UserID uuid.UUID `json:"user_id"`
	Title  string    `json:"title"`
}

// NewTaskCreated builds the event.
func NewTaskCreated(taskID, userID uuid.UUID, title string) *TaskCreated {
	return &TaskCreated{
		BaseEvent: domain.NewBaseEvent(taskID, aggregateType, "task.created"),
		TaskID:    taskID,
		UserID:    userID,
		Title:     title,
	}
}

// TaskMoved is emitted after the ordering store has placed a task.
type TaskMoved struct {
	domain.BaseEvent
	TaskID     uuid.UUID  `json:"task_id"`
	UserID     uuid.UUID  `json:"user_id"`
	BucketType BucketType `json:"bucket_type"`
	BucketKey  string     `json:"bucket_key"`
	Index      int        `json:"index"`
}

// NewTaskMoved builds the event.
func NewTaskMoved(taskID, userID uuid.UUID, bucket Bucket, index int) *TaskMoved {
	return &TaskMoved{
		BaseEvent:  domain.NewBaseEvent(taskID, aggregateType, "task.moved"),
		TaskID:     taskID,
		UserID:     userID,
		BucketType: bucket.Type,
		BucketKey:  bucket.Key,
		Index:      index,
	}
}

// TaskCompleted is emitted when a task is marked done.
type TaskCompleted struct {
	domain.BaseEvent
	TaskID uuid.UUID `json:"task_id"`
	UserID uuid.UUID `json:"user_id"`
}

// NewTaskCompleted builds the event.
func NewTaskCompleted(taskID, userID uuid.UUID) *TaskCompleted {
	return &TaskCompleted{
		BaseEvent: domain.NewBaseEvent(taskID, aggregateType, "task.completed"),
		TaskID:    taskID,
		UserID:    userID,
	}
}

// TaskScheduled is emitted when a task is pinned to a time slot.
type TaskScheduled struct {
	domain.BaseEvent
	TaskID uuid.UUID `json:"task_id"`
	UserID uuid.UUID `json:"user_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// NewTaskScheduled builds the event.
func NewTaskScheduled(taskID, userID uuid.UUID, start, end time.Time) *TaskScheduled {
	return &TaskScheduled{
		BaseEvent: domain.NewBaseEvent(taskID, aggregateType, "task.scheduled"),
		TaskID:    taskID,
		UserID:    userID,
		Start:     start,
		End:       end,
	}
}
