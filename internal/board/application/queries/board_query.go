package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/davidrzs/Timeboard/internal/board/domain/project"
	"github.com/davidrzs/Timeboard/internal/board/domain/task"
)

// BoardColumn is one horizon column with its ordered tasks.
type BoardColumn struct {
	Horizon task.Horizon
	Tasks   []*task.Task
}

// BoardView is the whole board, columns in display order.
type BoardView struct {
	Date    time.Time
	Columns []BoardColumn
}

// BoardQuery reads the board and project lists.
type BoardQuery struct {
	tasks    task.Repository
	subtasks task.SubtaskRepository
	projects project.Repository
}

// NewBoardQuery wires the query.
func NewBoardQuery(tasks task.Repository, subtasks task.SubtaskRepository, projects project.Repository) *BoardQuery {
	return &BoardQuery{tasks: tasks, subtasks: subtasks, projects: projects}
}

// Board returns every horizon column with its tasks in position order.
func (q *BoardQuery) Board(ctx context.Context, userID uuid.UUID, today time.Time) (*BoardView, error) {
	today = task.DateOf(today)
	view := &BoardView{Date: today}

	for _, h := range task.AllHorizons {
		items, err := q.tasks.FindByBucket(ctx, userID, task.HorizonBucket(h).Filter(today))
		if err != nil {
			return nil, err
		}
		view.Columns = append(view.Columns, BoardColumn{Horizon: h, Tasks: items})
	}
	return view, nil
}

// ProjectTasks returns a project's tasks in position order.
func (q *BoardQuery) ProjectTasks(ctx context.Context, userID, projectID uuid.UUID, today time.Time) ([]*task.Task, error) {
	return q.tasks.FindByBucket(ctx, userID, task.ProjectBucket(projectID).Filter(task.DateOf(today)))
}

// Subtasks returns a task's checklist in position order.
func (q *BoardQuery) Subtasks(ctx context.Context, userID, taskID uuid.UUID) ([]*task.Subtask, error) {
	t, err := q.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil || t.UserID() != userID {
		return nil, task.ErrTaskNotFound
	}
	return q.subtasks.FindByTask(ctx, taskID)
}

// Projects returns the user's projects in position order.
func (q *BoardQuery) Projects(ctx context.Context, userID uuid.UUID) ([]*project.Project, error) {
	return q.projects.FindByUser(ctx, userID)
}
