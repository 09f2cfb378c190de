package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/davidrzs/Timeboard/internal/board/domain/task"
	"github.com/davidrzs/Timeboard/internal/shared/domain"
	"github.com/davidrzs/Timeboard/internal/shared/infrastructure/database"
)

const subtaskColumns = `id, task_id, title, completed, position, created_at, updated_at`

// SubtaskRepository persists subtasks through the shared database
// abstraction. It joins the transaction in the context when present.
type SubtaskRepository struct {
	conn database.Connection
}

// NewSubtaskRepository creates the repository.
func NewSubtaskRepository(conn database.Connection) *SubtaskRepository {
	return &SubtaskRepository{conn: conn}
}

func (r *SubtaskRepository) q(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

// Save inserts or updates a subtask.
func (r *SubtaskRepository) Save(ctx context.Context, s *task.Subtask) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	query := r.q(`
		INSERT INTO subtasks (` + subtaskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			completed = excluded.completed,
			position = excluded.position,
			updated_at = excluded.updated_at
	`)

	_, err := exec.Exec(ctx, query,
		s.ID().String(),
		s.TaskID().String(),
		s.Title(),
		boolInt(s.IsCompleted()),
		s.Position(),
		s.CreatedAt().Format(time.RFC3339),
		s.UpdatedAt().Format(time.RFC3339),
	)
	return err
}

// FindByID returns a subtask, or (nil, nil) when it does not exist.
func (r *SubtaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Subtask, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, r.q(`SELECT `+subtaskColumns+` FROM subtasks WHERE id = ?`), id.String())

	s, err := scanSubtask(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return s, err
}

// Delete removes a subtask.
func (r *SubtaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, r.q(`DELETE FROM subtasks WHERE id = ?`), id.String())
	return err
}

// FindByTask returns the task's subtasks in position order.
func (r *SubtaskRepository) FindByTask(ctx context.Context, taskID uuid.UUID) ([]*task.Subtask, error) {
	query := r.q(`
		SELECT ` + subtaskColumns + `
		FROM subtasks
		WHERE task_id = ?
		ORDER BY position ASC, created_at ASC
	`)

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, taskID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subtasks []*task.Subtask
	for rows.Next() {
		s, err := scanSubtask(rows)
		if err != nil {
			return nil, err
		}
		subtasks = append(subtasks, s)
	}
	return subtasks, rows.Err()
}

// CountByTask counts the task's subtasks.
func (r *SubtaskRepository) CountByTask(ctx context.Context, taskID uuid.UUID) (int, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	var n int
	err := exec.QueryRow(ctx, r.q(`SELECT COUNT(*) FROM subtasks WHERE task_id = ?`), taskID.String()).Scan(&n)
	return n, err
}

// ShiftPositions adds delta to positions >= minPos under the task.
func (r *SubtaskRepository) ShiftPositions(ctx context.Context, taskID uuid.UUID, minPos, delta int) error {
	query := r.q(`
		UPDATE subtasks SET position = position + ?
		WHERE task_id = ? AND position >= ?
	`)
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, query, delta, taskID.String(), minPos)
	return err
}

func scanSubtask(row scanner) (*task.Subtask, error) {
	var (
		id, taskID, title    string
		completed, position  int
		createdAt, updatedAt string
	)

	err := row.Scan(&id, &taskID, &title, &completed, &position, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	subtaskID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse subtask id: %w", err)
	}
	parent, err := uuid.Parse(taskID)
	if err != nil {
		return nil, fmt.Errorf("parse task id: %w", err)
	}
	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	updated, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	entity := domain.RehydrateBaseEntity(subtaskID, created, updated)
	return task.RehydrateSubtask(entity, parent, title, completed != 0, position), nil
}
