package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davidrzs/Timeboard/internal/board/domain/task"
	"github.com/davidrzs/Timeboard/internal/shared/domain"
	"github.com/davidrzs/Timeboard/internal/shared/infrastructure/database"
)

const dateLayout = "2006-01-02"

const taskColumns = `id, user_id, project_id, title, description, due_date,
	priority, estimated_minutes, position, completed, completed_at,
	scheduled_start, scheduled_end, reschedule_count, created_at, updated_at`

// TaskRepository persists tasks through the shared database
// abstraction. It joins the transaction in the context when present.
type TaskRepository struct {
	conn database.Connection
}

// NewTaskRepository creates the repository.
func NewTaskRepository(conn database.Connection) *TaskRepository {
	return &TaskRepository{conn: conn}
}

func (r *TaskRepository) q(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

// Save inserts or updates a task.
func (r *TaskRepository) Save(ctx context.Context, t *task.Task) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	query := r.q(`
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			project_id = excluded.project_id,
			title = excluded.title,
			description = excluded.description,
			due_date = excluded.due_date,
			priority = excluded.priority,
			estimated_minutes = excluded.estimated_minutes,
			position = excluded.position,
			completed = excluded.completed,
			completed_at = excluded.completed_at,
			scheduled_start = excluded.scheduled_start,
			scheduled_end = excluded.scheduled_end,
			reschedule_count = excluded.reschedule_count,
			updated_at = excluded.updated_at
	`)

	_, err := exec.Exec(ctx, query,
		t.ID().String(),
		t.UserID().String(),
		uuidString(t.ProjectID()),
		t.Title(),
		t.Description(),
		dateString(t.DueDate()),
		int(t.Priority()),
		t.EstimatedMinutes(),
		t.Position(),
		boolInt(t.IsCompleted()),
		timeString(t.CompletedAt()),
		timeString(t.ScheduledStart()),
		timeString(t.ScheduledEnd()),
		t.RescheduleCount(),
		t.CreatedAt().Format(time.RFC3339),
		t.UpdatedAt().Format(time.RFC3339),
	)
	return err
}

// FindByID returns a task, or (nil, nil) when it does not exist.
func (r *TaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, r.q(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`), id.String())

	t, err := scanTask(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return t, err
}

// Delete removes a task.
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, r.q(`DELETE FROM tasks WHERE id = ?`), id.String())
	return err
}

// FindByBucket returns the bucket's incomplete tasks by position.
func (r *TaskRepository) FindByBucket(ctx context.Context, userID uuid.UUID, f task.Filter) ([]*task.Task, error) {
	where, args := bucketWhere(f)
	query := r.q(`
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = ? AND completed = 0` + where + `
		ORDER BY position ASC, created_at ASC
	`)
	return r.findMany(ctx, query, append([]any{userID.String()}, args...)...)
}

// CountBucket counts the bucket's incomplete tasks.
func (r *TaskRepository) CountBucket(ctx context.Context, userID uuid.UUID, f task.Filter) (int, error) {
	where, args := bucketWhere(f)
	query := r.q(`SELECT COUNT(*) FROM tasks WHERE user_id = ? AND completed = 0` + where)

	exec := database.ExecutorFromContext(ctx, r.conn)
	var n int
	err := exec.QueryRow(ctx, query, append([]any{userID.String()}, args...)...).Scan(&n)
	return n, err
}

// ShiftPositions adds delta to positions >= minPos within the bucket.
func (r *TaskRepository) ShiftPositions(ctx context.Context, userID uuid.UUID, f task.Filter, minPos, delta int, exclude uuid.UUID) error {
	where, args := bucketWhere(f)
	query := `
		UPDATE tasks SET position = position + ?
		WHERE user_id = ? AND completed = 0 AND position >= ?` + where
	allArgs := append([]any{delta, userID.String(), minPos}, args...)
	if exclude != uuid.Nil {
		query += ` AND id != ?`
		allArgs = append(allArgs, exclude.String())
	}

	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, r.q(query), allArgs...)
	return err
}

// FindDueBy returns incomplete tasks due on or before the date.
func (r *TaskRepository) FindDueBy(ctx context.Context, userID uuid.UUID, date time.Time) ([]*task.Task, error) {
	query := r.q(`
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = ? AND completed = 0
		  AND due_date IS NOT NULL AND due_date <= ?
		ORDER BY due_date ASC, position ASC
	`)
	return r.findMany(ctx, query, userID.String(), task.DateOf(date).Format(dateLayout))
}

// FindPlannable returns incomplete, unscheduled tasks for the planner,
// dated tasks first.
func (r *TaskRepository) FindPlannable(ctx context.Context, userID uuid.UUID, limit int) ([]*task.Task, error) {
	query := r.q(`
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = ? AND completed = 0 AND scheduled_start IS NULL
		ORDER BY CASE WHEN due_date IS NULL THEN 1 ELSE 0 END,
			due_date ASC, position ASC, created_at ASC
		LIMIT ?
	`)
	return r.findMany(ctx, query, userID.String(), limit)
}

// FindScheduledInRange returns incomplete tasks whose slot overlaps
// [from, to).
func (r *TaskRepository) FindScheduledInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*task.Task, error) {
	query := r.q(`
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = ? AND completed = 0
		  AND scheduled_start IS NOT NULL
		  AND scheduled_start < ? AND scheduled_end > ?
		ORDER BY scheduled_start ASC
	`)
	return r.findMany(ctx, query,
		userID.String(),
		to.UTC().Format(time.RFC3339),
		from.UTC().Format(time.RFC3339),
	)
}

func (r *TaskRepository) findMany(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// bucketWhere turns a bucket filter into a WHERE fragment.
func bucketWhere(f task.Filter) (string, []any) {
	if f.ProjectID != nil {
		return " AND project_id = ?", []any{f.ProjectID.String()}
	}
	if f.DueIsNull {
		return " AND due_date IS NULL", nil
	}

	var b strings.Builder
	var args []any
	if f.DueAfter != nil {
		b.WriteString(" AND due_date > ?")
		args = append(args, f.DueAfter.Format(dateLayout))
	}
	if f.DueUntil != nil {
		b.WriteString(" AND due_date <= ?")
		args = append(args, f.DueUntil.Format(dateLayout))
	}
	return b.String(), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*task.Task, error) {
	var (
		id, userID, title, description     string
		projectID, dueDate                 sql.NullString
		completedAt, schedStart, schedEnd  sql.NullString
		priority, estMinutes, position     int
		completed, rescheduleCount         int
		createdAt, updatedAt               string
	)

	err := row.Scan(&id, &userID, &projectID, &title, &description, &dueDate,
		&priority, &estMinutes, &position, &completed, &completedAt,
		&schedStart, &schedEnd, &rescheduleCount, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	taskID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse task id: %w", err)
	}
	owner, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}

	var project *uuid.UUID
	if projectID.Valid {
		p, err := uuid.Parse(projectID.String)
		if err != nil {
			return nil, fmt.Errorf("parse project id: %w", err)
		}
		project = &p
	}

	due, err := parseDate(dueDate)
	if err != nil {
		return nil, err
	}
	done, err := parseTime(completedAt)
	if err != nil {
		return nil, err
	}
	start, err := parseTime(schedStart)
	if err != nil {
		return nil, err
	}
	end, err := parseTime(schedEnd)
	if err != nil {
		return nil, err
	}
	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	updated, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	entity := domain.RehydrateBaseEntity(taskID, created, updated)
	return task.RehydrateTask(entity, owner, project, title, description, due,
		task.Priority(priority), estMinutes, position, completed != 0,
		done, start, end, rescheduleCount), nil
}

func uuidString(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func dateString(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

func timeString(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s.String)
	if err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	return &t, nil
}

func parseTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil, fmt.Errorf("parse time: %w", err)
	}
	t = t.UTC()
	return &t, nil
}
