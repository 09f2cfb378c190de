package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/davidrzs/Timeboard/internal/scheduling/domain"
	"github.com/davidrzs/Timeboard/internal/shared/infrastructure/database"
)

const windowColumns = `id, user_id, weekday, start_minute, end_minute, position, created_at, updated_at`

// WindowRepository persists planning windows through the shared
// database abstraction.
type WindowRepository struct {
	conn database.Connection
}

// NewWindowRepository creates the repository.
func NewWindowRepository(conn database.Connection) *WindowRepository {
	return &WindowRepository{conn: conn}
}

func (r *WindowRepository) q(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

// Save inserts or updates a window.
func (r *WindowRepository) Save(ctx context.Context, window *domain.Window) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	query := r.q(`
		INSERT INTO scheduling_windows (` + windowColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			weekday = excluded.weekday,
			start_minute = excluded.start_minute,
			end_minute = excluded.end_minute,
			position = excluded.position,
			updated_at = excluded.updated_at
	`)

	_, err := exec.Exec(ctx, query,
		window.ID().String(),
		window.UserID().String(),
		int(window.Weekday()),
		window.StartMinute(),
		window.EndMinute(),
		window.Position(),
		window.CreatedAt().Format(time.RFC3339),
		window.UpdatedAt().Format(time.RFC3339),
	)
	return err
}

// FindByUserAndWeekday returns the weekday's windows by position.
func (r *WindowRepository) FindByUserAndWeekday(ctx context.Context, userID uuid.UUID, weekday time.Weekday) ([]*domain.Window, error) {
	query := r.q(`
		SELECT ` + windowColumns + `
		FROM scheduling_windows
		WHERE user_id = ? AND weekday = ?
		ORDER BY position ASC, start_minute ASC
	`)
	return r.findMany(ctx, query, userID.String(), int(weekday))
}

// FindByUser returns all windows, weekday ascending.
func (r *WindowRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Window, error) {
	query := r.q(`
		SELECT ` + windowColumns + `
		FROM scheduling_windows
		WHERE user_id = ?
		ORDER BY weekday ASC, position ASC, start_minute ASC
	`)
	return r.findMany(ctx, query, userID.String())
}

// ReplaceWeekday swaps a weekday's windows.
func (r *WindowRepository) ReplaceWeekday(ctx context.Context, userID uuid.UUID, weekday time.Weekday, windows []*domain.Window) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	_, err := exec.Exec(ctx,
		r.q(`DELETE FROM scheduling_windows WHERE user_id = ? AND weekday = ?`),
		userID.String(), int(weekday))
	if err != nil {
		return err
	}

	for i, window := range windows {
		window.SetPosition(i)
		if err := r.Save(ctx, window); err != nil {
			return err
		}
	}
	return nil
}

func (r *WindowRepository) findMany(ctx context.Context, query string, args ...any) ([]*domain.Window, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []*domain.Window
	for rows.Next() {
		var (
			id, userID           string
			weekday              int
			startMinute          int
			endMinute, position  int
			createdAt, updatedAt string
		)
		if err := rows.Scan(&id, &userID, &weekday, &startMinute, &endMinute,
			&position, &createdAt, &updatedAt); err != nil {
			return nil, err
		}

		windowID, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse window id: %w", err)
		}
		owner, err := uuid.Parse(userID)
		if err != nil {
			return nil, fmt.Errorf("parse user id: %w", err)
		}
		created, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		updated, err := time.Parse(time.RFC3339, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}

		windows = append(windows, domain.RehydrateWindow(windowID, owner,
			time.Weekday(weekday), startMinute, endMinute, position, created, updated))
	}
	return windows, rows.Err()
}
