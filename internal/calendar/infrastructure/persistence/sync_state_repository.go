package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/davidrzs/Timeboard/internal/calendar/domain"
	"github.com/davidrzs/Timeboard/internal/shared/infrastructure/database"
)

const syncStateColumns = `id, user_id, calendar_id, name, color, enabled,
	sync_cursor, last_synced_at, sync_errors, last_error, created_at, updated_at`

// SyncStateRepository persists per-calendar sync state through the
// shared database abstraction.
type SyncStateRepository struct {
	conn database.Connection
}

// NewSyncStateRepository creates the repository.
func NewSyncStateRepository(conn database.Connection) *SyncStateRepository {
	return &SyncStateRepository{conn: conn}
}

func (r *SyncStateRepository) q(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

// Save inserts or updates a sync state.
func (r *SyncStateRepository) Save(ctx context.Context, state *domain.SyncState) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	query := r.q(`
		INSERT INTO calendar_sync_states (` + syncStateColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, calendar_id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color,
			enabled = excluded.enabled,
			sync_cursor = excluded.sync_cursor,
			last_synced_at = excluded.last_synced_at,
			sync_errors = excluded.sync_errors,
			last_error = excluded.last_error,
			updated_at = excluded.updated_at
	`)

	_, err := exec.Exec(ctx, query,
		state.ID().String(),
		state.UserID().String(),
		state.CalendarID(),
		state.Name(),
		state.Color(),
		boolInt(state.Enabled()),
		state.Cursor(),
		nullableTime(state.LastSyncedAt()),
		state.SyncErrors(),
		state.LastError(),
		state.CreatedAt().Format(time.RFC3339),
		state.UpdatedAt().Format(time.RFC3339),
	)
	return err
}

// FindByUserAndCalendar returns a state, or (nil, nil) when absent.
func (r *SyncStateRepository) FindByUserAndCalendar(ctx context.Context, userID uuid.UUID, calendarID string) (*domain.SyncState, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx,
		r.q(`SELECT `+syncStateColumns+` FROM calendar_sync_states WHERE user_id = ? AND calendar_id = ?`),
		userID.String(), calendarID)

	state, err := scanSyncState(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return state, err
}

// FindByUser returns the user's sync states ordered by name.
func (r *SyncStateRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*domain.SyncState, error) {
	query := r.q(`
		SELECT ` + syncStateColumns + `
		FROM calendar_sync_states
		WHERE user_id = ?
		ORDER BY name ASC, calendar_id ASC
	`)
	return r.findMany(ctx, query, userID.String())
}

// FindPendingSync returns enabled states not synced within olderThan,
// oldest first. Never-synced states sort before everything else.
func (r *SyncStateRepository) FindPendingSync(ctx context.Context, olderThan time.Duration, limit int) ([]*domain.SyncState, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	query := r.q(`
		SELECT ` + syncStateColumns + `
		FROM calendar_sync_states
		WHERE enabled = 1 AND (last_synced_at IS NULL OR last_synced_at <= ?)
		ORDER BY last_synced_at IS NOT NULL, last_synced_at ASC
		LIMIT ?
	`)
	return r.findMany(ctx, query, cutoff, limit)
}

// Delete removes a sync state.
func (r *SyncStateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, r.q(`DELETE FROM calendar_sync_states WHERE id = ?`), id.String())
	return err
}

func (r *SyncStateRepository) findMany(ctx context.Context, query string, args ...any) ([]*domain.SyncState, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []*domain.SyncState
	for rows.Next() {
		state, err := scanSyncState(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, rows.Err()
}

func scanSyncState(row scanner) (*domain.SyncState, error) {
	var (
		id, userID, calendarID, name string
		color, cursor, lastError     sql.NullString
		lastSyncedAt                 sql.NullString
		enabled, syncErrors          int
		createdAt, updatedAt         string
	)

	err := row.Scan(&id, &userID, &calendarID, &name, &color, &enabled,
		&cursor, &lastSyncedAt, &syncErrors, &lastError, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	stateID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse sync state id: %w", err)
	}
	owner, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}

	synced, err := parseTimeValue(lastSyncedAt)
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

	return domain.RehydrateSyncState(stateID, owner, calendarID, name,
		color.String, enabled != 0, cursor.String, synced,
		syncErrors, lastError.String, created, updated), nil
}
