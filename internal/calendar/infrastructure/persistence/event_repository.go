package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davidrzs/Timeboard/internal/calendar/domain"
	"github.com/davidrzs/Timeboard/internal/shared/infrastructure/database"
)

const eventColumns = `id, user_id, calendar_id, external_id, title,
	start_time, end_time, all_day, location, description, status, etag,
	synced_at, created_at, updated_at`

// EventRepository persists the calendar event cache.
type EventRepository struct {
	conn database.Connection
}

// NewEventRepository creates the repository.
func NewEventRepository(conn database.Connection) *EventRepository {
	return &EventRepository{conn: conn}
}

func (r *EventRepository) q(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

// Upsert inserts or updates by (user, calendar, external id) and
// reports whether a new row was created.
func (r *EventRepository) Upsert(ctx context.Context, event *domain.Event) (bool, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	var existing int
	err := exec.QueryRow(ctx,
		r.q(`SELECT COUNT(*) FROM calendar_events WHERE user_id = ? AND calendar_id = ? AND external_id = ?`),
		event.UserID().String(), event.CalendarID(), event.ExternalID(),
	).Scan(&existing)
	if err != nil {
		return false, err
	}

	query := r.q(`
		INSERT INTO calendar_events (` + eventColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, calendar_id, external_id) DO UPDATE SET
			title = excluded.title,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			all_day = excluded.all_day,
			location = excluded.location,
			description = excluded.description,
			status = excluded.status,
			etag = excluded.etag,
			synced_at = excluded.synced_at,
			updated_at = excluded.updated_at
	`)

	_, err = exec.Exec(ctx, query,
		event.ID().String(),
		event.UserID().String(),
		event.CalendarID(),
		event.ExternalID(),
		event.Title(),
		event.Start().UTC().Format(time.RFC3339),
		event.End().UTC().Format(time.RFC3339),
		boolInt(event.IsAllDay()),
		event.Location(),
		event.Description(),
		event.Status(),
		event.ETag(),
		event.SyncedAt().UTC().Format(time.RFC3339),
		event.CreatedAt().Format(time.RFC3339),
		event.UpdatedAt().Format(time.RFC3339),
	)
	if err != nil {
		return false, err
	}
	return existing == 0, nil
}

// DeleteByExternalID removes one cached event. Deleting an absent
// event is a no-op.
func (r *EventRepository) DeleteByExternalID(ctx context.Context, userID uuid.UUID, calendarID, externalID string) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx,
		r.q(`DELETE FROM calendar_events WHERE user_id = ? AND calendar_id = ? AND external_id = ?`),
		userID.String(), calendarID, externalID)
	return err
}

// ReplaceCalendar swaps a calendar's cached events. The caller wraps
// this in a transaction together with the cursor update.
func (r *EventRepository) ReplaceCalendar(ctx context.Context, userID uuid.UUID, calendarID string, events []*domain.Event) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	_, err := exec.Exec(ctx,
		r.q(`DELETE FROM calendar_events WHERE user_id = ? AND calendar_id = ?`),
		userID.String(), calendarID)
	if err != nil {
		return err
	}

	for _, event := range events {
		if _, err := r.Upsert(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// FindByCalendar returns a calendar's cached events by start time.
func (r *EventRepository) FindByCalendar(ctx context.Context, userID uuid.UUID, calendarID string) ([]*domain.Event, error) {
	query := r.q(`
		SELECT ` + eventColumns + `
		FROM calendar_events
		WHERE user_id = ? AND calendar_id = ?
		ORDER BY start_time ASC
	`)
	return r.findMany(ctx, query, userID.String(), calendarID)
}

// FindInRange returns events overlapping [from, to) for the given
// calendars, ordered by start time.
func (r *EventRepository) FindInRange(ctx context.Context, userID uuid.UUID, calendarIDs []string, from, to time.Time) ([]*domain.Event, error) {
	if len(calendarIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(calendarIDs)), ", ")
	query := r.q(`
		SELECT ` + eventColumns + `
		FROM calendar_events
		WHERE user_id = ? AND calendar_id IN (` + placeholders + `)
		  AND start_time < ? AND end_time > ?
		ORDER BY start_time ASC
	`)

	args := make([]any, 0, len(calendarIDs)+3)
	args = append(args, userID.String())
	for _, id := range calendarIDs {
		args = append(args, id)
	}
	args = append(args, to.UTC().Format(time.RFC3339), from.UTC().Format(time.RFC3339))

	return r.findMany(ctx, query, args...)
}

func (r *EventRepository) findMany(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*domain.Event, error) {
	var (
		id, userID, calendarID, externalID, title string
		startTime, endTime                        string
		allDay                                    int
		location, description, status, etag       string
		syncedAt                                  sql.NullString
		createdAt, updatedAt                      string
	)

	err := row.Scan(&id, &userID, &calendarID, &externalID, &title,
		&startTime, &endTime, &allDay, &location, &description, &status,
		&etag, &syncedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	eventID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse event id: %w", err)
	}
	owner, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}

	start, err := time.Parse(time.RFC3339, startTime)
	if err != nil {
		return nil, fmt.Errorf("parse start_time: %w", err)
	}
	end, err := time.Parse(time.RFC3339, endTime)
	if err != nil {
		return nil, fmt.Errorf("parse end_time: %w", err)
	}
	synced, err := parseTimeValue(syncedAt)
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

	return domain.RehydrateEvent(eventID, owner, calendarID, externalID, title,
		start.UTC(), end.UTC(), allDay != 0, location, description, status, etag,
		synced, created, updated), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTimeValue(s sql.NullString) (time.Time, error) {
	if !s.Valid || s.String == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time: %w", err)
	}
	return t.UTC(), nil
}
