package domain

import (
	"context"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/davidrzs/Timeboard/internal/shared/domain"
)

// Event statuses as reported by providers. Cancelled events are
// deleted from the cache, not stored.
const (
	StatusConfirmed = "confirmed"
	StatusTentative = "tentative"
	StatusCancelled = "cancelled"
)

// Event is a cached calendar event. The cache is a read model owned by
// the sync engine; nothing else writes it.
type Event struct {
	sharedDomain.BaseEntity
	userID      uuid.UUID
	calendarID  string
	externalID  string
	title       string
	start       time.Time
	end         time.Time
	allDay      bool
	location    string
	description string
	status      string
	etag        string
	syncedAt    time.Time
}

// NewEvent creates a cached event from provider data.
func NewEvent(userID uuid.UUID, calendarID, externalID, title string, start, end time.Time) *Event {
	return &Event{
		BaseEntity: sharedDomain.NewBaseEntity(),
		userID:     userID,
		calendarID: calendarID,
		externalID: externalID,
		title:      title,
		start:      start.UTC(),
		end:        end.UTC(),
		status:     StatusConfirmed,
		syncedAt:   time.Now().UTC(),
	}
}

// RehydrateEvent rebuilds a cached event from persisted data.
func RehydrateEvent(
	id uuid.UUID,
	userID uuid.UUID,
	calendarID, externalID, title string,
	start, end time.Time,
	allDay bool,
	location, description, status, etag string,
	syncedAt time.Time,
	createdAt, updatedAt time.Time,
) *Event {
	return &Event{
		BaseEntity:  sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		userID:      userID,
		calendarID:  calendarID,
		externalID:  externalID,
		title:       title,
		start:       start,
		end:         end,
		allDay:      allDay,
		location:    location,
		description: description,
		status:      status,
		etag:        etag,
		syncedAt:    syncedAt,
	}
}

func (e *Event) UserID() uuid.UUID   { return e.userID }
func (e *Event) CalendarID() string  { return e.calendarID }
func (e *Event) ExternalID() string  { return e.externalID }
func (e *Event) Title() string       { return e.title }
func (e *Event) Start() time.Time    { return e.start }
func (e *Event) End() time.Time      { return e.end }
func (e *Event) IsAllDay() bool      { return e.allDay }
func (e *Event) Location() string    { return e.location }
func (e *Event) Description() string { return e.description }
func (e *Event) Status() string      { return e.status }
func (e *Event) ETag() string        { return e.etag }
func (e *Event) SyncedAt() time.Time { return e.syncedAt }

// SetAllDay marks the event as a date-only entry.
func (e *Event) SetAllDay(allDay bool) {
	e.allDay = allDay
	e.Touch()
}

// SetDetails updates the optional descriptive fields.
func (e *Event) SetDetails(location, description string) {
	e.location = location
	e.description = description
	e.Touch()
}

// SetStatus updates the provider status.
func (e *Event) SetStatus(status string) {
	if status == "" {
		status = StatusConfirmed
	}
	e.status = status
	e.Touch()
}

// SetETag updates the provider version tag.
func (e *Event) SetETag(etag string) {
	e.etag = etag
	e.Touch()
}

// IsBusy reports whether the event blocks scheduling time.
func (e *Event) IsBusy() bool {
	return !e.allDay && (e.status == StatusConfirmed || e.status == StatusTentative)
}

// EventRepository persists the event cache. All writes are scoped to
// one (user, calendar) pair so per-page sync transactions stay small.
type EventRepository interface {
	// Upsert inserts or updates by (user, calendar, external id) and
	// reports whether a new row was created.
	Upsert(ctx context.Context, event *Event) (created bool, err error)

	// DeleteByExternalID removes one cached event. Deleting an absent
	// event is a no-op.
	DeleteByExternalID(ctx context.Context, userID uuid.UUID, calendarID, externalID string) error

	// ReplaceCalendar atomically swaps a calendar's cached events.
	ReplaceCalendar(ctx context.Context, userID uuid.UUID, calendarID string, events []*Event) error

	// FindByCalendar returns a calendar's cached events ordered by
	// start time.
	FindByCalendar(ctx context.Context, userID uuid.UUID, calendarID string) ([]*Event, error)

	// FindInRange returns events overlapping [from, to) for the given
	// calendars, ordered by start time.
	FindInRange(ctx context.Context, userID uuid.UUID, calendarIDs []string, from, to time.Time) ([]*Event, error)
}
