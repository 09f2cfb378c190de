package application

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCursorExpired means the provider rejected the sync cursor.
	// The sync engine reacts with an automatic full resync; callers
	// never see this error.
	ErrCursorExpired = errors.New("sync cursor expired")

	// ErrTransport wraps network and provider-side failures. The
	// cached events stay untouched and the sync is retryable.
	ErrTransport = errors.New("calendar provider unreachable")
)

// CalendarInfo describes a calendar available at the provider.
type CalendarInfo struct {
	ID    string
	Name  string
	Color string
}

// ProviderEvent is one event as reported by a provider. In a delta
// page, status "cancelled" marks a deletion.
type ProviderEvent struct {
	ExternalID  string
	Title       string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Location    string
	Description string
	Status      string
	ETag        string
}

// EventPage is one page of a listing. NextPage is empty on the final
// page; NextCursor is only set on the final page.
type EventPage struct {
	Items      []ProviderEvent
	NextPage   string
	NextCursor string
}

// Provider reads calendars from an external service. Implementations
// return ErrCursorExpired from Changes when the cursor is no longer
// usable, and wrap connectivity failures with ErrTransport.
type Provider interface {
	Name() string
	ListCalendars(ctx context.Context) ([]CalendarInfo, error)

	// ListEvents pages through every event in [from, to].
	ListEvents(ctx context.Context, calendarID string, from, to time.Time, pageToken string) (*EventPage, error)

	// Changes pages through the delta since the cursor.
	Changes(ctx context.Context, calendarID, cursor, pageToken string) (*EventPage, error)
}
