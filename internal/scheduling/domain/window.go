package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/davidrzs/Timeboard/internal/shared/domain"
)

// ErrInvalidWindow is returned for malformed or inverted windows.
var ErrInvalidWindow = errors.New("invalid planning window")

const minutesPerDay = 24 * 60

// Window is one planning window on a weekday, in minutes from
// midnight. A weekday can carry several windows; their order is the
// position.
type Window struct {
	sharedDomain.BaseEntity
	userID      uuid.UUID
	weekday     time.Weekday
	startMinute int
	endMinute   int
	position    int
}

// NewWindow creates a window. Start must lie before end, both within
// the day.
func NewWindow(userID uuid.UUID, weekday time.Weekday, startMinute, endMinute int) (*Window, error) {
	if startMinute < 0 || endMinute > minutesPerDay || startMinute >= endMinute {
		return nil, fmt.Errorf("%w: %s..%s", ErrInvalidWindow,
			FormatMinute(startMinute), FormatMinute(endMinute))
	}
	return &Window{
		BaseEntity:  sharedDomain.NewBaseEntity(),
		userID:      userID,
		weekday:     weekday,
		startMinute: startMinute,
		endMinute:   endMinute,
	}, nil
}

// RehydrateWindow rebuilds a window from persisted data.
func RehydrateWindow(
	id uuid.UUID,
	userID uuid.UUID,
	weekday time.Weekday,
	startMinute, endMinute, position int,
	createdAt, updatedAt time.Time,
) *Window {
	return &Window{
		BaseEntity:  sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		userID:      userID,
		weekday:     weekday,
		startMinute: startMinute,
		endMinute:   endMinute,
		position:    position,
	}
}

func (w *Window) UserID() uuid.UUID     { return w.userID }
func (w *Window) Weekday() time.Weekday { return w.weekday }
func (w *Window) StartMinute() int      { return w.startMinute }
func (w *Window) EndMinute() int        { return w.endMinute }
func (w *Window) Position() int         { return w.position }

// SetPosition records the window's slot within its weekday.
func (w *Window) SetPosition(pos int) {
	w.position = pos
	w.Touch()
}

// Minutes returns the window's length.
func (w *Window) Minutes() int { return w.endMinute - w.startMinute }

// Interval anchors the window on a concrete date.
func (w *Window) Interval(date time.Time) Interval {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return Interval{
		Start: day.Add(time.Duration(w.startMinute) * time.Minute),
		End:   day.Add(time.Duration(w.endMinute) * time.Minute),
	}
}

// String renders the window as "09:00-12:00".
func (w *Window) String() string {
	return FormatMinute(w.startMinute) + "-" + FormatMinute(w.endMinute)
}

// ParseWindow parses "HH:MM-HH:MM" into start and end minutes.
func ParseWindow(s string) (startMinute, endMinute int, err error) {
	var sh, sm, eh, em int
	if _, err := fmt.Sscanf(s, "%d:%d-%d:%d", &sh, &sm, &eh, &em); err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidWindow, s)
	}
	if sh < 0 || sh > 24 || eh < 0 || eh > 24 || sm < 0 || sm > 59 || em < 0 || em > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidWindow, s)
	}
	startMinute = sh*60 + sm
	endMinute = eh*60 + em
	if startMinute >= endMinute || endMinute > minutesPerDay {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidWindow, s)
	}
	return startMinute, endMinute, nil
}

// FormatMinute renders minutes from midnight as "HH:MM".
func FormatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// defaultWindowSpans is the fallback when a user configured no windows
// for a weekday, a morning and an afternoon block.
var defaultWindowSpans = [][2]int{
	{9 * 60, 12 * 60},
	{14 * 60, 18 * 60},
}

// DefaultIntervals anchors the default windows on a date.
func DefaultIntervals(date time.Time) []Interval {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	out := make([]Interval, 0, len(defaultWindowSpans))
	for _, span := range defaultWindowSpans {
		out = append(out, Interval{
			Start: day.Add(time.Duration(span[0]) * time.Minute),
			End:   day.Add(time.Duration(span[1]) * time.Minute),
		})
	}
	return out
}

// WindowRepository persists per-weekday planning windows.
type WindowRepository interface {
	Save(ctx context.Context, window *Window) error

	// FindByUserAndWeekday returns the weekday's windows by position.
	FindByUserAndWeekday(ctx context.Context, userID uuid.UUID, weekday time.Weekday) ([]*Window, error)

	// FindByUser returns all windows grouped weekday-ascending, then by
	// position.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*Window, error)

	// ReplaceWeekday swaps a weekday's windows in one call.
	ReplaceWeekday(ctx context.Context, userID uuid.UUID, weekday time.Weekday, windows []*Window) error
}
