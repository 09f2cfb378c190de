package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/davidrzs/Timeboard/internal/calendar/domain"
)

// CalendarView pairs a calendar's sync state with its cached events.
type CalendarView struct {
	State  *domain.SyncState
	Events []*domain.Event
}

// EventsQuery reads the local event cache. It never contacts the
// provider; freshness is the sync engine's job.
type EventsQuery struct {
	states domain.SyncStateRepository
	events domain.EventRepository
}

// NewEventsQuery creates the query service.
func NewEventsQuery(states domain.SyncStateRepository, events domain.EventRepository) *EventsQuery {
	return &EventsQuery{states: states, events: events}
}

// EventsInRange returns cached events of the user's enabled calendars
// overlapping [from, to), ordered by start time.
func (q *EventsQuery) EventsInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Event, error) {
	calendarIDs, err := q.enabledCalendarIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(calendarIDs) == 0 {
		return nil, nil
	}
	return q.events.FindInRange(ctx, userID, calendarIDs, from, to)
}

// BusyIntervals returns the start/end pairs of events that block
// scheduling time in [from, to). All-day and cancelled events do not
// count as busy.
func (q *EventsQuery) BusyIntervals(ctx context.Context, userID uuid.UUID, from, to time.Time) ([][2]time.Time, error) {
	events, err := q.EventsInRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	var busy [][2]time.Time
	for _, ev := range events {
		if ev.IsBusy() {
			busy = append(busy, [2]time.Time{ev.Start(), ev.End()})
		}
	}
	return busy, nil
}

// Calendars returns the user's sync states, each with its cached
// events.
func (q *EventsQuery) Calendars(ctx context.Context, userID uuid.UUID) ([]*CalendarView, error) {
	states, err := q.states.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]*CalendarView, 0, len(states))
	for _, state := range states {
		events, err := q.events.FindByCalendar(ctx, userID, state.CalendarID())
		if err != nil {
			return nil, err
		}
		views = append(views, &CalendarView{State: state, Events: events})
	}
	return views, nil
}

func (q *EventsQuery) enabledCalendarIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	states, err := q.states.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(states))
	for _, state := range states {
		if state.Enabled() {
			ids = append(ids, state.CalendarID())
		}
	}
	return ids, nil
}
