package domain

import (
	"github.com/google/uuid"

	sharedDomain "github.com/davidrzs/Timeboard/internal/shared/domain"
)

// CalendarSynced is emitted after a calendar sync applied changes.
type CalendarSynced struct {
	sharedDomain.BaseEvent
	UserID     uuid.UUID `json:"user_id"`
	CalendarID string    `json:"calendar_id"`
	FullSync   bool      `json:"full_sync"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	Deleted    int       `json:"deleted"`
}

// NewCalendarSynced builds the event.
func NewCalendarSynced(stateID, userID uuid.UUID, calendarID string, fullSync bool, created, updated, deleted int) *CalendarSynced {
	return &CalendarSynced{
		BaseEvent:  sharedDomain.NewBaseEvent(stateID, "calendar", "calendar.synced"),
		UserID:     userID,
		CalendarID: calendarID,
		FullSync:   fullSync,
		Created:    created,
		Updated:    updated,
		Deleted:    deleted,
	}
}
