package domain

import (
	"context"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/davidrzs/Timeboard/internal/shared/domain"
)

// SyncPhase is the lifecycle state of one calendar's sync.
type SyncPhase string

const (
	// PhaseNeverSynced means no sync has completed; only a full sync
	// can establish a cursor.
	PhaseNeverSynced SyncPhase = "never_synced"
	// PhaseCursorValid means incremental sync from the stored cursor
	// is possible.
	PhaseCursorValid SyncPhase = "cursor_valid"
	// PhaseCursorExpired means the provider rejected the cursor and a
	// full resync must run.
	PhaseCursorExpired SyncPhase = "cursor_expired"
)

// SyncState tracks one calendar's sync cursor and health. The state
// phase is derived from the stored fields, so it can never disagree
// with them.
type SyncState struct {
	sharedDomain.BaseEntity
	userID       uuid.UUID
	calendarID   string
	name         string
	color        string
	enabled      bool
	cursor       string
	lastSyncedAt time.Time
	syncErrors   int
	lastError    string
}

// NewSyncState creates sync tracking for a calendar, enabled and never
// synced.
func NewSyncState(userID uuid.UUID, calendarID, name string) *SyncState {
	return &SyncState{
		BaseEntity: sharedDomain.NewBaseEntity(),
		userID:     userID,
		calendarID: calendarID,
		name:       name,
		enabled:    true,
	}
}

// RehydrateSyncState rebuilds sync state from persisted data.
func RehydrateSyncState(
	id uuid.UUID,
	userID uuid.UUID,
	calendarID, name, color string,
	enabled bool,
	cursor string,
	lastSyncedAt time.Time,
	syncErrors int,
	lastError string,
	createdAt, updatedAt time.Time,
) *SyncState {
	return &SyncState{
		BaseEntity:   sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		userID:       userID,
		calendarID:   calendarID,
		name:         name,
		color:        color,
		enabled:      enabled,
		cursor:       cursor,
		lastSyncedAt: lastSyncedAt,
		syncErrors:   syncErrors,
		lastError:    lastError,
	}
}

func (s *SyncState) UserID() uuid.UUID       { return s.userID }
func (s *SyncState) CalendarID() string      { return s.calendarID }
func (s *SyncState) Name() string            { return s.name }
func (s *SyncState) Color() string           { return s.color }
func (s *SyncState) Enabled() bool           { return s.enabled }
func (s *SyncState) Cursor() string          { return s.cursor }
func (s *SyncState) LastSyncedAt() time.Time { return s.lastSyncedAt }
func (s *SyncState) SyncErrors() int         { return s.syncErrors }
func (s *SyncState) LastError() string       { return s.lastError }

// Phase derives the sync lifecycle state.
func (s *SyncState) Phase() SyncPhase {
	switch {
	case s.lastSyncedAt.IsZero():
		return PhaseNeverSynced
	case s.cursor == "":
		return PhaseCursorExpired
	default:
		return PhaseCursorValid
	}
}

// NeedsFullSync reports whether only a full sync can proceed.
func (s *SyncState) NeedsFullSync() bool {
	return s.Phase() != PhaseCursorValid
}

// IsStale reports whether the cache is older than the threshold.
// A never-synced calendar is always stale.
func (s *SyncState) IsStale(threshold time.Duration, now time.Time) bool {
	if s.lastSyncedAt.IsZero() {
		return true
	}
	return now.Sub(s.lastSyncedAt) > threshold
}

// MarkSynced records a successful sync with a fresh cursor.
func (s *SyncState) MarkSynced(cursor string, at time.Time) {
	s.cursor = cursor
	s.lastSyncedAt = at.UTC()
	s.syncErrors = 0
	s.lastError = ""
	s.Touch()
}

// MarkCursorExpired records that the provider rejected the cursor.
// The cached events stay valid; the next sync must be full.
func (s *SyncState) MarkCursorExpired() {
	s.cursor = ""
	s.Touch()
}

// MarkSyncFailure records a transport or application failure.
func (s *SyncState) MarkSyncFailure(errMsg string) {
	s.syncErrors++
	s.lastError = errMsg
	s.Touch()
}

// ShouldRetry reports whether sync may run again after failures.
func (s *SyncState) ShouldRetry(maxErrors int) bool {
	return s.syncErrors < maxErrors
}

// SetName updates the provider-reported display name.
func (s *SyncState) SetName(name string) {
	if name == "" || name == s.name {
		return
	}
	s.name = name
	s.Touch()
}

// SetColor updates the provider-reported color.
func (s *SyncState) SetColor(color string) {
	if color == s.color {
		return
	}
	s.color = color
	s.Touch()
}

// Enable includes the calendar in sync and queries.
func (s *SyncState) Enable() {
	if s.enabled {
		return
	}
	s.enabled = true
	s.Touch()
}

// Disable excludes the calendar from sync and queries.
func (s *SyncState) Disable() {
	if !s.enabled {
		return
	}
	s.enabled = false
	s.Touch()
}

// SyncStateRepository persists per-calendar sync state.
//
// FindByUserAndCalendar returns (nil, nil) when no state exists.
type SyncStateRepository interface {
	Save(ctx context.Context, state *SyncState) error
	FindByUserAndCalendar(ctx context.Context, userID uuid.UUID, calendarID string) (*SyncState, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*SyncState, error)

	// FindPendingSync returns enabled states not synced within
	// olderThan, oldest first, capped at limit.
	FindPendingSync(ctx context.Context, olderThan time.Duration, limit int) ([]*SyncState, error)

	Delete(ctx context.Context, id uuid.UUID) error
}
