package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncStatePhases(t *testing.T) {
	state := NewSyncState(uuid.New(), "cal-1", "Work")

	assert.Equal(t, PhaseNeverSynced, state.Phase())
	assert.True(t, state.NeedsFullSync())

	state.MarkSynced("cursor-1", time.Now())
	assert.Equal(t, PhaseCursorValid, state.Phase())
	assert.False(t, state.NeedsFullSync())
	assert.Equal(t, "cursor-1", state.Cursor())

	state.MarkCursorExpired()
	assert.Equal(t, PhaseCursorExpired, state.Phase())
	assert.True(t, state.NeedsFullSync())
	assert.Empty(t, state.Cursor())

	// A full resync restores the valid phase.
	state.MarkSynced("cursor-2", time.Now())
	assert.Equal(t, PhaseCursorValid, state.Phase())
}

func TestSyncStateFailureTracking(t *testing.T) {
	state := NewSyncState(uuid.New(), "cal-1", "Work")

	state.MarkSyncFailure("connection refused")
	state.MarkSyncFailure("connection refused")
	assert.Equal(t, 2, state.SyncErrors())
	assert.Equal(t, "connection refused", state.LastError())
	assert.True(t, state.ShouldRetry(3))
	assert.False(t, state.ShouldRetry(2))

	// Success resets the failure counter.
	state.MarkSynced("cursor", time.Now())
	assert.Zero(t, state.SyncErrors())
	assert.Empty(t, state.LastError())
	assert.True(t, state.ShouldRetry(1))
}

func TestSyncStateStaleness(t *testing.T) {
	state := NewSyncState(uuid.New(), "cal-1", "Work")
	now := time.Now()

	assert.True(t, state.IsStale(15*time.Minute, now), "never synced is always stale")

	state.MarkSynced("cursor", now.Add(-10*time.Minute))
	assert.False(t, state.IsStale(15*time.Minute, now))

	state.MarkSynced("cursor", now.Add(-20*time.Minute))
	assert.True(t, state.IsStale(15*time.Minute, now))
}

func TestSyncStateRehydration(t *testing.T) {
	id := uuid.New()
	userID := uuid.New()
	syncedAt := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

	state := RehydrateSyncState(id, userID, "cal-1", "Work", "#4285f4",
		true, "cursor-9", syncedAt, 1, "timeout",
		syncedAt.Add(-time.Hour), syncedAt)

	require.Equal(t, id, state.ID())
	assert.Equal(t, userID, state.UserID())
	assert.Equal(t, PhaseCursorValid, state.Phase())
	assert.Equal(t, 1, state.SyncErrors())

	state.Disable()
	assert.False(t, state.Enabled())
	state.Enable()
	assert.True(t, state.Enabled())
}
