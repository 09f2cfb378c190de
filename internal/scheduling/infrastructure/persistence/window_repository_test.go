package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/davidrzs/Timeboard/internal/scheduling/domain"
	"github.com/davidrzs/Timeboard/internal/shared/infrastructure/database/sqlite"
	"github.com/davidrzs/Timeboard/internal/shared/infrastructure/migrations"
)

func setupTestDB(t *testing.T) *sqlite.Connection {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.RunSQLite(context.Background(), db))
	return sqlite.WrapDB(db)
}

func mustWindow(t *testing.T, userID uuid.UUID, weekday time.Weekday, start, end int) *domain.Window {
	t.Helper()
	w, err := domain.NewWindow(userID, weekday, start, end)
	require.NoError(t, err)
	return w
}

func TestWindowRepositoryRoundTrip(t *testing.T) {
	repo := NewWindowRepository(setupTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	morning := mustWindow(t, userID, time.Monday, 9*60, 12*60)
	afternoon := mustWindow(t, userID, time.Monday, 14*60, 18*60)
	afternoon.SetPosition(1)
	require.NoError(t, repo.Save(ctx, morning))
	require.NoError(t, repo.Save(ctx, afternoon))

	windows, err := repo.FindByUserAndWeekday(ctx, userID, time.Monday)
	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.Equal(t, "09:00-12:00", windows[0].String())
	assert.Equal(t, "14:00-18:00", windows[1].String())

	// Other weekdays and users see nothing.
	empty, err := repo.FindByUserAndWeekday(ctx, userID, time.Tuesday)
	require.NoError(t, err)
	assert.Empty(t, empty)
	empty, err = repo.FindByUserAndWeekday(ctx, uuid.New(), time.Monday)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestWindowRepositoryReplaceWeekday(t *testing.T) {
	repo := NewWindowRepository(setupTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, repo.Save(ctx, mustWindow(t, userID, time.Friday, 9*60, 17*60)))
	require.NoError(t, repo.Save(ctx, mustWindow(t, userID, time.Monday, 9*60, 12*60)))

	replacement := []*domain.Window{
		mustWindow(t, userID, time.Friday, 8*60, 11*60),
		mustWindow(t, userID, time.Friday, 13*60, 15*60),
	}
	require.NoError(t, repo.ReplaceWeekday(ctx, userID, time.Friday, replacement))

	windows, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, windows, 3)
	assert.Equal(t, time.Monday, windows[0].Weekday())
	assert.Equal(t, "08:00-11:00", windows[1].String())
	assert.Equal(t, "13:00-15:00", windows[2].String())
	assert.Equal(t, 0, windows[1].Position())
	assert.Equal(t, 1, windows[2].Position())
}
