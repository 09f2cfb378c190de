package workers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidrzs/Timeboard/internal/calendar/domain"
)

type emptyStateRepo struct{}

func (emptyStateRepo) Save(ctx context.Context, state *domain.SyncState) error { return nil }

func (emptyStateRepo) FindByUserAndCalendar(ctx context.Context, userID uuid.UUID, calendarID string) (*domain.SyncState, error) {
	return nil, nil
}

func (emptyStateRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]*domain.SyncState, error) {
	return nil, nil
}

func (emptyStateRepo) FindPendingSync(ctx context.Context, olderThan time.Duration, limit int) ([]*domain.SyncState, error) {
	return nil, nil
}

func (emptyStateRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func TestSyncWorkerStopIsIdempotent(t *testing.T) {
	worker := NewSyncWorker(nil, emptyStateRepo{}, DefaultSyncWorkerConfig(), nil)

	done := make(chan error, 1)
	go func() { done <- worker.Run(context.Background()) }()

	require.Eventually(t, worker.IsRunning, time.Second, time.Millisecond)

	// Racing Stop calls must not double-close the stop channel.
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Stop()
		}()
	}
	wg.Wait()
	worker.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	assert.False(t, worker.IsRunning())
}
