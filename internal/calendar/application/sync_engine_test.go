package application

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidrzs/Timeboard/internal/calendar/domain"
)

type fakeProvider struct {
	mu        sync.Mutex
	calendars []CalendarInfo

	// listPages and changePages are consumed per calendar, one call per
	// page.
	listPages   map[string][]*EventPage
	changePages map[string][]*EventPage
	changeErr   map[string]error

	listCalls   map[string]int
	changeCalls map[string]int
}

func newFakeProvider(calendars ...CalendarInfo) *fakeProvider {
	return &fakeProvider{
		calendars:   calendars,
		listPages:   make(map[string][]*EventPage),
		changePages: make(map[string][]*EventPage),
		changeErr:   make(map[string]error),
		listCalls:   make(map[string]int),
		changeCalls: make(map[string]int),
	}
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	return p.calendars, nil
}

func (p *fakeProvider) ListEvents(ctx context.Context, calendarID string, from, to time.Time, pageToken string) (*EventPage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listCalls[calendarID]++
	pages := p.listPages[calendarID]
	if len(pages) == 0 {
		return &EventPage{NextCursor: "cursor-full"}, nil
	}
	page := pages[0]
	p.listPages[calendarID] = pages[1:]
	return page, nil
}

func (p *fakeProvider) Changes(ctx context.Context, calendarID, cursor, pageToken string) (*EventPage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changeCalls[calendarID]++
	if err := p.changeErr[calendarID]; err != nil {
		return nil, err
	}
	pages := p.changePages[calendarID]
	if len(pages) == 0 {
		return &EventPage{NextCursor: cursor}, nil
	}
	page := pages[0]
	p.changePages[calendarID] = pages[1:]
	return page, nil
}

type memoryStateRepo struct {
	mu     sync.Mutex
	states map[uuid.UUID]*domain.SyncState
}

func newMemoryStateRepo() *memoryStateRepo {
	return &memoryStateRepo{states: make(map[uuid.UUID]*domain.SyncState)}
}

func (r *memoryStateRepo) Save(ctx context.Context, state *domain.SyncState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[state.ID()] = state
	return nil
}

func (r *memoryStateRepo) FindByUserAndCalendar(ctx context.Context, userID uuid.UUID, calendarID string) (*domain.SyncState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.states {
		if s.UserID() == userID && s.CalendarID() == calendarID {
			return s, nil
		}
	}
	return nil, nil
}

func (r *memoryStateRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]*domain.SyncState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.SyncState
	for _, s := range r.states {
		if s.UserID() == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memoryStateRepo) FindPendingSync(ctx context.Context, olderThan time.Duration, limit int) ([]*domain.SyncState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var out []*domain.SyncState
	for _, s := range r.states {
		if s.Enabled() && s.IsStale(olderThan, now) {
			out = append(out, s)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memoryStateRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, id)
	return nil
}

type memoryEventRepo struct {
	mu sync.Mutex
	// keyed by user/calendar/externalID
	events map[string]*domain.Event
}

func newMemoryEventRepo() *memoryEventRepo {
	return &memoryEventRepo{events: make(map[string]*domain.Event)}
}

func eventKey(userID uuid.UUID, calendarID, externalID string) string {
	return fmt.Sprintf("%s/%s/%s", userID, calendarID, externalID)
}

func (r *memoryEventRepo) Upsert(ctx context.Context, event *domain.Event) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := eventKey(event.UserID(), event.CalendarID(), event.ExternalID())
	_, exists := r.events[key]
	r.events[key] = event
	return !exists, nil
}

func (r *memoryEventRepo) DeleteByExternalID(ctx context.Context, userID uuid.UUID, calendarID, externalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.events, eventKey(userID, calendarID, externalID))
	return nil
}

func (r *memoryEventRepo) ReplaceCalendar(ctx context.Context, userID uuid.UUID, calendarID string, events []*domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, ev := range r.events {
		if ev.UserID() == userID && ev.CalendarID() == calendarID {
			delete(r.events, key)
		}
	}
	for _, ev := range events {
		r.events[eventKey(userID, calendarID, ev.ExternalID())] = ev
	}
	return nil
}

func (r *memoryEventRepo) FindByCalendar(ctx context.Context, userID uuid.UUID, calendarID string) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Event
	for _, ev := range r.events {
		if ev.UserID() == userID && ev.CalendarID() == calendarID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *memoryEventRepo) FindInRange(ctx context.Context, userID uuid.UUID, calendarIDs []string, from, to time.Time) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[string]bool, len(calendarIDs))
	for _, id := range calendarIDs {
		wanted[id] = true
	}
	var out []*domain.Event
	for _, ev := range r.events {
		if ev.UserID() != userID || !wanted[ev.CalendarID()] {
			continue
		}
		if ev.End().After(from) && ev.Start().Before(to) {
			out = append(out, ev)
		}
	}
	return out, nil
}

type noopUnitOfWork struct{}

func (noopUnitOfWork) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (noopUnitOfWork) Commit(ctx context.Context) error                   { return nil }
func (noopUnitOfWork) Rollback(ctx context.Context) error                 { return nil }

type syncFixture struct {
	engine   *SyncEngine
	provider *fakeProvider
	states   *memoryStateRepo
	events   *memoryEventRepo
	userID   uuid.UUID
}

func newSyncFixture(t *testing.T, calendars ...CalendarInfo) *syncFixture {
	t.Helper()
	provider := newFakeProvider(calendars...)
	states := newMemoryStateRepo()
	events := newMemoryEventRepo()
	engine := NewSyncEngine(provider, states, events, noopUnitOfWork{},
		NewLocalLeaser(), nil, nil, DefaultSyncConfig())
	return &syncFixture{
		engine:   engine,
		provider: provider,
		states:   states,
		events:   events,
		userID:   uuid.New(),
	}
}

func providerEvent(id, title string, start time.Time, minutes int) ProviderEvent {
	return ProviderEvent{
		ExternalID: id,
		Title:      title,
		Start:      start,
		End:        start.Add(time.Duration(minutes) * time.Minute),
		Status:     domain.StatusConfirmed,
	}
}

func TestSyncAllDiscoversAndFullSyncs(t *testing.T) {
	fx := newSyncFixture(t, CalendarInfo{ID: "work", Name: "Work"})
	start := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	fx.provider.listPages["work"] = []*EventPage{
		{Items: []ProviderEvent{providerEvent("e1", "Standup", start, 30)}, NextPage: "p2"},
		{Items: []ProviderEvent{providerEvent("e2", "Review", start.Add(time.Hour), 60)}, NextCursor: "cursor-1"},
	}

	results, err := fx.engine.SyncAll(context.Background(), fx.userID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	res := results[0]
	require.NoError(t, res.Err)
	assert.True(t, res.FullSync)
	assert.Equal(t, 2, res.Created)

	state, err := fx.states.FindByUserAndCalendar(context.Background(), fx.userID, "work")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, domain.PhaseCursorValid, state.Phase())
	assert.Equal(t, "cursor-1", state.Cursor())

	cached, err := fx.events.FindByCalendar(context.Background(), fx.userID, "work")
	require.NoError(t, err)
	assert.Len(t, cached, 2)
}

func TestFullSyncThenIncrementalIsDriftFree(t *testing.T) {
	fx := newSyncFixture(t, CalendarInfo{ID: "work", Name: "Work"})
	start := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	state := domain.NewSyncState(fx.userID, "work", "Work")
	require.NoError(t, fx.states.Save(context.Background(), state))
	fx.provider.listPages["work"] = []*EventPage{{
		Items: []ProviderEvent{
			providerEvent("e1", "Standup", start, 30),
			providerEvent("e2", "Review", start.Add(time.Hour), 60),
		},
		NextCursor: "cursor-1",
	}}

	res := fx.engine.SyncCalendar(context.Background(), state)
	require.NoError(t, res.Err)
	require.True(t, res.FullSync)
	require.Equal(t, 2, res.Created)
	require.Equal(t, "cursor-1", state.Cursor())

	// Nothing changed upstream: the incremental pass off the fresh
	// cursor touches nothing.
	res = fx.engine.SyncCalendar(context.Background(), state)
	require.NoError(t, res.Err)
	assert.False(t, res.FullSync)
	assert.Zero(t, res.Created)
	assert.Zero(t, res.Updated)
	assert.Zero(t, res.Deleted)

	cached, err := fx.events.FindByCalendar(context.Background(), fx.userID, "work")
	require.NoError(t, err)
	assert.Len(t, cached, 2)
}

func TestIncrementalSyncUpsertsAndDeletes(t *testing.T) {
	fx := newSyncFixture(t, CalendarInfo{ID: "work", Name: "Work"})
	start := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	state := domain.NewSyncState(fx.userID, "work", "Work")
	state.MarkSynced("cursor-1", time.Now())
	require.NoError(t, fx.states.Save(context.Background(), state))

	seed := domain.NewEvent(fx.userID, "work", "e1", "Standup", start, start.Add(30*time.Minute))
	_, err := fx.events.Upsert(context.Background(), seed)
	require.NoError(t, err)

	delta := &EventPage{
		Items: []ProviderEvent{
			providerEvent("e1", "Standup (moved)", start.Add(time.Hour), 30),
			providerEvent("e2", "New meeting", start.Add(2*time.Hour), 45),
			{ExternalID: "e3", Status: domain.StatusCancelled},
		},
		NextCursor: "cursor-2",
	}
	fx.provider.changePages["work"] = []*EventPage{delta}

	res := fx.engine.SyncCalendar(context.Background(), state)
	require.NoError(t, res.Err)
	assert.False(t, res.FullSync)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, "cursor-2", state.Cursor())

	// Reapplying the same delta changes nothing new.
	fx.provider.changePages["work"] = []*EventPage{delta}
	res = fx.engine.SyncCalendar(context.Background(), state)
	require.NoError(t, res.Err)
	assert.Zero(t, res.Created)
	assert.Equal(t, 2, res.Updated)
	assert.Equal(t, 1, res.Deleted)

	cached, err := fx.events.FindByCalendar(context.Background(), fx.userID, "work")
	require.NoError(t, err)
	assert.Len(t, cached, 2)
}

func TestExpiredCursorTriggersFullResync(t *testing.T) {
	fx := newSyncFixture(t, CalendarInfo{ID: "work", Name: "Work"})
	start := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	state := domain.NewSyncState(fx.userID, "work", "Work")
	state.MarkSynced("stale-cursor", time.Now())
	require.NoError(t, fx.states.Save(context.Background(), state))

	stale := domain.NewEvent(fx.userID, "work", "gone", "Old event", start, start.Add(time.Hour))
	_, err := fx.events.Upsert(context.Background(), stale)
	require.NoError(t, err)

	fx.provider.changeErr["work"] = ErrCursorExpired
	fx.provider.listPages["work"] = []*EventPage{
		{Items: []ProviderEvent{providerEvent("e1", "Fresh", start, 60)}, NextCursor: "cursor-new"},
	}

	res := fx.engine.SyncCalendar(context.Background(), state)
	require.NoError(t, res.Err)
	assert.True(t, res.FullSync)
	assert.Equal(t, domain.PhaseCursorValid, state.Phase())
	assert.Equal(t, "cursor-new", state.Cursor())

	// The full resync replaced the cache; the stale event is gone.
	cached, err := fx.events.FindByCalendar(context.Background(), fx.userID, "work")
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "e1", cached[0].ExternalID())
}

func TestTransportFailureLeavesCacheUntouched(t *testing.T) {
	fx := newSyncFixture(t, CalendarInfo{ID: "work", Name: "Work"})
	start := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	state := domain.NewSyncState(fx.userID, "work", "Work")
	state.MarkSynced("cursor-1", time.Now())
	require.NoError(t, fx.states.Save(context.Background(), state))

	seed := domain.NewEvent(fx.userID, "work", "e1", "Standup", start, start.Add(30*time.Minute))
	_, err := fx.events.Upsert(context.Background(), seed)
	require.NoError(t, err)

	fx.provider.changeErr["work"] = fmt.Errorf("%w: dial tcp refused", ErrTransport)

	res := fx.engine.SyncCalendar(context.Background(), state)
	require.Error(t, res.Err)
	assert.Equal(t, 1, state.SyncErrors())
	assert.Equal(t, "cursor-1", state.Cursor(), "cursor survives a transport failure")

	cached, err := fx.events.FindByCalendar(context.Background(), fx.userID, "work")
	require.NoError(t, err)
	assert.Len(t, cached, 1)
}

func TestSyncAllIsolatesCalendarFailures(t *testing.T) {
	fx := newSyncFixture(t,
		CalendarInfo{ID: "work", Name: "Work"},
		CalendarInfo{ID: "personal", Name: "Personal"},
	)
	start := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	workState := domain.NewSyncState(fx.userID, "work", "Work")
	workState.MarkSynced("cursor-w", time.Now())
	require.NoError(t, fx.states.Save(context.Background(), workState))

	personalState := domain.NewSyncState(fx.userID, "personal", "Personal")
	personalState.MarkSynced("cursor-p", time.Now())
	require.NoError(t, fx.states.Save(context.Background(), personalState))

	fx.provider.changeErr["work"] = fmt.Errorf("%w: 503", ErrTransport)
	fx.provider.changePages["personal"] = []*EventPage{{
		Items:      []ProviderEvent{providerEvent("p1", "Dentist", start, 60)},
		NextCursor: "cursor-p2",
	}}

	results, err := fx.engine.SyncAll(context.Background(), fx.userID)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byCal := make(map[string]*SyncResult)
	for _, r := range results {
		byCal[r.CalendarID] = r
	}
	require.Error(t, byCal["work"].Err)
	require.NoError(t, byCal["personal"].Err)
	assert.Equal(t, 1, byCal["personal"].Created)
}

func TestSyncSkipsWhenLeaseHeld(t *testing.T) {
	fx := newSyncFixture(t, CalendarInfo{ID: "work", Name: "Work"})

	state := domain.NewSyncState(fx.userID, "work", "Work")
	require.NoError(t, fx.states.Save(context.Background(), state))

	leaser := NewLocalLeaser()
	fx.engine.lease = leaser
	release, ok, err := leaser.Acquire(context.Background(), leaseKey(state), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	defer release()

	res := fx.engine.SyncCalendar(context.Background(), state)
	assert.True(t, res.Skipped)
	assert.NoError(t, res.Err)
	assert.Zero(t, fx.provider.listCalls["work"])
}

func TestSyncStopsAfterTooManyFailures(t *testing.T) {
	fx := newSyncFixture(t, CalendarInfo{ID: "work", Name: "Work"})

	state := domain.NewSyncState(fx.userID, "work", "Work")
	for i := 0; i < DefaultSyncConfig().MaxErrors; i++ {
		state.MarkSyncFailure("boom")
	}
	require.NoError(t, fx.states.Save(context.Background(), state))

	res := fx.engine.SyncCalendar(context.Background(), state)
	require.Error(t, res.Err)
	assert.Zero(t, fx.provider.listCalls["work"], "no provider call after the failure cap")
}

func TestEnsureFreshSkipsRecentlySynced(t *testing.T) {
	fx := newSyncFixture(t, CalendarInfo{ID: "work", Name: "Work"})

	state := domain.NewSyncState(fx.userID, "work", "Work")
	state.MarkSynced("cursor-1", time.Now())
	require.NoError(t, fx.states.Save(context.Background(), state))

	require.NoError(t, fx.engine.EnsureFresh(context.Background(), fx.userID))
	assert.Zero(t, fx.provider.changeCalls["work"])

	state.MarkSynced("cursor-1", time.Now().Add(-time.Hour))
	require.NoError(t, fx.engine.EnsureFresh(context.Background(), fx.userID))
	assert.Equal(t, 1, fx.provider.changeCalls["work"])
}
