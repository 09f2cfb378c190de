package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"

	"github.com/davidrzs/Timeboard/internal/calendar/domain"
	sharedApplication "github.com/davidrzs/Timeboard/internal/shared/application"
	"github.com/davidrzs/Timeboard/internal/shared/infrastructure/eventbus"
	"github.com/davidrzs/Timeboard/pkg/observability"
)

// SyncConfig tunes the sync engine.
type SyncConfig struct {
	// WindowPast and WindowFuture bound the full-sync event window
	// around now.
	WindowPast   time.Duration
	WindowFuture time.Duration
	// StaleThreshold is the cache age beyond which EnsureFresh syncs.
	StaleThreshold time.Duration
	// LeaseTTL bounds how long a crashed sync can hold its lease.
	LeaseTTL time.Duration
	// MaxErrors stops retrying a calendar after this many consecutive
	// failures.
	MaxErrors int
	// Concurrency caps parallel per-calendar syncs in SyncAll.
	Concurrency int
}

// DefaultSyncConfig returns the defaults used in local mode.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		WindowPast:     30 * 24 * time.Hour,
		WindowFuture:   14 * 24 * time.Hour,
		StaleThreshold: 15 * time.Minute,
		LeaseTTL:       2 * time.Minute,
		MaxErrors:      5,
		Concurrency:    4,
	}
}

// SyncResult reports what one calendar sync did.
type SyncResult struct {
	CalendarID string
	FullSync   bool
	Created    int
	Updated    int
	Deleted    int
	// Skipped means another sync held the calendar's lease.
	Skipped bool
	// Err is the calendar's failure, if any. One calendar failing
	// never affects the others.
	Err error
}

// SyncEngine keeps the local event cache in step with a provider. Each
// calendar moves through three phases: never synced (full sync only),
// cursor valid (incremental), cursor expired (full resync). All cache
// writes happen in transactions together with the cursor they belong
// to, so the cache and cursor can never drift apart.
type SyncEngine struct {
	provider  Provider
	states    domain.SyncStateRepository
	events    domain.EventRepository
	uow       sharedApplication.UnitOfWork
	lease     Lease
	publisher eventbus.Publisher
	logger    *slog.Logger
	metrics   observability.Metrics
	cfg       SyncConfig

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[*EventPage]
}

// NewSyncEngine wires the engine.
func NewSyncEngine(
	provider Provider,
	states domain.SyncStateRepository,
	events domain.EventRepository,
	uow sharedApplication.UnitOfWork,
	lease Lease,
	publisher eventbus.Publisher,
	logger *slog.Logger,
	cfg SyncConfig,
) *SyncEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if lease == nil {
		lease = NewLocalLeaser()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &SyncEngine{
		provider:  provider,
		states:    states,
		events:    events,
		uow:       uow,
		lease:     lease,
		publisher: publisher,
		logger:    logger,
		metrics:   observability.NoopMetrics{},
		cfg:       cfg,
		breakers:  make(map[string]*gobreaker.CircuitBreaker[*EventPage]),
	}
}

// SetMetrics swaps the metrics collector, nil restores the no-op.
func (e *SyncEngine) SetMetrics(m observability.Metrics) {
	if m == nil {
		m = observability.NoopMetrics{}
	}
	e.metrics = m
}

// SyncAll syncs every enabled calendar of the user concurrently. On
// first contact it discovers the provider's calendars and enables them
// all. Per-calendar failures land in the result, never as an error.
func (e *SyncEngine) SyncAll(ctx context.Context, userID uuid.UUID) ([]*SyncResult, error) {
	states, err := e.discoverCalendars(ctx, userID)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		results []*SyncResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)

	for _, state := range states {
		if !state.Enabled() {
			continue
		}
		state := state
		g.Go(func() error {
			res := e.SyncCalendar(gctx, state)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

// EnsureFresh syncs every enabled calendar whose cache is older than
// the staleness threshold. The planner calls this before reading the
// cache.
func (e *SyncEngine) EnsureFresh(ctx context.Context, userID uuid.UUID) error {
	states, err := e.states.FindByUser(ctx, userID)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, state := range states {
		if !state.Enabled() || !state.IsStale(e.cfg.StaleThreshold, now) {
			continue
		}
		if res := e.SyncCalendar(ctx, state); res.Err != nil {
			// Stale data is still usable; planning proceeds on the
			// existing cache.
			e.logger.Warn("freshness sync failed",
				"calendar_id", state.CalendarID(), "error", res.Err)
		}
	}
	return nil
}

// SyncCalendar syncs one calendar under its lease. An expired cursor
// triggers a full resync within the same call.
func (e *SyncEngine) SyncCalendar(ctx context.Context, state *domain.SyncState) *SyncResult {
	result := &SyncResult{CalendarID: state.CalendarID()}
	timer := observability.StartTimer("calendar.sync").
		WithMetrics(e.metrics).
		WithTags(observability.T("calendar", state.CalendarID()))

	release, ok, err := e.lease.Acquire(ctx, leaseKey(state), e.cfg.LeaseTTL)
	if err != nil {
		result.Err = fmt.Errorf("acquire sync lease: %w", err)
		return result
	}
	if !ok {
		result.Skipped = true
		return result
	}
	defer release()

	if !state.ShouldRetry(e.cfg.MaxErrors) {
		result.Err = fmt.Errorf("calendar %s disabled after %d consecutive failures",
			state.CalendarID(), state.SyncErrors())
		return result
	}

	if state.NeedsFullSync() {
		err = e.fullSync(ctx, state, result)
	} else {
		err = e.incrementalSync(ctx, state, result)
		if errors.Is(err, ErrCursorExpired) {
			e.logger.Info("sync cursor expired, running full resync",
				"calendar_id", state.CalendarID())
			state.MarkCursorExpired()
			err = e.fullSync(ctx, state, result)
		}
	}

	timer.StopWithError(err)
	e.recordMetrics(state.CalendarID(), result)
	if err != nil {
		result.Err = err
		state.MarkSyncFailure(err.Error())
		if saveErr := e.states.Save(ctx, state); saveErr != nil {
			e.logger.Error("persist sync failure state",
				"calendar_id", state.CalendarID(), "error", saveErr)
		}
		e.metrics.Counter(observability.MetricSyncFailures, 1,
			observability.T("calendar", state.CalendarID()))
		return result
	}

	e.publishSynced(ctx, state, result)
	return result
}

func (e *SyncEngine) recordMetrics(calendarID string, result *SyncResult) {
	tag := observability.T("calendar", calendarID)
	e.metrics.Counter(observability.MetricSyncRuns, 1, tag)
	if result.FullSync {
		e.metrics.Counter(observability.MetricSyncFullRefreshes, 1, tag)
	}
	if n := result.Created + result.Updated; n > 0 {
		e.metrics.Counter(observability.MetricSyncEventsWritten, int64(n), tag)
	}
	if result.Deleted > 0 {
		e.metrics.Counter(observability.MetricSyncEventsDeleted, int64(result.Deleted), tag)
	}
}

// fullSync replaces the calendar's cache with the provider's events in
// the bounded window and stores the fresh cursor, all in one
// transaction after every page arrived.
func (e *SyncEngine) fullSync(ctx context.Context, state *domain.SyncState, result *SyncResult) error {
	result.FullSync = true

	now := time.Now().UTC()
	from := now.Add(-e.cfg.WindowPast)
	to := now.Add(e.cfg.WindowFuture)

	var (
		incoming  []*domain.Event
		cursor    string
		pageToken string
	)
	for {
		page, err := e.callProvider(ctx, state.CalendarID(), func(ctx context.Context) (*EventPage, error) {
			return e.provider.ListEvents(ctx, state.CalendarID(), from, to, pageToken)
		})
		if err != nil {
			return err
		}

		for _, item := range page.Items {
			if item.Status == domain.StatusCancelled {
				continue
			}
			incoming = append(incoming, e.toDomainEvent(state, item))
		}

		if page.NextPage == "" {
			cursor = page.NextCursor
			break
		}
		pageToken = page.NextPage
	}

	return sharedApplication.WithUnitOfWork(ctx, e.uow, func(ctx context.Context) error {
		if err := e.events.ReplaceCalendar(ctx, state.UserID(), state.CalendarID(), incoming); err != nil {
			return err
		}
		result.Created = len(incoming)
		state.MarkSynced(cursor, time.Now())
		return e.states.Save(ctx, state)
	})
}

// incrementalSync applies the provider's delta page by page. Each page
// commits in its own transaction; the cursor advances only with the
// final page. Reapplying the same delta is a no-op.
func (e *SyncEngine) incrementalSync(ctx context.Context, state *domain.SyncState, result *SyncResult) error {
	cursor := state.Cursor()
	pageToken := ""

	for {
		page, err := e.callProvider(ctx, state.CalendarID(), func(ctx context.Context) (*EventPage, error) {
			return e.provider.Changes(ctx, state.CalendarID(), cursor, pageToken)
		})
		if err != nil {
			return err
		}

		final := page.NextPage == ""
		err = sharedApplication.WithUnitOfWork(ctx, e.uow, func(ctx context.Context) error {
			for _, item := range page.Items {
				if item.Status == domain.StatusCancelled {
					if err := e.events.DeleteByExternalID(ctx, state.UserID(), state.CalendarID(), item.ExternalID); err != nil {
						return err
					}
					result.Deleted++
					continue
				}
				created, err := e.events.Upsert(ctx, e.toDomainEvent(state, item))
				if err != nil {
					return err
				}
				if created {
					result.Created++
				} else {
					result.Updated++
				}
			}
			if final {
				state.MarkSynced(page.NextCursor, time.Now())
				return e.states.Save(ctx, state)
			}
			return nil
		})
		if err != nil {
			return err
		}

		if final {
			return nil
		}
		pageToken = page.NextPage
	}
}

// discoverCalendars loads the user's sync states, creating enabled
// states for provider calendars seen for the first time.
func (e *SyncEngine) discoverCalendars(ctx context.Context, userID uuid.UUID) ([]*domain.SyncState, error) {
	states, err := e.states.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	known := make(map[string]*domain.SyncState, len(states))
	for _, s := range states {
		known[s.CalendarID()] = s
	}

	infos, err := e.provider.ListCalendars(ctx)
	if err != nil {
		if len(states) > 0 {
			// Discovery is best effort once states exist.
			e.logger.Warn("calendar discovery failed", "error", err)
			return states, nil
		}
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, e.uow, func(ctx context.Context) error {
		for _, info := range infos {
			if existing, ok := known[info.ID]; ok {
				existing.SetName(info.Name)
				existing.SetColor(info.Color)
				if err := e.states.Save(ctx, existing); err != nil {
					return err
				}
				continue
			}
			state := domain.NewSyncState(userID, info.ID, info.Name)
			state.SetColor(info.Color)
			if err := e.states.Save(ctx, state); err != nil {
				return err
			}
			states = append(states, state)
			known[info.ID] = state
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return states, nil
}

// callProvider routes a provider call through the calendar's circuit
// breaker. An open breaker reads as a transport failure.
func (e *SyncEngine) callProvider(ctx context.Context, calendarID string, fn func(ctx context.Context) (*EventPage, error)) (*EventPage, error) {
	breaker := e.breakerFor(calendarID)
	page, err := breaker.Execute(func() (*EventPage, error) {
		return fn(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open for calendar %s", ErrTransport, calendarID)
		}
		return nil, err
	}
	return page, nil
}

func (e *SyncEngine) breakerFor(calendarID string) *gobreaker.CircuitBreaker[*EventPage] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if b, ok := e.breakers[calendarID]; ok {
		return b
	}
	b := gobreaker.NewCircuitBreaker[*EventPage](gobreaker.Settings{
		Name:        "calendar-" + calendarID,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// Only transport failures count against the breaker; an
			// expired cursor is a normal protocol response.
			return err == nil || !errors.Is(err, ErrTransport)
		},
	})
	e.breakers[calendarID] = b
	return b
}

func (e *SyncEngine) toDomainEvent(state *domain.SyncState, item ProviderEvent) *domain.Event {
	ev := domain.NewEvent(state.UserID(), state.CalendarID(), item.ExternalID, item.Title, item.Start, item.End)
	ev.SetAllDay(item.AllDay)
	ev.SetDetails(item.Location, item.Description)
	ev.SetStatus(item.Status)
	ev.SetETag(item.ETag)
	return ev
}

func (e *SyncEngine) publishSynced(ctx context.Context, state *domain.SyncState, result *SyncResult) {
	e.logger.Info("calendar synced",
		"calendar_id", state.CalendarID(),
		"full_sync", result.FullSync,
		"created", result.Created,
		"updated", result.Updated,
		"deleted", result.Deleted,
	)
	if e.publisher == nil {
		return
	}
	event := domain.NewCalendarSynced(state.ID(), state.UserID(), state.CalendarID(),
		result.FullSync, result.Created, result.Updated, result.Deleted)
	payload, err := json.Marshal(event)
	if err != nil {
		e.logger.Warn("marshal sync event", "error", err)
		return
	}
	if err := e.publisher.Publish(ctx, event.RoutingKey(), payload); err != nil {
		e.logger.Warn("publish sync event", "error", err)
	}
}

func leaseKey(state *domain.SyncState) string {
	return "calsync:" + state.UserID().String() + ":" + state.CalendarID()
}
