package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/davidrzs/Timeboard/internal/board/domain/task"
	"github.com/davidrzs/Timeboard/internal/scheduling/domain"
	"github.com/davidrzs/Timeboard/pkg/observability"
)

// PlanConfig tunes plan generation.
type PlanConfig struct {
	// BufferMinutes pads every calendar event on both sides.
	BufferMinutes int
	// DefaultTaskMinutes is assumed for tasks without an estimate.
	DefaultTaskMinutes int
	// MaxTasks caps how many tasks one plan considers.
	MaxTasks int
}

// DefaultPlanConfig returns the planner defaults.
func DefaultPlanConfig() PlanConfig {
	return PlanConfig{
		BufferMinutes:      15,
		DefaultTaskMinutes: 30,
		MaxTasks:           30,
	}
}

// Slot is one planned task placement.
type Slot struct {
	TaskID  uuid.UUID
	Title   string
	Start   time.Time
	End     time.Time
	Minutes int
}

// UnplacedTask is a task the plan could not fit. It is reported, never
// silently dropped.
type UnplacedTask struct {
	TaskID  uuid.UUID
	Title   string
	Minutes int
	Reason  string
}

// Plan is a proposed day schedule. It is a draft: nothing is written
// to tasks until the plan is committed.
type Plan struct {
	UserID   uuid.UUID
	Date     time.Time
	Slots    []Slot
	Unplaced []UnplacedTask
	// Message is a short human summary of the day shape.
	Message string
}

// Reorder moves the slot at from before the slot now at to, then
// restacks every slot back to back starting at the first slot's
// original start time.
func (p *Plan) Reorder(from, to int) error {
	if from < 0 || from >= len(p.Slots) || to < 0 || to >= len(p.Slots) {
		return fmt.Errorf("reorder out of range: %d -> %d of %d slots", from, to, len(p.Slots))
	}
	if from == to {
		return nil
	}

	anchor := p.Slots[0].Start

	moved := p.Slots[from]
	rest := append(append([]Slot{}, p.Slots[:from]...), p.Slots[from+1:]...)
	p.Slots = append(append(append([]Slot{}, rest[:to]...), moved), rest[to:]...)

	cursor := anchor
	for i := range p.Slots {
		d := time.Duration(p.Slots[i].Minutes) * time.Minute
		p.Slots[i].Start = cursor
		p.Slots[i].End = cursor.Add(d)
		cursor = p.Slots[i].End
	}
	return nil
}

// BusySource reports calendar busy intervals. The calendar context's
// events query satisfies this.
type BusySource interface {
	BusyIntervals(ctx context.Context, userID uuid.UUID, from, to time.Time) ([][2]time.Time, error)
}

// Freshener refreshes stale calendar caches before planning.
type Freshener interface {
	EnsureFresh(ctx context.Context, userID uuid.UUID) error
}

// Planner generates day plans. Tasks are sorted by priority, then due
// date, then age, and placed first fit into the free gaps left between
// calendar events inside the user's planning windows.
type Planner struct {
	tasks   task.Repository
	windows domain.WindowRepository
	busy    BusySource
	fresh   Freshener
	logger  *slog.Logger
	metrics observability.Metrics
	cfg     PlanConfig
}

// NewPlanner wires the planner. busy and fresh may be nil when no
// calendar is configured.
func NewPlanner(
	tasks task.Repository,
	windows domain.WindowRepository,
	busy BusySource,
	fresh Freshener,
	logger *slog.Logger,
	cfg PlanConfig,
) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultTaskMinutes <= 0 {
		cfg.DefaultTaskMinutes = 30
	}
	if cfg.MaxTasks <= 0 {
		cfg.MaxTasks = 30
	}
	return &Planner{
		tasks:   tasks,
		windows: windows,
		busy:    busy,
		fresh:   fresh,
		logger:  logger,
		metrics: observability.NoopMetrics{},
		cfg:     cfg,
	}
}

// SetMetrics swaps the metrics collector, nil restores the no-op.
func (p *Planner) SetMetrics(m observability.Metrics) {
	if m == nil {
		m = observability.NoopMetrics{}
	}
	p.metrics = m
}

// Generate builds a plan for the date. The result is a draft; see
// CommitPlanHandler.
func (p *Planner) Generate(ctx context.Context, userID uuid.UUID, date time.Time) (*Plan, error) {
	if p.fresh != nil {
		// Planning proceeds on the existing cache if the refresh fails.
		if err := p.fresh.EnsureFresh(ctx, userID); err != nil {
			p.logger.Warn("calendar refresh before planning failed", "error", err)
		}
	}

	free, err := p.freeGaps(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	candidates, err := p.tasks.FindPlannable(ctx, userID, p.cfg.MaxTasks)
	if err != nil {
		return nil, err
	}
	sortForPlanning(candidates)

	plan := &Plan{UserID: userID, Date: task.DateOf(date)}
	for _, tk := range candidates {
		minutes := tk.EstimatedMinutes()
		if minutes <= 0 {
			minutes = p.cfg.DefaultTaskMinutes
		}
		need := time.Duration(minutes) * time.Minute

		placed := false
		for gi := range free {
			if free[gi].Duration() < need {
				continue
			}
			start := free[gi].Start
			plan.Slots = append(plan.Slots, Slot{
				TaskID:  tk.ID(),
				Title:   tk.Title(),
				Start:   start,
				End:     start.Add(need),
				Minutes: minutes,
			})
			free[gi].Start = start.Add(need)
			placed = true
			break
		}
		if !placed {
			plan.Unplaced = append(plan.Unplaced, UnplacedTask{
				TaskID:  tk.ID(),
				Title:   tk.Title(),
				Minutes: minutes,
				Reason:  fmt.Sprintf("no free gap of %d minutes left", minutes),
			})
		}
	}

	plan.Message = planMessage(candidates, plan.Date, len(plan.Slots))

	p.metrics.Counter(observability.MetricPlanSlots, int64(len(plan.Slots)))
	if len(plan.Unplaced) > 0 {
		p.metrics.Counter(observability.MetricPlanUnplaced, int64(len(plan.Unplaced)))
	}
	return plan, nil
}

// freeGaps computes the date's plannable gaps: the user's planning
// windows minus the day's busy calendar events, each padded by the
// buffer.
func (p *Planner) freeGaps(ctx context.Context, userID uuid.UUID, date time.Time) ([]domain.Interval, error) {
	windows, err := p.windows.FindByUserAndWeekday(ctx, userID, date.Weekday())
	if err != nil {
		return nil, err
	}

	var free []domain.Interval
	if len(windows) == 0 {
		free = domain.DefaultIntervals(date)
	} else {
		for _, w := range windows {
			free = append(free, w.Interval(date))
		}
		free = domain.MergeIntervals(free)
	}
	if len(free) == 0 {
		return nil, nil
	}

	var busy []domain.Interval
	dayStart := free[0].Start.Add(-24 * time.Hour)
	dayEnd := free[len(free)-1].End.Add(24 * time.Hour)

	if p.busy != nil {
		pairs, err := p.busy.BusyIntervals(ctx, userID, dayStart, dayEnd)
		if err != nil {
			return nil, err
		}
		for _, pair := range pairs {
			busy = append(busy, domain.Interval{Start: pair[0], End: pair[1]})
		}
	}

	// Slots committed by earlier plans block time the same way meetings
	// do, so regenerating never double-books them.
	scheduled, err := p.tasks.FindScheduledInRange(ctx, userID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	for _, tk := range scheduled {
		busy = append(busy, domain.Interval{Start: *tk.ScheduledStart(), End: *tk.ScheduledEnd()})
	}

	buffer := time.Duration(p.cfg.BufferMinutes) * time.Minute
	return domain.SubtractIntervals(free, domain.PadIntervals(busy, buffer)), nil
}

// planMessage summarizes the day: overdue work first, then high
// priority load, then how full the schedule is.
func planMessage(candidates []*task.Task, date time.Time, placed int) string {
	overdue := 0
	highPriority := 0
	for _, tk := range candidates {
		if due := tk.DueDate(); due != nil && due.Before(date) {
			overdue++
		}
		if tk.Priority() == task.PriorityHigh {
			highPriority++
		}
	}

	switch {
	case overdue == 1:
		return "You have 1 overdue task to tackle today. Let's get through it!"
	case overdue > 1:
		return fmt.Sprintf("You have %d overdue tasks to tackle today. Let's get through them!", overdue)
	case highPriority == 1:
		return "You have 1 high-priority task today. Focus on what matters most."
	case highPriority > 1:
		return fmt.Sprintf("You have %d high-priority tasks today. Focus on what matters most.", highPriority)
	case placed > 5:
		return "Busy day ahead! Take it one task at a time."
	case placed > 0:
		return "Here's your plan for today. You've got this!"
	default:
		return "Looks like a light day. Great time to get ahead on upcoming tasks."
	}
}

// sortForPlanning orders candidates by priority, earliest due date
// (undated last), then creation time.
func sortForPlanning(tasks []*task.Task) {
	sort.SliceStable(tasks, func(a, b int) bool {
		ta, tb := tasks[a], tasks[b]
		if ta.Priority().SortValue() != tb.Priority().SortValue() {
			return ta.Priority().SortValue() < tb.Priority().SortValue()
		}
		da, db := ta.DueDate(), tb.DueDate()
		switch {
		case da != nil && db == nil:
			return true
		case da == nil && db != nil:
			return false
		case da != nil && db != nil && !da.Equal(*db):
			return da.Before(*db)
		}
		return ta.CreatedAt().Before(tb.CreatedAt())
	})
}
