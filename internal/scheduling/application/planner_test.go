package application

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/davidrzs/Timeboard/internal/board/domain/task"
	boardPersistence "github.com/davidrzs/Timeboard/internal/board/infrastructure/persistence"
	"github.com/davidrzs/Timeboard/internal/scheduling/domain"
	schedPersistence "github.com/davidrzs/Timeboard/internal/scheduling/infrastructure/persistence"
	"github.com/davidrzs/Timeboard/internal/shared/infrastructure/database"
	"github.com/davidrzs/Timeboard/internal/shared/infrastructure/database/sqlite"
	"github.com/davidrzs/Timeboard/internal/shared/infrastructure/migrations"
)

var planDate = time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC) // Wednesday

func clock(hour, minute int) time.Time {
	return time.Date(2025, time.March, 12, hour, minute, 0, 0, time.UTC)
}

type staticBusy struct {
	intervals [][2]time.Time
}

func (s *staticBusy) BusyIntervals(ctx context.Context, userID uuid.UUID, from, to time.Time) ([][2]time.Time, error) {
	return s.intervals, nil
}

type plannerFixture struct {
	planner *Planner
	tasks   *boardPersistence.TaskRepository
	windows *schedPersistence.WindowRepository
	conn    *sqlite.Connection
	busy    *staticBusy
	userID  uuid.UUID
}

func newPlannerFixture(t *testing.T) *plannerFixture {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.RunSQLite(context.Background(), db))

	conn := sqlite.WrapDB(db)
	busy := &staticBusy{}
	tasks := boardPersistence.NewTaskRepository(conn)
	windows := schedPersistence.NewWindowRepository(conn)

	return &plannerFixture{
		planner: NewPlanner(tasks, windows, busy, nil, nil, DefaultPlanConfig()),
		tasks:   tasks,
		windows: windows,
		conn:    conn,
		busy:    busy,
		userID:  uuid.New(),
	}
}

func (fx *plannerFixture) addTask(t *testing.T, title string, priority task.Priority, minutes int, due *time.Time) *task.Task {
	t.Helper()
	tk, err := task.NewTask(fx.userID, title)
	require.NoError(t, err)
	tk.SetPriority(priority)
	tk.SetEstimatedMinutes(minutes)
	if due != nil {
		tk.ApplyDueDate(due, planDate)
	}
	require.NoError(t, fx.tasks.Save(context.Background(), tk))
	tk.ClearDomainEvents()
	return tk
}

func slotTitles(plan *Plan) []string {
	titles := make([]string, 0, len(plan.Slots))
	for _, s := range plan.Slots {
		titles = append(titles, s.Title)
	}
	return titles
}

func TestGeneratePlanOrdersAndPlacesFirstFit(t *testing.T) {
	fx := newPlannerFixture(t)
	due := clock(0, 0)

	fx.addTask(t, "low filler", task.PriorityLow, 30, nil)
	fx.addTask(t, "urgent report", task.PriorityHigh, 60, &due)
	fx.addTask(t, "medium chore", task.PriorityMedium, 45, nil)

	plan, err := fx.planner.Generate(context.Background(), fx.userID, planDate)
	require.NoError(t, err)
	require.Empty(t, plan.Unplaced)

	assert.Equal(t, []string{"urgent report", "medium chore", "low filler"}, slotTitles(plan))

	// Default windows start at 09:00; slots stack without gaps.
	assert.Equal(t, clock(9, 0), plan.Slots[0].Start)
	assert.Equal(t, clock(10, 0), plan.Slots[0].End)
	assert.Equal(t, clock(10, 0), plan.Slots[1].Start)
	assert.Equal(t, clock(10, 45), plan.Slots[1].End)
	assert.Equal(t, clock(10, 45), plan.Slots[2].Start)
}

func TestGeneratePlanRespectsBusyWithBuffer(t *testing.T) {
	fx := newPlannerFixture(t)
	// Meeting 10:00-11:00 with 15 min buffer blocks 09:45-11:15.
	fx.busy.intervals = [][2]time.Time{{clock(10, 0), clock(11, 0)}}

	fx.addTask(t, "deep work", task.PriorityHigh, 90, nil)

	plan, err := fx.planner.Generate(context.Background(), fx.userID, planDate)
	require.NoError(t, err)

	// The 09:00-09:45 gap is too small for 90 minutes even though the
	// day has room in total; the first fitting gap is 14:00.
	require.Len(t, plan.Slots, 1)
	assert.Equal(t, clock(14, 0), plan.Slots[0].Start)
	assert.Equal(t, clock(15, 30), plan.Slots[0].End)
}

func TestGeneratePlanReportsUnplaced(t *testing.T) {
	fx := newPlannerFixture(t)
	// One short window only.
	w, err := fx.windows.FindByUserAndWeekday(context.Background(), fx.userID, planDate.Weekday())
	require.NoError(t, err)
	require.Empty(t, w)
	require.NoError(t, fx.windows.Save(context.Background(), mustWindow(t, fx.userID, planDate.Weekday(), 9*60, 10*60)))

	fx.addTask(t, "fits", task.PriorityHigh, 45, nil)
	fx.addTask(t, "too big", task.PriorityMedium, 120, nil)

	plan, err := fx.planner.Generate(context.Background(), fx.userID, planDate)
	require.NoError(t, err)

	require.Len(t, plan.Slots, 1)
	assert.Equal(t, "fits", plan.Slots[0].Title)
	require.Len(t, plan.Unplaced, 1)
	assert.Equal(t, "too big", plan.Unplaced[0].Title)
	assert.Contains(t, plan.Unplaced[0].Reason, "120 minutes")
}

func TestGeneratePlanAvoidsCommittedSlots(t *testing.T) {
	fx := newPlannerFixture(t)

	// A slot committed by an earlier plan occupies 09:00-10:00.
	committed := fx.addTask(t, "committed work", task.PriorityHigh, 60, nil)
	require.NoError(t, committed.Schedule(clock(9, 0), clock(10, 0)))
	require.NoError(t, fx.tasks.Save(context.Background(), committed))

	fx.addTask(t, "next up", task.PriorityMedium, 60, nil)

	plan, err := fx.planner.Generate(context.Background(), fx.userID, planDate)
	require.NoError(t, err)

	// The committed task is not replanned, and the new task lands after
	// the committed slot plus buffer, never on top of it.
	require.Len(t, plan.Slots, 1)
	assert.Equal(t, "next up", plan.Slots[0].Title)
	assert.Equal(t, clock(10, 15), plan.Slots[0].Start)
	assert.Equal(t, clock(11, 15), plan.Slots[0].End)
}

func TestGeneratePlanMorningWindowWithMeeting(t *testing.T) {
	fx := newPlannerFixture(t)
	monday := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	at := func(hour, minute int) time.Time {
		return time.Date(2025, time.March, 10, hour, minute, 0, 0, time.UTC)
	}

	// Single 09:00-12:00 window with a 10:00-10:30 meeting. The buffer
	// pads the meeting to 09:45-10:45, leaving 45 and 75 minute gaps.
	require.NoError(t, fx.windows.Save(context.Background(),
		mustWindow(t, fx.userID, time.Monday, 9*60, 12*60)))
	fx.busy.intervals = [][2]time.Time{{at(10, 0), at(10, 30)}}

	fx.addTask(t, "big block", task.PriorityHigh, 90, nil)
	fx.addTask(t, "writeup", task.PriorityMedium, 60, nil)

	plan, err := fx.planner.Generate(context.Background(), fx.userID, monday)
	require.NoError(t, err)

	// First fit is strict: the 90 minute task fits neither gap and is
	// reported, it never squeezes into the 75 minute one.
	require.Len(t, plan.Unplaced, 1)
	assert.Equal(t, "big block", plan.Unplaced[0].Title)

	require.Len(t, plan.Slots, 1)
	assert.Equal(t, "writeup", plan.Slots[0].Title)
	assert.Equal(t, at(10, 45), plan.Slots[0].Start)
	assert.Equal(t, at(11, 45), plan.Slots[0].End)
}

func TestGeneratePlanUsesDefaultEstimate(t *testing.T) {
	fx := newPlannerFixture(t)
	fx.addTask(t, "unestimated", task.PriorityNone, 0, nil)

	plan, err := fx.planner.Generate(context.Background(), fx.userID, planDate)
	require.NoError(t, err)
	require.Len(t, plan.Slots, 1)
	assert.Equal(t, 30, plan.Slots[0].Minutes)
}

func TestPlanMessageVariants(t *testing.T) {
	userID := uuid.New()
	overdueDate := planDate.AddDate(0, 0, -2)

	newTask := func(title string, priority task.Priority, due *time.Time) *task.Task {
		tk, err := task.NewTask(userID, title)
		require.NoError(t, err)
		tk.SetPriority(priority)
		if due != nil {
			tk.ApplyDueDate(due, overdueDate)
		}
		return tk
	}

	overdue := newTask("late", task.PriorityLow, &overdueDate)
	urgent := newTask("urgent", task.PriorityHigh, nil)
	plain := newTask("plain", task.PriorityNone, nil)

	assert.Equal(t,
		"You have 1 overdue task to tackle today. Let's get through it!",
		planMessage([]*task.Task{overdue, urgent}, planDate, 2))
	assert.Equal(t,
		"You have 1 high-priority task today. Focus on what matters most.",
		planMessage([]*task.Task{urgent, plain}, planDate, 2))
	assert.Equal(t,
		"Busy day ahead! Take it one task at a time.",
		planMessage([]*task.Task{plain}, planDate, 6))
	assert.Equal(t,
		"Here's your plan for today. You've got this!",
		planMessage([]*task.Task{plain}, planDate, 1))
	assert.Equal(t,
		"Looks like a light day. Great time to get ahead on upcoming tasks.",
		planMessage(nil, planDate, 0))
}

func TestPlanReorderRestacks(t *testing.T) {
	plan := &Plan{
		Date: planDate,
		Slots: []Slot{
			{Title: "a", Start: clock(9, 0), End: clock(10, 0), Minutes: 60},
			{Title: "b", Start: clock(10, 0), End: clock(10, 30), Minutes: 30},
			{Title: "c", Start: clock(10, 30), End: clock(11, 15), Minutes: 45},
		},
	}

	require.NoError(t, plan.Reorder(2, 0))

	assert.Equal(t, []string{"c", "a", "b"}, slotTitles(plan))
	assert.Equal(t, clock(9, 0), plan.Slots[0].Start)
	assert.Equal(t, clock(9, 45), plan.Slots[0].End)
	assert.Equal(t, clock(9, 45), plan.Slots[1].Start)
	assert.Equal(t, clock(10, 45), plan.Slots[1].End)
	assert.Equal(t, clock(10, 45), plan.Slots[2].Start)
	assert.Equal(t, clock(11, 15), plan.Slots[2].End)

	require.Error(t, plan.Reorder(0, 5))
}

func TestCommitPlanAllOrNothing(t *testing.T) {
	fx := newPlannerFixture(t)
	uow := database.NewUnitOfWork(fx.conn)
	handler := NewCommitPlanHandler(fx.tasks, uow, nil, nil)

	a := fx.addTask(t, "first", task.PriorityHigh, 30, nil)
	b := fx.addTask(t, "second", task.PriorityMedium, 30, nil)

	plan, err := fx.planner.Generate(context.Background(), fx.userID, planDate)
	require.NoError(t, err)
	require.Len(t, plan.Slots, 2)

	// The board changed after generation: the second task completed.
	require.NoError(t, b.Complete())
	require.NoError(t, fx.tasks.Save(context.Background(), b))

	err = handler.Handle(context.Background(), CommitPlanCommand{Plan: plan})
	require.ErrorIs(t, err, ErrCommitConflict)

	// Nothing was written, including the first slot.
	reloaded, err := fx.tasks.FindByID(context.Background(), a.ID())
	require.NoError(t, err)
	assert.Nil(t, reloaded.ScheduledStart())

	// A fresh plan over the surviving task commits cleanly.
	plan, err = fx.planner.Generate(context.Background(), fx.userID, planDate)
	require.NoError(t, err)
	require.Len(t, plan.Slots, 1)
	require.NoError(t, handler.Handle(context.Background(), CommitPlanCommand{Plan: plan}))

	reloaded, err = fx.tasks.FindByID(context.Background(), a.ID())
	require.NoError(t, err)
	require.NotNil(t, reloaded.ScheduledStart())
	assert.Equal(t, clock(9, 0), reloaded.ScheduledStart().UTC())
}

func mustWindow(t *testing.T, userID uuid.UUID, weekday time.Weekday, start, end int) *domain.Window {
	t.Helper()
	w, err := domain.NewWindow(userID, weekday, start, end)
	require.NoError(t, err)
	return w
}
