package commands

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
	"github.com/davidrzs/Timeboard/internal/board/infrastructure/persistence"
	"github.com/davidrzs/Timeboard/internal/shared/infrastructure/database"
	"github.com/davidrzs/Timeboard/internal/shared/infrastructure/database/sqlite"
	"github.com/davidrzs/Timeboard/internal/shared/infrastructure/migrations"
)

var wednesday = time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)

type moveFixture struct {
	repo    *persistence.TaskRepository
	handler *MoveTaskHandler
	userID  uuid.UUID
}

func newMoveFixture(t *testing.T) *moveFixture {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.RunSQLite(context.Background(), db))

	conn := sqlite.WrapDB(db)
	repo := persistence.NewTaskRepository(conn)
	uow := database.NewUnitOfWork(conn)

	return &moveFixture{
		repo:    repo,
		handler: NewMoveTaskHandler(repo, uow, nil, nil),
		userID:  uuid.New(),
	}
}

func (f *moveFixture) addTask(t *testing.T, title string, due *time.Time, position int) *task.Task {
	t.Helper()
	tk, err := task.NewTask(f.userID, title)
	require.NoError(t, err)
	if due != nil {
		d := task.DateOf(*due)
		tk.ApplyDueDate(&d, wednesday)
	}
	tk.SetPosition(position)
	tk.ClearDomainEvents()
	require.NoError(t, f.repo.Save(context.Background(), tk))
	return tk
}

func (f *moveFixture) bucketTitles(t *testing.T, b task.Bucket) []string {
	t.Helper()
	items, err := f.repo.FindByBucket(context.Background(), f.userID, b.Filter(wednesday))
	require.NoError(t, err)

	titles := make([]string, len(items))
	for i, tk := range items {
		// Positions must be contiguous from zero in listing order.
		require.Equal(t, i, tk.Position(), "gap at %q position %d", tk.Title(), tk.Position())
		titles[i] = tk.Title()
	}
	return titles
}

func duePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestMoveWithinBucketReorders(t *testing.T) {
	f := newMoveFixture(t)
	due := duePtr(2025, time.March, 12)
	f.addTask(t, "a", due, 0)
	b := f.addTask(t, "b", due, 1)
	f.addTask(t, "c", due, 2)

	_, err := f.handler.Handle(context.Background(), MoveTaskCommand{
		UserID: f.userID,
		TaskID: b.ID(),
		Target: task.HorizonBucket(task.HorizonToday),
		Index:  0,
		Today:  wednesday,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a", "c"},
		f.bucketTitles(t, task.HorizonBucket(task.HorizonToday)))
}

func TestMoveWithinBucketToEnd(t *testing.T) {
	f := newMoveFixture(t)
	due := duePtr(2025, time.March, 12)
	a := f.addTask(t, "a", due, 0)
	f.addTask(t, "b", due, 1)
	f.addTask(t, "c", due, 2)

	_, err := f.handler.Handle(context.Background(), MoveTaskCommand{
		UserID: f.userID,
		TaskID: a.ID(),
		Target: task.HorizonBucket(task.HorizonToday),
		Index:  2,
		Today:  wednesday,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "c", "a"},
		f.bucketTitles(t, task.HorizonBucket(task.HorizonToday)))
}

func TestMoveAcrossHorizonsAssignsAnchorAndCompacts(t *testing.T) {
	f := newMoveFixture(t)
	due := duePtr(2025, time.March, 12)
	f.addTask(t, "a", due, 0)
	b := f.addTask(t, "b", due, 1)
	f.addTask(t, "c", due, 2)
	f.addTask(t, "x", duePtr(2025, time.March, 18), 0)

	moved, err := f.handler.Handle(context.Background(), MoveTaskCommand{
		UserID: f.userID,
		TaskID: b.ID(),
		Target: task.HorizonBucket(task.HorizonNextWeek),
		Index:  0,
		Today:  wednesday,
	})
	require.NoError(t, err)

	// Anchor due date is next week's Sunday, and the move counts as
	// a postponement.
	require.NotNil(t, moved.DueDate())
	assert.Equal(t, time.Date(2025, time.March, 23, 0, 0, 0, 0, time.UTC), *moved.DueDate())
	assert.Equal(t, 1, moved.RescheduleCount())

	assert.Equal(t, []string{"a", "c"},
		f.bucketTitles(t, task.HorizonBucket(task.HorizonToday)))
	assert.Equal(t, []string{"b", "x"},
		f.bucketTitles(t, task.HorizonBucket(task.HorizonNextWeek)))
}

func TestMoveToBacklogClearsDueDate(t *testing.T) {
	f := newMoveFixture(t)
	b := f.addTask(t, "b", duePtr(2025, time.March, 12), 0)

	moved, err := f.handler.Handle(context.Background(), MoveTaskCommand{
		UserID: f.userID,
		TaskID: b.ID(),
		Target: task.HorizonBucket(task.HorizonBacklog),
		Index:  0,
		Today:  wednesday,
	})
	require.NoError(t, err)

	assert.Nil(t, moved.DueDate())
	assert.Zero(t, moved.RescheduleCount())
	assert.Equal(t, []string{"b"},
		f.bucketTitles(t, task.HorizonBucket(task.HorizonBacklog)))
}

func TestMoveClampsOutOfRangeIndex(t *testing.T) {
	f := newMoveFixture(t)
	due := duePtr(2025, time.March, 12)
	a := f.addTask(t, "a", due, 0)
	f.addTask(t, "b", due, 1)
	f.addTask(t, "c", due, 2)

	moved, err := f.handler.Handle(context.Background(), MoveTaskCommand{
		UserID: f.userID,
		TaskID: a.ID(),
		Target: task.HorizonBucket(task.HorizonToday),
		Index:  99,
		Today:  wednesday,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, moved.Position())

	moved, err = f.handler.Handle(context.Background(), MoveTaskCommand{
		UserID: f.userID,
		TaskID: a.ID(),
		Target: task.HorizonBucket(task.HorizonToday),
		Index:  -5,
		Today:  wednesday,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, moved.Position())

	assert.Equal(t, []string{"a", "b", "c"},
		f.bucketTitles(t, task.HorizonBucket(task.HorizonToday)))
}

func TestMoveUnknownTaskReturnsNotFound(t *testing.T) {
	f := newMoveFixture(t)

	_, err := f.handler.Handle(context.Background(), MoveTaskCommand{
		UserID: f.userID,
		TaskID: uuid.New(),
		Target: task.HorizonBucket(task.HorizonToday),
		Today:  wednesday,
	})
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}

func TestMoveOtherUsersTaskReturnsNotFound(t *testing.T) {
	f := newMoveFixture(t)
	b := f.addTask(t, "b", duePtr(2025, time.March, 12), 0)

	_, err := f.handler.Handle(context.Background(), MoveTaskCommand{
		UserID: uuid.New(),
		TaskID: b.ID(),
		Target: task.HorizonBucket(task.HorizonToday),
		Today:  wednesday,
	})
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}

func TestMoveIntoProjectBucket(t *testing.T) {
	f := newMoveFixture(t)
	projectID := uuid.New()
	b := f.addTask(t, "b", duePtr(2025, time.March, 12), 0)

	moved, err := f.handler.Handle(context.Background(), MoveTaskCommand{
		UserID: f.userID,
		TaskID: b.ID(),
		Target: task.ProjectBucket(projectID),
		Index:  0,
		Today:  wednesday,
	})
	require.NoError(t, err)

	require.NotNil(t, moved.ProjectID())
	assert.Equal(t, projectID, *moved.ProjectID())
	// A project move leaves the due date alone.
	require.NotNil(t, moved.DueDate())
	assert.Equal(t, []string{"b"}, f.bucketTitles(t, task.ProjectBucket(projectID)))
}
