package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/davidrzs/Timeboard/internal/board/domain/task"
)

// ReminderSender delivers a due-task digest. Delivery transport is
// outside this package; the worker only decides when and what.
type ReminderSender interface {
	SendDigest(ctx context.Context, userID uuid.UUID, dueToday, overdue []*task.Task) error
}

// LogSender writes the digest to the log. Default in local mode.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) SendDigest(ctx context.Context, userID uuid.UUID, dueToday, overdue []*task.Task) error {
	s.Logger.Info("daily digest", "user_id", userID, "due_today", len(dueToday), "overdue", len(overdue))
	return nil
}

// ReminderWorker runs an hourly cron job that sends the morning digest
// of due and overdue tasks.
type ReminderWorker struct {
	tasks   task.Repository
	sender  ReminderSender
	userID  uuid.UUID
	cron    *cron.Cron
	logger  *slog.Logger
	running atomic.Bool
	// DigestHour is the local hour the digest goes out. Runs are
	// hourly; only the matching hour sends.
	DigestHour int
}

// NewReminderWorker wires the worker.
func NewReminderWorker(tasks task.Repository, sender ReminderSender, userID uuid.UUID, logger *slog.Logger) *ReminderWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderWorker{
		tasks:      tasks,
		sender:     sender,
		userID:     userID,
		logger:     logger,
		DigestHour: 7,
	}
}

// Start schedules the hourly job. It returns immediately.
func (w *ReminderWorker) Start(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return nil
	}

	w.cron = cron.New()
	_, err := w.cron.AddFunc("0 * * * *", func() {
		if time.Now().Hour() != w.DigestHour {
			return
		}
		if err := w.RunOnce(ctx); err != nil {
			w.logger.Error("reminder run failed", "error", err)
		}
	})
	if err != nil {
		w.running.Store(false)
		return err
	}

	w.cron.Start()
	w.logger.Info("reminder worker started", "digest_hour", w.DigestHour)
	return nil
}

// Stop halts the cron scheduler.
func (w *ReminderWorker) Stop() {
	if !w.running.CompareAndSwap(true, false) {
		return
	}
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
	w.logger.Info("reminder worker stopped")
}

// IsRunning reports whether the scheduler is active.
func (w *ReminderWorker) IsRunning() bool { return w.running.Load() }

// RunOnce collects the digest and hands it to the sender.
func (w *ReminderWorker) RunOnce(ctx context.Context) error {
	today := task.DateOf(time.Now())
	due, err := w.tasks.FindDueBy(ctx, w.userID, today)
	if err != nil {
		return err
	}

	var dueToday, overdue []*task.Task
	for _, t := range due {
		if t.DueDate() != nil && t.DueDate().Before(today) {
			overdue = append(overdue, t)
		} else {
			dueToday = append(dueToday, t)
		}
	}

	if len(dueToday) == 0 && len(overdue) == 0 {
		return nil
	}
	return w.sender.SendDigest(ctx, w.userID, dueToday, overdue)
}
