package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"task_manager/internal/domain"
	"task_manager/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultBatch = 100

var DeadlineNotifications = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "task_deadline_notifications_total",
		Help: "Deadline notifications by result",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(DeadlineNotifications)
}

// DueTasks is the part of the task service the watcher drives.
type DueTasks interface {
	OverdueTasks(ctx context.Context, limit int) ([]*domain.Task, error)
	MarkNotified(ctx context.Context, t *domain.Task) error
	PublishDue(t *domain.Task)
}

type UserLookup interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// Watcher periodically notifies owners of tasks whose deadline has passed.
// It only records that a notification went out; task status is left alone.
type Watcher struct {
	tasks    DueTasks
	users    UserLookup
	mailer   Mailer
	interval time.Duration
	batch    int
}

func NewWatcher(tasks DueTasks, users UserLookup, mailer Mailer, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Watcher{tasks: tasks, users: users, mailer: mailer, interval: interval, batch: defaultBatch}
}

// Run scans until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	log := logger.WithContext(ctx).With("component", "deadline_watcher")
	log.Info("deadline watcher started", "interval", w.interval.String())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("deadline watcher stopped")
			return
		case <-ticker.C:
			n, err := w.Scan(ctx)
			if err != nil {
				log.Error("deadline scan failed", "error", err)
				continue
			}
			if n > 0 {
				log.Info("deadline notifications sent", "count", n)
			}
		}
	}
}

// Scan runs one pass and returns how many tasks were notified.
//
// A task whose mail fails stays pending and is retried on the next pass.
// A task whose mail can never be delivered is marked notified without an
// event so it stops taking a slot in every batch. The pass ends early once
// the relay is reported unavailable.
func (w *Watcher) Scan(ctx context.Context) (int, error) {
	due, err := w.tasks.OverdueTasks(ctx, w.batch)
	if err != nil {
		return 0, err
	}

	log := logger.WithContext(ctx)
	sent := 0
	for i, t := range due {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}

		err := w.deliver(ctx, t)
		switch {
		case err == nil:
			if err := w.tasks.MarkNotified(ctx, t); err != nil {
				DeadlineNotifications.WithLabelValues("failed").Inc()
				log.Warn("deadline notification not recorded", "task_id", t.ID, "error", err)
				continue
			}
			w.tasks.PublishDue(t)
			DeadlineNotifications.WithLabelValues("sent").Inc()
			sent++
		case undeliverable(err):
			DeadlineNotifications.WithLabelValues("rejected").Inc()
			log.Warn("deadline notification undeliverable", "task_id", t.ID, "error", err)
			if err := w.tasks.MarkNotified(ctx, t); err != nil {
				log.Warn("deadline notification not recorded", "task_id", t.ID, "error", err)
			}
		case errors.Is(err, ErrRelayUnavailable):
			DeadlineNotifications.WithLabelValues("deferred").Add(float64(len(due) - i))
			log.Warn("mail relay unavailable, ending pass", "pending", len(due)-i)
			return sent, nil
		default:
			DeadlineNotifications.WithLabelValues("failed").Inc()
			log.Warn("deadline notification failed", "task_id", t.ID, "error", err)
		}
	}
	return sent, nil
}

func undeliverable(err error) bool {
	return errors.Is(err, ErrRejected) || errors.Is(err, domain.ErrUserNotFound)
}

func (w *Watcher) deliver(ctx context.Context, t *domain.Task) error {
	owner, err := w.users.GetUser(ctx, t.UserID)
	if err != nil {
		return fmt.Errorf("lookup owner: %w", err)
	}

	subject := fmt.Sprintf("Task %q is past its deadline", t.Title)
	body := fmt.Sprintf("Hi %s,\n\nyour task %q was due at %s and is still %s.\n",
		owner.Name, t.Title, t.EndTime.UTC().Format(time.RFC1123), t.Status)
	return w.mailer.Send(ctx, owner.Email, subject, body)
}
