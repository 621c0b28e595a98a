package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/juliaconfecciones/production-backend/internal/notifications"
	"github.com/juliaconfecciones/production-backend/internal/production"
	"github.com/juliaconfecciones/production-backend/pkg/enums"
	"github.com/juliaconfecciones/production-backend/pkg/logger"
)

const defaultReminderAfter = 48 * time.Hour

type staleTaskLister interface {
	ListStaleTasks(ctx context.Context, startedBefore time.Time) ([]production.StaleTask, error)
}

type ReminderJobParams struct {
	Logger   *logger.Logger
	DB       txRunner
	Tasks    staleTaskLister
	Notifier notifications.Notifier
	// After is how long a stage may stay in process before its assignee is
	// reminded, and how long to wait before reminding again.
	After time.Duration
}

func NewReminderJob(params ReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Tasks == nil {
		return nil, fmt.Errorf("stale task lister required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	after := params.After
	if after <= 0 {
		after = defaultReminderAfter
	}
	return &reminderJob{
		logg:     params.Logger,
		db:       params.DB,
		tasks:    params.Tasks,
		notifier: params.Notifier,
		after:    after,
		now:      time.Now,
	}, nil
}

type reminderJob struct {
	logg     *logger.Logger
	db       txRunner
	tasks    staleTaskLister
	notifier notifications.Notifier
	after    time.Duration
	now      func() time.Time
}

func (j *reminderJob) Name() string { return "task-reminders" }

func (j *reminderJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.after)
	stale, err := j.tasks.ListStaleTasks(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list stale tasks: %w", err)
	}

	var (
		errs    error
		sent    int
		skipped int
	)
	for _, task := range stale {
		reminded, err := j.remind(ctx, task, cutoff)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("order %s %s: %w", task.OrderRef, task.Stage, err))
			continue
		}
		if reminded {
			sent++
		} else {
			skipped++
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":  cutoff,
		"stale":   len(stale),
		"sent":    sent,
		"skipped": skipped,
	})
	j.logg.Info(logCtx, "cron.reminders.complete")
	return errs
}

// remind sends one reminder unless the assignee already got one for the
// order since cutoff.
func (j *reminderJob) remind(ctx context.Context, task production.StaleTask, cutoff time.Time) (bool, error) {
	var reminded bool
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		already, err := j.notifier.SentSince(ctx, tx, task.AssigneeID, task.OrderID, enums.NotificationKindReminder, cutoff)
		if err != nil {
			return err
		}
		if already {
			return nil
		}
		orderID := task.OrderID
		elapsed := j.now().UTC().Sub(task.StartedAt).Truncate(time.Hour)
		if _, err := j.notifier.Notify(ctx, tx, notifications.NotifyInput{
			EmployeeID: task.AssigneeID,
			OrderID:    &orderID,
			Kind:       enums.NotificationKindReminder,
			Message:    fmt.Sprintf("Order %s has been in %s for %s", task.OrderRef, task.Stage, elapsed),
		}); err != nil {
			return err
		}
		reminded = true
		return nil
	})
	return reminded, err
}
