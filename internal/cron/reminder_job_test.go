package cron

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/juliaconfecciones/production-backend/internal/notifications"
	"github.com/juliaconfecciones/production-backend/internal/production"
	"github.com/juliaconfecciones/production-backend/pkg/db/models"
	"github.com/juliaconfecciones/production-backend/pkg/enums"
)

type stubStaleTasks struct {
	tasks  []production.StaleTask
	cutoff time.Time
	err    error
}

func (s *stubStaleTasks) ListStaleTasks(_ context.Context, before time.Time) ([]production.StaleTask, error) {
	s.cutoff = before
	return s.tasks, s.err
}

type recordingNotifier struct {
	sent      []notifications.NotifyInput
	recent    map[uuid.UUID]bool
	failOrder uuid.UUID
}

func (r *recordingNotifier) Notify(_ context.Context, _ *gorm.DB, input notifications.NotifyInput) (*models.Notification, error) {
	if input.OrderID != nil && *input.OrderID == r.failOrder {
		return nil, errors.New("insert failed")
	}
	r.sent = append(r.sent, input)
	return &models.Notification{ID: uuid.New(), EmployeeID: input.EmployeeID, Kind: input.Kind}, nil
}

func (r *recordingNotifier) SentSince(_ context.Context, _ *gorm.DB, _ uuid.UUID, orderID uuid.UUID, kind enums.NotificationKind, _ time.Time) (bool, error) {
	return kind == enums.NotificationKindReminder && r.recent[orderID], nil
}

func newTestReminderJob(t *testing.T, tasks staleTaskLister, notifier notifications.Notifier, now time.Time) *reminderJob {
	t.Helper()
	jobIface, err := NewReminderJob(ReminderJobParams{
		Logger:   quietLogger(),
		DB:       passthroughTx{},
		Tasks:    tasks,
		Notifier: notifier,
	})
	if err != nil {
		t.Fatalf("NewReminderJob: %v", err)
	}
	job := jobIface.(*reminderJob)
	job.now = func() time.Time { return now }
	return job
}

func TestReminderJobNotifiesStaleAssignees(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	fresh := production.StaleTask{OrderID: uuid.New(), OrderRef: "OP-1", Stage: enums.StageCut, AssigneeID: uuid.New(), StartedAt: now.Add(-72 * time.Hour)}
	reminded := production.StaleTask{OrderID: uuid.New(), OrderRef: "OP-2", Stage: enums.StageSew, AssigneeID: uuid.New(), StartedAt: now.Add(-96 * time.Hour)}
	lister := &stubStaleTasks{tasks: []production.StaleTask{fresh, reminded}}
	notifier := &recordingNotifier{recent: map[uuid.UUID]bool{reminded.OrderID: true}}

	job := newTestReminderJob(t, lister, notifier, now)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := now.Add(-defaultReminderAfter); !lister.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, lister.cutoff)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected one reminder, got %d", len(notifier.sent))
	}
	got := notifier.sent[0]
	if got.EmployeeID != fresh.AssigneeID || got.Kind != enums.NotificationKindReminder {
		t.Fatalf("unexpected reminder %+v", got)
	}
	if !strings.Contains(got.Message, "OP-1") || !strings.Contains(got.Message, "72h0m0s") {
		t.Fatalf("unexpected message %q", got.Message)
	}
}

func TestReminderJobAggregatesFailures(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	bad := production.StaleTask{OrderID: uuid.New(), OrderRef: "OP-3", Stage: enums.StageCut, AssigneeID: uuid.New(), StartedAt: now.Add(-50 * time.Hour)}
	good := production.StaleTask{OrderID: uuid.New(), OrderRef: "OP-4", Stage: enums.StageCut, AssigneeID: uuid.New(), StartedAt: now.Add(-50 * time.Hour)}
	notifier := &recordingNotifier{failOrder: bad.OrderID}

	job := newTestReminderJob(t, &stubStaleTasks{tasks: []production.StaleTask{bad, good}}, notifier, now)
	err := job.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "OP-3") {
		t.Fatalf("expected aggregated error naming OP-3, got %v", err)
	}
	if len(notifier.sent) != 1 || *notifier.sent[0].OrderID != good.OrderID {
		t.Fatalf("expected the healthy task to still be reminded, got %+v", notifier.sent)
	}
}

func TestReminderJobPropagatesListError(t *testing.T) {
	job := newTestReminderJob(t, &stubStaleTasks{err: errors.New("db down")}, &recordingNotifier{}, time.Now())
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
