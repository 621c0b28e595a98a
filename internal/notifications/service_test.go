package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/juliaconfecciones/production-backend/internal/testdb"
	"github.com/juliaconfecciones/production-backend/pkg/db"
	"github.com/juliaconfecciones/production-backend/pkg/db/models"
	"github.com/juliaconfecciones/production-backend/pkg/enums"
	pkgerrors "github.com/juliaconfecciones/production-backend/pkg/errors"
	"github.com/juliaconfecciones/production-backend/pkg/outbox"
	"github.com/juliaconfecciones/production-backend/pkg/outbox/payloads"
)

type failingEmitter struct{}

func (failingEmitter) Emit(context.Context, *gorm.DB, outbox.DomainEvent) error {
	return errors.New("outbox unavailable")
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(t *testing.T, client *db.Client, c *clock, history int) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:         NewRepository(client.DB()),
		Outbox:       outbox.NewService(outbox.NewRepository(client.DB()), nil),
		HistoryLimit: history,
		Now:          c.now,
	})
	require.NoError(t, err)
	return svc
}

func notify(t *testing.T, client *db.Client, svc Service, input NotifyInput) *models.Notification {
	t.Helper()
	var row *models.Notification
	require.NoError(t, client.WithTx(context.Background(), func(tx *gorm.DB) error {
		var err error
		row, err = svc.Notify(context.Background(), tx, input)
		return err
	}))
	return row
}

func TestNotifyStoresRowAndQueuesDelivery(t *testing.T) {
	client := testdb.Open(t)
	c := &clock{t: time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)}
	svc := newTestService(t, client, c, 20)
	employee := testdb.SeedEmployee(t, client, "Rosa Perez", enums.EmployeeRoleCutter, 5000)
	orderID := uuid.New()

	row := notify(t, client, svc, NotifyInput{
		EmployeeID: employee.ID,
		OrderID:    &orderID,
		Kind:       enums.NotificationKindNewTask,
		Message:    "Nueva orden OP-1 para corte",
	})
	require.Equal(t, enums.NotificationStateUnread, row.State)
	require.True(t, row.SentAt.Equal(c.t))

	var events []models.OutboxEvent
	require.NoError(t, client.DB().Find(&events).Error)
	require.Len(t, events, 1)
	require.Equal(t, enums.EventNotificationRequested, events[0].EventType)
	require.Equal(t, row.ID, events[0].AggregateID)

	var envelope outbox.PayloadEnvelope
	require.NoError(t, json.Unmarshal(events[0].Payload, &envelope))
	var payload payloads.NotificationRequestedEvent
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	require.Equal(t, employee.ID, payload.EmployeeID)
	require.NotNil(t, payload.Email)
	require.Equal(t, *employee.Email, *payload.Email)
}

func TestNotifyUnknownEmployee(t *testing.T) {
	client := testdb.Open(t)
	svc := newTestService(t, client, &clock{t: time.Now()}, 20)

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		_, err := svc.Notify(context.Background(), tx, NotifyInput{
			EmployeeID: uuid.New(),
			Kind:       enums.NotificationKindUpdate,
			Message:    "hola",
		})
		return err
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnknownEmployee))
}

func TestNotifyFailsWhenOutboxFails(t *testing.T) {
	client := testdb.Open(t)
	employee := testdb.SeedEmployee(t, client, "Ana Soto", enums.EmployeeRoleSeamstress, 8000)
	svc, err := NewService(ServiceParams{Repo: NewRepository(client.DB()), Outbox: failingEmitter{}})
	require.NoError(t, err)

	err = client.WithTx(context.Background(), func(tx *gorm.DB) error {
		_, err := svc.Notify(context.Background(), tx, NotifyInput{
			EmployeeID: employee.ID,
			Kind:       enums.NotificationKindUpdate,
			Message:    "hola",
		})
		return err
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStorageFailure))

	var count int64
	require.NoError(t, client.DB().Model(&models.Notification{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestListOrderingAndPaging(t *testing.T) {
	client := testdb.Open(t)
	c := &clock{t: time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)}
	svc := newTestService(t, client, c, 2)
	employee := testdb.SeedEmployee(t, client, "Rosa Perez", enums.EmployeeRoleCutter, 5000)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		row := notify(t, client, svc, NotifyInput{EmployeeID: employee.ID, Kind: enums.NotificationKindUpdate, Message: "msg"})
		ids = append(ids, row.ID)
		c.advance(time.Minute)
	}

	ctx := context.Background()
	history, err := svc.List(ctx, ListParams{EmployeeID: employee.ID})
	require.NoError(t, err)
	require.Len(t, history.Items, 2)
	require.Equal(t, ids[2], history.Items[0].ID)
	require.Equal(t, ids[1], history.Items[1].ID)
	require.NotEmpty(t, history.Cursor)
	require.EqualValues(t, 3, history.UnreadCount)

	rest, err := svc.List(ctx, ListParams{EmployeeID: employee.ID, Cursor: history.Cursor})
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	require.Equal(t, ids[0], rest.Items[0].ID)
	require.Empty(t, rest.Cursor)

	require.NoError(t, svc.MarkRead(ctx, employee.ID, ids[0]))
	unread, err := svc.List(ctx, ListParams{EmployeeID: employee.ID, UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unread.Items, 2)
	require.Equal(t, ids[1], unread.Items[0].ID)
	require.Equal(t, ids[2], unread.Items[1].ID)
	require.EqualValues(t, 2, unread.UnreadCount)
}

func TestMarkReadOnlyRecipientAndIdempotent(t *testing.T) {
	client := testdb.Open(t)
	svc := newTestService(t, client, &clock{t: time.Now().UTC()}, 20)
	recipient := testdb.SeedEmployee(t, client, "Rosa Perez", enums.EmployeeRoleCutter, 5000)
	other := testdb.SeedEmployee(t, client, "Ana Soto", enums.EmployeeRoleSeamstress, 8000)
	row := notify(t, client, svc, NotifyInput{EmployeeID: recipient.ID, Kind: enums.NotificationKindReminder, Message: "recordatorio"})

	ctx := context.Background()
	err := svc.MarkRead(ctx, other.ID, row.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, svc.MarkRead(ctx, recipient.ID, row.ID))
	require.NoError(t, svc.MarkRead(ctx, recipient.ID, row.ID))

	var stored models.Notification
	require.NoError(t, client.DB().First(&stored, "id = ?", row.ID).Error)
	require.Equal(t, enums.NotificationStateRead, stored.State)
	require.NotNil(t, stored.ReadAt)
}

func TestSentSince(t *testing.T) {
	client := testdb.Open(t)
	c := &clock{t: time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)}
	svc := newTestService(t, client, c, 20)
	employee := testdb.SeedEmployee(t, client, "Rosa Perez", enums.EmployeeRoleCutter, 5000)
	orderID := uuid.New()
	notify(t, client, svc, NotifyInput{EmployeeID: employee.ID, OrderID: &orderID, Kind: enums.NotificationKindReminder, Message: "recordatorio"})

	ctx := context.Background()
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		recent, err := svc.SentSince(ctx, tx, employee.ID, orderID, enums.NotificationKindReminder, c.t.Add(-time.Hour))
		require.NoError(t, err)
		require.True(t, recent)

		stale, err := svc.SentSince(ctx, tx, employee.ID, orderID, enums.NotificationKindReminder, c.t.Add(time.Hour))
		require.NoError(t, err)
		require.False(t, stale)
		return nil
	}))
}
