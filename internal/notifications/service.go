package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/juliaconfecciones/production-backend/pkg/db/models"
	"github.com/juliaconfecciones/production-backend/pkg/enums"
	pkgerrors "github.com/juliaconfecciones/production-backend/pkg/errors"
	"github.com/juliaconfecciones/production-backend/pkg/logger"
	"github.com/juliaconfecciones/production-backend/pkg/outbox"
	"github.com/juliaconfecciones/production-backend/pkg/outbox/payloads"
	"github.com/juliaconfecciones/production-backend/pkg/pagination"
)

// Notifier appends notifications inside a caller-owned transaction.
type Notifier interface {
	Notify(ctx context.Context, tx *gorm.DB, input NotifyInput) (*models.Notification, error)
	SentSince(ctx context.Context, tx *gorm.DB, employeeID, orderID uuid.UUID, kind enums.NotificationKind, since time.Time) (bool, error)
}

// Service defines notification operations.
type Service interface {
	Notifier
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, employeeID, notificationID uuid.UUID) error
}

type service struct {
	repo    Repository
	outbox  outbox.Emitter
	logg    *logger.Logger
	history int
	now     func() time.Time
}

// NotifyInput captures one message for one employee.
type NotifyInput struct {
	EmployeeID uuid.UUID
	OrderID    *uuid.UUID
	Kind       enums.NotificationKind
	Message    string
}

// ListParams configures an inbox listing.
type ListParams struct {
	EmployeeID uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items       []models.Notification `json:"items"`
	Cursor      string                `json:"cursor"`
	UnreadCount int64                 `json:"unread_count"`
}

// ServiceParams groups the notification service dependencies.
type ServiceParams struct {
	Repo   Repository
	Outbox outbox.Emitter
	Logger *logger.Logger
	// HistoryLimit is the default page size for the full inbox.
	HistoryLimit int
	Now          func() time.Time
}

// NewService wires notifications dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox emitter required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	history := params.HistoryLimit
	if history <= 0 {
		history = pagination.DefaultLimit
	}
	return &service{
		repo:    params.Repo,
		outbox:  params.Outbox,
		logg:    params.Logger,
		history: history,
		now:     now,
	}, nil
}

// Notify stores the notification and queues its delivery request. Delivery
// happens after commit, so a failing channel never undoes the caller's work.
func (s *service) Notify(ctx context.Context, tx *gorm.DB, input NotifyInput) (*models.Notification, error) {
	if tx == nil {
		return nil, fmt.Errorf("notifications must be written inside a transaction")
	}
	if input.EmployeeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee id is required")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid notification kind %q", input.Kind))
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}

	repo := s.repo.WithTx(tx)
	contact, err := repo.Contact(ctx, input.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnknownEmployee, "employee not found").
				WithDetails(map[string]any{"employee_id": input.EmployeeID})
		}
		return nil, pkgerrors.Storage(err, "load employee contact")
	}

	sentAt := s.now().UTC()
	row := &models.Notification{
		EmployeeID: input.EmployeeID,
		OrderID:    input.OrderID,
		Kind:       input.Kind,
		Message:    message,
		State:      enums.NotificationStateUnread,
		SentAt:     sentAt,
	}
	if err := repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Storage(err, "create notification")
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventNotificationRequested,
		AggregateType: enums.AggregateNotification,
		AggregateID:   row.ID,
		OccurredAt:    sentAt,
		Data: payloads.NotificationRequestedEvent{
			NotificationID: row.ID,
			EmployeeID:     row.EmployeeID,
			OrderID:        row.OrderID,
			Kind:           row.Kind,
			Message:        row.Message,
			Email:          contact.Email,
			Phone:          contact.Phone,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return nil, pkgerrors.Storage(err, "queue notification delivery")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"notification_id": row.ID.String(),
			"employee_id":     row.EmployeeID.String(),
			"kind":            row.Kind,
		})
		s.logg.Info(logCtx, "notifications.created")
	}
	return row, nil
}

func (s *service) SentSince(ctx context.Context, tx *gorm.DB, employeeID, orderID uuid.UUID, kind enums.NotificationKind, since time.Time) (bool, error) {
	exists, err := s.repo.WithTx(tx).ExistsSince(ctx, employeeID, orderID, kind, since.UTC())
	if err != nil {
		return false, pkgerrors.Storage(err, "lookup recent notifications")
	}
	return exists, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.EmployeeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee id is required")
	}

	limit := params.Limit
	if limit <= 0 && !params.UnreadOnly {
		limit = s.history
	}
	query := listNotificationsParams{
		EmployeeID: params.EmployeeID,
		Limit:      limit,
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Storage(err, "list notifications")
	}
	unread, err := s.repo.CountUnread(ctx, params.EmployeeID)
	if err != nil {
		return nil, pkgerrors.Storage(err, "count unread notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	if rows == nil {
		rows = []models.Notification{}
	}
	return &ListResult{Items: rows, Cursor: cursor, UnreadCount: unread}, nil
}

// MarkRead flips a notification to read. Only the recipient may do so and
// repeating it is a no-op.
func (s *service) MarkRead(ctx context.Context, employeeID, notificationID uuid.UUID) error {
	if employeeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "employee id is required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id is required")
	}

	result, err := s.repo.MarkRead(ctx, employeeID, notificationID, s.now().UTC())
	if err != nil {
		return pkgerrors.Storage(err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}
