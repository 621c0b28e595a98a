package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/juliaconfecciones/production-backend/pkg/db/models"
	"github.com/juliaconfecciones/production-backend/pkg/enums"
	"github.com/juliaconfecciones/production-backend/pkg/pagination"
)

// Repository exposes persistence helpers for notifications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) error
	Contact(ctx context.Context, employeeID uuid.UUID) (*employeeContact, error)
	List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error)
	CountUnread(ctx context.Context, employeeID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, employeeID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error)
	ExistsSince(ctx context.Context, employeeID, orderID uuid.UUID, kind enums.NotificationKind, since time.Time) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listNotificationsParams struct {
	EmployeeID uuid.UUID
	Limit      int
	Cursor     *pagination.Cursor
	UnreadOnly bool
}

type notificationMarkResult struct {
	Updated bool
	Found   bool
}

type employeeContact struct {
	ID    uuid.UUID
	Email *string
	Phone *string
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *repositoryImpl) Contact(ctx context.Context, employeeID uuid.UUID) (*employeeContact, error) {
	var contact employeeContact
	if err := r.db.WithContext(ctx).
		Model(&models.Employee{}).
		Select("id", "email", "phone").
		Where("id = ?", employeeID).
		Take(&contact).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

// List pages through an employee's inbox. Unread-only listings run oldest
// first so the backlog reads in arrival order; full history runs newest first.
func (r *repositoryImpl) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.Notification{}).Where("employee_id = ?", params.EmployeeID)
	order := "sent_at DESC, id DESC"
	if params.UnreadOnly {
		query = query.Where("state = ?", enums.NotificationStateUnread)
		order = "sent_at ASC, id ASC"
		if params.Cursor != nil {
			query = query.Where("sent_at > ? OR (sent_at = ? AND id > ?)", params.Cursor.At, params.Cursor.At, params.Cursor.ID)
		}
	} else if params.Cursor != nil {
		query = query.Where("sent_at < ? OR (sent_at = ? AND id < ?)", params.Cursor.At, params.Cursor.At, params.Cursor.ID)
	}

	var rows []models.Notification
	if err := query.Order(order).Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	page, more := pagination.Trim(rows, params.Limit)
	if !more {
		return page, nil, nil
	}
	last := page[len(page)-1]
	return page, &pagination.Cursor{At: last.SentAt, ID: last.ID}, nil
}

func (r *repositoryImpl) CountUnread(ctx context.Context, employeeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("employee_id = ? AND state = ?", employeeID, enums.NotificationStateUnread).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) MarkRead(ctx context.Context, employeeID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND employee_id = ? AND state = ?", notificationID, employeeID, enums.NotificationStateUnread).
		UpdateColumns(map[string]any{
			"state":   enums.NotificationStateRead,
			"read_at": now,
		})
	if result.Error != nil {
		return notificationMarkResult{}, result.Error
	}

	mark := notificationMarkResult{Updated: result.RowsAffected > 0}
	if mark.Updated {
		mark.Found = true
		return mark, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND employee_id = ?", notificationID, employeeID).
		Count(&count).Error; err != nil {
		return notificationMarkResult{}, err
	}
	mark.Found = count > 0
	return mark, nil
}

func (r *repositoryImpl) ExistsSince(ctx context.Context, employeeID, orderID uuid.UUID, kind enums.NotificationKind, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("employee_id = ? AND order_id = ? AND kind = ? AND sent_at >= ?", employeeID, orderID, kind, since).
		Count(&count).Error
	return count > 0, err
}
