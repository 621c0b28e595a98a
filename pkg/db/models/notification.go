package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/juliaconfecciones/production-backend/pkg/enums"
)

// Notification is an in-portal message addressed to one employee.
type Notification struct {
	ID         uuid.UUID               `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	EmployeeID uuid.UUID               `gorm:"column:employee_id;type:uuid;not null;index" json:"employee_id"`
	OrderID    *uuid.UUID              `gorm:"column:order_id;type:uuid" json:"order_id,omitempty"`
	Kind       enums.NotificationKind  `gorm:"column:kind;type:notification_kind;not null" json:"kind"`
	Message    string                  `gorm:"column:message;not null" json:"message"`
	State      enums.NotificationState `gorm:"column:state;type:notification_state;not null" json:"state"`
	SentAt     time.Time               `gorm:"column:sent_at;not null" json:"sent_at"`
	ReadAt     *time.Time              `gorm:"column:read_at" json:"read_at,omitempty"`
}

func (n *Notification) BeforeCreate(*gorm.DB) error {
	ensureID(&n.ID)
	return nil
}
