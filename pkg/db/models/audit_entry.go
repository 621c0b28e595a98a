package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/juliaconfecciones/production-backend/pkg/enums"
)

// ErrImmutableRow is returned by hooks on append-only tables.
var ErrImmutableRow = errors.New("row is append-only")

// AuditEntry records one state transition. The table rejects updates and deletes.
type AuditEntry struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	EmployeeID *uuid.UUID        `gorm:"column:employee_id;type:uuid;index" json:"employee_id,omitempty"`
	OrderID    *uuid.UUID        `gorm:"column:order_id;type:uuid;index" json:"order_id,omitempty"`
	Action     enums.AuditAction `gorm:"column:action;type:audit_action;not null" json:"action"`
	Detail     string            `gorm:"column:detail;not null" json:"detail"`
	CreatedAt  time.Time         `gorm:"column:created_at;not null" json:"created_at"`
}

func (a *AuditEntry) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

func (a *AuditEntry) BeforeUpdate(*gorm.DB) error {
	return ErrImmutableRow
}

func (a *AuditEntry) BeforeDelete(*gorm.DB) error {
	return ErrImmutableRow
}
