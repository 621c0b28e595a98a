package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/juliaconfecciones/production-backend/pkg/enums"
)

// Shipment is the dispatch/receipt pair for one stage handoff.
type Shipment struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderID       uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	Stage         enums.Stage         `gorm:"column:stage;type:production_stage;not null" json:"stage"`
	AssigneeID    uuid.UUID           `gorm:"column:assignee_id;type:uuid;not null" json:"assignee_id"`
	DispatchedAt  time.Time           `gorm:"column:dispatched_at;not null" json:"dispatched_at"`
	DispatchState enums.DispatchState `gorm:"column:dispatch_state;type:dispatch_state;not null" json:"dispatch_state"`
	ReceivedAt    *time.Time          `gorm:"column:received_at" json:"received_at,omitempty"`
	ReceiptState  enums.ReceiptState  `gorm:"column:receipt_state;type:receipt_state;not null" json:"receipt_state"`
	Notes         *string             `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (s *Shipment) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
