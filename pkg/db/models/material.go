package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Material is one ledger row; quantity_on_hand is guarded by a CHECK (>= 0).
type Material struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name             string          `gorm:"column:name;not null" json:"name"`
	Category         string          `gorm:"column:category;not null" json:"category"`
	Unit             string          `gorm:"column:unit;not null" json:"unit"`
	QuantityOnHand   decimal.Decimal `gorm:"column:quantity_on_hand;type:numeric(14,3);not null" json:"quantity_on_hand"`
	ReorderThreshold decimal.Decimal `gorm:"column:reorder_threshold;type:numeric(14,3);not null" json:"reorder_threshold"`
	UnitCost         decimal.Decimal `gorm:"column:unit_cost;type:numeric(12,2);not null" json:"unit_cost"`
	Supplier         *string         `gorm:"column:supplier" json:"supplier,omitempty"`
	LastRestockedAt  *time.Time      `gorm:"column:last_restocked_at" json:"last_restocked_at,omitempty"`
	Active           bool            `gorm:"column:active;not null" json:"active"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (m *Material) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
