package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/juliaconfecciones/production-backend/pkg/enums"
)

// StageState holds one stage's sub-state machine. It is embedded twice in
// ProductionOrder with cut_ and sew_ column prefixes.
type StageState struct {
	AssigneeID   *uuid.UUID         `gorm:"column:assignee_id;type:uuid" json:"assignee_id,omitempty"`
	Status       enums.StageStatus  `gorm:"column:status;type:stage_status;not null" json:"status"`
	AssignedAt   *time.Time         `gorm:"column:assigned_at" json:"assigned_at,omitempty"`
	StartedAt    *time.Time         `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt  *time.Time         `gorm:"column:completed_at" json:"completed_at,omitempty"`
	Pay          decimal.Decimal    `gorm:"column:pay;type:numeric(12,2);not null" json:"pay"`
	PaymentState enums.PaymentState `gorm:"column:payment_state;type:payment_state;not null" json:"payment_state"`
	PaidAt       *time.Time         `gorm:"column:paid_at" json:"paid_at,omitempty"`
}

// IsAssignee reports whether employeeID currently holds the stage.
func (s StageState) IsAssignee(employeeID uuid.UUID) bool {
	return s.AssigneeID != nil && *s.AssigneeID == employeeID
}

// ProductionOrder is one manufacturing job moving through cut then sew.
type ProductionOrder struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderRef     string          `gorm:"column:order_ref;not null;uniqueIndex:ux_production_orders_order_ref" json:"order_ref"`
	Kind         enums.OrderKind `gorm:"column:kind;type:order_kind;not null" json:"kind"`
	GarmentCount int             `gorm:"column:garment_count;not null" json:"garment_count"`
	Notes        *string         `gorm:"column:notes" json:"notes,omitempty"`
	Cut          StageState      `gorm:"embedded;embeddedPrefix:cut_" json:"cut"`
	Sew          StageState      `gorm:"embedded;embeddedPrefix:sew_" json:"sew"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Materials []OrderMaterial `gorm:"foreignKey:OrderID" json:"materials,omitempty"`
}

func (o *ProductionOrder) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// Stage returns the sub-state for the given stage.
func (o *ProductionOrder) Stage(stage enums.Stage) *StageState {
	if stage == enums.StageSew {
		return &o.Sew
	}
	return &o.Cut
}

// OrderMaterial is an immutable reservation line recorded at order creation.
type OrderMaterial struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderID    uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	MaterialID uuid.UUID       `gorm:"column:material_id;type:uuid;not null" json:"material_id"`
	Quantity   decimal.Decimal `gorm:"column:quantity;type:numeric(14,3);not null" json:"quantity"`
	UnitCost   decimal.Decimal `gorm:"column:unit_cost;type:numeric(12,2);not null" json:"unit_cost"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (m *OrderMaterial) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

func (m *OrderMaterial) BeforeUpdate(*gorm.DB) error {
	return ErrImmutableRow
}
