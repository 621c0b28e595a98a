package materials

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/juliaconfecciones/production-backend/pkg/db/models"
)

// RegisterInput describes a new ledger row.
type RegisterInput struct {
	Name             string
	Category         string
	Unit             string
	QuantityOnHand   decimal.Decimal
	ReorderThreshold decimal.Decimal
	UnitCost         decimal.Decimal
	Supplier         *string
}

// Requirement is one (material, quantity) pair requested by an order.
type Requirement struct {
	MaterialID uuid.UUID       `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// Reservation is the outcome of a successful reserve for one material.
type Reservation struct {
	MaterialID uuid.UUID       `json:"material_id"`
	Name       string          `json:"name"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Remaining  decimal.Decimal `json:"remaining"`
}

// LowStock is a material at or under its reorder threshold.
type LowStock struct {
	models.Material
	Deficit decimal.Decimal `json:"deficit"`
}
