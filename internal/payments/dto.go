package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/juliaconfecciones/production-backend/pkg/db/models"
	"github.com/juliaconfecciones/production-backend/pkg/enums"
)

// Summary is what an employee has earned on completed stages.
type Summary struct {
	EmployeeID     uuid.UUID       `json:"employee_id"`
	CountCompleted int64           `json:"count_completed"`
	AmountPending  decimal.Decimal `json:"amount_pending"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	AmountTotal    decimal.Decimal `json:"amount_total"`
	Stages         []StageTotals   `json:"stages"`
}

// StageTotals splits a summary by stage.
type StageTotals struct {
	Stage          enums.Stage     `json:"stage"`
	CountCompleted int64           `json:"count_completed"`
	AmountPending  decimal.Decimal `json:"amount_pending"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
}

// MarkPaidResult carries the order after the call. AlreadyPaid is true when
// nothing changed.
type MarkPaidResult struct {
	Order       *models.ProductionOrder `json:"order"`
	Stage       enums.Stage             `json:"stage"`
	Amount      decimal.Decimal         `json:"amount"`
	PaidAt      *time.Time              `json:"paid_at,omitempty"`
	AlreadyPaid bool                    `json:"already_paid"`
}

type stagePay struct {
	PaymentState enums.PaymentState
	Pay          decimal.Decimal
}

// accrualRow is one (payment state) bucket of a stage aggregate.
type accrualRow struct {
	PaymentState enums.PaymentState
	Stages       int64
	Amount       decimal.Decimal
}
