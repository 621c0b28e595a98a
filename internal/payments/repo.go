package payments

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/juliaconfecciones/production-backend/pkg/enums"
)

// Repository aggregates stage pay across production orders.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Accruals sums completed stage pay for employeeID, bucketed by payment
// state. Amounts are added as decimals after the scan so the store's numeric
// representation never takes part in the arithmetic.
func (r *Repository) Accruals(ctx context.Context, employeeID uuid.UUID, stage enums.Stage) ([]accrualRow, error) {
	prefix := string(stage) + "_"
	var stages []stagePay
	err := r.db.WithContext(ctx).
		Table("production_orders").
		Select(prefix+"payment_state AS payment_state, "+prefix+"pay AS pay").
		Where(prefix+"assignee_id = ?", employeeID).
		Where(prefix+"status = ?", enums.StageStatusCompleted).
		Order("id ASC").
		Scan(&stages).Error
	if err != nil {
		return nil, err
	}

	rows := make([]accrualRow, 0, 2)
	index := make(map[enums.PaymentState]int, 2)
	for _, st := range stages {
		i, ok := index[st.PaymentState]
		if !ok {
			i = len(rows)
			index[st.PaymentState] = i
			rows = append(rows, accrualRow{PaymentState: st.PaymentState, Amount: decimal.Zero})
		}
		rows[i].Stages++
		rows[i].Amount = rows[i].Amount.Add(st.Pay)
	}
	return rows, nil
}
