package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/juliaconfecciones/production-backend/internal/audit"
	"github.com/juliaconfecciones/production-backend/internal/employees"
	"github.com/juliaconfecciones/production-backend/internal/notifications"
	"github.com/juliaconfecciones/production-backend/internal/production"
	"github.com/juliaconfecciones/production-backend/pkg/enums"
	pkgerrors "github.com/juliaconfecciones/production-backend/pkg/errors"
	"github.com/juliaconfecciones/production-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type employeeLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*employees.EmployeeDTO, error)
}

// Service derives what employees are owed and records payroll settlement.
type Service interface {
	ComputePendingPay(ctx context.Context, employeeID uuid.UUID) (*Summary, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, stage enums.Stage) (*MarkPaidResult, error)
}

type ServiceParams struct {
	Repo          *Repository
	Orders        production.Repository
	Employees     employeeLookup
	Audit         audit.Recorder
	Notifications notifications.Notifier
	Tx            txRunner
	Logger        *logger.Logger
	Now           func() time.Time
}

type service struct {
	repo      *Repository
	orders    production.Repository
	employees employeeLookup
	audit     audit.Recorder
	notifier  notifications.Notifier
	tx        txRunner
	logg      *logger.Logger
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("payments repository required")
	case params.Orders == nil:
		return nil, fmt.Errorf("production repository required")
	case params.Employees == nil:
		return nil, fmt.Errorf("employee lookup required")
	case params.Audit == nil:
		return nil, fmt.Errorf("audit recorder required")
	case params.Notifications == nil:
		return nil, fmt.Errorf("notifier required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:      params.Repo,
		orders:    params.Orders,
		employees: params.Employees,
		audit:     params.Audit,
		notifier:  params.Notifications,
		tx:        params.Tx,
		logg:      params.Logger,
		now:       now,
	}, nil
}

// ComputePendingPay sums frozen stage pay over every completed stage the
// employee holds. Rates are never re-read here.
func (s *service) ComputePendingPay(ctx context.Context, employeeID uuid.UUID) (*Summary, error) {
	if _, err := s.employees.Get(ctx, employeeID); err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnknownEmployee, "employee does not exist").
				WithDetails(map[string]any{"employee_id": employeeID})
		}
		return nil, err
	}

	summary := &Summary{
		EmployeeID:    employeeID,
		AmountPending: decimal.Zero,
		AmountPaid:    decimal.Zero,
		AmountTotal:   decimal.Zero,
		Stages:        make([]StageTotals, 0, 2),
	}
	for _, stage := range []enums.Stage{enums.StageCut, enums.StageSew} {
		rows, err := s.repo.Accruals(ctx, employeeID, stage)
		if err != nil {
			return nil, pkgerrors.Storage(err, "compute pending pay")
		}
		totals := StageTotals{Stage: stage, AmountPending: decimal.Zero, AmountPaid: decimal.Zero}
		for _, row := range rows {
			totals.CountCompleted += row.Stages
			switch row.PaymentState {
			case enums.PaymentStatePaid:
				totals.AmountPaid = totals.AmountPaid.Add(row.Amount)
			default:
				totals.AmountPending = totals.AmountPending.Add(row.Amount)
			}
		}
		summary.CountCompleted += totals.CountCompleted
		summary.AmountPending = summary.AmountPending.Add(totals.AmountPending)
		summary.AmountPaid = summary.AmountPaid.Add(totals.AmountPaid)
		summary.Stages = append(summary.Stages, totals)
	}
	summary.AmountTotal = summary.AmountPending.Add(summary.AmountPaid)
	return summary, nil
}

// MarkPaid settles one completed stage. Calling it again on a paid stage
// changes nothing and reports AlreadyPaid.
func (s *service) MarkPaid(ctx context.Context, orderID uuid.UUID, stage enums.Stage) (*MarkPaidResult, error) {
	if !stage.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stage %q", stage))
	}

	result := &MarkPaidResult{Stage: stage}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)
		order, err := repo.LockByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "production order not found").
					WithDetails(map[string]any{"order_id": orderID})
			}
			return err
		}
		st := order.Stage(stage)
		result.Amount = st.Pay
		if st.PaymentState == enums.PaymentStatePaid {
			result.AlreadyPaid = true
			result.PaidAt = st.PaidAt
			return nil
		}
		if st.Status != enums.StageStatusCompleted {
			return pkgerrors.New(
				pkgerrors.CodeStateConflict,
				fmt.Sprintf("%s stage is %s; only completed stages can be paid", stage, st.Status),
			).WithDetails(map[string]any{"order_id": order.ID, "stage": stage, "status": st.Status})
		}

		now := s.now().UTC()
		ok, err := repo.UpdateStage(ctx, order.ID, stage, production.StageGuard{
			Status:       enums.StageStatusCompleted,
			PaymentState: enums.PaymentStatePending,
		}, map[string]any{
			string(stage) + "_payment_state": enums.PaymentStatePaid,
			string(stage) + "_paid_at":       now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "stage payment changed concurrently")
		}
		result.PaidAt = &now

		if err := s.audit.Record(ctx, tx, audit.Entry{
			EmployeeID: st.AssigneeID,
			OrderID:    &order.ID,
			Action:     enums.AuditPaymentMarked,
			Detail:     fmt.Sprintf("order %s %s pay %s marked paid", order.OrderRef, stage, st.Pay.StringFixed(2)),
			At:         now,
		}); err != nil {
			return err
		}
		if st.AssigneeID == nil {
			return nil
		}
		_, err = s.notifier.Notify(ctx, tx, notifications.NotifyInput{
			EmployeeID: *st.AssigneeID,
			OrderID:    &order.ID,
			Kind:       enums.NotificationKindUpdate,
			Message:    fmt.Sprintf("Payment of %s for %s on order %s has been registered", st.Pay.StringFixed(2), stage, order.OrderRef),
		})
		return err
	})
	if err != nil {
		return nil, pkgerrors.Storage(err, "mark stage paid")
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Storage(err, "reload production order")
	}
	result.Order = order

	if s.logg != nil {
		logCtx := s.logg.WithFields(s.logg.WithOrderID(ctx, orderID.String()), map[string]any{
			"stage":        stage,
			"already_paid": result.AlreadyPaid,
		})
		s.logg.Info(logCtx, "payments.stage.marked_paid")
	}
	return result, nil
}
