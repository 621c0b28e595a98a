package production

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/juliaconfecciones/production-backend/internal/audit"
	"github.com/juliaconfecciones/production-backend/internal/employees"
	"github.com/juliaconfecciones/production-backend/internal/materials"
	"github.com/juliaconfecciones/production-backend/internal/notifications"
	"github.com/juliaconfecciones/production-backend/pkg/db"
	"github.com/juliaconfecciones/production-backend/pkg/db/models"
	"github.com/juliaconfecciones/production-backend/pkg/enums"
	pkgerrors "github.com/juliaconfecciones/production-backend/pkg/errors"
	"github.com/juliaconfecciones/production-backend/pkg/logger"
)

const defaultCompletedTasksLimit = 10

var (
	openStatuses      = []enums.StageStatus{enums.StageStatusPending, enums.StageStatusInProcess}
	completedStatuses = []enums.StageStatus{enums.StageStatusCompleted}
	allStages         = []enums.Stage{enums.StageCut, enums.StageSew}
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service drives production orders through the cut and sew stages.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.ProductionOrder, error)
	AssignAndDispatch(ctx context.Context, orderID uuid.UUID, stage enums.Stage, employeeID uuid.UUID) (*DispatchResult, error)
	ConfirmCompletion(ctx context.Context, orderID uuid.UUID, stage enums.Stage, employeeID uuid.UUID, notes *string) (*models.ProductionOrder, error)
	UpdateStageStatus(ctx context.Context, orderID uuid.UUID, stage enums.Stage, employeeID uuid.UUID, status enums.StageStatus, notes *string) (*models.ProductionOrder, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.ProductionOrder, error)
	TaskDetail(ctx context.Context, orderID, employeeID uuid.UUID) (*TaskDetail, error)
	ListPendingTasks(ctx context.Context, employeeID uuid.UUID) ([]TaskSummary, error)
	ListCompletedTasks(ctx context.Context, employeeID uuid.UUID, limit int) ([]TaskSummary, error)
	ListShipments(ctx context.Context, orderID uuid.UUID) ([]models.Shipment, error)
	ListStaleTasks(ctx context.Context, startedBefore time.Time) ([]StaleTask, error)
	Report(ctx context.Context, filter ReportFilter) ([]ReportRow, error)
}

// Config holds workflow switches.
type Config struct {
	// RequireCutBeforeSew rejects sew dispatch while cut is not completed.
	RequireCutBeforeSew bool
	CompletedTasksLimit int
}

// ServiceParams groups the production service dependencies.
type ServiceParams struct {
	Repo          Repository
	Materials     materials.Reserver
	Employees     employees.Directory
	Audit         audit.Recorder
	Notifications notifications.Notifier
	Tx            txRunner
	Logger        *logger.Logger
	Config        Config
	Now           func() time.Time
}

type service struct {
	repo      Repository
	materials materials.Reserver
	employees employees.Directory
	audit     audit.Recorder
	notifier  notifications.Notifier
	tx        txRunner
	logg      *logger.Logger
	cfg       Config
	now       func() time.Time
}

// NewService wires the production workflow.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("production repository required")
	case params.Materials == nil:
		return nil, fmt.Errorf("material reserver required")
	case params.Employees == nil:
		return nil, fmt.Errorf("employee directory required")
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
	cfg := params.Config
	if cfg.CompletedTasksLimit <= 0 {
		cfg.CompletedTasksLimit = defaultCompletedTasksLimit
	}
	return &service{
		repo:      params.Repo,
		materials: params.Materials,
		employees: params.Employees,
		audit:     params.Audit,
		notifier:  params.Notifications,
		tx:        params.Tx,
		logg:      params.Logger,
		cfg:       cfg,
		now:       now,
	}, nil
}

func (s *service) timestamp() time.Time {
	return s.now().UTC()
}

// CreateOrder reserves every material and stores the order in one
// transaction. Any failed reservation leaves the ledger untouched.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.ProductionOrder, error) {
	if err := validateCreate(&input); err != nil {
		return nil, err
	}

	var orderID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindByRef(ctx, input.OrderRef)
		if err == nil {
			return duplicateOrderRef(input.OrderRef, existing.ID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := s.timestamp()
		order := &models.ProductionOrder{
			OrderRef:     input.OrderRef,
			Kind:         input.Kind,
			GarmentCount: input.GarmentCount,
			Notes:        input.Notes,
			Cut:          newStage(input.CutPay),
			Sew:          newStage(input.SewPay),
			CreatedAt:    now,
		}
		presets := []struct {
			stage    enums.Stage
			assignee *uuid.UUID
		}{{enums.StageCut, input.CutterID}, {enums.StageSew, input.SeamstressID}}
		for _, preset := range presets {
			stage, assignee := preset.stage, preset.assignee
			if assignee == nil {
				continue
			}
			if _, err := s.employees.ActiveEmployee(ctx, tx, *assignee); err != nil {
				return err
			}
			st := order.Stage(stage)
			id := *assignee
			st.AssigneeID = &id
			st.AssignedAt = &now
		}

		reservations, err := s.materials.Reserve(ctx, tx, input.Materials)
		if err != nil {
			return err
		}

		if err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}
		lines := make([]models.OrderMaterial, 0, len(reservations))
		parts := make([]string, 0, len(reservations))
		for _, r := range reservations {
			lines = append(lines, models.OrderMaterial{
				OrderID:    order.ID,
				MaterialID: r.MaterialID,
				Quantity:   r.Quantity,
				UnitCost:   r.UnitCost,
				CreatedAt:  now,
			})
			parts = append(parts, fmt.Sprintf("%s x%s", r.Name, r.Quantity))
		}
		if err := repo.CreateLines(ctx, lines); err != nil {
			return err
		}

		detail := fmt.Sprintf("order %s (%s, %d garments) created", order.OrderRef, order.Kind, order.GarmentCount)
		if len(parts) > 0 {
			detail += "; reserved " + strings.Join(parts, ", ")
		}
		orderID = order.ID
		return s.audit.Record(ctx, tx, audit.Entry{
			OrderID: &order.ID,
			Action:  enums.AuditOrderCreated,
			Detail:  detail,
			At:      now,
		})
	})
	if err != nil {
		if db.IsUniqueViolation(err, "order_ref") {
			if existing, findErr := s.repo.FindByRef(ctx, input.OrderRef); findErr == nil {
				return nil, duplicateOrderRef(input.OrderRef, existing.ID)
			}
			return nil, duplicateOrderRef(input.OrderRef, uuid.Nil)
		}
		return nil, pkgerrors.Storage(err, "create production order")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, orderID.String()), "production.order.created")
	}
	return s.GetOrder(ctx, orderID)
}

func newStage(pay *decimal.Decimal) models.StageState {
	st := models.StageState{
		Status:       enums.StageStatusPending,
		PaymentState: enums.PaymentStatePending,
		Pay:          decimal.Zero,
	}
	if pay != nil {
		st.Pay = pay.Round(2)
	}
	return st
}

func validateCreate(input *CreateOrderInput) error {
	input.OrderRef = strings.TrimSpace(input.OrderRef)
	if input.OrderRef == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order_ref is required")
	}
	if input.Kind == "" {
		input.Kind = enums.OrderKindSale
	}
	if !input.Kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order kind %q", input.Kind))
	}
	if input.GarmentCount == 0 {
		input.GarmentCount = 1
	}
	if input.GarmentCount < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "garment_count must be positive")
	}
	for _, pay := range []*decimal.Decimal{input.CutPay, input.SewPay} {
		if pay == nil {
			continue
		}
		if pay.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "stage pay cannot be negative")
		}
		if !pay.Equal(pay.Round(2)) {
			return pkgerrors.New(pkgerrors.CodeValidation, "stage pay allows at most 2 decimal places")
		}
	}
	for _, req := range input.Materials {
		if err := materials.ValidateQuantity(req.Quantity); err != nil {
			return pkgerrors.As(err).WithDetails(map[string]any{"material_id": req.MaterialID, "quantity": req.Quantity})
		}
	}
	if input.Notes != nil {
		trimmed := strings.TrimSpace(*input.Notes)
		input.Notes = &trimmed
		if trimmed == "" {
			input.Notes = nil
		}
	}
	return nil
}

func (s *service) lockOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.ProductionOrder, error) {
	order, err := s.repo.WithTx(tx).LockByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, orderNotFound(orderID)
		}
		return nil, err
	}
	return order, nil
}

// AssignAndDispatch hands a pending stage to an employee: the stage moves to
// in_process, a shipment is opened and the employee is notified.
func (s *service) AssignAndDispatch(ctx context.Context, orderID uuid.UUID, stage enums.Stage, employeeID uuid.UUID) (*DispatchResult, error) {
	if !stage.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stage %q", stage))
	}

	var shipment *models.Shipment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		st := order.Stage(stage)
		if st.Status != enums.StageStatusPending {
			return InvalidStageTransition(stage, st.Status, string(enums.StageStatusInProcess))
		}
		if stage == enums.StageSew && s.cfg.RequireCutBeforeSew && order.Cut.Status != enums.StageStatusCompleted {
			return pkgerrors.New(
				pkgerrors.CodeInvalidStageTransition,
				"sew stage cannot start before the cut stage is completed",
			).WithDetails(map[string]any{
				"stage":      stage,
				"current":    st.Status,
				"requested":  enums.StageStatusInProcess,
				"cut_status": order.Cut.Status,
			})
		}
		employee, err := s.employees.ActiveEmployee(ctx, tx, employeeID)
		if err != nil {
			return err
		}

		now := s.timestamp()
		changes := map[string]any{
			stageColumn(stage, "status"):      enums.StageStatusInProcess,
			stageColumn(stage, "assignee_id"): employee.ID,
			stageColumn(stage, "assigned_at"): now,
			stageColumn(stage, "started_at"):  now,
		}
		if st.Pay.IsZero() {
			changes[stageColumn(stage, "pay")] = employees.StagePay(employee, order.GarmentCount)
		}
		repo := s.repo.WithTx(tx)
		ok, err := repo.UpdateStage(ctx, order.ID, stage, StageGuard{Status: enums.StageStatusPending}, changes)
		if err != nil {
			return err
		}
		if !ok {
			return InvalidStageTransition(stage, st.Status, string(enums.StageStatusInProcess))
		}

		shipment = &models.Shipment{
			OrderID:       order.ID,
			Stage:         stage,
			AssigneeID:    employee.ID,
			DispatchedAt:  now,
			DispatchState: enums.DispatchStateSent,
			ReceiptState:  enums.ReceiptStatePending,
			CreatedAt:     now,
		}
		if err := repo.CreateShipment(ctx, shipment); err != nil {
			return err
		}

		if err := s.audit.Record(ctx, tx, audit.Entry{
			EmployeeID: &employee.ID,
			OrderID:    &order.ID,
			Action:     enums.DispatchAction(stage),
			Detail:     fmt.Sprintf("order %s sent to %s for %s", order.OrderRef, employee.Name, stage),
			At:         now,
		}); err != nil {
			return err
		}

		_, err = s.notifier.Notify(ctx, tx, notifications.NotifyInput{
			EmployeeID: employee.ID,
			OrderID:    &order.ID,
			Kind:       enums.NotificationKindNewTask,
			Message:    fmt.Sprintf("New %s task: order %s, %d garments", stage, order.OrderRef, order.GarmentCount),
		})
		return err
	})
	if err != nil {
		return nil, pkgerrors.Storage(err, "dispatch production stage")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(s.logg.WithOrderID(ctx, orderID.String()), map[string]any{
			"stage":       stage,
			"employee_id": employeeID.String(),
		})
		s.logg.Info(logCtx, "production.stage.dispatched")
	}
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &DispatchResult{Order: order, Shipment: shipment}, nil
}

// ConfirmCompletion is the assignee reporting the stage finished.
func (s *service) ConfirmCompletion(ctx context.Context, orderID uuid.UUID, stage enums.Stage, employeeID uuid.UUID, notes *string) (*models.ProductionOrder, error) {
	if !stage.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stage %q", stage))
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		return s.complete(ctx, tx, order, stage, employeeID, notes)
	})
	if err != nil {
		return nil, pkgerrors.Storage(err, "confirm stage completion")
	}
	s.logStage(ctx, orderID, stage, employeeID, "production.stage.completed")
	return s.GetOrder(ctx, orderID)
}

// complete moves a locked order's stage from in_process to completed and
// closes the matching shipment. The assignee check comes first so that a
// stranger always gets NOT_ASSIGNEE whatever the stage state.
func (s *service) complete(ctx context.Context, tx *gorm.DB, order *models.ProductionOrder, stage enums.Stage, employeeID uuid.UUID, notes *string) error {
	st := order.Stage(stage)
	if !st.IsAssignee(employeeID) {
		return NotAssignee(employeeID, order.ID, stage)
	}
	if st.Status != enums.StageStatusInProcess {
		return InvalidStageTransition(stage, st.Status, string(enums.StageStatusCompleted))
	}

	now := s.timestamp()
	repo := s.repo.WithTx(tx)
	ok, err := repo.UpdateStage(ctx, order.ID, stage, StageGuard{Status: enums.StageStatusInProcess}, map[string]any{
		stageColumn(stage, "status"):       enums.StageStatusCompleted,
		stageColumn(stage, "completed_at"): now,
	})
	if err != nil {
		return err
	}
	if !ok {
		return InvalidStageTransition(stage, st.Status, string(enums.StageStatusCompleted))
	}

	notes = cleanNotes(notes)
	shipment, err := repo.FindOpenShipment(ctx, order.ID, stage, employeeID)
	switch {
	case err == nil:
		if _, err := repo.MarkShipmentReceived(ctx, shipment.ID, now, notes); err != nil {
			return err
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	detail := fmt.Sprintf("order %s %s completed", order.OrderRef, stage)
	if notes != nil {
		detail += ": " + *notes
	}
	return s.audit.Record(ctx, tx, audit.Entry{
		EmployeeID: &employeeID,
		OrderID:    &order.ID,
		Action:     enums.CompletionAction(stage),
		Detail:     detail,
		At:         now,
	})
}

func cleanNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// UpdateStageStatus lets the assignee move their stage one step forward.
// pending to in_process starts work without a dispatch; in_process to
// completed behaves exactly like ConfirmCompletion.
func (s *service) UpdateStageStatus(ctx context.Context, orderID uuid.UUID, stage enums.Stage, employeeID uuid.UUID, status enums.StageStatus, notes *string) (*models.ProductionOrder, error) {
	if !stage.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stage %q", stage))
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stage status %q", status))
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		st := order.Stage(stage)
		if !st.IsAssignee(employeeID) {
			return NotAssignee(employeeID, order.ID, stage)
		}
		if !enums.CanTransition(st.Status, status) {
			return InvalidStageTransition(stage, st.Status, string(status))
		}
		if status == enums.StageStatusCompleted {
			return s.complete(ctx, tx, order, stage, employeeID, notes)
		}
		return s.start(ctx, tx, order, stage, employeeID, notes)
	})
	if err != nil {
		return nil, pkgerrors.Storage(err, "update stage status")
	}
	s.logStage(ctx, orderID, stage, employeeID, "production.stage.status_updated")
	return s.GetOrder(ctx, orderID)
}

func (s *service) start(ctx context.Context, tx *gorm.DB, order *models.ProductionOrder, stage enums.Stage, employeeID uuid.UUID, notes *string) error {
	employee, err := s.employees.ActiveEmployee(ctx, tx, employeeID)
	if err != nil {
		return err
	}
	st := order.Stage(stage)
	now := s.timestamp()
	changes := map[string]any{
		stageColumn(stage, "status"):     enums.StageStatusInProcess,
		stageColumn(stage, "started_at"): now,
	}
	if st.Pay.IsZero() {
		changes[stageColumn(stage, "pay")] = employees.StagePay(employee, order.GarmentCount)
	}
	ok, err := s.repo.WithTx(tx).UpdateStage(ctx, order.ID, stage, StageGuard{Status: enums.StageStatusPending}, changes)
	if err != nil {
		return err
	}
	if !ok {
		return InvalidStageTransition(stage, st.Status, string(enums.StageStatusInProcess))
	}

	detail := fmt.Sprintf("order %s %s started by %s", order.OrderRef, stage, employee.Name)
	if notes = cleanNotes(notes); notes != nil {
		detail += ": " + *notes
	}
	return s.audit.Record(ctx, tx, audit.Entry{
		EmployeeID: &employee.ID,
		OrderID:    &order.ID,
		Action:     enums.AuditStageStarted,
		Detail:     detail,
		At:         now,
	})
}

func (s *service) logStage(ctx context.Context, orderID uuid.UUID, stage enums.Stage, employeeID uuid.UUID, msg string) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithFields(s.logg.WithOrderID(ctx, orderID.String()), map[string]any{
		"stage":       stage,
		"employee_id": employeeID.String(),
	})
	s.logg.Info(logCtx, msg)
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.ProductionOrder, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, orderNotFound(orderID)
		}
		return nil, pkgerrors.Storage(err, "load production order")
	}
	return order, nil
}

// TaskDetail returns the order only to an employee holding one of its stages.
func (s *service) TaskDetail(ctx context.Context, orderID, employeeID uuid.UUID) (*TaskDetail, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	tasks := make([]TaskSummary, 0, len(allStages))
	for _, stage := range allStages {
		if order.Stage(stage).IsAssignee(employeeID) {
			tasks = append(tasks, summarize(order, stage))
		}
	}
	if len(tasks) == 0 {
		return nil, notAssignedToOrder(employeeID, orderID)
	}

	lines, err := s.repo.ListLines(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Storage(err, "load material lines")
	}
	shipments, err := s.repo.ListShipments(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Storage(err, "load shipments")
	}
	mine := make([]models.Shipment, 0, len(shipments))
	for _, sh := range shipments {
		if sh.AssigneeID == employeeID {
			mine = append(mine, sh)
		}
	}
	if lines == nil {
		lines = []MaterialLine{}
	}
	return &TaskDetail{Order: order, Tasks: tasks, Materials: lines, Shipments: mine}, nil
}

// ListPendingTasks returns the employee's unfinished stages, most recently
// assigned first.
func (s *service) ListPendingTasks(ctx context.Context, employeeID uuid.UUID) ([]TaskSummary, error) {
	tasks, err := s.listTasks(ctx, employeeID, openStatuses, "assigned_at", 0)
	if err != nil {
		return nil, pkgerrors.Storage(err, "list pending tasks")
	}
	sortTasks(tasks, func(t TaskSummary) *time.Time { return t.AssignedAt })
	return tasks, nil
}

// ListCompletedTasks returns the employee's finished stages, latest first.
func (s *service) ListCompletedTasks(ctx context.Context, employeeID uuid.UUID, limit int) ([]TaskSummary, error) {
	if limit <= 0 {
		limit = s.cfg.CompletedTasksLimit
	}
	tasks, err := s.listTasks(ctx, employeeID, completedStatuses, "completed_at", limit)
	if err != nil {
		return nil, pkgerrors.Storage(err, "list completed tasks")
	}
	sortTasks(tasks, func(t TaskSummary) *time.Time { return t.CompletedAt })
	if len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

func (s *service) listTasks(ctx context.Context, employeeID uuid.UUID, statuses []enums.StageStatus, orderBy string, limit int) ([]TaskSummary, error) {
	tasks := []TaskSummary{}
	for _, stage := range allStages {
		orders, err := s.repo.ListStageTasks(ctx, employeeID, stage, statuses, orderBy, limit)
		if err != nil {
			return nil, err
		}
		for i := range orders {
			tasks = append(tasks, summarize(&orders[i], stage))
		}
	}
	return tasks, nil
}

// sortTasks orders newest first by key; tasks without a timestamp go last.
func sortTasks(tasks []TaskSummary, key func(TaskSummary) *time.Time) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := key(tasks[i]), key(tasks[j])
		switch {
		case a == nil && b == nil:
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		default:
			return a.After(*b)
		}
	})
}

func (s *service) ListShipments(ctx context.Context, orderID uuid.UUID) ([]models.Shipment, error) {
	if _, err := s.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListShipments(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Storage(err, "list shipments")
	}
	if rows == nil {
		rows = []models.Shipment{}
	}
	return rows, nil
}

// ListStaleTasks returns in-process stages started before the cutoff.
func (s *service) ListStaleTasks(ctx context.Context, startedBefore time.Time) ([]StaleTask, error) {
	var out []StaleTask
	for _, stage := range allStages {
		orders, err := s.repo.ListStale(ctx, stage, startedBefore.UTC())
		if err != nil {
			return nil, pkgerrors.Storage(err, "list stale tasks")
		}
		for _, order := range orders {
			st := order.Stage(stage)
			if st.AssigneeID == nil || st.StartedAt == nil {
				continue
			}
			out = append(out, StaleTask{
				OrderID:    order.ID,
				OrderRef:   order.OrderRef,
				Stage:      stage,
				AssigneeID: *st.AssigneeID,
				StartedAt:  *st.StartedAt,
			})
		}
	}
	return out, nil
}

func (s *service) Report(ctx context.Context, filter ReportFilter) ([]ReportRow, error) {
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must be before to")
	}
	rows, err := s.repo.Report(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Storage(err, "build production report")
	}
	if rows == nil {
		rows = []ReportRow{}
	}
	return rows, nil
}
