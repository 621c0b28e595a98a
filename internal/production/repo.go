package production

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/juliaconfecciones/production-backend/pkg/db/models"
	"github.com/juliaconfecciones/production-backend/pkg/enums"
)

// Repository persists production orders, their reservation lines and shipments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.ProductionOrder) error
	CreateLines(ctx context.Context, lines []models.OrderMaterial) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ProductionOrder, error)
	FindByRef(ctx context.Context, ref string) (*models.ProductionOrder, error)
	LockByID(ctx context.Context, id uuid.UUID) (*models.ProductionOrder, error)
	UpdateStage(ctx context.Context, id uuid.UUID, stage enums.Stage, guard StageGuard, changes map[string]any) (bool, error)
	ListLines(ctx context.Context, orderID uuid.UUID) ([]MaterialLine, error)
	CreateShipment(ctx context.Context, shipment *models.Shipment) error
	FindOpenShipment(ctx context.Context, orderID uuid.UUID, stage enums.Stage, assigneeID uuid.UUID) (*models.Shipment, error)
	MarkShipmentReceived(ctx context.Context, id uuid.UUID, at time.Time, notes *string) (bool, error)
	ListShipments(ctx context.Context, orderID uuid.UUID) ([]models.Shipment, error)
	ListStageTasks(ctx context.Context, employeeID uuid.UUID, stage enums.Stage, statuses []enums.StageStatus, orderBy string, limit int) ([]models.ProductionOrder, error)
	ListStale(ctx context.Context, stage enums.Stage, startedBefore time.Time) ([]models.ProductionOrder, error)
	Report(ctx context.Context, filter ReportFilter) ([]ReportRow, error)
}

// StageGuard is the state a stage must still be in for an update to apply.
type StageGuard struct {
	Status       enums.StageStatus
	PaymentState enums.PaymentState
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a production repository bound to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// stageColumn maps a stage field onto its prefixed column. stage must be valid.
func stageColumn(stage enums.Stage, field string) string {
	return string(stage) + "_" + field
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.ProductionOrder) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *repository) CreateLines(ctx context.Context, lines []models.OrderMaterial) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ProductionOrder, error) {
	var order models.ProductionOrder
	if err := r.db.WithContext(ctx).
		Preload("Materials", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByRef(ctx context.Context, ref string) (*models.ProductionOrder, error) {
	var order models.ProductionOrder
	if err := r.db.WithContext(ctx).Where("order_ref = ?", ref).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// LockByID loads the order with a row lock so that one writer at a time
// drives its stage machines.
func (r *repository) LockByID(ctx context.Context, id uuid.UUID) (*models.ProductionOrder, error) {
	var order models.ProductionOrder
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStage applies changes only while the stage still matches guard.
func (r *repository) UpdateStage(ctx context.Context, id uuid.UUID, stage enums.Stage, guard StageGuard, changes map[string]any) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.ProductionOrder{}).Where("id = ?", id)
	if guard.Status != "" {
		q = q.Where(stageColumn(stage, "status")+" = ?", guard.Status)
	}
	if guard.PaymentState != "" {
		q = q.Where(stageColumn(stage, "payment_state")+" = ?", guard.PaymentState)
	}
	res := q.Updates(changes)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ListLines(ctx context.Context, orderID uuid.UUID) ([]MaterialLine, error) {
	var lines []MaterialLine
	err := r.db.WithContext(ctx).
		Table("order_materials AS om").
		Select("om.material_id AS material_id, m.name AS name, m.unit AS unit, om.quantity AS quantity, om.unit_cost AS unit_cost").
		Joins("JOIN materials m ON m.id = om.material_id").
		Where("om.order_id = ?", orderID).
		Order("om.created_at ASC").
		Order("m.name ASC").
		Scan(&lines).Error
	return lines, err
}

func (r *repository) CreateShipment(ctx context.Context, shipment *models.Shipment) error {
	return r.db.WithContext(ctx).Create(shipment).Error
}

func (r *repository) FindOpenShipment(ctx context.Context, orderID uuid.UUID, stage enums.Stage, assigneeID uuid.UUID) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND stage = ? AND assignee_id = ? AND receipt_state = ?", orderID, stage, assigneeID, enums.ReceiptStatePending).
		Order("dispatched_at DESC").
		First(&shipment).Error; err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *repository) MarkShipmentReceived(ctx context.Context, id uuid.UUID, at time.Time, notes *string) (bool, error) {
	changes := map[string]any{
		"receipt_state": enums.ReceiptStateReceived,
		"received_at":   at,
	}
	if notes != nil {
		changes["notes"] = *notes
	}
	res := r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("id = ? AND receipt_state = ?", id, enums.ReceiptStatePending).
		Updates(changes)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ListShipments(ctx context.Context, orderID uuid.UUID) ([]models.Shipment, error) {
	var rows []models.Shipment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("dispatched_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// ListStageTasks returns orders where employeeID holds stage in one of statuses.
// orderBy names the stage timestamp field to sort on, newest first.
func (r *repository) ListStageTasks(ctx context.Context, employeeID uuid.UUID, stage enums.Stage, statuses []enums.StageStatus, orderBy string, limit int) ([]models.ProductionOrder, error) {
	q := r.db.WithContext(ctx).
		Where(stageColumn(stage, "assignee_id")+" = ?", employeeID).
		Where(stageColumn(stage, "status")+" IN ?", statuses).
		Order(stageColumn(stage, orderBy) + " DESC").
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.ProductionOrder
	err := q.Find(&rows).Error
	return rows, err
}

func (r *repository) ListStale(ctx context.Context, stage enums.Stage, startedBefore time.Time) ([]models.ProductionOrder, error) {
	var rows []models.ProductionOrder
	err := r.db.WithContext(ctx).
		Where(stageColumn(stage, "status")+" = ?", enums.StageStatusInProcess).
		Where(stageColumn(stage, "assignee_id") + " IS NOT NULL").
		Where(stageColumn(stage, "started_at")+" < ?", startedBefore).
		Order(stageColumn(stage, "started_at") + " ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Report(ctx context.Context, filter ReportFilter) ([]ReportRow, error) {
	q := r.db.WithContext(ctx).
		Table("production_orders AS o").
		Select(`o.cut_status AS cut_status, o.sew_status AS sew_status,
			o.cut_assignee_id AS cutter_id, c.name AS cutter_name,
			o.sew_assignee_id AS seamstress_id, s.name AS seamstress_name,
			COUNT(*) AS orders,
			COALESCE(SUM(o.cut_pay), 0) AS cut_pay,
			COALESCE(SUM(o.sew_pay), 0) AS sew_pay`).
		Joins("LEFT JOIN employees c ON c.id = o.cut_assignee_id").
		Joins("LEFT JOIN employees s ON s.id = o.sew_assignee_id")
	if filter.From != nil {
		q = q.Where("o.created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("o.created_at < ?", filter.To.UTC())
	}
	var rows []ReportRow
	err := q.
		Group("o.cut_status, o.sew_status, o.cut_assignee_id, c.name, o.sew_assignee_id, s.name").
		Order("o.cut_status ASC, o.sew_status ASC, c.name ASC, s.name ASC").
		Scan(&rows).Error
	return rows, err
}
