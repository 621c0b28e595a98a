package materials

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/juliaconfecciones/production-backend/pkg/db/models"
)

// Repository manages material ledger rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, material *models.Material) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Material, error)
	LockByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Material, error)
	Decrement(ctx context.Context, id uuid.UUID, current, quantity decimal.Decimal) (decimal.Decimal, bool, error)
	Increment(ctx context.Context, id uuid.UUID, current, quantity decimal.Decimal, at time.Time) (decimal.Decimal, bool, error)
	Deactivate(ctx context.Context, id uuid.UUID) (bool, error)
	ListBelowThreshold(ctx context.Context) ([]models.Material, error)
	List(ctx context.Context, activeOnly bool) ([]models.Material, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a material repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, material *models.Material) error {
	return r.db.WithContext(ctx).Create(material).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Material, error) {
	var material models.Material
	if err := r.db.WithContext(ctx).First(&material, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &material, nil
}

// LockByIDs row-locks the materials in id order so that concurrent
// reservations touching the same rows acquire them in the same sequence.
func (r *repository) LockByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Material, error) {
	var rows []models.Material
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// Decrement writes current minus quantity as the new on-hand value. It
// reports false when the row no longer holds current or the result would
// go negative.
func (r *repository) Decrement(ctx context.Context, id uuid.UUID, current, quantity decimal.Decimal) (decimal.Decimal, bool, error) {
	next := current.Sub(quantity)
	if next.IsNegative() {
		return current, false, nil
	}
	ok, err := r.swapOnHand(ctx, id, current, next, nil)
	return next, ok, err
}

// Increment is the restock counterpart of Decrement.
func (r *repository) Increment(ctx context.Context, id uuid.UUID, current, quantity decimal.Decimal, at time.Time) (decimal.Decimal, bool, error) {
	next := current.Add(quantity)
	ok, err := r.swapOnHand(ctx, id, current, next, &at)
	return next, ok, err
}

func (r *repository) swapOnHand(ctx context.Context, id uuid.UUID, current, next decimal.Decimal, restockedAt *time.Time) (bool, error) {
	columns := map[string]any{"quantity_on_hand": next.Round(3)}
	if restockedAt != nil {
		columns["last_restocked_at"] = *restockedAt
		columns["updated_at"] = *restockedAt
	}
	res := r.db.WithContext(ctx).
		Model(&models.Material{}).
		Where("id = ? AND active = ? AND quantity_on_hand = ?", id, true, current).
		UpdateColumns(columns)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Material{}).
		Where("id = ? AND active = ?", id, true).
		Update("active", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListBelowThreshold returns active materials at or under their threshold,
// most deficient first.
func (r *repository) ListBelowThreshold(ctx context.Context) ([]models.Material, error) {
	var rows []models.Material
	err := r.db.WithContext(ctx).
		Where("active = ? AND quantity_on_hand <= reorder_threshold", true).
		Order("quantity_on_hand - reorder_threshold ASC").
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]models.Material, error) {
	q := r.db.WithContext(ctx).Model(&models.Material{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var rows []models.Material
	err := q.Order("category ASC").Order("name ASC").Find(&rows).Error
	return rows, err
}
