package employees

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/juliaconfecciones/production-backend/pkg/db/models"
)

// Repository exposes employee persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an employees repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new employee.
func (r *Repository) Create(ctx context.Context, employee *models.Employee) error {
	return r.db.WithContext(ctx).Create(employee).Error
}

// FindByID loads an employee by id regardless of active flag.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.WithContext(ctx).First(&employee, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

// FindByAccessCode loads the employee holding the credential.
func (r *Repository) FindByAccessCode(ctx context.Context, code string) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.WithContext(ctx).Where("access_code = ?", code).First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

// List returns employees ordered by name.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Employee, error) {
	q := r.db.WithContext(ctx).Model(&models.Employee{})
	if filter.Role != nil {
		q = q.Where("role = ?", *filter.Role)
	}
	if filter.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	var rows []models.Employee
	if err := q.Order("name ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Deactivate clears the active flag. It reports false when the employee was already inactive.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Employee{}).
		Where("id = ? AND active = ?", id, true).
		Update("active", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
