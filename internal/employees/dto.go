package employees

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/juliaconfecciones/production-backend/pkg/db/models"
	"github.com/juliaconfecciones/production-backend/pkg/enums"
)

// EmployeeDTO is the back-office shape. The access code is only returned at registration.
type EmployeeDTO struct {
	ID             uuid.UUID          `json:"id"`
	TaxID          string             `json:"tax_id"`
	Name           string             `json:"name"`
	Email          *string            `json:"email,omitempty"`
	Phone          *string            `json:"phone,omitempty"`
	Role           enums.EmployeeRole `json:"role"`
	FixedWage      decimal.Decimal    `json:"fixed_wage"`
	PerGarmentRate decimal.Decimal    `json:"per_garment_rate"`
	Active         bool               `json:"active"`
	AccessCode     string             `json:"access_code,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// RegisterInput holds the data required to register a worker.
type RegisterInput struct {
	TaxID          string
	Name           string
	Email          *string
	Phone          *string
	Role           enums.EmployeeRole
	FixedWage      decimal.Decimal
	PerGarmentRate decimal.Decimal
}

// ListFilter narrows employee listings.
type ListFilter struct {
	Role       *enums.EmployeeRole
	ActiveOnly bool
}

// FromModel maps an employee without its credential.
func FromModel(e *models.Employee) *EmployeeDTO {
	if e == nil {
		return nil
	}
	return &EmployeeDTO{
		ID:             e.ID,
		TaxID:          e.TaxID,
		Name:           e.Name,
		Email:          e.Email,
		Phone:          e.Phone,
		Role:           e.Role,
		FixedWage:      e.FixedWage,
		PerGarmentRate: e.PerGarmentRate,
		Active:         e.Active,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}
