package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/juliaconfecciones/production-backend/pkg/enums"
)

// Employee is a cutter or seamstress paid per garment.
type Employee struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TaxID          string             `gorm:"column:tax_id;not null;uniqueIndex:ux_employees_tax_id" json:"tax_id"`
	Name           string             `gorm:"column:name;not null" json:"name"`
	Email          *string            `gorm:"column:email" json:"email,omitempty"`
	Phone          *string            `gorm:"column:phone" json:"phone,omitempty"`
	Role           enums.EmployeeRole `gorm:"column:role;type:employee_role;not null" json:"role"`
	FixedWage      decimal.Decimal    `gorm:"column:fixed_wage;type:numeric(12,2);not null" json:"fixed_wage"`
	PerGarmentRate decimal.Decimal    `gorm:"column:per_garment_rate;type:numeric(12,2);not null" json:"per_garment_rate"`
	AccessCode     string             `gorm:"column:access_code;not null;uniqueIndex:ux_employees_access_code" json:"-"`
	Active         bool               `gorm:"column:active;not null" json:"active"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (e *Employee) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}
