package testdb

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/juliaconfecciones/production-backend/pkg/db"
	"github.com/juliaconfecciones/production-backend/pkg/db/models"
	"github.com/juliaconfecciones/production-backend/pkg/enums"
)

// SeedEmployee inserts an active employee with the given per-garment rate.
func SeedEmployee(t *testing.T, client *db.Client, name string, role enums.EmployeeRole, rate int64) models.Employee {
	t.Helper()
	email := strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@taller.test"
	employee := models.Employee{
		TaxID:          uuid.NewString()[:12],
		Name:           name,
		Email:          &email,
		Role:           role,
		FixedWage:      decimal.Zero,
		PerGarmentRate: decimal.NewFromInt(rate),
		AccessCode:     strings.ToUpper(uuid.NewString()[:8]),
		Active:         true,
	}
	require.NoError(t, client.DB().Create(&employee).Error)
	return employee
}

// SeedMaterial inserts an active material with the given stock and threshold.
func SeedMaterial(t *testing.T, client *db.Client, name string, onHand, threshold string) models.Material {
	t.Helper()
	material := models.Material{
		Name:             name,
		Category:         "tela",
		Unit:             "m",
		QuantityOnHand:   decimal.RequireFromString(onHand),
		ReorderThreshold: decimal.RequireFromString(threshold),
		UnitCost:         decimal.NewFromInt(1000),
		Active:           true,
	}
	require.NoError(t, client.DB().Create(&material).Error)
	return material
}
