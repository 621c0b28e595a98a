package employees

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/juliaconfecciones/production-backend/internal/audit"
	"github.com/juliaconfecciones/production-backend/internal/testdb"
	"github.com/juliaconfecciones/production-backend/pkg/db"
	"github.com/juliaconfecciones/production-backend/pkg/db/models"
	"github.com/juliaconfecciones/production-backend/pkg/enums"
	pkgerrors "github.com/juliaconfecciones/production-backend/pkg/errors"
)

func newTestService(t *testing.T, client *db.Client) *service {
	t.Helper()
	recorder, err := audit.NewService(audit.NewRepository(client.DB()))
	require.NoError(t, err)
	svc, err := NewService(NewRepository(client.DB()), recorder, client, nil)
	require.NoError(t, err)
	return svc.(*service)
}

func registerInput(taxID string, role enums.EmployeeRole) RegisterInput {
	email := " rosa@taller.test "
	return RegisterInput{
		TaxID:          taxID,
		Name:           " Rosa Perez ",
		Email:          &email,
		Role:           role,
		FixedWage:      decimal.NewFromInt(300000),
		PerGarmentRate: decimal.NewFromInt(5000),
	}
}

func TestRegisterIssuesAccessCodeAndAudits(t *testing.T) {
	client := testdb.Open(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	dto, err := svc.Register(ctx, registerInput("11.111.111-1", enums.EmployeeRoleCutter))
	require.NoError(t, err)
	require.Len(t, dto.AccessCode, accessCodeLength)
	require.Regexp(t, "^[0-9A-F]{8}$", dto.AccessCode)
	require.Equal(t, "Rosa Perez", dto.Name)
	require.Equal(t, "rosa@taller.test", *dto.Email)
	require.True(t, dto.Active)

	var entries []models.AuditEntry
	require.NoError(t, client.DB().Where("employee_id = ?", dto.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, enums.AuditEmployeeRegistered, entries[0].Action)

	fetched, err := svc.Get(ctx, dto.ID)
	require.NoError(t, err)
	require.Empty(t, fetched.AccessCode)
}

func TestRegisterDuplicateTaxID(t *testing.T) {
	client := testdb.Open(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput("22.222.222-2", enums.EmployeeRoleCutter))
	require.NoError(t, err)
	_, err = svc.Register(ctx, registerInput("22.222.222-2", enums.EmployeeRoleSeamstress))
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestRegisterRetriesAccessCodeCollision(t *testing.T) {
	client := testdb.Open(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	codes := []string{"AAAA0001", "AAAA0001", "BBBB0002"}
	svc.newCode = func() string {
		code := codes[0]
		codes = codes[1:]
		return code
	}

	first, err := svc.Register(ctx, registerInput("33.333.333-3", enums.EmployeeRoleCutter))
	require.NoError(t, err)
	require.Equal(t, "AAAA0001", first.AccessCode)

	second, err := svc.Register(ctx, registerInput("44.444.444-4", enums.EmployeeRoleSeamstress))
	require.NoError(t, err)
	require.Equal(t, "BBBB0002", second.AccessCode)

	var audits int64
	require.NoError(t, client.DB().Model(&models.AuditEntry{}).Count(&audits).Error)
	require.EqualValues(t, 2, audits)
}

func TestRegisterValidation(t *testing.T) {
	client := testdb.Open(t)
	svc := newTestService(t, client)

	bad := registerInput("", enums.EmployeeRoleCutter)
	_, err := svc.Register(context.Background(), bad)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	bad = registerInput("55", "manager")
	_, err = svc.Register(context.Background(), bad)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	bad = registerInput("55", enums.EmployeeRoleCutter)
	bad.PerGarmentRate = decimal.NewFromInt(-1)
	_, err = svc.Register(context.Background(), bad)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestAuthenticateAndDeactivate(t *testing.T) {
	client := testdb.Open(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	dto, err := svc.Register(ctx, registerInput("66.666.666-6", enums.EmployeeRoleSeamstress))
	require.NoError(t, err)

	employee, err := svc.Authenticate(ctx, " "+dto.AccessCode+" ")
	require.NoError(t, err)
	require.Equal(t, dto.ID, employee.ID)

	_, err = svc.Authenticate(ctx, "FFFFFFFF")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))

	deactivated, err := svc.Deactivate(ctx, dto.ID)
	require.NoError(t, err)
	require.False(t, deactivated.Active)

	_, err = svc.Deactivate(ctx, dto.ID)
	require.NoError(t, err)

	var audits int64
	require.NoError(t, client.DB().Model(&models.AuditEntry{}).
		Where("action = ?", enums.AuditEmployeeDeactivated).Count(&audits).Error)
	require.EqualValues(t, 1, audits)

	_, err = svc.Authenticate(ctx, dto.AccessCode)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))

	_, err = svc.Deactivate(ctx, uuid.New())
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestActiveEmployee(t *testing.T) {
	client := testdb.Open(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	active := testdb.SeedEmployee(t, client, "Rosa Perez", enums.EmployeeRoleCutter, 5000)
	inactive := testdb.SeedEmployee(t, client, "Luis Mora", enums.EmployeeRoleCutter, 5000)
	require.NoError(t, client.DB().Model(&models.Employee{}).Where("id = ?", inactive.ID).Update("active", false).Error)

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		got, err := svc.ActiveEmployee(ctx, tx, active.ID)
		require.NoError(t, err)
		require.Equal(t, active.ID, got.ID)

		_, err = svc.ActiveEmployee(ctx, tx, inactive.ID)
		require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnknownEmployee))

		_, err = svc.ActiveEmployee(ctx, tx, uuid.New())
		require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnknownEmployee))
		return nil
	}))
}

func TestListFiltersByRole(t *testing.T) {
	client := testdb.Open(t)
	svc := newTestService(t, client)
	testdb.SeedEmployee(t, client, "Rosa Perez", enums.EmployeeRoleCutter, 5000)
	testdb.SeedEmployee(t, client, "Ana Soto", enums.EmployeeRoleSeamstress, 8000)

	role := enums.EmployeeRoleSeamstress
	rows, err := svc.List(context.Background(), ListFilter{Role: &role, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Ana Soto", rows[0].Name)
}

func TestStagePay(t *testing.T) {
	employee := &models.Employee{PerGarmentRate: decimal.RequireFromString("1250.50")}
	require.True(t, decimal.RequireFromString("3751.50").Equal(StagePay(employee, 3)))
	require.True(t, StagePay(nil, 3).IsZero())
}
