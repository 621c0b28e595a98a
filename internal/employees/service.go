package employees

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/juliaconfecciones/production-backend/internal/audit"
	"github.com/juliaconfecciones/production-backend/pkg/db"
	"github.com/juliaconfecciones/production-backend/pkg/db/models"
	"github.com/juliaconfecciones/production-backend/pkg/enums"
	pkgerrors "github.com/juliaconfecciones/production-backend/pkg/errors"
	"github.com/juliaconfecciones/production-backend/pkg/logger"
)

const (
	accessCodeLength   = 8
	accessCodeAttempts = 5
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Directory resolves employees for other domains inside their transactions.
type Directory interface {
	ActiveEmployee(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Employee, error)
}

// Service defines employee management and portal authentication.
type Service interface {
	Directory
	Register(ctx context.Context, input RegisterInput) (*EmployeeDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*EmployeeDTO, error)
	List(ctx context.Context, filter ListFilter) ([]EmployeeDTO, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*EmployeeDTO, error)
	Authenticate(ctx context.Context, accessCode string) (*models.Employee, error)
}

type service struct {
	repo    *Repository
	audit   audit.Recorder
	tx      txRunner
	logg    *logger.Logger
	newCode func() string
}

// NewService wires employee dependencies.
func NewService(repo *Repository, recorder audit.Recorder, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("employees repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, audit: recorder, tx: tx, logg: logg, newCode: generateAccessCode}, nil
}

func generateAccessCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:accessCodeLength])
}

// Register stores a new worker with a freshly generated access code. A code
// collision rolls back and retries with another code.
func (s *service) Register(ctx context.Context, input RegisterInput) (*EmployeeDTO, error) {
	if err := validateRegister(&input); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= accessCodeAttempts; attempt++ {
		employee := &models.Employee{
			TaxID:          input.TaxID,
			Name:           input.Name,
			Email:          input.Email,
			Phone:          input.Phone,
			Role:           input.Role,
			FixedWage:      input.FixedWage,
			PerGarmentRate: input.PerGarmentRate,
			AccessCode:     s.newCode(),
			Active:         true,
		}
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			if err := s.repo.WithTx(tx).Create(ctx, employee); err != nil {
				return err
			}
			return s.audit.Record(ctx, tx, audit.Entry{
				EmployeeID: &employee.ID,
				Action:     enums.AuditEmployeeRegistered,
				Detail:     fmt.Sprintf("%s registered as %s", employee.Name, employee.Role),
			})
		})
		switch {
		case err == nil:
			if s.logg != nil {
				s.logg.Info(s.logg.WithEmployeeID(ctx, employee.ID.String()), "employees.registered")
			}
			dto := FromModel(employee)
			dto.AccessCode = employee.AccessCode
			return dto, nil
		case db.IsUniqueViolation(err, "tax_id"):
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an employee with this tax id already exists").
				WithDetails(map[string]any{"tax_id": input.TaxID})
		case db.IsUniqueViolation(err, "access_code"):
			continue
		default:
			return nil, pkgerrors.Storage(err, "register employee")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not allocate a unique access code")
}

func validateRegister(input *RegisterInput) error {
	input.TaxID = strings.TrimSpace(input.TaxID)
	input.Name = strings.TrimSpace(input.Name)
	if input.TaxID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "tax id is required")
	}
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", input.Role))
	}
	if input.FixedWage.IsNegative() || input.PerGarmentRate.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "wages cannot be negative")
	}
	input.Email = trimOptional(input.Email)
	input.Phone = trimOptional(input.Phone)
	input.FixedWage = input.FixedWage.Round(2)
	input.PerGarmentRate = input.PerGarmentRate.Round(2)
	return nil
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*EmployeeDTO, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
		}
		return nil, pkgerrors.Storage(err, "load employee")
	}
	return FromModel(employee), nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]EmployeeDTO, error) {
	if filter.Role != nil && !filter.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", *filter.Role))
	}
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Storage(err, "list employees")
	}
	out := make([]EmployeeDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

// Deactivate retires an employee. Existing assignments are left untouched;
// the employee can no longer log in or receive new dispatches.
func (s *service) Deactivate(ctx context.Context, id uuid.UUID) (*EmployeeDTO, error) {
	var employee *models.Employee
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		changed, err := repo.Deactivate(ctx, id)
		if err != nil {
			return err
		}
		employee, err = repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return s.audit.Record(ctx, tx, audit.Entry{
			EmployeeID: &employee.ID,
			Action:     enums.AuditEmployeeDeactivated,
			Detail:     fmt.Sprintf("%s deactivated", employee.Name),
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
		}
		return nil, pkgerrors.Storage(err, "deactivate employee")
	}
	return FromModel(employee), nil
}

// Authenticate exchanges an access code for the active employee holding it.
func (s *service) Authenticate(ctx context.Context, accessCode string) (*models.Employee, error) {
	code := strings.ToUpper(strings.TrimSpace(accessCode))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "access code is required")
	}
	employee, err := s.repo.FindByAccessCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access code")
		}
		return nil, pkgerrors.Storage(err, "authenticate employee")
	}
	if !employee.Active {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access code")
	}
	return employee, nil
}

// ActiveEmployee returns the employee or UNKNOWN_EMPLOYEE when it does not
// exist or has been deactivated.
func (s *service) ActiveEmployee(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Employee, error) {
	unknown := pkgerrors.New(pkgerrors.CodeUnknownEmployee, "employee does not exist or is inactive").
		WithDetails(map[string]any{"employee_id": id})
	if id == uuid.Nil {
		return nil, unknown
	}
	employee, err := s.repo.WithTx(tx).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unknown
		}
		return nil, pkgerrors.Storage(err, "load employee")
	}
	if !employee.Active {
		return nil, unknown
	}
	return employee, nil
}

// StagePay is the per-order amount an employee earns for one stage.
func StagePay(employee *models.Employee, garments int) decimal.Decimal {
	if employee == nil || garments <= 0 {
		return decimal.Zero
	}
	return employee.PerGarmentRate.Mul(decimal.NewFromInt(int64(garments))).Round(2)
}
