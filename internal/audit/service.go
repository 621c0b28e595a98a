package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/juliaconfecciones/production-backend/pkg/db/models"
	"github.com/juliaconfecciones/production-backend/pkg/enums"
	pkgerrors "github.com/juliaconfecciones/production-backend/pkg/errors"
)

// Entry is the immutable data one audit row requires.
type Entry struct {
	EmployeeID *uuid.UUID
	OrderID    *uuid.UUID
	Action     enums.AuditAction
	Detail     string
	At         time.Time
}

// Recorder appends audit entries inside a caller-owned transaction.
type Recorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
}

// Service defines audit trail operations.
type Service interface {
	Recorder
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.AuditEntry, error)
	ListByEmployee(ctx context.Context, employeeID uuid.UUID, limit int) ([]models.AuditEntry, error)
}

type service struct {
	repo Repository
}

// NewService wires an audit service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, tx *gorm.DB, entry Entry) error {
	if tx == nil {
		return fmt.Errorf("audit entries must be written inside a transaction")
	}
	if !entry.Action.IsValid() {
		return fmt.Errorf("invalid audit action %q", entry.Action)
	}
	at := entry.At
	if at.IsZero() {
		at = time.Now()
	}
	row := &models.AuditEntry{
		EmployeeID: entry.EmployeeID,
		OrderID:    entry.OrderID,
		Action:     entry.Action,
		Detail:     strings.TrimSpace(entry.Detail),
		CreatedAt:  at.UTC(),
	}
	if err := s.repo.WithTx(tx).Create(ctx, row); err != nil {
		return pkgerrors.Storage(err, "append audit entry")
	}
	return nil
}

func (s *service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.AuditEntry, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	entries, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Storage(err, "list audit entries")
	}
	return entries, nil
}

func (s *service) ListByEmployee(ctx context.Context, employeeID uuid.UUID, limit int) ([]models.AuditEntry, error) {
	if employeeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee id is required")
	}
	entries, err := s.repo.ListByEmployee(ctx, employeeID, limit)
	if err != nil {
		return nil, pkgerrors.Storage(err, "list audit entries")
	}
	return entries, nil
}
