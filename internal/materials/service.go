package materials

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/juliaconfecciones/production-backend/internal/audit"
	"github.com/juliaconfecciones/production-backend/pkg/db/models"
	"github.com/juliaconfecciones/production-backend/pkg/enums"
	pkgerrors "github.com/juliaconfecciones/production-backend/pkg/errors"
	"github.com/juliaconfecciones/production-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Reserver decrements stock for a whole order inside the caller's transaction.
type Reserver interface {
	Reserve(ctx context.Context, tx *gorm.DB, requirements []Requirement) ([]Reservation, error)
}

// Service defines material ledger operations.
type Service interface {
	Reserver
	Register(ctx context.Context, input RegisterInput) (*models.Material, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Material, error)
	List(ctx context.Context, activeOnly bool) ([]models.Material, error)
	Restock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) (*models.Material, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*models.Material, error)
	ListBelowThreshold(ctx context.Context) ([]LowStock, error)
}

type service struct {
	repo  Repository
	audit audit.Recorder
	tx    txRunner
	logg  *logger.Logger
	now   func() time.Time
}

// NewService wires the material ledger.
func NewService(repo Repository, recorder audit.Recorder, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("materials repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, audit: recorder, tx: tx, logg: logg, now: time.Now}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Material, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit is required")
	}
	if input.QuantityOnHand.IsNegative() || input.ReorderThreshold.IsNegative() || input.UnitCost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantities and cost cannot be negative")
	}

	material := &models.Material{
		Name:             name,
		Category:         strings.TrimSpace(input.Category),
		Unit:             unit,
		QuantityOnHand:   input.QuantityOnHand,
		ReorderThreshold: input.ReorderThreshold,
		UnitCost:         input.UnitCost.Round(2),
		Supplier:         input.Supplier,
		Active:           true,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, material); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, audit.Entry{
			Action: enums.AuditMaterialRegistered,
			Detail: fmt.Sprintf("%s registered with %s %s", material.Name, material.QuantityOnHand, material.Unit),
		})
	})
	if err != nil {
		return nil, pkgerrors.Storage(err, "register material")
	}
	return material, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Material, error) {
	material, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unknownMaterial(id)
		}
		return nil, pkgerrors.Storage(err, "load material")
	}
	return material, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]models.Material, error) {
	rows, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Storage(err, "list materials")
	}
	return rows, nil
}

// Reserve checks every requirement against locked ledger rows before any
// decrement is applied. The first requirement that cannot be covered, in
// request order, fails the whole call. Repeated materials are summed.
func (s *service) Reserve(ctx context.Context, tx *gorm.DB, requirements []Requirement) ([]Reservation, error) {
	if tx == nil {
		return nil, fmt.Errorf("reservations must run inside a transaction")
	}
	if len(requirements) == 0 {
		return []Reservation{}, nil
	}

	order := make([]uuid.UUID, 0, len(requirements))
	totals := make(map[uuid.UUID]decimal.Decimal, len(requirements))
	for _, req := range requirements {
		if req.MaterialID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "material id is required")
		}
		if err := ValidateQuantity(req.Quantity); err != nil {
			return nil, pkgerrors.As(err).WithDetails(map[string]any{"material_id": req.MaterialID, "quantity": req.Quantity})
		}
		if _, seen := totals[req.MaterialID]; !seen {
			order = append(order, req.MaterialID)
		}
		totals[req.MaterialID] = totals[req.MaterialID].Add(req.Quantity)
	}

	repo := s.repo.WithTx(tx)
	locked, err := repo.LockByIDs(ctx, order)
	if err != nil {
		return nil, pkgerrors.Storage(err, "lock materials")
	}
	byID := make(map[uuid.UUID]models.Material, len(locked))
	for _, m := range locked {
		byID[m.ID] = m
	}

	for _, id := range order {
		material, ok := byID[id]
		if !ok {
			return nil, unknownMaterial(id)
		}
		available := material.QuantityOnHand
		if !material.Active {
			available = decimal.Zero
		}
		if available.LessThan(totals[id]) {
			return nil, InsufficientStock(id, totals[id], available)
		}
	}

	reservations := make([]Reservation, 0, len(order))
	for _, id := range order {
		material := byID[id]
		remaining, ok, err := repo.Decrement(ctx, id, material.QuantityOnHand, totals[id])
		if err != nil {
			return nil, pkgerrors.Storage(err, "decrement material")
		}
		if !ok {
			// The row changed after the lock check; report what is left now.
			current, findErr := repo.FindByID(ctx, id)
			available := decimal.Zero
			if findErr == nil && current.Active {
				available = current.QuantityOnHand
			}
			return nil, InsufficientStock(id, totals[id], available)
		}
		reservations = append(reservations, Reservation{
			MaterialID: id,
			Name:       material.Name,
			Quantity:   totals[id],
			UnitCost:   material.UnitCost,
			Remaining:  remaining,
		})
	}
	return reservations, nil
}

func (s *service) Restock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) (*models.Material, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}

	var material *models.Material
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := repo.LockByIDs(ctx, []uuid.UUID{id})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return unknownMaterial(id)
		}
		current := locked[0]
		if !current.Active {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "material is inactive")
		}
		_, ok, err := repo.Increment(ctx, id, current.QuantityOnHand, quantity, s.now().UTC())
		if err != nil {
			return err
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "material changed during restock, retry")
		}
		material, err = repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, audit.Entry{
			Action: enums.AuditMaterialRestocked,
			Detail: fmt.Sprintf("%s restocked by %s %s, now %s", material.Name, quantity, material.Unit, material.QuantityOnHand),
		})
	})
	if err != nil {
		return nil, pkgerrors.Storage(err, "restock material")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"material_id": id.String(),
			"quantity":    quantity.String(),
		})
		s.logg.Info(logCtx, "materials.restocked")
	}
	return material, nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) (*models.Material, error) {
	var material *models.Material
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		changed, err := repo.Deactivate(ctx, id)
		if err != nil {
			return err
		}
		material, err = repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return unknownMaterial(id)
			}
			return err
		}
		if !changed {
			return nil
		}
		return s.audit.Record(ctx, tx, audit.Entry{
			Action: enums.AuditMaterialDeactivated,
			Detail: fmt.Sprintf("%s deactivated", material.Name),
		})
	})
	if err != nil {
		return nil, pkgerrors.Storage(err, "deactivate material")
	}
	return material, nil
}

func (s *service) ListBelowThreshold(ctx context.Context) ([]LowStock, error) {
	rows, err := s.repo.ListBelowThreshold(ctx)
	if err != nil {
		return nil, pkgerrors.Storage(err, "list materials below threshold")
	}
	out := make([]LowStock, 0, len(rows))
	for _, m := range rows {
		out = append(out, LowStock{Material: m, Deficit: m.QuantityOnHand.Sub(m.ReorderThreshold)})
	}
	return out, nil
}
