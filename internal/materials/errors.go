package materials

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/juliaconfecciones/production-backend/pkg/errors"
)

// InsufficientStock reports the material that could not cover a reservation.
// An inactive material is reported with zero available.
func InsufficientStock(materialID uuid.UUID, requested, available decimal.Decimal) error {
	return pkgerrors.New(
		pkgerrors.CodeInsufficientStock,
		fmt.Sprintf("insufficient stock for material %s: requested %s, available %s", materialID, requested, available),
	).WithDetails(map[string]any{
		"material_id": materialID,
		"requested":   requested,
		"available":   available,
	})
}

func unknownMaterial(materialID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("material %s not found", materialID)).
		WithDetails(map[string]any{"material_id": materialID})
}

// QuantityScale is the number of decimal places the ledger stores.
const QuantityScale = 3

// ValidateQuantity rejects non-positive quantities and quantities finer
// than the ledger can store.
func ValidateQuantity(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if quantity.Exponent() < -QuantityScale && !quantity.Equal(quantity.Round(QuantityScale)) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity allows at most %d decimal places", QuantityScale)).
			WithDetails(map[string]any{"quantity": quantity})
	}
	return nil
}
