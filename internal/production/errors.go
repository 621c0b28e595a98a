package production

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/juliaconfecciones/production-backend/pkg/enums"
	pkgerrors "github.com/juliaconfecciones/production-backend/pkg/errors"
)

// InvalidStageTransition reports a move the stage machine does not allow.
func InvalidStageTransition(stage enums.Stage, current enums.StageStatus, requested string) error {
	return pkgerrors.New(
		pkgerrors.CodeInvalidStageTransition,
		fmt.Sprintf("%s stage cannot move from %s to %s", stage, current, requested),
	).WithDetails(map[string]any{
		"stage":     stage,
		"current":   current,
		"requested": requested,
	})
}

// NotAssignee reports an employee acting on a stage held by someone else.
func NotAssignee(employeeID, orderID uuid.UUID, stage enums.Stage) error {
	return pkgerrors.New(
		pkgerrors.CodeNotAssignee,
		fmt.Sprintf("employee %s is not the %s assignee of order %s", employeeID, stage, orderID),
	).WithDetails(map[string]any{
		"employee_id": employeeID,
		"order_id":    orderID,
		"stage":       stage,
	})
}

func notAssignedToOrder(employeeID, orderID uuid.UUID) error {
	return pkgerrors.New(
		pkgerrors.CodeNotAssignee,
		fmt.Sprintf("employee %s holds no stage of order %s", employeeID, orderID),
	).WithDetails(map[string]any{
		"employee_id": employeeID,
		"order_id":    orderID,
	})
}

func orderNotFound(orderID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "production order not found").
		WithDetails(map[string]any{"order_id": orderID})
}

func duplicateOrderRef(ref string, existing uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("order %s already exists", ref)).
		WithDetails(map[string]any{"order_ref": ref, "order_id": existing})
}
