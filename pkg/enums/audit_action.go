package enums

import "fmt"

// AuditAction tags every audit_entries row.
type AuditAction string

const (
	AuditOrderCreated        AuditAction = "order_created"
	AuditDispatchedToCut     AuditAction = "dispatched_to_cut"
	AuditCutCompleted        AuditAction = "cut_completed"
	AuditDispatchedToSew     AuditAction = "dispatched_to_sew"
	AuditSewCompleted        AuditAction = "sew_completed"
	AuditStageStarted        AuditAction = "stage_started"
	AuditPaymentMarked       AuditAction = "payment_marked"
	AuditEmployeeRegistered  AuditAction = "employee_registered"
	AuditEmployeeDeactivated AuditAction = "employee_deactivated"
	AuditMaterialRegistered  AuditAction = "material_registered"
	AuditMaterialRestocked   AuditAction = "material_restocked"
	AuditMaterialDeactivated AuditAction = "material_deactivated"
)

var validAuditActions = []AuditAction{
	AuditOrderCreated,
	AuditDispatchedToCut,
	AuditCutCompleted,
	AuditDispatchedToSew,
	AuditSewCompleted,
	AuditStageStarted,
	AuditPaymentMarked,
	AuditEmployeeRegistered,
	AuditEmployeeDeactivated,
	AuditMaterialRegistered,
	AuditMaterialRestocked,
	AuditMaterialDeactivated,
}

func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw strings into AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}

// DispatchAction returns the audit tag for sending work to a stage.
func DispatchAction(stage Stage) AuditAction {
	if stage == StageSew {
		return AuditDispatchedToSew
	}
	return AuditDispatchedToCut
}

// CompletionAction returns the audit tag for confirming a stage.
func CompletionAction(stage Stage) AuditAction {
	if stage == StageSew {
		return AuditSewCompleted
	}
	return AuditCutCompleted
}
