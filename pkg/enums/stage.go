package enums

import "fmt"

// Stage names one of the two fixed manufacturing phases of an order.
type Stage string

const (
	StageCut Stage = "cut"
	StageSew Stage = "sew"
)

var validStages = []Stage{StageCut, StageSew}

func (s Stage) IsValid() bool {
	for _, candidate := range validStages {
		if candidate == s {
			return true
		}
	}
	return false
}

func (s Stage) String() string {
	return string(s)
}

// ParseStage converts raw strings into Stage.
func ParseStage(value string) (Stage, error) {
	for _, candidate := range validStages {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stage %q", value)
}

// StageStatus maps to the stage_status enum in Postgres.
type StageStatus string

const (
	StageStatusPending   StageStatus = "pending"
	StageStatusInProcess StageStatus = "in_process"
	StageStatusCompleted StageStatus = "completed"
)

var validStageStatuses = []StageStatus{
	StageStatusPending,
	StageStatusInProcess,
	StageStatusCompleted,
}

func (s StageStatus) IsValid() bool {
	for _, candidate := range validStageStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func (s StageStatus) String() string {
	return string(s)
}

// Next returns the only status a stage may move to from s.
func (s StageStatus) Next() (StageStatus, bool) {
	switch s {
	case StageStatusPending:
		return StageStatusInProcess, true
	case StageStatusInProcess:
		return StageStatusCompleted, true
	default:
		return "", false
	}
}

// CanTransition reports whether from -> to is a single forward step.
func CanTransition(from, to StageStatus) bool {
	next, ok := from.Next()
	return ok && next == to
}

// ParseStageStatus converts raw strings into StageStatus.
func ParseStageStatus(value string) (StageStatus, error) {
	for _, candidate := range validStageStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stage status %q", value)
}

// PaymentState maps to the payment_state enum in Postgres.
type PaymentState string

const (
	PaymentStatePending PaymentState = "pending"
	PaymentStatePaid    PaymentState = "paid"
)

var validPaymentStates = []PaymentState{PaymentStatePending, PaymentStatePaid}

func (p PaymentState) IsValid() bool {
	for _, candidate := range validPaymentStates {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentState converts raw strings into PaymentState.
func ParsePaymentState(value string) (PaymentState, error) {
	for _, candidate := range validPaymentStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment state %q", value)
}
