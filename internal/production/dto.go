package production

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/juliaconfecciones/production-backend/internal/materials"
	"github.com/juliaconfecciones/production-backend/pkg/db/models"
	"github.com/juliaconfecciones/production-backend/pkg/enums"
)

// CreateOrderInput describes a new job and the materials it consumes.
type CreateOrderInput struct {
	OrderRef     string
	Kind         enums.OrderKind
	GarmentCount int
	Materials    []materials.Requirement
	CutterID     *uuid.UUID
	SeamstressID *uuid.UUID
	CutPay       *decimal.Decimal
	SewPay       *decimal.Decimal
	Notes        *string
}

// DispatchResult is the order after a handoff plus the shipment it opened.
type DispatchResult struct {
	Order    *models.ProductionOrder `json:"order"`
	Shipment *models.Shipment        `json:"shipment"`
}

// TaskSummary is one stage of one order as seen by its assignee.
type TaskSummary struct {
	OrderID      uuid.UUID          `json:"order_id"`
	OrderRef     string             `json:"order_ref"`
	Kind         enums.OrderKind    `json:"kind"`
	GarmentCount int                `json:"garment_count"`
	Stage        enums.Stage        `json:"stage"`
	Status       enums.StageStatus  `json:"status"`
	Pay          decimal.Decimal    `json:"pay"`
	PaymentState enums.PaymentState `json:"payment_state"`
	AssignedAt   *time.Time         `json:"assigned_at,omitempty"`
	StartedAt    *time.Time         `json:"started_at,omitempty"`
	CompletedAt  *time.Time         `json:"completed_at,omitempty"`
	Notes        *string            `json:"notes,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

// MaterialLine is a reservation line joined with the material it draws from.
type MaterialLine struct {
	MaterialID uuid.UUID       `json:"material_id"`
	Name       string          `json:"name"`
	Unit       string          `json:"unit"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
}

// TaskDetail is an order from the point of view of one of its assignees.
type TaskDetail struct {
	Order     *models.ProductionOrder `json:"order"`
	Tasks     []TaskSummary           `json:"tasks"`
	Materials []MaterialLine          `json:"materials"`
	Shipments []models.Shipment       `json:"shipments"`
}

// ReportFilter bounds the production report by order creation time.
type ReportFilter struct {
	From *time.Time
	To   *time.Time
}

// ReportRow groups orders by both stage states and both assignees.
type ReportRow struct {
	CutStatus      enums.StageStatus `json:"cut_status"`
	SewStatus      enums.StageStatus `json:"sew_status"`
	CutterID       *uuid.UUID        `json:"cutter_id,omitempty"`
	CutterName     *string           `json:"cutter_name,omitempty"`
	SeamstressID   *uuid.UUID        `json:"seamstress_id,omitempty"`
	SeamstressName *string           `json:"seamstress_name,omitempty"`
	Orders         int64             `json:"orders"`
	CutPay         decimal.Decimal   `json:"cut_pay"`
	SewPay         decimal.Decimal   `json:"sew_pay"`
}

// StaleTask is an in-process stage that has not progressed since StartedAt.
type StaleTask struct {
	OrderID    uuid.UUID
	OrderRef   string
	Stage      enums.Stage
	AssigneeID uuid.UUID
	StartedAt  time.Time
}

func summarize(order *models.ProductionOrder, stage enums.Stage) TaskSummary {
	st := order.Stage(stage)
	return TaskSummary{
		OrderID:      order.ID,
		OrderRef:     order.OrderRef,
		Kind:         order.Kind,
		GarmentCount: order.GarmentCount,
		Stage:        stage,
		Status:       st.Status,
		Pay:          st.Pay,
		PaymentState: st.PaymentState,
		AssignedAt:   st.AssignedAt,
		StartedAt:    st.StartedAt,
		CompletedAt:  st.CompletedAt,
		Notes:        order.Notes,
		CreatedAt:    order.CreatedAt,
	}
}
