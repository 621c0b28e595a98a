package orders

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/juliaconfecciones/production-backend/api/responses"
	"github.com/juliaconfecciones/production-backend/api/validators"
	"github.com/juliaconfecciones/production-backend/internal/audit"
	"github.com/juliaconfecciones/production-backend/internal/materials"
	"github.com/juliaconfecciones/production-backend/internal/payments"
	"github.com/juliaconfecciones/production-backend/internal/production"
	"github.com/juliaconfecciones/production-backend/pkg/enums"
	pkgerrors "github.com/juliaconfecciones/production-backend/pkg/errors"
	"github.com/juliaconfecciones/production-backend/pkg/logger"
)

type materialRequirement struct {
	MaterialID uuid.UUID       `json:"material_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
}

type createOrderRequest struct {
	OrderRef     string                `json:"order_ref" validate:"required"`
	Kind         string                `json:"kind,omitempty" validate:"omitempty,oneof=sale custom"`
	GarmentCount int                   `json:"garment_count" validate:"min=0"`
	Materials    []materialRequirement `json:"materials" validate:"dive"`
	CutterID     *uuid.UUID            `json:"cutter_id,omitempty"`
	SeamstressID *uuid.UUID            `json:"seamstress_id,omitempty"`
	CutPay       *decimal.Decimal      `json:"cut_pay,omitempty"`
	SewPay       *decimal.Decimal      `json:"sew_pay,omitempty"`
	Notes        *string               `json:"notes,omitempty"`
}

type dispatchRequest struct {
	EmployeeID uuid.UUID `json:"employee_id" validate:"required"`
}

// Create reserves materials and opens a production order in one step.
func Create(svc production.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "production service unavailable"))
			return
		}
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := production.CreateOrderInput{
			OrderRef:     req.OrderRef,
			GarmentCount: req.GarmentCount,
			CutterID:     req.CutterID,
			SeamstressID: req.SeamstressID,
			CutPay:       req.CutPay,
			SewPay:       req.SewPay,
			Notes:        validators.SanitizeNotes(req.Notes, validators.NotesMaxLength),
		}
		if req.Kind != "" {
			kind, err := enums.ParseOrderKind(req.Kind)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order kind"))
				return
			}
			input.Kind = kind
		}
		for _, m := range req.Materials {
			input.Materials = append(input.Materials, materials.Requirement{MaterialID: m.MaterialID, Quantity: m.Quantity})
		}

		order, err := svc.CreateOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func Detail(svc production.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AuditTrail returns every recorded action on the order, oldest first.
func AuditTrail(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entries, err := svc.ListByOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

func Shipments(svc production.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListShipments(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Dispatch assigns a stage to a worker and ships the garments to them.
func Dispatch(svc production.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, stage, err := orderStageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req dispatchRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{"order_id": orderID.String(), "stage": stage.String()})
		}
		result, err := svc.AssignAndDispatch(ctx, orderID, stage, req.EmployeeID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// MarkPaid settles a completed stage. Repeating the call is a no-op.
func MarkPaid(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, stage, err := orderStageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.MarkPaid(r.Context(), orderID, stage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func Report(svc production.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, err := validators.ParseQueryTime(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryTime(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.Report(r.Context(), production.ReportFilter{From: from, To: to})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func orderStageParams(r *http.Request) (uuid.UUID, enums.Stage, error) {
	orderID, err := validators.ParseUUIDParam(r, "orderId")
	if err != nil {
		return uuid.Nil, "", err
	}
	stage, err := enums.ParseStage(chi.URLParam(r, "stage"))
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stage").
			WithDetails(map[string]any{"field": "stage"})
	}
	return orderID, stage, nil
}
