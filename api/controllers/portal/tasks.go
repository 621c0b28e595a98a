package portal

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/juliaconfecciones/production-backend/api/middleware"
	"github.com/juliaconfecciones/production-backend/api/responses"
	"github.com/juliaconfecciones/production-backend/api/validators"
	"github.com/juliaconfecciones/production-backend/internal/payments"
	"github.com/juliaconfecciones/production-backend/internal/production"
	"github.com/juliaconfecciones/production-backend/pkg/enums"
	pkgerrors "github.com/juliaconfecciones/production-backend/pkg/errors"
	"github.com/juliaconfecciones/production-backend/pkg/logger"
)

const maxCompletedLimit = 100

type confirmRequest struct {
	Notes *string `json:"notes,omitempty"`
}

type statusRequest struct {
	Status string  `json:"status" validate:"required,oneof=pending in_process completed"`
	Notes  *string `json:"notes,omitempty"`
}

// PendingTasks lists the caller's open stages, most recently assigned first.
func PendingTasks(svc production.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		employeeID, ok := employeeFromRequest(w, r, logg)
		if !ok {
			return
		}
		tasks, err := svc.ListPendingTasks(r.Context(), employeeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tasks)
	}
}

func CompletedTasks(svc production.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		employeeID, ok := employeeFromRequest(w, r, logg)
		if !ok {
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, maxCompletedLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tasks, err := svc.ListCompletedTasks(r.Context(), employeeID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tasks)
	}
}

func TaskDetail(svc production.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		employeeID, ok := employeeFromRequest(w, r, logg)
		if !ok {
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.TaskDetail(r.Context(), orderID, employeeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// ConfirmCompletion marks the caller's stage completed and receives its shipment.
func ConfirmCompletion(svc production.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		employeeID, ok := employeeFromRequest(w, r, logg)
		if !ok {
			return
		}
		orderID, stage, err := orderStageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req confirmRequest
		if hasBody(r) {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		notes := validators.SanitizeNotes(req.Notes, validators.NotesMaxLength)
		order, err := svc.ConfirmCompletion(r.Context(), orderID, stage, employeeID, notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// UpdateStatus moves the caller's stage forward one step.
func UpdateStatus(svc production.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		employeeID, ok := employeeFromRequest(w, r, logg)
		if !ok {
			return
		}
		orderID, stage, err := orderStageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req statusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseStageStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}
		notes := validators.SanitizeNotes(req.Notes, validators.NotesMaxLength)
		order, err := svc.UpdateStageStatus(r.Context(), orderID, stage, employeeID, status, notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func PaySummary(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		employeeID, ok := employeeFromRequest(w, r, logg)
		if !ok {
			return
		}
		summary, err := svc.ComputePendingPay(r.Context(), employeeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func employeeFromRequest(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, bool) {
	id, ok := middleware.EmployeeIDFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "employee context missing"))
		return uuid.Nil, false
	}
	return id, true
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

func hasBody(r *http.Request) bool {
	return r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0
}
