package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/juliaconfecciones/production-backend/api/responses"
	"github.com/juliaconfecciones/production-backend/api/validators"
	"github.com/juliaconfecciones/production-backend/internal/employees"
	"github.com/juliaconfecciones/production-backend/internal/payments"
	"github.com/juliaconfecciones/production-backend/pkg/enums"
	pkgerrors "github.com/juliaconfecciones/production-backend/pkg/errors"
	"github.com/juliaconfecciones/production-backend/pkg/logger"
)

type registerEmployeeRequest struct {
	TaxID          string          `json:"tax_id" validate:"required"`
	Name           string          `json:"name" validate:"required"`
	Email          *string         `json:"email,omitempty" validate:"omitempty,email"`
	Phone          *string         `json:"phone,omitempty"`
	Role           string          `json:"role" validate:"required,oneof=cutter seamstress"`
	FixedWage      decimal.Decimal `json:"fixed_wage"`
	PerGarmentRate decimal.Decimal `json:"per_garment_rate"`
}

// RegisterEmployee creates a worker and returns its one-time access code.
func RegisterEmployee(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "employees service unavailable"))
			return
		}

		var req registerEmployeeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		role, err := enums.ParseEmployeeRole(req.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		employee, err := svc.Register(r.Context(), employees.RegisterInput{
			TaxID:          req.TaxID,
			Name:           req.Name,
			Email:          req.Email,
			Phone:          req.Phone,
			Role:           role,
			FixedWage:      req.FixedWage,
			PerGarmentRate: req.PerGarmentRate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, employee)
	}
}

func ListEmployees(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := employees.ListFilter{}
		activeOnly, err := validators.ParseQueryBool(r, "active", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.ActiveOnly = activeOnly
		if raw := strings.TrimSpace(r.URL.Query().Get("role")); raw != "" {
			role, err := enums.ParseEmployeeRole(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
				return
			}
			filter.Role = &role
		}

		list, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetEmployee(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "employeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		employee, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, employee)
	}
}

// DeactivateEmployee retires a worker. Their history and pay stay intact.
func DeactivateEmployee(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "employeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		employee, err := svc.Deactivate(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, employee)
	}
}

// EmployeePaySummary returns the pending and paid totals for any worker.
func EmployeePaySummary(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "employeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.ComputePendingPay(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
