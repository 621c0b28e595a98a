package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/juliaconfecciones/production-backend/api/responses"
	"github.com/juliaconfecciones/production-backend/api/validators"
	"github.com/juliaconfecciones/production-backend/internal/materials"
	pkgerrors "github.com/juliaconfecciones/production-backend/pkg/errors"
	"github.com/juliaconfecciones/production-backend/pkg/logger"
)

type registerMaterialRequest struct {
	Name             string          `json:"name" validate:"required"`
	Category         string          `json:"category"`
	Unit             string          `json:"unit" validate:"required"`
	QuantityOnHand   decimal.Decimal `json:"quantity_on_hand"`
	ReorderThreshold decimal.Decimal `json:"reorder_threshold"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	Supplier         *string         `json:"supplier,omitempty"`
}

type restockRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

func RegisterMaterial(svc materials.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "materials service unavailable"))
			return
		}
		var req registerMaterialRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		material, err := svc.Register(r.Context(), materials.RegisterInput{
			Name:             req.Name,
			Category:         req.Category,
			Unit:             req.Unit,
			QuantityOnHand:   req.QuantityOnHand,
			ReorderThreshold: req.ReorderThreshold,
			UnitCost:         req.UnitCost,
			Supplier:         req.Supplier,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, material)
	}
}

func ListMaterials(svc materials.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly, err := validators.ParseQueryBool(r, "active", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// MaterialsBelowThreshold lists materials to reorder, largest deficit first.
func MaterialsBelowThreshold(svc materials.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListBelowThreshold(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func RestockMaterial(svc materials.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "materialId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req restockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		material, err := svc.Restock(r.Context(), id, req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, material)
	}
}

func DeactivateMaterial(svc materials.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "materialId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		material, err := svc.Deactivate(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, material)
	}
}
