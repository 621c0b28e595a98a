package portal

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/juliaconfecciones/production-backend/api/responses"
	"github.com/juliaconfecciones/production-backend/api/validators"
	"github.com/juliaconfecciones/production-backend/internal/employees"
	"github.com/juliaconfecciones/production-backend/pkg/auth"
	"github.com/juliaconfecciones/production-backend/pkg/config"
	"github.com/juliaconfecciones/production-backend/pkg/enums"
	pkgerrors "github.com/juliaconfecciones/production-backend/pkg/errors"
	"github.com/juliaconfecciones/production-backend/pkg/logger"
)

type loginRequest struct {
	AccessCode string `json:"access_code" validate:"required"`
}

type loginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Employee  loggedInEmployee `json:"employee"`
}

type loggedInEmployee struct {
	ID   uuid.UUID          `json:"id"`
	Name string             `json:"name"`
	Role enums.EmployeeRole `json:"role"`
}

// Login exchanges an employee access code for a portal token.
func Login(svc employees.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "employees service unavailable"))
			return
		}
		var req loginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		employee, err := svc.Authenticate(r.Context(), req.AccessCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, expiresAt, err := auth.MintPortalToken(cfg, time.Now().UTC(), auth.PortalTokenPayload{
			EmployeeID: employee.ID,
			Role:       employee.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint portal token"))
			return
		}

		if logg != nil {
			logg.Info(logg.WithEmployeeID(r.Context(), employee.ID.String()), "portal.login")
		}
		responses.WriteSuccess(w, loginResponse{
			Token:     token,
			ExpiresAt: expiresAt,
			Employee:  loggedInEmployee{ID: employee.ID, Name: employee.Name, Role: employee.Role},
		})
	}
}
