package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/juliaconfecciones/production-backend/pkg/enums"
)

// PortalTokenPayload captures the data available when minting a portal JWT.
type PortalTokenPayload struct {
	EmployeeID uuid.UUID
	Role       enums.EmployeeRole
	JTI        string
}

// PortalClaims is the typed JWT handed to employees after access-code login.
type PortalClaims struct {
	EmployeeID uuid.UUID          `json:"employee_id"`
	Role       enums.EmployeeRole `json:"role"`
	jwt.RegisteredClaims
}
