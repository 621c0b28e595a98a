package payloads

import (
	"github.com/google/uuid"

	"github.com/juliaconfecciones/production-backend/pkg/enums"
)

// NotificationRequestedEvent asks the delivery channel to reach an employee.
// Contact fields are copied at emit time so the consumer needs no database access.
type NotificationRequestedEvent struct {
	NotificationID uuid.UUID              `json:"notification_id"`
	EmployeeID     uuid.UUID              `json:"employee_id"`
	OrderID        *uuid.UUID             `json:"order_id,omitempty"`
	Kind           enums.NotificationKind `json:"kind"`
	Message        string                 `json:"message"`
	Email          *string                `json:"email,omitempty"`
	Phone          *string                `json:"phone,omitempty"`
}
