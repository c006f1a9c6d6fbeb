package connections

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConnectionStatus tracks whether an advance payment still has balance.
type ConnectionStatus string

const (
	StatusOpen   ConnectionStatus = "OPEN"
	StatusClosed ConnectionStatus = "CLOSED"
)

// Connection is an advance payment a partner has made. RemainingAmount is
// monotonically non-increasing and always within [0, TotalAmount]; the
// connection closes the moment the balance reaches zero.
type Connection struct {
	ID              uuid.UUID        `json:"id"`
	OrganizationID  uuid.UUID        `json:"organization_id"`
	PartnerID       uuid.UUID        `json:"partner_id"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	RemainingAmount decimal.Decimal  `json:"remaining_amount"`
	Date            *time.Time       `json:"date,omitempty"`
	Method          *string          `json:"method,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Status          ConnectionStatus `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Application allocates part of a connection to exactly one order. At most
// one application exists per order, enforced by a unique constraint.
type Application struct {
	ID             uuid.UUID       `json:"id"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	ConnectionID   uuid.UUID       `json:"connection_id"`
	OrderID        uuid.UUID       `json:"order_id"`
	Amount         decimal.Decimal `json:"amount"`
	AppliedAt      time.Time       `json:"applied_at"`
}

// orderRef is the slice of the order the allocation logic needs.
type orderRef struct {
	ID          uuid.UUID
	OrderNumber string
	Status      string
	PartnerID   *uuid.UUID
}
