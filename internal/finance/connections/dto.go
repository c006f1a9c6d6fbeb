package connections

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateConnectionRequest struct {
	PartnerID   uuid.UUID       `json:"partner_id" validate:"required"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Date        *string         `json:"date,omitempty"`
	Method      *string         `json:"method,omitempty" validate:"omitempty,max=60"`
	Description *string         `json:"description,omitempty"`
}

type ApplyRequest struct {
	ConnectionID uuid.UUID       `json:"connection_id" validate:"required"`
	OrderID      uuid.UUID       `json:"order_id" validate:"required"`
	Amount       decimal.Decimal `json:"amount"`
}
