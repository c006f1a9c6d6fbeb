package transactions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateTransactionRequest struct {
	AccountID       *uuid.UUID      `json:"account_id,omitempty"`
	PartnerID       *uuid.UUID      `json:"partner_id,omitempty"`
	OrderID         *uuid.UUID      `json:"order_id,omitempty"`
	PurchaseOrderID *uuid.UUID      `json:"purchase_order_id,omitempty"`
	Direction       Direction       `json:"direction" validate:"required"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate *string         `json:"transaction_date,omitempty"`
	Description     *string         `json:"description,omitempty"`
	Method          *string         `json:"method,omitempty" validate:"omitempty,max=60"`
}

type PostPurchaseOrderRequest struct {
	PartnerID            *uuid.UUID      `json:"partner_id,omitempty"`
	PONumber             *string         `json:"po_number,omitempty" validate:"omitempty,max=40"`
	Status               *string         `json:"status,omitempty" validate:"omitempty,max=40"`
	OrderDate            *string         `json:"order_date,omitempty"`
	ExpectedDeliveryDate *time.Time      `json:"expected_delivery_date,omitempty"`
	GrandTotal           decimal.Decimal `json:"grand_total"`
	SalesOrderID         *uuid.UUID      `json:"sales_order_id,omitempty"`
}
