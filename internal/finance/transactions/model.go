package transactions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction marks which way money moves relative to the tenant.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// Posting methods with ledger meaning. Anything else is treated as a
// payment method (cash, bank transfer, ...) by the statement aggregator.
const (
	MethodOrder           = "ORDER"
	MethodPurchase        = "PURCHASE"
	MethodConnectionApply = "CONNECTION_APPLY"
)

// Transaction is a tenant-scoped ledger fact. It references other entities
// by id only and owns nothing.
type Transaction struct {
	ID              uuid.UUID       `json:"id"`
	OrganizationID  uuid.UUID       `json:"organization_id"`
	AccountID       *uuid.UUID      `json:"account_id,omitempty"`
	PartnerID       *uuid.UUID      `json:"partner_id,omitempty"`
	OrderID         *uuid.UUID      `json:"order_id,omitempty"`
	PurchaseOrderID *uuid.UUID      `json:"purchase_order_id,omitempty"`
	Direction       Direction       `json:"direction"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate *time.Time      `json:"transaction_date,omitempty"`
	Description     *string         `json:"description,omitempty"`
	Method          *string         `json:"method,omitempty"`
}

// AccountType enumerates cash ledgers.
type AccountType string

const (
	AccountCash AccountType = "CASH"
	AccountBank AccountType = "BANK"
)

// Account is a tenant-scoped cash/bank ledger. Its balance only moves when
// a transaction references it.
type Account struct {
	ID             uuid.UUID       `json:"id"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	Name           string          `json:"name"`
	Type           AccountType     `json:"type"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

// PurchaseOrder is the payable-side counterpart of an order.
type PurchaseOrder struct {
	ID                   uuid.UUID       `json:"id"`
	OrganizationID       uuid.UUID       `json:"organization_id"`
	PartnerID            *uuid.UUID      `json:"partner_id,omitempty"`
	PONumber             string          `json:"po_number"`
	Status               *string         `json:"status,omitempty"`
	OrderDate            *time.Time      `json:"order_date,omitempty"`
	ExpectedDeliveryDate *time.Time      `json:"expected_delivery_date,omitempty"`
	GrandTotal           decimal.Decimal `json:"grand_total"`
	SalesOrderID         *uuid.UUID      `json:"sales_order_id,omitempty"`
}
