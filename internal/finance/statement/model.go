package statement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Row is one ledger entry on a partner statement, joined to the document
// that produced it.
type Row struct {
	Date      *time.Time       `json:"date,omitempty"`
	Direction string           `json:"direction"`
	Amount    decimal.Decimal  `json:"amount"`
	Method    *string          `json:"method,omitempty"`
	Document  *string          `json:"document,omitempty"`
	AreaSqm   *decimal.Decimal `json:"area_sqm,omitempty"`
}

// Summary totals a statement. Balance follows the posting/payment
// classification: document postings build the balance, every payment
// reduces it regardless of direction.
type Summary struct {
	Incoming decimal.Decimal `json:"incoming"`
	Outgoing decimal.Decimal `json:"outgoing"`
	Balance  decimal.Decimal `json:"balance"`
}

type Statement struct {
	PartnerID   uuid.UUID `json:"partner_id"`
	PartnerName string    `json:"partner_name"`
	Rows        []Row     `json:"rows"`
	Summary     Summary   `json:"summary"`
}

type DashboardSummary struct {
	TotalBalance     decimal.Decimal `json:"total_balance"`
	TotalReceivables decimal.Decimal `json:"total_receivables"`
	TotalPayables    decimal.Decimal `json:"total_payables"`
	ActiveJobs       int             `json:"active_jobs"`
	WaitingOrders    int             `json:"waiting_orders"`
	TotalCustomers   int             `json:"total_customers"`
}
