package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status enumerates the order lifecycle. Operators may push orders through
// additional free-form statuses; only the ones below carry side effects.
type Status string

const (
	StatusDraft        Status = "DRAFT"
	StatusConfirmed    Status = "SIPARIS"
	StatusInProduction Status = "URETIMDE"
	StatusReady        Status = "HAZIR"
	StatusDelivered    Status = "TESLIM_EDILDI"
	StatusCompleted    Status = "TAMAMLANDI"
	StatusCancelled    Status = "IPTAL"
)

// JobStatusPending is the initial status of every production job.
const JobStatusPending = "PENDING"

type transitionEffect int

const (
	// effectPostReceivable posts an IN/ORDER ledger entry for the partner.
	effectPostReceivable transitionEffect = iota
	// effectCreateJobs creates one production job per order item.
	effectCreateJobs
)

// entryEffects is the explicit transition table: entering a status triggers
// the listed side effects. Posting the receivable is additionally guarded
// on the previous status so a SIPARIS -> SIPARIS rewrite cannot double-post.
func entryEffects(prev, next Status) []transitionEffect {
	var effects []transitionEffect
	if next == StatusInProduction {
		effects = append(effects, effectCreateJobs)
	}
	if next == StatusConfirmed && prev != StatusConfirmed {
		effects = append(effects, effectPostReceivable)
	}
	return effects
}

// Order is the tenant-scoped sales order heading.
type Order struct {
	ID              uuid.UUID        `json:"id"`
	OrganizationID  uuid.UUID        `json:"organization_id"`
	PartnerID       *uuid.UUID       `json:"partner_id,omitempty"`
	ProjectName     *string          `json:"project_name,omitempty"`
	OrderNumber     string           `json:"order_number"`
	Status          Status           `json:"status"`
	OrderDate       time.Time        `json:"order_date"`
	DeliveryDate    *time.Time       `json:"delivery_date,omitempty"`
	DeliveryMethod  *string          `json:"delivery_method,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
	GrandTotal      decimal.Decimal  `json:"grand_total"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
	VATInclusive    bool             `json:"vat_inclusive"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// OrderItem carries either an explicit area or width x height x quantity.
// Items are priced at creation and never mutated once the order is posted.
type OrderItem struct {
	ID             uuid.UUID        `json:"id"`
	OrganizationID uuid.UUID        `json:"organization_id"`
	OrderID        uuid.UUID        `json:"order_id"`
	ProductID      *uuid.UUID       `json:"product_id,omitempty"`
	Description    *string          `json:"description,omitempty"`
	AreaSqm        *decimal.Decimal `json:"area_sqm,omitempty"`
	Width          *int             `json:"width,omitempty"`
	Height         *int             `json:"height,omitempty"`
	Quantity       int              `json:"quantity"`
	UnitPrice      decimal.Decimal  `json:"unit_price"`
	TotalPrice     decimal.Decimal  `json:"total_price"`
	Notes          *string          `json:"notes,omitempty"`
}

// ProductionJob tracks manufacturing of a single order item.
type ProductionJob struct {
	ID               uuid.UUID `json:"id"`
	OrganizationID   uuid.UUID `json:"organization_id"`
	OrderItemID      uuid.UUID `json:"order_item_id"`
	JobNumber        string    `json:"job_number"`
	Status           string    `json:"status"`
	QuantityRequired int       `json:"quantity_required"`
	QuantityProduced int       `json:"quantity_produced"`
}
