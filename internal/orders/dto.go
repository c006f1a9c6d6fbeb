package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	PartnerID       *uuid.UUID               `json:"partner_id,omitempty"`
	ProjectName     *string                  `json:"project_name,omitempty"`
	Status          string                   `json:"status,omitempty" validate:"omitempty,max=40"`
	OrderDate       *time.Time               `json:"order_date,omitempty"`
	DeliveryDate    *time.Time               `json:"delivery_date,omitempty"`
	DeliveryMethod  *string                  `json:"delivery_method,omitempty"`
	Notes           *string                  `json:"notes,omitempty"`
	DiscountPercent *decimal.Decimal         `json:"discount_percent,omitempty"`
	VATInclusive    bool                     `json:"vat_inclusive"`
	Items           []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type CreateOrderItemRequest struct {
	ProductID   *uuid.UUID       `json:"product_id,omitempty"`
	Description *string          `json:"description,omitempty"`
	AreaSqm     *decimal.Decimal `json:"area_sqm,omitempty"`
	Width       *int             `json:"width,omitempty"`
	Height      *int             `json:"height,omitempty"`
	Quantity    *int             `json:"quantity,omitempty"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	Notes       *string          `json:"notes,omitempty"`
}

type UpdatePricingRequest struct {
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
	VATInclusive    *bool            `json:"vat_inclusive,omitempty"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,max=40"`
}

type ListFilter struct {
	Status    *Status
	PartnerID *uuid.UUID
	Search    *string
	Limit     int
	Offset    int
}

// OrderWithItems is the shape returned by create/get endpoints.
type OrderWithItems struct {
	Order
	Items []OrderItem `json:"items"`
}
