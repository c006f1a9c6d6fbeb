package partners

import (
	"github.com/google/uuid"
)

// PartnerType tells which side of the ledger a partner sits on.
type PartnerType string

const (
	TypeCustomer PartnerType = "CUSTOMER"
	TypeSupplier PartnerType = "SUPPLIER"
	TypeBoth     PartnerType = "BOTH"
)

type Partner struct {
	ID             uuid.UUID   `json:"id"`
	OrganizationID uuid.UUID   `json:"organization_id"`
	Type           PartnerType `json:"type"`
	Name           string      `json:"name"`
	ContactPerson  *string     `json:"contact_person,omitempty"`
	Phone          *string     `json:"phone,omitempty"`
	Email          *string     `json:"email,omitempty"`
	Address        *string     `json:"address,omitempty"`
	TaxNumber      *string     `json:"tax_number,omitempty"`
	IsActive       bool        `json:"is_active"`
}
