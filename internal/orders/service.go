package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FusherTm/kimerav1/internal/shared"
)

// Service owns order creation and status transitions, including the ledger
// and production side effects that must commit with them.
type Service struct {
	repo    Repository
	logger  *slog.Logger
	vatRate decimal.Decimal
	clock   func() time.Time
}

// NewService builds the order lifecycle service. vatRate is a fraction,
// e.g. 0.20.
func NewService(repo Repository, logger *slog.Logger, vatRate decimal.Decimal) *Service {
	return &Service{
		repo:    repo,
		logger:  logger,
		vatRate: vatRate,
		clock:   time.Now,
	}
}

// Create generates the next sequential order number for the tenant and
// year, prices the items, and persists order plus items in one atomic
// unit. An order created directly in SIPARIS with a partner also posts the
// receivable. A number collision is retried once before surfacing.
func (s *Service) Create(ctx context.Context, tenant shared.Tenant, req CreateOrderRequest) (*OrderWithItems, error) {
	if err := validateDiscount(req.DiscountPercent); err != nil {
		return nil, err
	}

	orderDate := s.clock()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}
	status := normalizeStatus(req.Status, StatusDraft)

	var result *OrderWithItems
	attempt := func() error {
		return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
			seq, err := repo.NextNumber(ctx, tenant.OrganizationID, orderDate.Year())
			if err != nil {
				return err
			}

			order := Order{
				ID:              uuid.New(),
				OrganizationID:  tenant.OrganizationID,
				PartnerID:       req.PartnerID,
				ProjectName:     req.ProjectName,
				OrderNumber:     fmt.Sprintf("%d-%03d", orderDate.Year(), seq),
				Status:          status,
				OrderDate:       orderDate,
				DeliveryDate:    req.DeliveryDate,
				DeliveryMethod:  req.DeliveryMethod,
				Notes:           req.Notes,
				DiscountPercent: req.DiscountPercent,
				VATInclusive:    req.VATInclusive,
			}

			subtotal := decimal.Zero
			items := make([]OrderItem, 0, len(req.Items))
			for _, itemReq := range req.Items {
				area, qty := ItemArea(itemReq.AreaSqm, itemReq.Width, itemReq.Height, itemReq.Quantity)
				total := ItemTotal(area, itemReq.UnitPrice)
				subtotal = subtotal.Add(total)

				items = append(items, OrderItem{
					ID:             uuid.New(),
					OrganizationID: tenant.OrganizationID,
					OrderID:        order.ID,
					ProductID:      itemReq.ProductID,
					Description:    itemReq.Description,
					AreaSqm:        itemReq.AreaSqm,
					Width:          itemReq.Width,
					Height:         itemReq.Height,
					Quantity:       qty,
					UnitPrice:      itemReq.UnitPrice,
					TotalPrice:     total,
					Notes:          itemReq.Notes,
				})
			}
			order.GrandTotal = GrandTotal(subtotal, order.DiscountPercent, order.VATInclusive, s.vatRate)

			if err := repo.Insert(ctx, order); err != nil {
				return fmt.Errorf("create order: %w", err)
			}
			for _, item := range items {
				if err := repo.InsertItem(ctx, item); err != nil {
					return fmt.Errorf("create order item: %w", err)
				}
			}

			if order.Status == StatusConfirmed && order.PartnerID != nil {
				if err := repo.InsertReceivable(ctx, order, s.clock()); err != nil {
					return fmt.Errorf("post receivable: %w", err)
				}
			}

			result = &OrderWithItems{Order: order, Items: items}
			return nil
		})
	}

	err := attempt()
	if errors.Is(err, shared.ErrConflict) {
		s.logger.Warn("order number collision, retrying", slog.String("org", tenant.OrganizationID.String()))
		err = attempt()
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdatePricing mutates the discount/VAT flags and recomputes the grand
// total from the persisted item totals. An already-posted receivable for
// the order is kept in sync with the new total.
func (s *Service) UpdatePricing(ctx context.Context, tenant shared.Tenant, id uuid.UUID, req UpdatePricingRequest) (*OrderWithItems, error) {
	if err := validateDiscount(req.DiscountPercent); err != nil {
		return nil, err
	}

	var result *OrderWithItems
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		order, err := repo.Get(ctx, tenant.OrganizationID, id)
		if err != nil {
			return err
		}
		items, err := repo.ListItems(ctx, tenant.OrganizationID, id)
		if err != nil {
			return err
		}

		if req.DiscountPercent == nil && req.VATInclusive == nil {
			result = &OrderWithItems{Order: *order, Items: items}
			return nil
		}
		if req.DiscountPercent != nil {
			order.DiscountPercent = req.DiscountPercent
		}
		if req.VATInclusive != nil {
			order.VATInclusive = *req.VATInclusive
		}

		subtotal := decimal.Zero
		for _, item := range items {
			subtotal = subtotal.Add(item.TotalPrice)
		}
		order.GrandTotal = GrandTotal(subtotal, order.DiscountPercent, order.VATInclusive, s.vatRate)

		if err := repo.UpdatePricing(ctx, *order); err != nil {
			return err
		}

		txID, err := repo.FindReceivable(ctx, tenant.OrganizationID, id)
		if err != nil {
			return err
		}
		if txID != nil {
			if err := repo.SyncReceivableAmount(ctx, tenant.OrganizationID, *txID, order.GrandTotal); err != nil {
				return fmt.Errorf("sync receivable: %w", err)
			}
		}

		result = &OrderWithItems{Order: *order, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ChangeStatus persists the new status and runs the transition table's
// side effects in the same atomic unit: entering URETIMDE creates one
// production job per item (skipped when jobs already exist), entering
// SIPARIS from another status posts the partner receivable.
func (s *Service) ChangeStatus(ctx context.Context, tenant shared.Tenant, id uuid.UUID, newStatus string) (*Order, error) {
	status := normalizeStatus(newStatus, "")
	if status == "" {
		return nil, fmt.Errorf("%w: status must not be empty", shared.ErrInvariant)
	}

	var result *Order
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		order, err := repo.Get(ctx, tenant.OrganizationID, id)
		if err != nil {
			return err
		}
		prev := order.Status

		if err := repo.UpdateStatus(ctx, tenant.OrganizationID, id, status); err != nil {
			return err
		}

		for _, effect := range entryEffects(prev, status) {
			switch effect {
			case effectCreateJobs:
				if err := s.createJobs(ctx, repo, tenant, order); err != nil {
					return err
				}
			case effectPostReceivable:
				if order.PartnerID == nil {
					continue
				}
				if err := repo.InsertReceivable(ctx, *order, s.clock()); err != nil {
					return fmt.Errorf("post receivable: %w", err)
				}
			}
		}

		order.Status = status
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) createJobs(ctx context.Context, repo Repository, tenant shared.Tenant, order *Order) error {
	existing, err := repo.CountJobs(ctx, tenant.OrganizationID, order.ID)
	if err != nil {
		return err
	}
	if existing > 0 {
		// Re-entering production must not duplicate the job set.
		return nil
	}

	items, err := repo.ListItems(ctx, tenant.OrganizationID, order.ID)
	if err != nil {
		return err
	}
	for i, item := range items {
		job := ProductionJob{
			ID:               uuid.New(),
			OrganizationID:   tenant.OrganizationID,
			OrderItemID:      item.ID,
			JobNumber:        fmt.Sprintf("%s-%03d", order.OrderNumber, i+1),
			Status:           JobStatusPending,
			QuantityRequired: item.Quantity,
			QuantityProduced: 0,
		}
		if err := repo.InsertJob(ctx, job); err != nil {
			return fmt.Errorf("create production job: %w", err)
		}
	}
	return nil
}

// Get returns the order with its items.
func (s *Service) Get(ctx context.Context, tenant shared.Tenant, id uuid.UUID) (*OrderWithItems, error) {
	order, err := s.repo.Get(ctx, tenant.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, tenant.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	return &OrderWithItems{Order: *order, Items: items}, nil
}

// List returns orders matching the filter.
func (s *Service) List(ctx context.Context, tenant shared.Tenant, f ListFilter) ([]Order, error) {
	return s.repo.List(ctx, tenant.OrganizationID, f)
}

func validateDiscount(d *decimal.Decimal) error {
	if d == nil {
		return nil
	}
	if d.IsNegative() || d.GreaterThan(hundred) {
		return fmt.Errorf("%w: discount percent must be between 0 and 100", shared.ErrInvariant)
	}
	return nil
}

func normalizeStatus(s string, fallback Status) Status {
	trimmed := strings.ToUpper(strings.TrimSpace(s))
	if trimmed == "" {
		return fallback
	}
	return Status(trimmed)
}
