package transactions

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/FusherTm/kimerav1/internal/shared"
)

// Service records ledger facts and posts purchase orders as payables.
type Service struct {
	repo   Repository
	logger *slog.Logger
	clock  func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, clock: time.Now}
}

// Create records a transaction. When it references an account, the account
// balance moves by the signed amount in the same atomic unit.
func (s *Service) Create(ctx context.Context, tenant shared.Tenant, req CreateTransactionRequest) (*Transaction, error) {
	if req.Direction != DirectionIn && req.Direction != DirectionOut {
		return nil, fmt.Errorf("%w: direction must be IN or OUT", shared.ErrInvariant)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", shared.ErrInvariant)
	}

	var txDate *time.Time
	if req.TransactionDate != nil {
		txDate = shared.ParseFlexibleDate(*req.TransactionDate)
	}
	if txDate == nil {
		now := s.clock()
		txDate = &now
	}

	t := Transaction{
		ID:              uuid.New(),
		OrganizationID:  tenant.OrganizationID,
		AccountID:       req.AccountID,
		PartnerID:       req.PartnerID,
		OrderID:         req.OrderID,
		PurchaseOrderID: req.PurchaseOrderID,
		Direction:       req.Direction,
		Amount:          req.Amount,
		TransactionDate: txDate,
		Description:     req.Description,
		Method:          req.Method,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.InsertTransaction(ctx, t); err != nil {
			return fmt.Errorf("record transaction: %w", err)
		}
		if t.AccountID == nil {
			return nil
		}
		delta := t.Amount
		if t.Direction == DirectionOut {
			delta = delta.Neg()
		}
		return repo.AdjustAccountBalance(ctx, tenant.OrganizationID, *t.AccountID, delta)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns ledger entries scoped to the tenant.
func (s *Service) List(ctx context.Context, tenant shared.Tenant, f ListFilter) ([]Transaction, error) {
	return s.repo.ListTransactions(ctx, tenant.OrganizationID, f)
}

// PostPurchaseOrder creates the purchase order and, when a supplier is
// attached, the OUT/PURCHASE payable entry in one atomic unit.
func (s *Service) PostPurchaseOrder(ctx context.Context, tenant shared.Tenant, req PostPurchaseOrderRequest) (*PurchaseOrder, error) {
	if req.GrandTotal.IsNegative() {
		return nil, fmt.Errorf("%w: grand total must not be negative", shared.ErrInvariant)
	}

	orderDate := s.clock()
	if req.OrderDate != nil {
		if parsed := shared.ParseFlexibleDate(*req.OrderDate); parsed != nil {
			orderDate = *parsed
		}
	}

	var result *PurchaseOrder
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		number := ""
		if req.PONumber != nil && *req.PONumber != "" {
			number = *req.PONumber
		} else {
			seq, err := repo.NextPONumber(ctx, tenant.OrganizationID, orderDate.Year())
			if err != nil {
				return err
			}
			number = fmt.Sprintf("PO-%d-%03d", orderDate.Year(), seq)
		}

		po := PurchaseOrder{
			ID:                   uuid.New(),
			OrganizationID:       tenant.OrganizationID,
			PartnerID:            req.PartnerID,
			PONumber:             number,
			Status:               req.Status,
			OrderDate:            &orderDate,
			ExpectedDeliveryDate: req.ExpectedDeliveryDate,
			GrandTotal:           req.GrandTotal,
			SalesOrderID:         req.SalesOrderID,
		}
		if err := repo.InsertPurchaseOrder(ctx, po); err != nil {
			return fmt.Errorf("create purchase order: %w", err)
		}

		if po.PartnerID != nil && po.GrandTotal.IsPositive() {
			method := MethodPurchase
			description := fmt.Sprintf("Purchase order %s", po.PONumber)
			t := Transaction{
				ID:              uuid.New(),
				OrganizationID:  tenant.OrganizationID,
				PartnerID:       po.PartnerID,
				PurchaseOrderID: &po.ID,
				Direction:       DirectionOut,
				Amount:          po.GrandTotal,
				TransactionDate: &orderDate,
				Description:     &description,
				Method:          &method,
			}
			if err := repo.InsertTransaction(ctx, t); err != nil {
				return fmt.Errorf("post payable: %w", err)
			}
		}

		result = &po
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase order posted", slog.String("po_number", result.PONumber))
	return result, nil
}
