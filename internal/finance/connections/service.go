package connections

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FusherTm/kimerav1/internal/orders"
	"github.com/FusherTm/kimerav1/internal/shared"
)

// Service owns advance-payment creation and allocation against orders.
type Service struct {
	repo   Repository
	logger *slog.Logger
	clock  func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, clock: time.Now}
}

// Create records an advance payment. The date is parsed leniently (ISO or
// day.month.year); an unparseable date is stored as null, never rejected.
func (s *Service) Create(ctx context.Context, tenant shared.Tenant, req CreateConnectionRequest) (*Connection, error) {
	var date *time.Time
	if req.Date != nil {
		date = shared.ParseFlexibleDate(*req.Date)
	}

	conn := Connection{
		ID:              uuid.New(),
		OrganizationID:  tenant.OrganizationID,
		PartnerID:       req.PartnerID,
		TotalAmount:     req.TotalAmount,
		RemainingAmount: req.TotalAmount,
		Date:            date,
		Method:          req.Method,
		Description:     req.Description,
		Status:          StatusOpen,
	}
	if err := s.repo.Insert(ctx, conn); err != nil {
		return nil, fmt.Errorf("create connection: %w", err)
	}
	return &conn, nil
}

// Apply allocates amount from the connection to the order. Re-applying to
// the same order adjusts the existing allocation up or down; only the
// delta draws on the remaining balance. The connection row stays locked
// for the whole transaction, so the balance check cannot race.
func (s *Service) Apply(ctx context.Context, tenant shared.Tenant, connectionID, orderID uuid.UUID, amount decimal.Decimal) (*Application, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", shared.ErrInvariant)
	}

	var result *Application
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		conn, err := repo.GetForUpdate(ctx, tenant.OrganizationID, connectionID)
		if err != nil {
			return err
		}
		order, err := repo.GetOrder(ctx, tenant.OrganizationID, orderID)
		if err != nil {
			return err
		}
		if !strings.EqualFold(order.Status, string(orders.StatusConfirmed)) {
			return fmt.Errorf("%w: order must be in %s status to apply a connection",
				shared.ErrInvalidState, orders.StatusConfirmed)
		}

		existing, err := repo.ApplicationByOrder(ctx, tenant.OrganizationID, orderID)
		if err != nil {
			return err
		}
		if existing != nil && existing.ConnectionID != connectionID {
			return fmt.Errorf("%w: order already draws from a different connection", shared.ErrInvariant)
		}

		prev := decimal.Zero
		if existing != nil {
			prev = existing.Amount
		}
		delta := amount.Sub(prev)
		if delta.GreaterThan(conn.RemainingAmount) {
			return fmt.Errorf("%w: amount exceeds remaining connection balance", shared.ErrInvariant)
		}

		if existing != nil {
			if err := repo.UpdateApplicationAmount(ctx, tenant.OrganizationID, existing.ID, amount); err != nil {
				return err
			}
			existing.Amount = amount
			result = existing
		} else {
			app := Application{
				ID:             uuid.New(),
				OrganizationID: tenant.OrganizationID,
				ConnectionID:   connectionID,
				OrderID:        orderID,
				Amount:         amount,
				AppliedAt:      s.clock(),
			}
			if err := repo.InsertApplication(ctx, app); err != nil {
				return err
			}
			result = &app
		}

		remaining := conn.RemainingAmount.Sub(delta)
		status := StatusOpen
		if !remaining.IsPositive() {
			status = StatusClosed
		}
		if err := repo.UpdateRemaining(ctx, tenant.OrganizationID, connectionID, remaining, status); err != nil {
			return err
		}

		// Mirror the allocation into the ledger: a single OUT entry per
		// order, amount always equal to the current allocation.
		txID, err := repo.FindApplyTransaction(ctx, tenant.OrganizationID, orderID)
		if err != nil {
			return err
		}
		if txID != nil {
			return repo.UpdateTransactionAmount(ctx, tenant.OrganizationID, *txID, amount)
		}
		return repo.InsertApplyTransaction(ctx, *order, tenant.OrganizationID, amount, s.clock())
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("connection applied",
		slog.String("connection_id", connectionID.String()),
		slog.String("order_id", orderID.String()),
		slog.String("amount", amount.String()))
	return result, nil
}

// List returns connections scoped to the tenant with optional filters.
func (s *Service) List(ctx context.Context, tenant shared.Tenant, partnerID *uuid.UUID, status *ConnectionStatus) ([]Connection, error) {
	return s.repo.List(ctx, tenant.OrganizationID, partnerID, status)
}

// OrderApplication returns the order's current allocation, or nil.
func (s *Service) OrderApplication(ctx context.Context, tenant shared.Tenant, orderID uuid.UUID) (*Application, error) {
	return s.repo.ApplicationByOrder(ctx, tenant.OrganizationID, orderID)
}
