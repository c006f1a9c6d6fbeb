package statement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FusherTm/kimerav1/internal/partners"
	"github.com/FusherTm/kimerav1/internal/shared"
)

const (
	methodOrder    = "ORDER"
	methodPurchase = "PURCHASE"
)

// Service builds partner statements and the tenant dashboard summary.
type Service struct {
	repo     Repository
	partners partners.Repository
	cache    *Cache
	logger   *slog.Logger
}

func NewService(repo Repository, partnersRepo partners.Repository, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, partners: partnersRepo, cache: cache, logger: logger}
}

// PartnerStatement itemizes a partner's ledger and totals it. Document
// postings (ORDER, PURCHASE) build the balance; every other entry is a
// payment and reduces it whichever direction it ran.
func (s *Service) PartnerStatement(ctx context.Context, tenant shared.Tenant, partnerID uuid.UUID, from, to *time.Time) (*Statement, error) {
	partner, err := s.partners.Get(ctx, tenant.OrganizationID, partnerID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.PartnerRows(ctx, tenant.OrganizationID, partnerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load statement rows: %w", err)
	}

	var incoming, outgoing, postings, paymentsIn, paymentsOut decimal.Decimal
	for _, row := range rows {
		if row.Direction == "IN" {
			incoming = incoming.Add(row.Amount)
		} else {
			outgoing = outgoing.Add(row.Amount)
		}

		method := ""
		if row.Method != nil {
			method = *row.Method
		}
		switch {
		case method == methodOrder || method == methodPurchase:
			postings = postings.Add(row.Amount)
		case row.Direction == "IN":
			paymentsIn = paymentsIn.Add(row.Amount)
		default:
			paymentsOut = paymentsOut.Add(row.Amount)
		}
	}

	return &Statement{
		PartnerID:   partner.ID,
		PartnerName: partner.Name,
		Rows:        rows,
		Summary: Summary{
			Incoming: incoming.Round(2),
			Outgoing: outgoing.Round(2),
			Balance:  postings.Sub(paymentsIn).Sub(paymentsOut).Round(2),
		},
	}, nil
}

// DashboardSummary serves the tenant dashboard, through the cache when one
// is configured.
func (s *Service) DashboardSummary(ctx context.Context, tenant shared.Tenant) (*DashboardSummary, error) {
	var out DashboardSummary
	err := s.cache.FetchJSON(ctx, dashboardKey(tenant.OrganizationID), &out, func(ctx context.Context) (interface{}, error) {
		return s.computeDashboard(ctx, tenant.OrganizationID)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// WarmDashboard recomputes a tenant's summary and overwrites the cache.
// Used by the background warmup job.
func (s *Service) WarmDashboard(ctx context.Context, orgID uuid.UUID) error {
	summary, err := s.computeDashboard(ctx, orgID)
	if err != nil {
		return err
	}
	return s.cache.StoreJSON(ctx, dashboardKey(orgID), summary)
}

// OrganizationIDs lists every tenant, for warmup iteration.
func (s *Service) OrganizationIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.repo.ListOrganizationIDs(ctx)
}

func (s *Service) computeDashboard(ctx context.Context, orgID uuid.UUID) (*DashboardSummary, error) {
	balance, err := s.repo.TotalAccountBalance(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("total account balance: %w", err)
	}
	receivables, err := s.repo.ReceivableTotal(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("receivable total: %w", err)
	}
	payables, err := s.repo.PayableTotal(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("payable total: %w", err)
	}
	activeJobs, err := s.repo.CountActiveJobs(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("count active jobs: %w", err)
	}
	waitingOrders, err := s.repo.CountWaitingOrders(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("count waiting orders: %w", err)
	}
	customers, err := s.repo.CountCustomers(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	return &DashboardSummary{
		TotalBalance:     balance.Round(2),
		TotalReceivables: receivables.Round(2),
		TotalPayables:    payables.Round(2),
		ActiveJobs:       activeJobs,
		WaitingOrders:    waitingOrders,
		TotalCustomers:   customers,
	}, nil
}
