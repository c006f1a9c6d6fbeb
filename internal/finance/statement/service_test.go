package statement

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/FusherTm/kimerav1/internal/partners"
	"github.com/FusherTm/kimerav1/internal/shared"
)

type memStatementRepo struct {
	rows          []Row
	balance       decimal.Decimal
	receivables   decimal.Decimal
	payables      decimal.Decimal
	activeJobs    int
	waitingOrders int
	customers     int
	orgs          []uuid.UUID

	computeCalls int
}

func (m *memStatementRepo) PartnerRows(_ context.Context, _, _ uuid.UUID, _, _ *time.Time) ([]Row, error) {
	return m.rows, nil
}

func (m *memStatementRepo) TotalAccountBalance(_ context.Context, _ uuid.UUID) (decimal.Decimal, error) {
	m.computeCalls++
	return m.balance, nil
}

func (m *memStatementRepo) ReceivableTotal(_ context.Context, _ uuid.UUID) (decimal.Decimal, error) {
	return m.receivables, nil
}

func (m *memStatementRepo) PayableTotal(_ context.Context, _ uuid.UUID) (decimal.Decimal, error) {
	return m.payables, nil
}

func (m *memStatementRepo) CountActiveJobs(_ context.Context, _ uuid.UUID) (int, error) {
	return m.activeJobs, nil
}

func (m *memStatementRepo) CountWaitingOrders(_ context.Context, _ uuid.UUID) (int, error) {
	return m.waitingOrders, nil
}

func (m *memStatementRepo) CountCustomers(_ context.Context, _ uuid.UUID) (int, error) {
	return m.customers, nil
}

func (m *memStatementRepo) ListOrganizationIDs(_ context.Context) ([]uuid.UUID, error) {
	return m.orgs, nil
}

type memPartnerRepo struct {
	partners map[uuid.UUID]partners.Partner
}

func (m *memPartnerRepo) Get(_ context.Context, orgID, id uuid.UUID) (*partners.Partner, error) {
	p, ok := m.partners[id]
	if !ok || p.OrganizationID != orgID {
		return nil, fmt.Errorf("partner %s: %w", id, shared.ErrNotFound)
	}
	return &p, nil
}

func (m *memPartnerRepo) List(_ context.Context, orgID uuid.UUID, _ *string) ([]partners.Partner, error) {
	var out []partners.Partner
	for _, p := range m.partners {
		if p.OrganizationID == orgID {
			out = append(out, p)
		}
	}
	return out, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func strPtr(s string) *string {
	return &s
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedPartner(tenant shared.Tenant) (*memPartnerRepo, partners.Partner) {
	p := partners.Partner{
		ID:             uuid.New(),
		OrganizationID: tenant.OrganizationID,
		Type:           partners.TypeCustomer,
		Name:           "Acme Glass",
		IsActive:       true,
	}
	return &memPartnerRepo{partners: map[uuid.UUID]partners.Partner{p.ID: p}}, p
}

func TestPartnerStatementSinglePosting(t *testing.T) {
	tenant := shared.Tenant{OrganizationID: uuid.New()}
	partnersRepo, partner := seedPartner(tenant)
	repo := &memStatementRepo{
		rows: []Row{
			{Direction: "IN", Amount: dec("300"), Method: strPtr("ORDER")},
		},
	}
	svc := NewService(repo, partnersRepo, nil, testLogger())

	st, err := svc.PartnerStatement(context.Background(), tenant, partner.ID, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "Acme Glass", st.PartnerName)
	require.Equal(t, "300.00", st.Summary.Balance.StringFixed(2))
	require.Equal(t, "300.00", st.Summary.Incoming.StringFixed(2))
	require.Equal(t, "0.00", st.Summary.Outgoing.StringFixed(2))
}

func TestPartnerStatementClassifiesPayments(t *testing.T) {
	tenant := shared.Tenant{OrganizationID: uuid.New()}
	partnersRepo, partner := seedPartner(tenant)
	repo := &memStatementRepo{
		rows: []Row{
			{Direction: "IN", Amount: dec("300"), Method: strPtr("ORDER")},
			{Direction: "IN", Amount: dec("100"), Method: strPtr("CASH")},
			{Direction: "OUT", Amount: dec("50"), Method: strPtr("CONNECTION_APPLY")},
		},
	}
	svc := NewService(repo, partnersRepo, nil, testLogger())

	st, err := svc.PartnerStatement(context.Background(), tenant, partner.ID, nil, nil)
	require.NoError(t, err)
	// Postings build the balance, payments reduce it in either direction.
	require.Equal(t, "150.00", st.Summary.Balance.StringFixed(2))
	require.Equal(t, "400.00", st.Summary.Incoming.StringFixed(2))
	require.Equal(t, "50.00", st.Summary.Outgoing.StringFixed(2))
	require.Len(t, st.Rows, 3)
}

func TestPartnerStatementUnknownPartner(t *testing.T) {
	tenant := shared.Tenant{OrganizationID: uuid.New()}
	partnersRepo, _ := seedPartner(tenant)
	svc := NewService(&memStatementRepo{}, partnersRepo, nil, testLogger())

	_, err := svc.PartnerStatement(context.Background(), tenant, uuid.New(), nil, nil)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDashboardSummaryComputesWithoutCache(t *testing.T) {
	tenant := shared.Tenant{OrganizationID: uuid.New()}
	partnersRepo, _ := seedPartner(tenant)
	repo := &memStatementRepo{
		balance:       dec("1234.5"),
		receivables:   dec("900"),
		payables:      dec("120"),
		activeJobs:    3,
		waitingOrders: 2,
		customers:     7,
	}
	svc := NewService(repo, partnersRepo, nil, testLogger())

	summary, err := svc.DashboardSummary(context.Background(), tenant)
	require.NoError(t, err)
	require.Equal(t, "1234.50", summary.TotalBalance.StringFixed(2))
	require.Equal(t, "900.00", summary.TotalReceivables.StringFixed(2))
	require.Equal(t, "120.00", summary.TotalPayables.StringFixed(2))
	require.Equal(t, 3, summary.ActiveJobs)
	require.Equal(t, 2, summary.WaitingOrders)
	require.Equal(t, 7, summary.TotalCustomers)
}

func TestDashboardSummaryUsesCache(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer func() { _ = client.Close() }()

	tenant := shared.Tenant{OrganizationID: uuid.New()}
	partnersRepo, _ := seedPartner(tenant)
	repo := &memStatementRepo{balance: dec("100"), activeJobs: 1}
	svc := NewService(repo, partnersRepo, NewCache(client, time.Minute), testLogger())

	first, err := svc.DashboardSummary(context.Background(), tenant)
	require.NoError(t, err)
	require.Equal(t, 1, repo.computeCalls)

	// Underlying data changes, but the cached summary is served.
	repo.balance = dec("999")
	second, err := svc.DashboardSummary(context.Background(), tenant)
	require.NoError(t, err)
	require.Equal(t, 1, repo.computeCalls)
	require.Equal(t, first.TotalBalance.StringFixed(2), second.TotalBalance.StringFixed(2))
}

func TestWarmDashboardOverwritesCache(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer func() { _ = client.Close() }()

	tenant := shared.Tenant{OrganizationID: uuid.New()}
	partnersRepo, _ := seedPartner(tenant)
	repo := &memStatementRepo{balance: dec("100")}
	svc := NewService(repo, partnersRepo, NewCache(client, time.Minute), testLogger())

	_, err := svc.DashboardSummary(context.Background(), tenant)
	require.NoError(t, err)

	repo.balance = dec("500")
	require.NoError(t, svc.WarmDashboard(context.Background(), tenant.OrganizationID))

	summary, err := svc.DashboardSummary(context.Background(), tenant)
	require.NoError(t, err)
	require.Equal(t, "500.00", summary.TotalBalance.StringFixed(2))
	require.Equal(t, 2, repo.computeCalls)
}
