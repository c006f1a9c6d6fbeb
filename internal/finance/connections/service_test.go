package connections

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/FusherTm/kimerav1/internal/shared"
)

type memApplyTx struct {
	ID      uuid.UUID
	OrderID uuid.UUID
	Amount  decimal.Decimal
}

type memConnRepo struct {
	connections  map[uuid.UUID]Connection
	orders       map[uuid.UUID]orderRef
	applications map[uuid.UUID]Application
	ledger       []memApplyTx
}

func newMemConnRepo() *memConnRepo {
	return &memConnRepo{
		connections:  make(map[uuid.UUID]Connection),
		orders:       make(map[uuid.UUID]orderRef),
		applications: make(map[uuid.UUID]Application),
	}
}

func (m *memConnRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *memConnRepo) Insert(_ context.Context, c Connection) error {
	m.connections[c.ID] = c
	return nil
}

func (m *memConnRepo) Get(_ context.Context, orgID, id uuid.UUID) (*Connection, error) {
	c, ok := m.connections[id]
	if !ok || c.OrganizationID != orgID {
		return nil, fmt.Errorf("connection %s: %w", id, shared.ErrNotFound)
	}
	copied := c
	return &copied, nil
}

func (m *memConnRepo) GetForUpdate(ctx context.Context, orgID, id uuid.UUID) (*Connection, error) {
	return m.Get(ctx, orgID, id)
}

func (m *memConnRepo) List(_ context.Context, orgID uuid.UUID, partnerID *uuid.UUID, status *ConnectionStatus) ([]Connection, error) {
	var out []Connection
	for _, c := range m.connections {
		if c.OrganizationID != orgID {
			continue
		}
		if partnerID != nil && c.PartnerID != *partnerID {
			continue
		}
		if status != nil && c.Status != *status {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *memConnRepo) GetOrder(_ context.Context, _, orderID uuid.UUID) (*orderRef, error) {
	o, ok := m.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", orderID, shared.ErrNotFound)
	}
	return &o, nil
}

func (m *memConnRepo) ApplicationByOrder(_ context.Context, _, orderID uuid.UUID) (*Application, error) {
	for _, a := range m.applications {
		if a.OrderID == orderID {
			copied := a
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memConnRepo) InsertApplication(_ context.Context, a Application) error {
	for _, existing := range m.applications {
		if existing.OrderID == a.OrderID {
			return fmt.Errorf("order %s already has an application: %w", a.OrderID, shared.ErrConflict)
		}
	}
	m.applications[a.ID] = a
	return nil
}

func (m *memConnRepo) UpdateApplicationAmount(_ context.Context, _, id uuid.UUID, amount decimal.Decimal) error {
	a, ok := m.applications[id]
	if !ok {
		return fmt.Errorf("application %s: %w", id, shared.ErrNotFound)
	}
	a.Amount = amount
	m.applications[id] = a
	return nil
}

func (m *memConnRepo) UpdateRemaining(_ context.Context, _, id uuid.UUID, remaining decimal.Decimal, status ConnectionStatus) error {
	c, ok := m.connections[id]
	if !ok {
		return fmt.Errorf("connection %s: %w", id, shared.ErrNotFound)
	}
	c.RemainingAmount = remaining
	c.Status = status
	m.connections[id] = c
	return nil
}

func (m *memConnRepo) FindApplyTransaction(_ context.Context, _, orderID uuid.UUID) (*uuid.UUID, error) {
	for _, tx := range m.ledger {
		if tx.OrderID == orderID {
			id := tx.ID
			return &id, nil
		}
	}
	return nil, nil
}

func (m *memConnRepo) InsertApplyTransaction(_ context.Context, o orderRef, _ uuid.UUID, amount decimal.Decimal, _ time.Time) error {
	m.ledger = append(m.ledger, memApplyTx{ID: uuid.New(), OrderID: o.ID, Amount: amount})
	return nil
}

func (m *memConnRepo) UpdateTransactionAmount(_ context.Context, _, txID uuid.UUID, amount decimal.Decimal) error {
	for i, tx := range m.ledger {
		if tx.ID == txID {
			m.ledger[i].Amount = amount
			return nil
		}
	}
	return fmt.Errorf("transaction %s: %w", txID, shared.ErrNotFound)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testService(repo Repository) *Service {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func seedConnection(repo *memConnRepo, tenant shared.Tenant, total string) Connection {
	conn := Connection{
		ID:              uuid.New(),
		OrganizationID:  tenant.OrganizationID,
		PartnerID:       uuid.New(),
		TotalAmount:     dec(total),
		RemainingAmount: dec(total),
		Status:          StatusOpen,
	}
	repo.connections[conn.ID] = conn
	return conn
}

func seedOrder(repo *memConnRepo, number, status string) orderRef {
	partnerID := uuid.New()
	o := orderRef{ID: uuid.New(), OrderNumber: number, Status: status, PartnerID: &partnerID}
	repo.orders[o.ID] = o
	return o
}

func TestCreateConnectionParsesDateLeniently(t *testing.T) {
	repo := newMemConnRepo()
	svc := testService(repo)
	tenant := shared.Tenant{OrganizationID: uuid.New()}

	date := "15.03.2025"
	conn, err := svc.Create(context.Background(), tenant, CreateConnectionRequest{
		PartnerID:   uuid.New(),
		TotalAmount: dec("1000"),
		Date:        &date,
	})
	require.NoError(t, err)
	require.NotNil(t, conn.Date)
	require.Equal(t, "2025-03-15", conn.Date.Format("2006-01-02"))
	require.True(t, conn.RemainingAmount.Equal(dec("1000")))
	require.Equal(t, StatusOpen, conn.Status)

	bad := "not a date"
	conn, err = svc.Create(context.Background(), tenant, CreateConnectionRequest{
		PartnerID:   uuid.New(),
		TotalAmount: dec("500"),
		Date:        &bad,
	})
	require.NoError(t, err)
	require.Nil(t, conn.Date)
}

func TestApplyAllocationScenario(t *testing.T) {
	repo := newMemConnRepo()
	svc := testService(repo)
	tenant := shared.Tenant{OrganizationID: uuid.New()}

	conn := seedConnection(repo, tenant, "1000")
	orderA := seedOrder(repo, "2025-001", "SIPARIS")

	// First allocation draws 400.
	app, err := svc.Apply(context.Background(), tenant, conn.ID, orderA.ID, dec("400"))
	require.NoError(t, err)
	require.True(t, app.Amount.Equal(dec("400")))
	require.True(t, repo.connections[conn.ID].RemainingAmount.Equal(dec("600")))
	require.Equal(t, StatusOpen, repo.connections[conn.ID].Status)
	require.Len(t, repo.ledger, 1)
	require.True(t, repo.ledger[0].Amount.Equal(dec("400")))

	// Raising the same order to 700 only draws the 300 delta.
	app, err = svc.Apply(context.Background(), tenant, conn.ID, orderA.ID, dec("700"))
	require.NoError(t, err)
	require.True(t, app.Amount.Equal(dec("700")))
	require.True(t, repo.connections[conn.ID].RemainingAmount.Equal(dec("300")))
	require.Len(t, repo.applications, 1)
	require.Len(t, repo.ledger, 1)
	require.True(t, repo.ledger[0].Amount.Equal(dec("700")))

	// A different order asking for 500 exceeds the remaining 300.
	orderB := seedOrder(repo, "2025-002", "SIPARIS")
	_, err = svc.Apply(context.Background(), tenant, conn.ID, orderB.ID, dec("500"))
	require.ErrorIs(t, err, shared.ErrInvariant)
	require.True(t, repo.connections[conn.ID].RemainingAmount.Equal(dec("300")))
	require.Len(t, repo.applications, 1)
	require.Len(t, repo.ledger, 1)
}

func TestApplyClosesConnectionAtZero(t *testing.T) {
	repo := newMemConnRepo()
	svc := testService(repo)
	tenant := shared.Tenant{OrganizationID: uuid.New()}

	conn := seedConnection(repo, tenant, "250")
	order := seedOrder(repo, "2025-001", "SIPARIS")

	_, err := svc.Apply(context.Background(), tenant, conn.ID, order.ID, dec("250"))
	require.NoError(t, err)
	require.True(t, repo.connections[conn.ID].RemainingAmount.IsZero())
	require.Equal(t, StatusClosed, repo.connections[conn.ID].Status)
}

func TestApplyLoweringAllocationReturnsBalance(t *testing.T) {
	repo := newMemConnRepo()
	svc := testService(repo)
	tenant := shared.Tenant{OrganizationID: uuid.New()}

	conn := seedConnection(repo, tenant, "1000")
	order := seedOrder(repo, "2025-001", "SIPARIS")

	_, err := svc.Apply(context.Background(), tenant, conn.ID, order.ID, dec("600"))
	require.NoError(t, err)
	_, err = svc.Apply(context.Background(), tenant, conn.ID, order.ID, dec("200"))
	require.NoError(t, err)
	require.True(t, repo.connections[conn.ID].RemainingAmount.Equal(dec("800")))
	require.True(t, repo.ledger[0].Amount.Equal(dec("200")))
}

func TestApplyRejectsWrongOrderStatusWithoutMutation(t *testing.T) {
	repo := newMemConnRepo()
	svc := testService(repo)
	tenant := shared.Tenant{OrganizationID: uuid.New()}

	conn := seedConnection(repo, tenant, "1000")
	order := seedOrder(repo, "2025-001", "DRAFT")

	_, err := svc.Apply(context.Background(), tenant, conn.ID, order.ID, dec("100"))
	require.ErrorIs(t, err, shared.ErrInvalidState)
	require.True(t, repo.connections[conn.ID].RemainingAmount.Equal(dec("1000")))
	require.Empty(t, repo.applications)
	require.Empty(t, repo.ledger)
}

func TestApplyRejectsCrossConnectionConflict(t *testing.T) {
	repo := newMemConnRepo()
	svc := testService(repo)
	tenant := shared.Tenant{OrganizationID: uuid.New()}

	first := seedConnection(repo, tenant, "1000")
	second := seedConnection(repo, tenant, "1000")
	order := seedOrder(repo, "2025-001", "SIPARIS")

	_, err := svc.Apply(context.Background(), tenant, first.ID, order.ID, dec("100"))
	require.NoError(t, err)

	_, err = svc.Apply(context.Background(), tenant, second.ID, order.ID, dec("100"))
	require.ErrorIs(t, err, shared.ErrInvariant)
	require.True(t, repo.connections[second.ID].RemainingAmount.Equal(dec("1000")))
}

func TestApplyRejectsNonPositiveAmount(t *testing.T) {
	repo := newMemConnRepo()
	svc := testService(repo)
	tenant := shared.Tenant{OrganizationID: uuid.New()}

	conn := seedConnection(repo, tenant, "1000")
	order := seedOrder(repo, "2025-001", "SIPARIS")

	_, err := svc.Apply(context.Background(), tenant, conn.ID, order.ID, dec("0"))
	require.ErrorIs(t, err, shared.ErrInvariant)
	_, err = svc.Apply(context.Background(), tenant, conn.ID, order.ID, dec("-5"))
	require.ErrorIs(t, err, shared.ErrInvariant)
}
