package transactions

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/FusherTm/kimerav1/internal/shared"
)

type memTxRepo struct {
	transactions   []Transaction
	balances       map[uuid.UUID]decimal.Decimal
	purchaseOrders []PurchaseOrder
	poCounter      int
}

func newMemTxRepo() *memTxRepo {
	return &memTxRepo{balances: make(map[uuid.UUID]decimal.Decimal)}
}

func (m *memTxRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *memTxRepo) InsertTransaction(_ context.Context, t Transaction) error {
	m.transactions = append(m.transactions, t)
	return nil
}

func (m *memTxRepo) ListTransactions(_ context.Context, orgID uuid.UUID, f ListFilter) ([]Transaction, error) {
	var out []Transaction
	for _, t := range m.transactions {
		if t.OrganizationID != orgID {
			continue
		}
		if f.PartnerID != nil && (t.PartnerID == nil || *t.PartnerID != *f.PartnerID) {
			continue
		}
		if f.OrderID != nil && (t.OrderID == nil || *t.OrderID != *f.OrderID) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *memTxRepo) AdjustAccountBalance(_ context.Context, _, accountID uuid.UUID, delta decimal.Decimal) error {
	balance, ok := m.balances[accountID]
	if !ok {
		return fmt.Errorf("account %s: %w", accountID, shared.ErrNotFound)
	}
	m.balances[accountID] = balance.Add(delta)
	return nil
}

func (m *memTxRepo) NextPONumber(_ context.Context, _ uuid.UUID, _ int) (int, error) {
	m.poCounter++
	return m.poCounter, nil
}

func (m *memTxRepo) InsertPurchaseOrder(_ context.Context, po PurchaseOrder) error {
	for _, existing := range m.purchaseOrders {
		if existing.PONumber == po.PONumber {
			return fmt.Errorf("po number %s: %w", po.PONumber, shared.ErrConflict)
		}
	}
	m.purchaseOrders = append(m.purchaseOrders, po)
	return nil
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

func TestCreateAdjustsAccountBalance(t *testing.T) {
	repo := newMemTxRepo()
	svc := testService(repo)
	tenant := shared.Tenant{OrganizationID: uuid.New()}

	accountID := uuid.New()
	repo.balances[accountID] = dec("100")

	_, err := svc.Create(context.Background(), tenant, CreateTransactionRequest{
		AccountID: &accountID,
		Direction: DirectionIn,
		Amount:    dec("40"),
	})
	require.NoError(t, err)
	require.True(t, repo.balances[accountID].Equal(dec("140")))

	_, err = svc.Create(context.Background(), tenant, CreateTransactionRequest{
		AccountID: &accountID,
		Direction: DirectionOut,
		Amount:    dec("15"),
	})
	require.NoError(t, err)
	require.True(t, repo.balances[accountID].Equal(dec("125")))
	require.Len(t, repo.transactions, 2)
}

func TestCreateWithoutAccountSkipsBalance(t *testing.T) {
	repo := newMemTxRepo()
	svc := testService(repo)
	tenant := shared.Tenant{OrganizationID: uuid.New()}

	created, err := svc.Create(context.Background(), tenant, CreateTransactionRequest{
		Direction: DirectionIn,
		Amount:    dec("40"),
	})
	require.NoError(t, err)
	require.Nil(t, created.AccountID)
	require.Len(t, repo.transactions, 1)
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc := testService(newMemTxRepo())
	tenant := shared.Tenant{OrganizationID: uuid.New()}

	_, err := svc.Create(context.Background(), tenant, CreateTransactionRequest{
		Direction: "SIDEWAYS",
		Amount:    dec("40"),
	})
	require.ErrorIs(t, err, shared.ErrInvariant)

	_, err = svc.Create(context.Background(), tenant, CreateTransactionRequest{
		Direction: DirectionIn,
		Amount:    dec("0"),
	})
	require.ErrorIs(t, err, shared.ErrInvariant)
}

func TestCreateParsesFlexibleDate(t *testing.T) {
	repo := newMemTxRepo()
	svc := testService(repo)
	tenant := shared.Tenant{OrganizationID: uuid.New()}

	date := "05.01.2025"
	created, err := svc.Create(context.Background(), tenant, CreateTransactionRequest{
		Direction:       DirectionIn,
		Amount:          dec("10"),
		TransactionDate: &date,
	})
	require.NoError(t, err)
	require.NotNil(t, created.TransactionDate)
	require.Equal(t, "2025-01-05", created.TransactionDate.Format("2006-01-02"))
}

func TestPostPurchaseOrderPostsPayable(t *testing.T) {
	repo := newMemTxRepo()
	svc := testService(repo)
	tenant := shared.Tenant{OrganizationID: uuid.New()}
	supplierID := uuid.New()

	po, err := svc.PostPurchaseOrder(context.Background(), tenant, PostPurchaseOrderRequest{
		PartnerID:  &supplierID,
		GrandTotal: dec("750"),
	})
	require.NoError(t, err)
	require.Contains(t, po.PONumber, "PO-")
	require.Len(t, repo.transactions, 1)

	payable := repo.transactions[0]
	require.Equal(t, DirectionOut, payable.Direction)
	require.True(t, payable.Amount.Equal(dec("750")))
	require.NotNil(t, payable.Method)
	require.Equal(t, MethodPurchase, *payable.Method)
	require.NotNil(t, payable.PurchaseOrderID)
	require.Equal(t, po.ID, *payable.PurchaseOrderID)
}

func TestPostPurchaseOrderWithoutSupplierSkipsPayable(t *testing.T) {
	repo := newMemTxRepo()
	svc := testService(repo)
	tenant := shared.Tenant{OrganizationID: uuid.New()}

	_, err := svc.PostPurchaseOrder(context.Background(), tenant, PostPurchaseOrderRequest{
		GrandTotal: dec("750"),
	})
	require.NoError(t, err)
	require.Empty(t, repo.transactions)
}

func TestPostPurchaseOrderKeepsExplicitNumber(t *testing.T) {
	repo := newMemTxRepo()
	svc := testService(repo)
	tenant := shared.Tenant{OrganizationID: uuid.New()}

	number := "PO-CUSTOM-7"
	po, err := svc.PostPurchaseOrder(context.Background(), tenant, PostPurchaseOrderRequest{
		PONumber:   &number,
		GrandTotal: dec("10"),
	})
	require.NoError(t, err)
	require.Equal(t, number, po.PONumber)
	require.Equal(t, 0, repo.poCounter)
}

func TestPostPurchaseOrderRejectsNegativeTotal(t *testing.T) {
	svc := testService(newMemTxRepo())
	tenant := shared.Tenant{OrganizationID: uuid.New()}

	_, err := svc.PostPurchaseOrder(context.Background(), tenant, PostPurchaseOrderRequest{
		GrandTotal: dec("-1"),
	})
	require.ErrorIs(t, err, shared.ErrInvariant)
}
