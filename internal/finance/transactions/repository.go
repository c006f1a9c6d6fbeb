package transactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/FusherTm/kimerav1/internal/platform/db"
	"github.com/FusherTm/kimerav1/internal/shared"
)

// Repository defines data access for ledger entries, accounts and
// purchase orders.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	InsertTransaction(ctx context.Context, t Transaction) error
	ListTransactions(ctx context.Context, orgID uuid.UUID, f ListFilter) ([]Transaction, error)
	AdjustAccountBalance(ctx context.Context, orgID, accountID uuid.UUID, delta decimal.Decimal) error
	NextPONumber(ctx context.Context, orgID uuid.UUID, year int) (int, error)
	InsertPurchaseOrder(ctx context.Context, po PurchaseOrder) error
}

// ListFilter narrows transaction listings.
type ListFilter struct {
	PartnerID *uuid.UUID
	OrderID   *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository builds a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) InsertTransaction(ctx context.Context, t Transaction) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO financial_transactions (id, organization_id, account_id, partner_id,
		                                    order_id, purchase_order_id, direction, amount,
		                                    transaction_date, description, method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, t.ID, t.OrganizationID, t.AccountID, t.PartnerID,
		t.OrderID, t.PurchaseOrderID, t.Direction, t.Amount,
		t.TransactionDate, t.Description, t.Method)
	return err
}

func (r *repository) ListTransactions(ctx context.Context, orgID uuid.UUID, f ListFilter) ([]Transaction, error) {
	conditions := []string{"organization_id = $1"}
	args := []interface{}{orgID}
	argPos := 2

	if f.PartnerID != nil {
		conditions = append(conditions, fmt.Sprintf("partner_id = $%d", argPos))
		args = append(args, *f.PartnerID)
		argPos++
	}
	if f.OrderID != nil {
		conditions = append(conditions, fmt.Sprintf("order_id = $%d", argPos))
		args = append(args, *f.OrderID)
		argPos++
	}
	if f.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("transaction_date >= $%d", argPos))
		args = append(args, *f.DateFrom)
		argPos++
	}
	if f.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("transaction_date <= $%d", argPos))
		args = append(args, *f.DateTo)
		argPos++
	}

	whereClause := conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT id, organization_id, account_id, partner_id, order_id, purchase_order_id,
		       direction, amount, transaction_date, description, method
		FROM financial_transactions
		WHERE %s
		ORDER BY transaction_date DESC NULLS LAST, id
	`, whereClause), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		var accountID, partnerID, orderID, poID uuid.NullUUID
		var txDate pgtype.Date
		var description, method pgtype.Text

		err := rows.Scan(&t.ID, &t.OrganizationID, &accountID, &partnerID, &orderID, &poID,
			&t.Direction, &t.Amount, &txDate, &description, &method)
		if err != nil {
			return nil, err
		}
		if accountID.Valid {
			id := accountID.UUID
			t.AccountID = &id
		}
		if partnerID.Valid {
			id := partnerID.UUID
			t.PartnerID = &id
		}
		if orderID.Valid {
			id := orderID.UUID
			t.OrderID = &id
		}
		if poID.Valid {
			id := poID.UUID
			t.PurchaseOrderID = &id
		}
		if txDate.Valid {
			d := txDate.Time
			t.TransactionDate = &d
		}
		if description.Valid {
			t.Description = &description.String
		}
		if method.Valid {
			t.Method = &method.String
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repository) AdjustAccountBalance(ctx context.Context, orgID, accountID uuid.UUID, delta decimal.Decimal) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE accounts SET current_balance = current_balance + $1
		WHERE id = $2 AND organization_id = $3
	`, delta, accountID, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", accountID, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) NextPONumber(ctx context.Context, orgID uuid.UUID, year int) (int, error) {
	var seq int
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_counters (organization_id, doc_type, year, last_number)
		VALUES ($1, 'PURCHASE', $2, 1)
		ON CONFLICT (organization_id, doc_type, year)
		DO UPDATE SET last_number = document_counters.last_number + 1
		RETURNING last_number
	`, orgID, year).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next po number: %w", err)
	}
	return seq, nil
}

func (r *repository) InsertPurchaseOrder(ctx context.Context, po PurchaseOrder) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO purchase_orders (id, organization_id, partner_id, po_number, status,
		                             order_date, expected_delivery_date, grand_total, sales_order_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, po.ID, po.OrganizationID, po.PartnerID, po.PONumber, po.Status,
		po.OrderDate, po.ExpectedDeliveryDate, po.GrandTotal, po.SalesOrderID)
	if isUniqueViolation(err) {
		return fmt.Errorf("po number %s: %w", po.PONumber, shared.ErrConflict)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
