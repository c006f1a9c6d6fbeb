package statement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository reads the aggregates behind statements and the dashboard.
// All queries are read-only.
type Repository interface {
	PartnerRows(ctx context.Context, orgID, partnerID uuid.UUID, from, to *time.Time) ([]Row, error)
	TotalAccountBalance(ctx context.Context, orgID uuid.UUID) (decimal.Decimal, error)
	ReceivableTotal(ctx context.Context, orgID uuid.UUID) (decimal.Decimal, error)
	PayableTotal(ctx context.Context, orgID uuid.UUID) (decimal.Decimal, error)
	CountActiveJobs(ctx context.Context, orgID uuid.UUID) (int, error)
	CountWaitingOrders(ctx context.Context, orgID uuid.UUID) (int, error)
	CountCustomers(ctx context.Context, orgID uuid.UUID) (int, error)
	ListOrganizationIDs(ctx context.Context) ([]uuid.UUID, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) PartnerRows(ctx context.Context, orgID, partnerID uuid.UUID, from, to *time.Time) ([]Row, error) {
	conditions := "t.organization_id = $1 AND t.partner_id = $2"
	args := []interface{}{orgID, partnerID}
	argPos := 3
	if from != nil {
		conditions += fmt.Sprintf(" AND t.transaction_date >= $%d", argPos)
		args = append(args, *from)
		argPos++
	}
	if to != nil {
		conditions += fmt.Sprintf(" AND t.transaction_date <= $%d", argPos)
		args = append(args, *to)
		argPos++
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT t.transaction_date, t.direction, t.amount, t.method,
		       COALESCE(o.order_number, po.po_number),
		       oa.area
		FROM financial_transactions t
		LEFT JOIN orders o ON o.id = t.order_id
		LEFT JOIN purchase_orders po ON po.id = t.purchase_order_id
		LEFT JOIN (
			SELECT order_id,
			       SUM(COALESCE(area_sqm, (width / 1000.0) * (height / 1000.0) * quantity)) AS area
			FROM order_items
			GROUP BY order_id
		) oa ON oa.order_id = t.order_id
		WHERE %s
		ORDER BY t.transaction_date ASC NULLS LAST, t.id
	`, conditions), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		var txDate pgtype.Date
		var method, document pgtype.Text
		var area decimal.NullDecimal

		err := rows.Scan(&txDate, &row.Direction, &row.Amount, &method, &document, &area)
		if err != nil {
			return nil, err
		}
		if txDate.Valid {
			d := txDate.Time
			row.Date = &d
		}
		if method.Valid {
			row.Method = &method.String
		}
		if document.Valid {
			row.Document = &document.String
		}
		if area.Valid {
			row.AreaSqm = &area.Decimal
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repository) TotalAccountBalance(ctx context.Context, orgID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(current_balance), 0)
		FROM accounts
		WHERE organization_id = $1
	`, orgID).Scan(&total)
	return total, err
}

// ReceivableTotal sums balances over customer-side partners: order postings
// build the balance, every payment reduces it.
func (r *repository) ReceivableTotal(ctx context.Context, orgID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE
			WHEN t.method = 'ORDER' THEN t.amount
			WHEN t.method = 'PURCHASE' THEN 0
			ELSE -t.amount
		END), 0)
		FROM financial_transactions t
		JOIN partners p ON p.id = t.partner_id
		WHERE t.organization_id = $1 AND p.type IN ('CUSTOMER', 'BOTH')
	`, orgID).Scan(&total)
	return total, err
}

// PayableTotal is the supplier-side mirror of ReceivableTotal.
func (r *repository) PayableTotal(ctx context.Context, orgID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE
			WHEN t.method = 'PURCHASE' THEN t.amount
			WHEN t.method = 'ORDER' THEN 0
			ELSE -t.amount
		END), 0)
		FROM financial_transactions t
		JOIN partners p ON p.id = t.partner_id
		WHERE t.organization_id = $1 AND p.type IN ('SUPPLIER', 'BOTH')
	`, orgID).Scan(&total)
	return total, err
}

func (r *repository) CountActiveJobs(ctx context.Context, orgID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM production_jobs
		WHERE organization_id = $1 AND status NOT IN ('TAMAMLANDI', 'COMPLETED')
	`, orgID).Scan(&n)
	return n, err
}

func (r *repository) CountWaitingOrders(ctx context.Context, orgID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM orders
		WHERE organization_id = $1 AND status = 'SIPARIS'
	`, orgID).Scan(&n)
	return n, err
}

func (r *repository) CountCustomers(ctx context.Context, orgID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM partners
		WHERE organization_id = $1 AND type IN ('CUSTOMER', 'BOTH')
	`, orgID).Scan(&n)
	return n, err
}

func (r *repository) ListOrganizationIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM organizations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
