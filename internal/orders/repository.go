package orders

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

// Repository defines data access for orders, their items, production jobs
// and the receivable postings that belong to the same atomic unit.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	NextNumber(ctx context.Context, orgID uuid.UUID, year int) (int, error)
	Insert(ctx context.Context, o Order) error
	InsertItem(ctx context.Context, item OrderItem) error
	Get(ctx context.Context, orgID, id uuid.UUID) (*Order, error)
	List(ctx context.Context, orgID uuid.UUID, f ListFilter) ([]Order, error)
	ListItems(ctx context.Context, orgID, orderID uuid.UUID) ([]OrderItem, error)
	UpdatePricing(ctx context.Context, o Order) error
	UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status Status) error
	InsertJob(ctx context.Context, job ProductionJob) error
	CountJobs(ctx context.Context, orgID, orderID uuid.UUID) (int, error)
	FindReceivable(ctx context.Context, orgID, orderID uuid.UUID) (*uuid.UUID, error)
	InsertReceivable(ctx context.Context, o Order, postedOn time.Time) error
	SyncReceivableAmount(ctx context.Context, orgID, txID uuid.UUID, amount decimal.Decimal) error
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

func (r *repository) NextNumber(ctx context.Context, orgID uuid.UUID, year int) (int, error) {
	var seq int
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_counters (organization_id, doc_type, year, last_number)
		VALUES ($1, 'ORDER', $2, 1)
		ON CONFLICT (organization_id, doc_type, year)
		DO UPDATE SET last_number = document_counters.last_number + 1
		RETURNING last_number
	`, orgID, year).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next order number: %w", err)
	}
	return seq, nil
}

func (r *repository) Insert(ctx context.Context, o Order) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO orders (id, organization_id, partner_id, project_name, order_number,
		                    status, order_date, delivery_date, delivery_method, notes,
		                    grand_total, discount_percent, vat_inclusive)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, o.ID, o.OrganizationID, o.PartnerID, o.ProjectName, o.OrderNumber,
		o.Status, o.OrderDate, o.DeliveryDate, o.DeliveryMethod, o.Notes,
		o.GrandTotal, decimalPtrToNull(o.DiscountPercent), o.VATInclusive)
	if isUniqueViolation(err) {
		return fmt.Errorf("order number %s: %w", o.OrderNumber, shared.ErrConflict)
	}
	return err
}

func (r *repository) InsertItem(ctx context.Context, item OrderItem) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO order_items (id, organization_id, order_id, product_id, description,
		                         area_sqm, width, height, quantity, unit_price, total_price, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, item.ID, item.OrganizationID, item.OrderID, item.ProductID, item.Description,
		decimalPtrToNull(item.AreaSqm), item.Width, item.Height, item.Quantity,
		item.UnitPrice, item.TotalPrice, item.Notes)
	return err
}

const orderColumns = `id, organization_id, partner_id, project_name, order_number,
	status, order_date, delivery_date, delivery_method, notes,
	grand_total, discount_percent, vat_inclusive, created_at, updated_at`

func (r *repository) Get(ctx context.Context, orgID, id uuid.UUID) (*Order, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM orders WHERE id = $1 AND organization_id = $2
	`, orderColumns), id, orgID)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", id, shared.ErrNotFound)
		}
		return nil, err
	}
	return o, nil
}

func (r *repository) List(ctx context.Context, orgID uuid.UUID, f ListFilter) ([]Order, error) {
	conditions := []string{"o.organization_id = $1"}
	args := []interface{}{orgID}
	argPos := 2

	if f.Status != nil {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", argPos))
		args = append(args, *f.Status)
		argPos++
	}
	if f.PartnerID != nil {
		conditions = append(conditions, fmt.Sprintf("o.partner_id = $%d", argPos))
		args = append(args, *f.PartnerID)
		argPos++
	}
	if f.Search != nil && *f.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(o.order_number ILIKE $%d OR o.project_name ILIKE $%d OR p.name ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+*f.Search+"%")
		argPos++
	}

	whereClause := conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT o.id, o.organization_id, o.partner_id, o.project_name, o.order_number,
		       o.status, o.order_date, o.delivery_date, o.delivery_method, o.notes,
		       o.grand_total, o.discount_percent, o.vat_inclusive, o.created_at, o.updated_at
		FROM orders o
		LEFT JOIN partners p ON p.id = o.partner_id
		WHERE %s
		ORDER BY o.order_date DESC, o.order_number DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *repository) ListItems(ctx context.Context, orgID, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, organization_id, order_id, product_id, description,
		       area_sqm, width, height, quantity, unit_price, total_price, notes
		FROM order_items
		WHERE order_id = $1 AND organization_id = $2
		ORDER BY id
	`, orderID, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		var productID uuid.NullUUID
		var description, notes pgtype.Text
		var areaSqm decimal.NullDecimal
		var width, height, quantity pgtype.Int4

		err := rows.Scan(&it.ID, &it.OrganizationID, &it.OrderID, &productID, &description,
			&areaSqm, &width, &height, &quantity, &it.UnitPrice, &it.TotalPrice, &notes)
		if err != nil {
			return nil, err
		}
		if productID.Valid {
			id := productID.UUID
			it.ProductID = &id
		}
		if description.Valid {
			it.Description = &description.String
		}
		if notes.Valid {
			it.Notes = &notes.String
		}
		if areaSqm.Valid {
			a := areaSqm.Decimal
			it.AreaSqm = &a
		}
		if width.Valid {
			w := int(width.Int32)
			it.Width = &w
		}
		if height.Valid {
			h := int(height.Int32)
			it.Height = &h
		}
		if quantity.Valid {
			it.Quantity = int(quantity.Int32)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) UpdatePricing(ctx context.Context, o Order) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET discount_percent = $1, vat_inclusive = $2, grand_total = $3, updated_at = now()
		WHERE id = $4 AND organization_id = $5
	`, decimalPtrToNull(o.DiscountPercent), o.VATInclusive, o.GrandTotal, o.ID, o.OrganizationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s: %w", o.ID, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status Status) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET status = $1, updated_at = now()
		WHERE id = $2 AND organization_id = $3
	`, status, id, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) InsertJob(ctx context.Context, job ProductionJob) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO production_jobs (id, organization_id, order_item_id, job_number,
		                             status, quantity_required, quantity_produced)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, job.ID, job.OrganizationID, job.OrderItemID, job.JobNumber,
		job.Status, job.QuantityRequired, job.QuantityProduced)
	return err
}

func (r *repository) CountJobs(ctx context.Context, orgID, orderID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM production_jobs pj
		JOIN order_items oi ON oi.id = pj.order_item_id
		WHERE oi.order_id = $1 AND pj.organization_id = $2
	`, orderID, orgID).Scan(&count)
	return count, err
}

func (r *repository) FindReceivable(ctx context.Context, orgID, orderID uuid.UUID) (*uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, `
		SELECT id FROM financial_transactions
		WHERE organization_id = $1 AND order_id = $2 AND method = 'ORDER'
		LIMIT 1
	`, orgID, orderID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (r *repository) InsertReceivable(ctx context.Context, o Order, postedOn time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO financial_transactions (id, organization_id, partner_id, order_id,
		                                    direction, amount, transaction_date, description, method)
		VALUES ($1, $2, $3, $4, 'IN', $5, $6, $7, 'ORDER')
	`, uuid.New(), o.OrganizationID, o.PartnerID, o.ID,
		o.GrandTotal, postedOn, fmt.Sprintf("Order %s", o.OrderNumber))
	return err
}

func (r *repository) SyncReceivableAmount(ctx context.Context, orgID, txID uuid.UUID, amount decimal.Decimal) error {
	_, err := r.db.Exec(ctx, `
		UPDATE financial_transactions SET amount = $1
		WHERE id = $2 AND organization_id = $3
	`, amount, txID, orgID)
	return err
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var partnerID uuid.NullUUID
	var projectName, deliveryMethod, notes pgtype.Text
	var orderDate, deliveryDate pgtype.Date
	var discountPercent decimal.NullDecimal
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(&o.ID, &o.OrganizationID, &partnerID, &projectName, &o.OrderNumber,
		&o.Status, &orderDate, &deliveryDate, &deliveryMethod, &notes,
		&o.GrandTotal, &discountPercent, &o.VATInclusive, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if partnerID.Valid {
		id := partnerID.UUID
		o.PartnerID = &id
	}
	if projectName.Valid {
		o.ProjectName = &projectName.String
	}
	if deliveryMethod.Valid {
		o.DeliveryMethod = &deliveryMethod.String
	}
	if notes.Valid {
		o.Notes = &notes.String
	}
	if orderDate.Valid {
		o.OrderDate = orderDate.Time
	}
	if deliveryDate.Valid {
		o.DeliveryDate = &deliveryDate.Time
	}
	if discountPercent.Valid {
		d := discountPercent.Decimal
		o.DiscountPercent = &d
	}
	if createdAt.Valid {
		o.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		o.UpdatedAt = updatedAt.Time
	}
	return &o, nil
}

func decimalPtrToNull(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
