package connections

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

// Repository defines data access for connections, their applications and
// the mirrored ledger entries.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Insert(ctx context.Context, c Connection) error
	Get(ctx context.Context, orgID, id uuid.UUID) (*Connection, error)
	// GetForUpdate locks the connection row for the rest of the
	// transaction so concurrent allocations serialize per connection.
	GetForUpdate(ctx context.Context, orgID, id uuid.UUID) (*Connection, error)
	List(ctx context.Context, orgID uuid.UUID, partnerID *uuid.UUID, status *ConnectionStatus) ([]Connection, error)
	GetOrder(ctx context.Context, orgID, orderID uuid.UUID) (*orderRef, error)
	ApplicationByOrder(ctx context.Context, orgID, orderID uuid.UUID) (*Application, error)
	InsertApplication(ctx context.Context, a Application) error
	UpdateApplicationAmount(ctx context.Context, orgID, id uuid.UUID, amount decimal.Decimal) error
	UpdateRemaining(ctx context.Context, orgID, id uuid.UUID, remaining decimal.Decimal, status ConnectionStatus) error
	FindApplyTransaction(ctx context.Context, orgID, orderID uuid.UUID) (*uuid.UUID, error)
	InsertApplyTransaction(ctx context.Context, o orderRef, orgID uuid.UUID, amount decimal.Decimal, postedOn time.Time) error
	UpdateTransactionAmount(ctx context.Context, orgID, txID uuid.UUID, amount decimal.Decimal) error
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

func (r *repository) Insert(ctx context.Context, c Connection) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO connections (id, organization_id, partner_id, total_amount,
		                         remaining_amount, date, method, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, c.ID, c.OrganizationID, c.PartnerID, c.TotalAmount,
		c.RemainingAmount, c.Date, c.Method, c.Description, c.Status)
	return err
}

const connectionColumns = `id, organization_id, partner_id, total_amount,
	remaining_amount, date, method, description, status, created_at`

func (r *repository) Get(ctx context.Context, orgID, id uuid.UUID) (*Connection, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM connections WHERE id = $1 AND organization_id = $2
	`, connectionColumns), id, orgID)
	return scanConnection(row, id)
}

func (r *repository) GetForUpdate(ctx context.Context, orgID, id uuid.UUID) (*Connection, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM connections WHERE id = $1 AND organization_id = $2 FOR UPDATE
	`, connectionColumns), id, orgID)
	return scanConnection(row, id)
}

func (r *repository) List(ctx context.Context, orgID uuid.UUID, partnerID *uuid.UUID, status *ConnectionStatus) ([]Connection, error) {
	conditions := []string{"organization_id = $1"}
	args := []interface{}{orgID}
	argPos := 2

	if partnerID != nil {
		conditions = append(conditions, fmt.Sprintf("partner_id = $%d", argPos))
		args = append(args, *partnerID)
		argPos++
	}
	if status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *status)
		argPos++
	}

	whereClause := conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM connections
		WHERE %s
		ORDER BY date DESC NULLS LAST, created_at DESC
	`, connectionColumns, whereClause), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Connection
	for rows.Next() {
		c, err := scanConnection(rows, uuid.Nil)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *repository) GetOrder(ctx context.Context, orgID, orderID uuid.UUID) (*orderRef, error) {
	var o orderRef
	var partnerID uuid.NullUUID
	err := r.db.QueryRow(ctx, `
		SELECT id, order_number, status, partner_id
		FROM orders WHERE id = $1 AND organization_id = $2
	`, orderID, orgID).Scan(&o.ID, &o.OrderNumber, &o.Status, &partnerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", orderID, shared.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if partnerID.Valid {
		id := partnerID.UUID
		o.PartnerID = &id
	}
	return &o, nil
}

func (r *repository) ApplicationByOrder(ctx context.Context, orgID, orderID uuid.UUID) (*Application, error) {
	var a Application
	var appliedAt pgtype.Date
	err := r.db.QueryRow(ctx, `
		SELECT id, organization_id, connection_id, order_id, amount, applied_at
		FROM connection_applications
		WHERE organization_id = $1 AND order_id = $2
	`, orgID, orderID).Scan(&a.ID, &a.OrganizationID, &a.ConnectionID, &a.OrderID, &a.Amount, &appliedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if appliedAt.Valid {
		a.AppliedAt = appliedAt.Time
	}
	return &a, nil
}

func (r *repository) InsertApplication(ctx context.Context, a Application) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO connection_applications (id, organization_id, connection_id, order_id, amount, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.OrganizationID, a.ConnectionID, a.OrderID, a.Amount, a.AppliedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("order %s already has an application: %w", a.OrderID, shared.ErrConflict)
	}
	return err
}

func (r *repository) UpdateApplicationAmount(ctx context.Context, orgID, id uuid.UUID, amount decimal.Decimal) error {
	_, err := r.db.Exec(ctx, `
		UPDATE connection_applications SET amount = $1
		WHERE id = $2 AND organization_id = $3
	`, amount, id, orgID)
	return err
}

func (r *repository) UpdateRemaining(ctx context.Context, orgID, id uuid.UUID, remaining decimal.Decimal, status ConnectionStatus) error {
	_, err := r.db.Exec(ctx, `
		UPDATE connections SET remaining_amount = $1, status = $2
		WHERE id = $3 AND organization_id = $4
	`, remaining, status, id, orgID)
	return err
}

func (r *repository) FindApplyTransaction(ctx context.Context, orgID, orderID uuid.UUID) (*uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, `
		SELECT id FROM financial_transactions
		WHERE organization_id = $1 AND order_id = $2 AND method = 'CONNECTION_APPLY'
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

func (r *repository) InsertApplyTransaction(ctx context.Context, o orderRef, orgID uuid.UUID, amount decimal.Decimal, postedOn time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO financial_transactions (id, organization_id, partner_id, order_id,
		                                    direction, amount, transaction_date, description, method)
		VALUES ($1, $2, $3, $4, 'OUT', $5, $6, $7, 'CONNECTION_APPLY')
	`, uuid.New(), orgID, o.PartnerID, o.ID,
		amount, postedOn, fmt.Sprintf("Connection apply to order %s", o.OrderNumber))
	return err
}

func (r *repository) UpdateTransactionAmount(ctx context.Context, orgID, txID uuid.UUID, amount decimal.Decimal) error {
	_, err := r.db.Exec(ctx, `
		UPDATE financial_transactions SET amount = $1
		WHERE id = $2 AND organization_id = $3
	`, amount, txID, orgID)
	return err
}

func scanConnection(row pgx.Row, id uuid.UUID) (*Connection, error) {
	var c Connection
	var date pgtype.Date
	var method, description pgtype.Text
	var createdAt pgtype.Timestamptz

	err := row.Scan(&c.ID, &c.OrganizationID, &c.PartnerID, &c.TotalAmount,
		&c.RemainingAmount, &date, &method, &description, &c.Status, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("connection %s: %w", id, shared.ErrNotFound)
		}
		return nil, err
	}
	if date.Valid {
		d := date.Time
		c.Date = &d
	}
	if method.Valid {
		c.Method = &method.String
	}
	if description.Valid {
		c.Description = &description.String
	}
	if createdAt.Valid {
		c.CreatedAt = createdAt.Time
	}
	return &c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
