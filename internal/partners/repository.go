package partners

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FusherTm/kimerav1/internal/shared"
)

// Repository is a tenant-scoped partner lookup. Full partner CRUD lives
// outside this core.
type Repository interface {
	Get(ctx context.Context, orgID, id uuid.UUID) (*Partner, error)
	List(ctx context.Context, orgID uuid.UUID, search *string) ([]Partner, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const partnerColumns = `id, organization_id, type, name, contact_person, phone, email, address, tax_number, is_active`

func (r *repository) Get(ctx context.Context, orgID, id uuid.UUID) (*Partner, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+partnerColumns+`
		FROM partners
		WHERE id = $1 AND organization_id = $2
	`, id, orgID)

	p, err := scanPartner(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("partner %s: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repository) List(ctx context.Context, orgID uuid.UUID, search *string) ([]Partner, error) {
	query := `
		SELECT ` + partnerColumns + `
		FROM partners
		WHERE organization_id = $1`
	args := []interface{}{orgID}
	if search != nil && *search != "" {
		query += ` AND name ILIKE $2`
		args = append(args, "%"+*search+"%")
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanPartner(row pgx.Row) (*Partner, error) {
	var p Partner
	var contactPerson, phone, email, address, taxNumber pgtype.Text

	err := row.Scan(&p.ID, &p.OrganizationID, &p.Type, &p.Name,
		&contactPerson, &phone, &email, &address, &taxNumber, &p.IsActive)
	if err != nil {
		return nil, err
	}
	if contactPerson.Valid {
		p.ContactPerson = &contactPerson.String
	}
	if phone.Valid {
		p.Phone = &phone.String
	}
	if email.Valid {
		p.Email = &email.String
	}
	if address.Valid {
		p.Address = &address.String
	}
	if taxNumber.Valid {
		p.TaxNumber = &taxNumber.String
	}
	return &p, nil
}
