package organizations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/skillproof/backend/internal/models"
	"github.com/skillproof/backend/pkg/database"
)

const orgColumns = `id, kind, domain, name, location, industry, website, is_verified, verified_at, created_at, updated_at`

// Repository handles university and company persistence.
type Repository struct {
	db database.DBTX
}

// NewRepository creates an organizations repository over a pool or a transaction.
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

func scanOrganization(row pgx.Row) (*models.Organization, error) {
	var o models.Organization
	var kind string
	err := row.Scan(&o.ID, &kind, &o.Domain, &o.Name, &o.Location, &o.Industry, &o.Website,
		&o.IsVerified, &o.VerifiedAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, database.Translate(err)
	}
	o.Kind = models.OrgKind(kind)
	return &o, nil
}

// GetByID returns an organization by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	return scanOrganization(r.db.QueryRow(ctx, `SELECT `+orgColumns+` FROM organizations WHERE id = $1`, id))
}

// FindByDomain returns the organization of kind registered for domain, verified or not.
func (r *Repository) FindByDomain(ctx context.Context, kind models.OrgKind, domain string) (*models.Organization, error) {
	return scanOrganization(r.db.QueryRow(ctx,
		`SELECT `+orgColumns+` FROM organizations WHERE kind = $1 AND domain = $2`, string(kind), domain))
}

// FindOrCreateByDomain returns the organization for (kind, domain), inserting
// it from defaults when absent. created reports whether this call inserted it.
func (r *Repository) FindOrCreateByDomain(ctx context.Context, kind models.OrgKind, domain string, d models.OrganizationDefaults) (*models.Organization, bool, error) {
	var verifiedAt *time.Time
	if d.Verified {
		at := d.Now
		verifiedAt = &at
	}
	const q = `INSERT INTO organizations (kind, domain, name, location, industry, website, is_verified, verified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (kind, domain) DO NOTHING
		RETURNING ` + orgColumns
	org, err := scanOrganization(r.db.QueryRow(ctx, q, string(kind), domain, d.Name, d.Location,
		d.Industry, d.Website, d.Verified, verifiedAt))
	if err == nil {
		return org, true, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, false, fmt.Errorf("insert organization: %w", err)
	}
	org, err = r.FindByDomain(ctx, kind, domain)
	if err != nil {
		return nil, false, err
	}
	return org, false, nil
}

// MarkVerified flags the organization verified at the given time.
func (r *Repository) MarkVerified(ctx context.Context, id uuid.UUID, at time.Time) (*models.Organization, error) {
	const q = `UPDATE organizations SET is_verified = TRUE, verified_at = $2, updated_at = NOW()
		WHERE id = $1 RETURNING ` + orgColumns
	return scanOrganization(r.db.QueryRow(ctx, q, id, at))
}

// List returns organizations ordered by name, optionally filtered by kind.
func (r *Repository) List(ctx context.Context, kind models.OrgKind) ([]*models.Organization, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orgColumns+` FROM organizations
		WHERE ($1 = '' OR kind = $1) ORDER BY name`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}
