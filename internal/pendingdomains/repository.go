package pendingdomains

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

const requestColumns = `id, kind, domain, organization_name, industry, website, submitted_by,
	status, created_at, approved_at, approved_by`

// Repository handles pending domain request persistence.
type Repository struct {
	db database.DBTX
}

// NewRepository creates a pending domain repository over a pool or a transaction.
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

func scanRequest(row pgx.Row) (*models.PendingDomainRequest, error) {
	var p models.PendingDomainRequest
	var kind, status string
	err := row.Scan(&p.ID, &kind, &p.Domain, &p.OrganizationName, &p.Industry, &p.Website,
		&p.SubmittedBy, &status, &p.CreatedAt, &p.ApprovedAt, &p.ApprovedBy)
	if err != nil {
		return nil, database.Translate(err)
	}
	p.Kind = models.OrgKind(kind)
	p.Status = models.PendingStatus(status)
	return &p, nil
}

// Get returns a request by ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.PendingDomainRequest, error) {
	return scanRequest(r.db.QueryRow(ctx, `SELECT `+requestColumns+` FROM pending_domain_requests WHERE id = $1`, id))
}

// GetForUpdate returns a request and row-locks it until the surrounding transaction ends.
func (r *Repository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.PendingDomainRequest, error) {
	return scanRequest(r.db.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM pending_domain_requests WHERE id = $1 FOR UPDATE`, id))
}

// FindOrCreate returns the university request for domain, inserting it when
// absent. Only university requests are unique per domain.
func (r *Repository) FindOrCreate(ctx context.Context, kind models.OrgKind, domain string, d models.PendingDomainDefaults) (*models.PendingDomainRequest, bool, error) {
	if kind != models.OrgKindUniversity {
		return nil, false, fmt.Errorf("find-or-create is keyed on university domains, got %s", kind)
	}
	const q = `INSERT INTO pending_domain_requests (kind, domain, organization_name, industry, website, submitted_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (domain) WHERE kind = 'university' DO NOTHING
		RETURNING ` + requestColumns
	req, err := scanRequest(r.db.QueryRow(ctx, q, string(kind), domain, d.OrganizationName, d.Industry, d.Website, d.SubmittedBy))
	if err == nil {
		return req, true, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, false, fmt.Errorf("insert pending domain: %w", err)
	}
	req, err = scanRequest(r.db.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM pending_domain_requests WHERE kind = $1 AND domain = $2`, string(kind), domain))
	if err != nil {
		return nil, false, err
	}
	return req, false, nil
}

// Create always inserts a new pending request.
func (r *Repository) Create(ctx context.Context, kind models.OrgKind, domain string, d models.PendingDomainDefaults) (*models.PendingDomainRequest, error) {
	const q = `INSERT INTO pending_domain_requests (kind, domain, organization_name, industry, website, submitted_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + requestColumns
	req, err := scanRequest(r.db.QueryRow(ctx, q, string(kind), domain, d.OrganizationName, d.Industry, d.Website, d.SubmittedBy))
	if err != nil {
		return nil, fmt.Errorf("insert pending domain: %w", err)
	}
	return req, nil
}

// MarkApproved moves a pending request to approved. A request that is no
// longer pending yields database.ErrConflict.
func (r *Repository) MarkApproved(ctx context.Context, id, actor uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE pending_domain_requests
		SET status = 'approved', approved_at = $3, approved_by = $2
		WHERE id = $1 AND status = 'pending'`, id, actor, at)
	if err != nil {
		return fmt.Errorf("approve pending domain: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return database.ErrConflict
	}
	return nil
}

// List returns requests, oldest first, matching filter.
func (r *Repository) List(ctx context.Context, f models.PendingDomainFilter) ([]*models.PendingDomainRequest, error) {
	rows, err := r.db.Query(ctx, `SELECT `+requestColumns+` FROM pending_domain_requests
		WHERE ($1 = '' OR kind = $1) AND ($2 = '' OR status = $2)
		ORDER BY created_at ASC`, string(f.Kind), string(f.Status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.PendingDomainRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, req)
	}
	return list, rows.Err()
}
