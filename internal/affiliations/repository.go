package affiliations

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

const affiliationColumns = `id, user_id, organization_id, kind, enrollment_date, graduation_date, role_in_company, created_at`

// Repository is the enrollment/employment ledger.
type Repository struct {
	db database.DBTX
}

// NewRepository creates an affiliations repository over a pool or a transaction.
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

func scanAffiliation(row pgx.Row) (*models.Affiliation, error) {
	var a models.Affiliation
	var kind string
	err := row.Scan(&a.ID, &a.UserID, &a.OrganizationID, &kind, &a.EnrollmentDate, &a.GraduationDate,
		&a.RoleInCompany, &a.CreatedAt)
	if err != nil {
		return nil, database.Translate(err)
	}
	a.Kind = models.OrgKind(kind)
	return &a, nil
}

// columnsFor returns the kind-specific values written for a new link.
func columnsFor(kind models.OrgKind, d models.AffiliationDefaults) (enrolled, graduates *time.Time, roleInCompany string) {
	if kind == models.OrgKindCompany {
		roleInCompany = d.RoleInCompany
		if roleInCompany == "" {
			roleInCompany = models.DefaultRoleInCompany
		}
		return nil, nil, roleInCompany
	}
	date := models.DateOnly(d.EnrollmentDate)
	return &date, d.GraduationDate, ""
}

// FindOrCreate links user to org once. Defaults only apply to a new link.
func (r *Repository) FindOrCreate(ctx context.Context, userID uuid.UUID, org *models.Organization, d models.AffiliationDefaults) (*models.Affiliation, bool, error) {
	enrolled, graduates, roleInCompany := columnsFor(org.Kind, d)
	const q = `INSERT INTO affiliations (user_id, organization_id, kind, enrollment_date, graduation_date, role_in_company)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, organization_id) DO NOTHING
		RETURNING ` + affiliationColumns
	a, err := scanAffiliation(r.db.QueryRow(ctx, q, userID, org.ID, string(org.Kind), enrolled, graduates, roleInCompany))
	if err == nil {
		return a, true, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, false, fmt.Errorf("insert affiliation: %w", err)
	}
	a, err = scanAffiliation(r.db.QueryRow(ctx, `SELECT `+affiliationColumns+` FROM affiliations
		WHERE user_id = $1 AND organization_id = $2`, userID, org.ID))
	if err != nil {
		return nil, false, err
	}
	return a, false, nil
}

// CreateMissing links every user in userIDs to org in one statement, skipping
// existing links, and returns how many were inserted.
func (r *Repository) CreateMissing(ctx context.Context, userIDs []uuid.UUID, org *models.Organization, d models.AffiliationDefaults) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	ids := make([]string, len(userIDs))
	for i, id := range userIDs {
		ids[i] = id.String()
	}
	enrolled, graduates, roleInCompany := columnsFor(org.Kind, d)
	const q = `INSERT INTO affiliations (user_id, organization_id, kind, enrollment_date, graduation_date, role_in_company)
		SELECT u::uuid, $2::uuid, $3::text, $4::date, $5::date, $6::text FROM unnest($1::text[]) AS u
		ON CONFLICT (user_id, organization_id) DO NOTHING`
	tag, err := r.db.Exec(ctx, q, ids, org.ID, string(org.Kind), enrolled, graduates, roleInCompany)
	if err != nil {
		return 0, fmt.Errorf("bulk insert affiliations: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// HasVerifiedAffiliation reports whether the user is linked to at least one
// currently verified organization of kind.
func (r *Repository) HasVerifiedAffiliation(ctx context.Context, userID uuid.UUID, kind models.OrgKind) (bool, error) {
	const q = `SELECT EXISTS (
		SELECT 1 FROM affiliations a
		JOIN organizations o ON o.id = a.organization_id
		WHERE a.user_id = $1 AND o.kind = $2 AND o.is_verified)`
	var ok bool
	if err := r.db.QueryRow(ctx, q, userID, string(kind)).Scan(&ok); err != nil {
		return false, fmt.Errorf("check affiliation: %w", err)
	}
	return ok, nil
}

// ListByUser returns the user's affiliations, oldest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Affiliation, error) {
	rows, err := r.db.Query(ctx, `SELECT `+affiliationColumns+` FROM affiliations
		WHERE user_id = $1 ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Affiliation
	for rows.Next() {
		a, err := scanAffiliation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
