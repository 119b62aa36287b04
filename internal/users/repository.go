package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/skillproof/backend/internal/models"
	"github.com/skillproof/backend/pkg/database"
)

const userColumns = `id, email, password_hash, first_name, last_name, COALESCE(phone_number,''),
	role, is_verified, is_staff, created_at, updated_at`

// Repository handles user persistence.
type Repository struct {
	db database.DBTX
}

// NewRepository creates a users repository over a pool or a transaction.
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.PhoneNumber,
		&role, &u.IsVerified, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, database.Translate(err)
	}
	u.Role = models.Role(role)
	return &u, nil
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail returns a user by normalized email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// Create inserts u and fills its generated fields. A taken email yields database.ErrConflict.
func (r *Repository) Create(ctx context.Context, u *models.User) error {
	const q = `INSERT INTO users (email, password_hash, first_name, last_name, phone_number, role, is_verified, is_staff)
		VALUES ($1, $2, $3, $4, NULLIF($5,''), $6, $7, $8)
		RETURNING ` + userColumns
	created, err := scanUser(r.db.QueryRow(ctx, q, u.Email, u.Password, u.FirstName, u.LastName,
		u.PhoneNumber, string(u.Role), u.IsVerified, u.IsStaff))
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	*u = *created
	return nil
}

// SetVerified flips is_verified to true. It reports whether the row changed;
// already-verified users are left untouched.
func (r *Repository) SetVerified(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET is_verified = TRUE, updated_at = NOW() WHERE id = $1 AND is_verified = FALSE`, id)
	if err != nil {
		return false, fmt.Errorf("verify user: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return false, database.ErrNotFound
	}
	return false, nil
}

// VerifyByDomain verifies, in one statement, every unverified user of role
// whose email is exactly @domain, and returns their IDs.
func (r *Repository) VerifyByDomain(ctx context.Context, role models.Role, domain string) ([]uuid.UUID, error) {
	const q = `UPDATE users SET is_verified = TRUE, updated_at = NOW()
		WHERE role = $1 AND is_verified = FALSE AND right(email, length($2::text) + 1) = '@' || $2::text
		RETURNING id`
	rows, err := r.db.Query(ctx, q, string(role), domain)
	if err != nil {
		return nil, fmt.Errorf("cascade verify: %w", err)
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// List returns all users without credentials, ordered by email.
func (r *Repository) List(ctx context.Context) ([]models.UserPublic, error) {
	rows, err := r.db.Query(ctx, `SELECT id, email, first_name, last_name, role, is_verified, created_at
		FROM users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserPublic
	for rows.Next() {
		var u models.UserPublic
		var role string
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &role, &u.IsVerified, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = models.Role(role)
		list = append(list, u)
	}
	return list, rows.Err()
}
