package profiles

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/skillproof/backend/internal/models"
	"github.com/skillproof/backend/pkg/database"
)

// Repository handles role-specific profile rows.
type Repository struct {
	db database.DBTX
}

// NewRepository creates a profiles repository over a pool or a transaction.
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

// Create inserts the profile row matching p's concrete type.
func (r *Repository) Create(ctx context.Context, p models.Profile) error {
	var err error
	switch v := p.(type) {
	case *models.StudentProfile:
		_, err = r.db.Exec(ctx, `INSERT INTO student_profiles (user_id, university_name, graduation_year, skills)
			VALUES ($1, $2, $3, $4)`, v.UserID, v.UniversityName, v.GraduationYear, v.Skills)
	case *models.GraduateProfile:
		_, err = r.db.Exec(ctx, `INSERT INTO graduate_profiles (user_id, university_name, graduation_year, current_position, skills)
			VALUES ($1, $2, $3, $4, $5)`, v.UserID, v.UniversityName, v.GraduationYear, v.CurrentPosition, v.Skills)
	case *models.CompanyProfile:
		_, err = r.db.Exec(ctx, `INSERT INTO company_profiles (user_id, company_name, industry, website, verification_status)
			VALUES ($1, $2, $3, $4, $5)`, v.UserID, v.CompanyName, v.Industry, v.Website, v.VerificationStatus)
	case *models.MentorProfile:
		_, err = r.db.Exec(ctx, `INSERT INTO mentor_profiles (user_id, expertise_areas, bio, availability)
			VALUES ($1, $2, $3, $4)`, v.UserID, v.ExpertiseAreas, v.Bio, v.Availability)
	case *models.AdminProfile:
		_, err = r.db.Exec(ctx, `INSERT INTO admin_profiles (user_id) VALUES ($1)`, v.UserID)
	default:
		return fmt.Errorf("unsupported profile type %T", p)
	}
	if err != nil {
		return fmt.Errorf("insert %s profile: %w", p.Role(), database.Translate(err))
	}
	return nil
}

// MarkCompaniesVerified sets verification_status to verified on the company
// profiles of the given users. Users without a company profile are skipped.
func (r *Repository) MarkCompaniesVerified(ctx context.Context, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	ids := make([]string, len(userIDs))
	for i, id := range userIDs {
		ids[i] = id.String()
	}
	_, err := r.db.Exec(ctx, `UPDATE company_profiles SET verification_status = $2
		WHERE user_id = ANY($1::text[]::uuid[])`, ids, models.CompanyVerificationVerified)
	if err != nil {
		return fmt.Errorf("verify company profiles: %w", err)
	}
	return nil
}

// Summary returns the profile fields echoed back at login.
func (r *Repository) Summary(ctx context.Context, userID uuid.UUID, role models.Role) (models.ProfileSummary, error) {
	var s models.ProfileSummary
	var err error
	switch role {
	case models.RoleStudent:
		err = r.db.QueryRow(ctx, `SELECT university_name, graduation_year, skills FROM student_profiles WHERE user_id = $1`,
			userID).Scan(&s.UniversityName, &s.GraduationYear, &s.Skills)
	case models.RoleGraduate:
		var year int
		err = r.db.QueryRow(ctx, `SELECT university_name, graduation_year, skills FROM graduate_profiles WHERE user_id = $1`,
			userID).Scan(&s.UniversityName, &year, &s.Skills)
		if err == nil {
			s.GraduationYear = &year
		}
	case models.RoleCompanyUser:
		err = r.db.QueryRow(ctx, `SELECT company_name FROM company_profiles WHERE user_id = $1`, userID).Scan(&s.CompanyName)
	default:
		return s, nil
	}
	if err != nil {
		return s, database.Translate(err)
	}
	return s, nil
}
