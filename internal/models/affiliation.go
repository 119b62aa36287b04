package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultRoleInCompany is used for employment links when none is supplied.
const DefaultRoleInCompany = "recruiter"

// Affiliation links a verified user to the organization that verified them:
// an enrollment for universities, an employment for companies.
type Affiliation struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	Kind           OrgKind    `json:"kind"`
	EnrollmentDate *time.Time `json:"enrollment_date,omitempty"`
	GraduationDate *time.Time `json:"graduation_date,omitempty"`
	RoleInCompany  string     `json:"role_in_company,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// AffiliationDefaults apply only when the (user, organization) link is first created.
type AffiliationDefaults struct {
	EnrollmentDate time.Time
	GraduationDate *time.Time
	RoleInCompany  string
}
