package models

import (
	"time"

	"github.com/google/uuid"
)

// CompanyVerificationStatus values for CompanyProfile.
const (
	CompanyVerificationPending  = "pending"
	CompanyVerificationVerified = "verified"
)

// Profile is the role-specific part of an account. The set of implementations
// is closed: StudentProfile, GraduateProfile, CompanyProfile, MentorProfile, AdminProfile.
type Profile interface {
	Role() Role
	isProfile()
}

// OrganizationClaim is the institution a registrant says they belong to.
type OrganizationClaim struct {
	Kind     OrgKind
	Domain   string
	Name     string
	Industry string
	Website  string
}

// HasOrganizationAffiliation is implemented by profiles that claim an organization.
type HasOrganizationAffiliation interface {
	Profile
	OrganizationClaim() OrganizationClaim
}

// StudentProfile holds student fields.
type StudentProfile struct {
	UserID           uuid.UUID `json:"user_id"`
	UniversityName   string    `json:"university_name" validate:"required,max=255"`
	UniversityDomain string    `json:"-"`
	GraduationYear   *int      `json:"graduation_year,omitempty" validate:"omitempty,gte=1950,lte=2100"`
	Skills           string    `json:"skills"`
}

func (*StudentProfile) Role() Role { return RoleStudent }
func (*StudentProfile) isProfile() {}

func (p *StudentProfile) OrganizationClaim() OrganizationClaim {
	return OrganizationClaim{Kind: OrgKindUniversity, Domain: p.UniversityDomain, Name: p.UniversityName}
}

// GraduateProfile holds graduate fields. The university domain is optional.
type GraduateProfile struct {
	UserID           uuid.UUID `json:"user_id"`
	UniversityName   string    `json:"university_name" validate:"required,max=255"`
	UniversityDomain string    `json:"-"`
	GraduationYear   int       `json:"graduation_year" validate:"required,gte=1950,lte=2100"`
	CurrentPosition  string    `json:"current_position" validate:"max=255"`
	Skills           string    `json:"skills"`
}

func (*GraduateProfile) Role() Role { return RoleGraduate }
func (*GraduateProfile) isProfile() {}

func (p *GraduateProfile) OrganizationClaim() OrganizationClaim {
	return OrganizationClaim{Kind: OrgKindUniversity, Domain: p.UniversityDomain, Name: p.UniversityName}
}

// CompanyProfile holds company user fields.
type CompanyProfile struct {
	UserID             uuid.UUID `json:"user_id"`
	CompanyName        string    `json:"company_name" validate:"required,max=255"`
	CompanyDomain      string    `json:"-"`
	Industry           string    `json:"industry" validate:"max=100"`
	Website            string    `json:"website" validate:"omitempty,url"`
	VerificationStatus string    `json:"verification_status"`
}

func (*CompanyProfile) Role() Role { return RoleCompanyUser }
func (*CompanyProfile) isProfile() {}

func (p *CompanyProfile) OrganizationClaim() OrganizationClaim {
	return OrganizationClaim{
		Kind:     OrgKindCompany,
		Domain:   p.CompanyDomain,
		Name:     p.CompanyName,
		Industry: p.Industry,
		Website:  p.Website,
	}
}

// MentorProfile holds mentor fields.
type MentorProfile struct {
	UserID         uuid.UUID `json:"user_id"`
	ExpertiseAreas string    `json:"expertise_areas" validate:"required"`
	Bio            string    `json:"bio"`
	Availability   string    `json:"availability"`
}

func (*MentorProfile) Role() Role { return RoleMentor }
func (*MentorProfile) isProfile() {}

// AdminProfile carries no fields beyond the user link.
type AdminProfile struct {
	UserID uuid.UUID `json:"user_id"`
}

func (*AdminProfile) Role() Role { return RoleAdmin }
func (*AdminProfile) isProfile() {}

// ProfileSummary is the subset of profile data returned at login.
type ProfileSummary struct {
	UniversityName string `json:"university_name,omitempty"`
	GraduationYear *int   `json:"graduation_year,omitempty"`
	Skills         string `json:"skills,omitempty"`
	CompanyName    string `json:"company_name,omitempty"`
}

// SetUserID attaches a profile to its user once the user row exists.
func SetUserID(p Profile, id uuid.UUID) {
	switch v := p.(type) {
	case *StudentProfile:
		v.UserID = id
	case *GraduateProfile:
		v.UserID = id
	case *CompanyProfile:
		v.UserID = id
	case *MentorProfile:
		v.UserID = id
	case *AdminProfile:
		v.UserID = id
	}
}

// DateOnly truncates t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
