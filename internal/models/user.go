package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents user role in the platform.
type Role string

const (
	RoleStudent     Role = "student"
	RoleGraduate    Role = "graduate"
	RoleCompanyUser Role = "company_user"
	RoleMentor      Role = "mentor"
	RoleAdmin       Role = "admin"
)

// Roles lists every supported role.
var Roles = []Role{RoleStudent, RoleGraduate, RoleCompanyUser, RoleMentor, RoleAdmin}

// ParseRole converts a raw role string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", NewValidationError("role", "unknown role "+s)
	}
	return r, nil
}

// Valid reports whether r is one of the supported roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleGraduate, RoleCompanyUser, RoleMentor, RoleAdmin:
		return true
	}
	return false
}

// RequiresDomainVerification reports whether accounts of this role must be
// backed by a verified organization before they may sign in.
func (r Role) RequiresDomainVerification() bool {
	return r == RoleStudent || r == RoleCompanyUser
}

// OrganizationKind returns the kind of organization accounts of this role
// affiliate with. Mentors and admins have none.
func (r Role) OrganizationKind() (OrgKind, bool) {
	switch r {
	case RoleStudent, RoleGraduate:
		return OrgKindUniversity, true
	case RoleCompanyUser:
		return OrgKindCompany, true
	}
	return "", false
}

// User represents a platform user.
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Password    string    `json:"-"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	PhoneNumber string    `json:"phone_number"`
	Role        Role      `json:"role"`
	IsVerified  bool      `json:"is_verified"`
	IsStaff     bool      `json:"is_staff"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Role       Role      `json:"role"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

// Domain returns the email domain of the user.
func (u *User) Domain() string {
	return DomainOf(u.Email)
}
