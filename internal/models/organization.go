package models

import (
	"time"

	"github.com/google/uuid"
)

// OrgKind distinguishes the organization variants keyed by email domain.
type OrgKind string

const (
	OrgKindUniversity OrgKind = "university"
	OrgKindCompany    OrgKind = "company"
)

// ParseOrgKind converts a raw kind string; "school" is accepted for universities.
func ParseOrgKind(s string) (OrgKind, error) {
	switch s {
	case "university", "school":
		return OrgKindUniversity, nil
	case "company":
		return OrgKindCompany, nil
	}
	return "", NewValidationError("kind", "must be university or company")
}

// Valid reports whether k is a known kind.
func (k OrgKind) Valid() bool {
	return k == OrgKindUniversity || k == OrgKindCompany
}

// TargetRole is the role whose accounts are verified when a domain of this kind is approved.
func (k OrgKind) TargetRole() Role {
	if k == OrgKindCompany {
		return RoleCompanyUser
	}
	return RoleStudent
}

// Organization is a university or company identified by its email domain.
type Organization struct {
	ID         uuid.UUID  `json:"id"`
	Kind       OrgKind    `json:"kind"`
	Domain     string     `json:"domain"`
	Name       string     `json:"name"`
	Location   string     `json:"location,omitempty"`
	Industry   string     `json:"industry,omitempty"`
	Website    string     `json:"website,omitempty"`
	IsVerified bool       `json:"is_verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// OrganizationDefaults populates an organization created lazily by domain.
type OrganizationDefaults struct {
	Name     string
	Location string
	Industry string
	Website  string
	Verified bool
	// Now stamps verified_at when Verified is set.
	Now time.Time
}
