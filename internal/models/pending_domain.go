package models

import (
	"time"

	"github.com/google/uuid"
)

// PendingStatus is the state of a domain verification request.
type PendingStatus string

// A request moves from pending to approved once and never back.
const (
	PendingStatusPending  PendingStatus = "pending"
	PendingStatusApproved PendingStatus = "approved"
)

// PendingDomainRequest is a claim that a domain belongs to a named institution,
// awaiting admin confirmation.
type PendingDomainRequest struct {
	ID               uuid.UUID     `json:"id"`
	Kind             OrgKind       `json:"kind"`
	Domain           string        `json:"domain"`
	OrganizationName string        `json:"organization_name"`
	Industry         string        `json:"industry,omitempty"`
	Website          string        `json:"website,omitempty"`
	SubmittedBy      uuid.UUID     `json:"submitted_by"`
	Status           PendingStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	ApprovedAt       *time.Time    `json:"approved_at,omitempty"`
	ApprovedBy       *uuid.UUID    `json:"approved_by,omitempty"`
}

// IsPending reports whether the request still awaits approval.
func (r *PendingDomainRequest) IsPending() bool {
	return r.Status == PendingStatusPending
}

// PendingDomainDefaults fills a request created during registration.
type PendingDomainDefaults struct {
	OrganizationName string
	Industry         string
	Website          string
	SubmittedBy      uuid.UUID
}

// PendingDomainFilter narrows admin listings. Zero values match everything.
type PendingDomainFilter struct {
	Kind   OrgKind
	Status PendingStatus
}
