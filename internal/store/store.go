// Package store defines the persistence ports used by the verification engine
// and registration workflow, and the transactional boundary they run under.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/skillproof/backend/internal/models"
	"github.com/skillproof/backend/pkg/database"
)

var (
	ErrNotFound = database.ErrNotFound
	ErrConflict = database.ErrConflict
)

// UserStore is the identity store.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	SetVerified(ctx context.Context, id uuid.UUID) (bool, error)
	VerifyByDomain(ctx context.Context, role models.Role, domain string) ([]uuid.UUID, error)
	List(ctx context.Context) ([]models.UserPublic, error)
}

// OrganizationStore is the organization registry.
type OrganizationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	FindByDomain(ctx context.Context, kind models.OrgKind, domain string) (*models.Organization, error)
	FindOrCreateByDomain(ctx context.Context, kind models.OrgKind, domain string, d models.OrganizationDefaults) (*models.Organization, bool, error)
	MarkVerified(ctx context.Context, id uuid.UUID, at time.Time) (*models.Organization, error)
	List(ctx context.Context, kind models.OrgKind) ([]*models.Organization, error)
}

// PendingDomainStore is the pending-domain queue.
type PendingDomainStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.PendingDomainRequest, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.PendingDomainRequest, error)
	FindOrCreate(ctx context.Context, kind models.OrgKind, domain string, d models.PendingDomainDefaults) (*models.PendingDomainRequest, bool, error)
	Create(ctx context.Context, kind models.OrgKind, domain string, d models.PendingDomainDefaults) (*models.PendingDomainRequest, error)
	MarkApproved(ctx context.Context, id, actor uuid.UUID, at time.Time) error
	List(ctx context.Context, f models.PendingDomainFilter) ([]*models.PendingDomainRequest, error)
}

// AffiliationStore is the enrollment/employment ledger.
type AffiliationStore interface {
	FindOrCreate(ctx context.Context, userID uuid.UUID, org *models.Organization, d models.AffiliationDefaults) (*models.Affiliation, bool, error)
	CreateMissing(ctx context.Context, userIDs []uuid.UUID, org *models.Organization, d models.AffiliationDefaults) (int, error)
	HasVerifiedAffiliation(ctx context.Context, userID uuid.UUID, kind models.OrgKind) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Affiliation, error)
}

// ProfileStore persists role-specific profiles.
type ProfileStore interface {
	Create(ctx context.Context, p models.Profile) error
	MarkCompaniesVerified(ctx context.Context, userIDs []uuid.UUID) error
	Summary(ctx context.Context, userID uuid.UUID, role models.Role) (models.ProfileSummary, error)
}

// DomainLocker serializes writers that touch the same (kind, domain) for the
// rest of the current transaction.
type DomainLocker interface {
	LockDomain(ctx context.Context, kind models.OrgKind, domain string) error
}

// Stores groups every port bound to one connection or transaction.
type Stores struct {
	Users          UserStore
	Organizations  OrganizationStore
	PendingDomains PendingDomainStore
	Affiliations   AffiliationStore
	Profiles       ProfileStore
	Locks          DomainLocker
}

// Store hands out ports either directly or inside an all-or-nothing transaction.
type Store interface {
	Stores() Stores
	RunInTx(ctx context.Context, fn func(st Stores) error) error
}
