// Package verification moves users and organizations from unverified to
// verified: at registration, on admin approval of a pending domain (with its
// cascade over earlier registrants) and at every login.
package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skillproof/backend/internal/metrics"
	"github.com/skillproof/backend/internal/models"
	"github.com/skillproof/backend/internal/store"
	"github.com/skillproof/backend/pkg/password"
)

// Config carries the defaults applied when a caller supplies none.
type Config struct {
	DefaultEnrollmentDate time.Time
	DefaultRoleInCompany  string
	DefaultLocation       string
}

// DomainApproved is published after an approval commits.
type DomainApproved struct {
	RequestID        uuid.UUID
	Kind             models.OrgKind
	Domain           string
	OrganizationID   uuid.UUID
	OrganizationName string
	SubmittedBy      uuid.UUID
	ApprovedBy       uuid.UUID
	VerifiedUserIDs  []uuid.UUID
	ApprovedAt       time.Time
}

// Publisher hands approval events to downstream delivery.
type Publisher interface {
	PublishDomainApproved(ctx context.Context, ev DomainApproved) error
}

// Engine is the verification state machine.
type Engine struct {
	store     store.Store
	cfg       Config
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewEngine creates an engine over st.
func NewEngine(st store.Store, cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultEnrollmentDate.IsZero() {
		cfg.DefaultEnrollmentDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if cfg.DefaultRoleInCompany == "" {
		cfg.DefaultRoleInCompany = models.DefaultRoleInCompany
	}
	if cfg.DefaultLocation == "" {
		cfg.DefaultLocation = "Unknown"
	}
	return &Engine{
		store:  st,
		cfg:    cfg,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetPublisher sets the approval event publisher (optional).
func (e *Engine) SetPublisher(p Publisher) { e.publisher = p }

// SetMetrics sets the metrics sink (optional).
func (e *Engine) SetMetrics(m *metrics.Metrics) { e.metrics = m }

// SetClock overrides the time source.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// Resolution describes what registration-time resolution did.
type Resolution struct {
	Verified       bool
	Organization   *models.Organization
	Affiliation    *models.Affiliation
	PendingRequest *models.PendingDomainRequest
}

// ResolveDomainAtRegistration checks a newly created user's claimed domain
// inside the caller's transaction. A university domain that is already
// verified verifies the user and enrolls them; otherwise a pending request
// is found or created for the domain. Company domains always get a new
// pending request. The user's verification flag is never cleared.
func (e *Engine) ResolveDomainAtRegistration(ctx context.Context, st store.Stores, user *models.User, claim models.OrganizationClaim, def models.AffiliationDefaults) (*Resolution, error) {
	if !claim.Kind.Valid() {
		return nil, models.NewValidationError("kind", "must be university or company")
	}
	if claim.Domain == "" {
		return nil, models.NewValidationError("domain", "is required")
	}
	if err := st.Locks.LockDomain(ctx, claim.Kind, claim.Domain); err != nil {
		return nil, err
	}

	pending := models.PendingDomainDefaults{
		OrganizationName: claim.Name,
		Industry:         claim.Industry,
		Website:          claim.Website,
		SubmittedBy:      user.ID,
	}
	if claim.Kind == models.OrgKindCompany {
		req, err := st.PendingDomains.Create(ctx, claim.Kind, claim.Domain, pending)
		if err != nil {
			return nil, fmt.Errorf("create company domain request: %w", err)
		}
		return &Resolution{PendingRequest: req}, nil
	}

	org, err := st.Organizations.FindByDomain(ctx, claim.Kind, claim.Domain)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("find organization: %w", err)
	}
	if err == nil && org.IsVerified {
		if _, err := st.Users.SetVerified(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("verify user: %w", err)
		}
		user.IsVerified = true
		aff, _, err := st.Affiliations.FindOrCreate(ctx, user.ID, org, e.affiliationDefaults(def, nil, ""))
		if err != nil {
			return nil, fmt.Errorf("create enrollment: %w", err)
		}
		return &Resolution{Verified: true, Organization: org, Affiliation: aff}, nil
	}

	req, _, err := st.PendingDomains.FindOrCreate(ctx, claim.Kind, claim.Domain, pending)
	if err != nil {
		return nil, fmt.Errorf("queue domain request: %w", err)
	}
	return &Resolution{PendingRequest: req}, nil
}

// ApprovalOverrides replace request fields and defaults on approval. Zero values are ignored.
type ApprovalOverrides struct {
	Name           string
	Location       string
	Industry       string
	Website        string
	EnrollmentDate *time.Time
	RoleInCompany  string
}

// ApprovalResult reports what an approval changed.
type ApprovalResult struct {
	RequestID           uuid.UUID
	Organization        *models.Organization
	OrganizationCreated bool
	SubmitterVerified   bool
	// VerifiedCount counts users flipped by the cascade; the submitter is reported separately.
	VerifiedCount   int
	VerifiedUserIDs []uuid.UUID
}

// ApprovePendingDomain verifies the request's organization, its submitter and
// every unverified account of the target role on the same domain, then marks
// the request approved. All of it commits or none of it does. Of two
// concurrent approvals of one request, the second fails with ErrInvalidState.
func (e *Engine) ApprovePendingDomain(ctx context.Context, requestID, actor uuid.UUID, ov ApprovalOverrides) (*ApprovalResult, error) {
	start := time.Now()
	var (
		res *ApprovalResult
		req *models.PendingDomainRequest
		at  time.Time
	)
	err := e.store.RunInTx(ctx, func(st store.Stores) error {
		first, err := st.PendingDomains.Get(ctx, requestID)
		if err != nil {
			return notFound(err, "pending domain request")
		}
		if err := st.Locks.LockDomain(ctx, first.Kind, first.Domain); err != nil {
			return err
		}
		req, err = st.PendingDomains.GetForUpdate(ctx, requestID)
		if err != nil {
			return notFound(err, "pending domain request")
		}
		if !req.IsPending() {
			return fmt.Errorf("%w: request %s is already %s", ErrInvalidState, req.ID, req.Status)
		}

		at = e.now()
		orgDef := models.OrganizationDefaults{
			Name:     firstNonEmpty(ov.Name, req.OrganizationName, req.Domain),
			Industry: firstNonEmpty(ov.Industry, req.Industry),
			Website:  firstNonEmpty(ov.Website, req.Website),
			Verified: true,
			Now:      at,
		}
		if req.Kind == models.OrgKindUniversity {
			orgDef.Location = firstNonEmpty(ov.Location, e.cfg.DefaultLocation)
		}
		org, created, err := st.Organizations.FindOrCreateByDomain(ctx, req.Kind, req.Domain, orgDef)
		if err != nil {
			return fmt.Errorf("find or create organization: %w", err)
		}
		if !org.IsVerified {
			if org, err = st.Organizations.MarkVerified(ctx, org.ID, at); err != nil {
				return fmt.Errorf("verify organization: %w", err)
			}
		}

		affDef := e.affiliationDefaults(models.AffiliationDefaults{}, ov.EnrollmentDate, ov.RoleInCompany)
		submitterVerified, err := st.Users.SetVerified(ctx, req.SubmittedBy)
		if err != nil {
			return fmt.Errorf("verify submitter: %w", err)
		}
		if _, _, err := st.Affiliations.FindOrCreate(ctx, req.SubmittedBy, org, affDef); err != nil {
			return fmt.Errorf("link submitter: %w", err)
		}

		cascaded, err := st.Users.VerifyByDomain(ctx, req.Kind.TargetRole(), req.Domain)
		if err != nil {
			return fmt.Errorf("cascade verification: %w", err)
		}
		if _, err := st.Affiliations.CreateMissing(ctx, cascaded, org, affDef); err != nil {
			return fmt.Errorf("link cascaded users: %w", err)
		}
		if req.Kind == models.OrgKindCompany {
			ids := append([]uuid.UUID{req.SubmittedBy}, cascaded...)
			if err := st.Profiles.MarkCompaniesVerified(ctx, ids); err != nil {
				return fmt.Errorf("verify company profiles: %w", err)
			}
		}

		if err := st.PendingDomains.MarkApproved(ctx, req.ID, actor, at); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return fmt.Errorf("%w: request %s is no longer pending", ErrInvalidState, req.ID)
			}
			return fmt.Errorf("mark approved: %w", err)
		}

		res = &ApprovalResult{
			RequestID:           req.ID,
			Organization:        org,
			OrganizationCreated: created,
			SubmitterVerified:   submitterVerified,
			VerifiedCount:       len(cascaded),
			VerifiedUserIDs:     cascaded,
		}
		return nil
	})
	if err != nil {
		e.logger.Warn("domain approval failed", zap.String("request_id", requestID.String()), zap.Error(err))
		return nil, err
	}

	e.metrics.ObserveApproval(string(req.Kind), res.VerifiedCount, start)
	e.logger.Info("domain approved",
		zap.String("request_id", req.ID.String()),
		zap.String("kind", string(req.Kind)),
		zap.String("domain", req.Domain),
		zap.Bool("organization_created", res.OrganizationCreated),
		zap.Bool("submitter_verified", res.SubmitterVerified),
		zap.Int("verified_count", res.VerifiedCount),
		zap.String("actor", actor.String()),
	)
	if e.publisher != nil {
		ev := DomainApproved{
			RequestID:        req.ID,
			Kind:             req.Kind,
			Domain:           req.Domain,
			OrganizationID:   res.Organization.ID,
			OrganizationName: res.Organization.Name,
			SubmittedBy:      req.SubmittedBy,
			ApprovedBy:       actor,
			VerifiedUserIDs:  res.VerifiedUserIDs,
			ApprovedAt:       at,
		}
		if err := e.publisher.PublishDomainApproved(ctx, ev); err != nil {
			e.logger.Error("publish domain approved", zap.String("request_id", req.ID.String()), zap.Error(err))
		}
	}
	return res, nil
}

// LoginGate authenticates credentials and applies the role gate. Students need
// the verified flag and an enrollment at a currently verified university;
// company users need the verified flag.
func (e *Engine) LoginGate(ctx context.Context, email, plain string) (*models.User, error) {
	st := e.store.Stores()
	normalized, err := models.NormalizeEmail(email)
	if err != nil {
		password.CheckDummy(plain)
		return nil, e.reject("invalid_credentials", ErrInvalidCredentials)
	}
	u, err := st.Users.GetByEmail(ctx, normalized)
	if errors.Is(err, store.ErrNotFound) {
		password.CheckDummy(plain)
		return nil, e.reject("invalid_credentials", ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !password.Check(plain, u.Password) {
		return nil, e.reject("invalid_credentials", ErrInvalidCredentials)
	}

	if u.Role.RequiresDomainVerification() && !u.IsVerified {
		return nil, e.reject("pending_verification", ErrPendingVerification)
	}
	if u.Role == models.RoleStudent {
		ok, err := st.Affiliations.HasVerifiedAffiliation(ctx, u.ID, models.OrgKindUniversity)
		if err != nil {
			return nil, fmt.Errorf("check enrollment: %w", err)
		}
		if !ok {
			return nil, e.reject("no_active_enrollment", ErrNoActiveEnrollment)
		}
	}
	return u, nil
}

// VerifyUser is the administrative override: it verifies one user without a domain check.
func (e *Engine) VerifyUser(ctx context.Context, actor, userID uuid.UUID) (*models.User, error) {
	var u *models.User
	err := e.store.RunInTx(ctx, func(st store.Stores) error {
		if _, err := st.Users.SetVerified(ctx, userID); err != nil {
			return notFound(err, "user")
		}
		var err error
		u, err = st.Users.GetByID(ctx, userID)
		return notFound(err, "user")
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("user verified by admin", zap.String("user_id", userID.String()), zap.String("actor", actor.String()))
	return u, nil
}

// VerifyOrganization marks one organization verified without touching users.
// Verifying an already verified organization keeps its original verified_at.
func (e *Engine) VerifyOrganization(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	var org *models.Organization
	err := e.store.RunInTx(ctx, func(st store.Stores) error {
		var err error
		org, err = st.Organizations.GetByID(ctx, orgID)
		if err != nil {
			return notFound(err, "organization")
		}
		if org.IsVerified {
			return nil
		}
		if err := st.Locks.LockDomain(ctx, org.Kind, org.Domain); err != nil {
			return err
		}
		org, err = st.Organizations.MarkVerified(ctx, orgID, e.now())
		return notFound(err, "organization")
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("organization verified", zap.String("organization_id", orgID.String()), zap.String("domain", org.Domain))
	return org, nil
}

// DefaultEnrollmentDate is the enrollment date used when none is supplied.
func (e *Engine) DefaultEnrollmentDate() time.Time { return e.cfg.DefaultEnrollmentDate }

func (e *Engine) affiliationDefaults(def models.AffiliationDefaults, enrollment *time.Time, roleInCompany string) models.AffiliationDefaults {
	if enrollment != nil {
		def.EnrollmentDate = *enrollment
	}
	if def.EnrollmentDate.IsZero() {
		def.EnrollmentDate = e.cfg.DefaultEnrollmentDate
	}
	def.RoleInCompany = firstNonEmpty(roleInCompany, def.RoleInCompany, e.cfg.DefaultRoleInCompany)
	return def
}

func (e *Engine) reject(reason string, err error) error {
	e.metrics.IncLoginRejection(reason)
	return err
}

func notFound(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("load %s: %w", what, err)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
