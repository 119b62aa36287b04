// Package registration creates an account, its role profile and its domain
// resolution as one unit.
package registration

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/skillproof/backend/internal/metrics"
	"github.com/skillproof/backend/internal/models"
	"github.com/skillproof/backend/internal/store"
	"github.com/skillproof/backend/internal/verification"
	"github.com/skillproof/backend/pkg/password"
)

// ErrEmailTaken is returned when the email already belongs to an account.
var ErrEmailTaken = fmt.Errorf("%w: email already registered", store.ErrConflict)

// Account holds the fields shared by every role.
type Account struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	FirstName   string `json:"first_name" validate:"required,max=150"`
	LastName    string `json:"last_name" validate:"required,max=150"`
	PhoneNumber string `json:"phone_number" validate:"max=20"`
}

// Result is what a registration produced.
type Result struct {
	User           *models.User                 `json:"user"`
	Profile        models.Profile               `json:"profile"`
	Verified       bool                         `json:"verified"`
	PendingRequest *models.PendingDomainRequest `json:"pending_request,omitempty"`
	Message        string                       `json:"message"`
}

// Workflow registers accounts of every role.
type Workflow struct {
	store    store.Store
	engine   *verification.Engine
	validate *validator.Validate
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewWorkflow creates a registration workflow.
func NewWorkflow(st store.Store, engine *verification.Engine, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{store: st, engine: engine, validate: newValidator(), logger: logger}
}

// SetMetrics sets the metrics sink (optional).
func (w *Workflow) SetMetrics(m *metrics.Metrics) { w.metrics = m }

// Register validates acct and profile, then creates the user, the profile and
// either an affiliation or a pending domain request in one transaction.
func (w *Workflow) Register(ctx context.Context, acct Account, profile models.Profile) (*Result, error) {
	if profile == nil {
		return nil, models.NewValidationError("role", "profile is required")
	}
	if err := w.validate.Struct(acct); err != nil {
		return nil, toValidationError(err)
	}
	if err := w.validate.Struct(profile); err != nil {
		return nil, toValidationError(err)
	}
	email, err := models.NormalizeEmail(acct.Email)
	if err != nil {
		return nil, err
	}
	claim, hasClaim, err := claimFor(profile, email)
	if err != nil {
		return nil, err
	}
	hash, err := password.Hash(acct.Password)
	if err != nil {
		return nil, models.NewValidationError("password", err.Error())
	}

	role := profile.Role()
	user := &models.User{
		Email:       email,
		Password:    hash,
		FirstName:   acct.FirstName,
		LastName:    acct.LastName,
		PhoneNumber: acct.PhoneNumber,
		Role:        role,
	}
	if role == models.RoleAdmin {
		user.IsVerified = true
		user.IsStaff = true
	}
	if cp, ok := profile.(*models.CompanyProfile); ok {
		cp.VerificationStatus = models.CompanyVerificationPending
	}

	res := &Result{User: user, Profile: profile}
	err = w.store.RunInTx(ctx, func(st store.Stores) error {
		if err := st.Users.Create(ctx, user); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrEmailTaken
			}
			return fmt.Errorf("create user: %w", err)
		}
		models.SetUserID(profile, user.ID)
		if err := st.Profiles.Create(ctx, profile); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		if !hasClaim {
			return nil
		}
		r, err := w.engine.ResolveDomainAtRegistration(ctx, st, user, claim, models.AffiliationDefaults{})
		if err != nil {
			return err
		}
		res.PendingRequest = r.PendingRequest
		return nil
	})
	if err != nil {
		w.logger.Warn("registration failed", zap.String("role", string(role)), zap.Error(err))
		return nil, err
	}

	res.Verified = user.IsVerified
	res.Message = message(role, res)
	outcome := "exempt"
	switch {
	case res.PendingRequest != nil:
		outcome = "pending"
	case res.Verified:
		outcome = "verified"
	}
	w.metrics.IncRegistration(string(role), outcome)
	w.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(role)),
		zap.String("outcome", outcome),
	)
	return res, nil
}

// CreateSuperuser creates a verified staff admin, bypassing domain checks.
func (w *Workflow) CreateSuperuser(ctx context.Context, email, plain string) (*Result, error) {
	return w.Register(ctx, Account{
		Email:     email,
		Password:  plain,
		FirstName: "Super",
		LastName:  "User",
	}, &models.AdminProfile{})
}

// claimFor extracts and checks the organization a profile claims. Student and
// company domains default to the email domain; a graduate domain is optional.
// A claimed domain must equal the email domain.
func claimFor(profile models.Profile, email string) (models.OrganizationClaim, bool, error) {
	p, ok := profile.(models.HasOrganizationAffiliation)
	if !ok {
		return models.OrganizationClaim{}, false, nil
	}
	claim := p.OrganizationClaim()
	field := "university_domain"
	if claim.Kind == models.OrgKindCompany {
		field = "company_domain"
	}
	if claim.Domain == "" {
		if !profile.Role().RequiresDomainVerification() {
			return models.OrganizationClaim{}, false, nil
		}
		claim.Domain = models.DomainOf(email)
	}
	domain, err := models.NormalizeDomain(claim.Domain)
	if err != nil {
		return models.OrganizationClaim{}, false, models.NewValidationError(field, "must be a valid domain name")
	}
	if !models.HasDomain(email, domain) {
		return models.OrganizationClaim{}, false, models.NewValidationError(field, "must match the email domain")
	}
	claim.Domain = domain
	switch v := profile.(type) {
	case *models.StudentProfile:
		v.UniversityDomain = domain
	case *models.GraduateProfile:
		v.UniversityDomain = domain
	case *models.CompanyProfile:
		v.CompanyDomain = domain
	}
	return claim, true, nil
}

func message(role models.Role, res *Result) string {
	switch {
	case res.PendingRequest != nil && role == models.RoleCompanyUser:
		return "Registration successful. Your company domain is awaiting administrator verification."
	case res.PendingRequest != nil:
		return "Registration successful. Your university domain is awaiting administrator verification."
	case res.Verified && role != models.RoleAdmin:
		return "Registration successful. Your domain is verified."
	}
	return "Registration successful."
}
