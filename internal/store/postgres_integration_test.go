//go:build integration

package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/skillproof/backend/internal/models"
	"github.com/skillproof/backend/internal/registration"
	"github.com/skillproof/backend/internal/store"
	"github.com/skillproof/backend/internal/verification"
	"github.com/skillproof/backend/pkg/testutil/containers"
)

const integrationPassword = "password123"

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
	engine   *verification.Engine
	workflow *registration.Workflow
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.Pool)
	s.engine = verification.NewEngine(s.store, verification.Config{}, nil)
	s.workflow = registration.NewWorkflow(s.store, s.engine, nil)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "users", "organizations")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) createUser(email string, role models.Role, verified bool) *models.User {
	u := &models.User{Email: email, Password: "hash", Role: role, IsVerified: verified}
	s.Require().NoError(s.store.Stores().Users.Create(context.Background(), u))
	return u
}

func (s *PostgresStoreSuite) registerStudent(email string) *registration.Result {
	res, err := s.workflow.Register(context.Background(),
		registration.Account{Email: email, Password: integrationPassword, FirstName: "Amina", LastName: "Otieno"},
		&models.StudentProfile{UniversityName: "New School"})
	s.Require().NoError(err)
	return res
}

func (s *PostgresStoreSuite) TestDuplicateEmailIsConflict() {
	s.createUser("a@ku.ac.ke", models.RoleStudent, false)
	err := s.store.Stores().Users.Create(context.Background(),
		&models.User{Email: "a@ku.ac.ke", Password: "hash", Role: models.RoleStudent})
	s.ErrorIs(err, store.ErrConflict)
}

func (s *PostgresStoreSuite) TestVerifyByDomainMatchesExactRoleAndDomain() {
	ctx := context.Background()
	x := s.createUser("x@newschool.edu", models.RoleStudent, false)
	y := s.createUser("y@newschool.edu", models.RoleStudent, false)
	s.createUser("done@newschool.edu", models.RoleStudent, true)
	s.createUser("sub@cs.newschool.edu", models.RoleStudent, false)
	s.createUser("x@oldnewschool.edu", models.RoleStudent, false)
	s.createUser("hr@newschool.edu", models.RoleCompanyUser, false)
	s.createUser("grad@newschool.edu", models.RoleGraduate, false)

	ids, err := s.store.Stores().Users.VerifyByDomain(ctx, models.RoleStudent, "newschool.edu")
	s.Require().NoError(err)
	s.ElementsMatch([]uuid.UUID{x.ID, y.ID}, ids)

	again, err := s.store.Stores().Users.VerifyByDomain(ctx, models.RoleStudent, "newschool.edu")
	s.Require().NoError(err)
	s.Empty(again)

	sub, err := s.store.Stores().Users.GetByEmail(ctx, "sub@cs.newschool.edu")
	s.Require().NoError(err)
	s.False(sub.IsVerified)
}

func (s *PostgresStoreSuite) TestOrganizationFindOrCreateIsIdempotent() {
	ctx := context.Background()
	orgs := s.store.Stores().Organizations
	first, created, err := orgs.FindOrCreateByDomain(ctx, models.OrgKindUniversity, "ku.ac.ke",
		models.OrganizationDefaults{Name: "Kenyatta University", Verified: true, Now: time.Now()})
	s.Require().NoError(err)
	s.True(created)
	s.True(first.IsVerified)

	second, created, err := orgs.FindOrCreateByDomain(ctx, models.OrgKindUniversity, "ku.ac.ke",
		models.OrganizationDefaults{Name: "Other"})
	s.Require().NoError(err)
	s.False(created)
	s.Equal(first.ID, second.ID)
	s.Equal("Kenyatta University", second.Name)

	company, created, err := orgs.FindOrCreateByDomain(ctx, models.OrgKindCompany, "ku.ac.ke",
		models.OrganizationDefaults{Name: "KU Ventures"})
	s.Require().NoError(err)
	s.True(created)
	s.NotEqual(first.ID, company.ID)
}

func (s *PostgresStoreSuite) TestPendingRequestsAreKeyedOnUniversityDomain() {
	ctx := context.Background()
	b := s.createUser("b@newschool.edu", models.RoleStudent, false)
	pending := s.store.Stores().PendingDomains
	def := models.PendingDomainDefaults{OrganizationName: "New School", SubmittedBy: b.ID}

	first, created, err := pending.FindOrCreate(ctx, models.OrgKindUniversity, "newschool.edu", def)
	s.Require().NoError(err)
	s.True(created)
	second, created, err := pending.FindOrCreate(ctx, models.OrgKindUniversity, "newschool.edu", def)
	s.Require().NoError(err)
	s.False(created)
	s.Equal(first.ID, second.ID)

	hr := s.createUser("hr@acme.com", models.RoleCompanyUser, false)
	c1, err := pending.Create(ctx, models.OrgKindCompany, "acme.com", models.PendingDomainDefaults{OrganizationName: "Acme", SubmittedBy: hr.ID})
	s.Require().NoError(err)
	c2, err := pending.Create(ctx, models.OrgKindCompany, "acme.com", models.PendingDomainDefaults{OrganizationName: "Acme", SubmittedBy: hr.ID})
	s.Require().NoError(err)
	s.NotEqual(c1.ID, c2.ID)

	s.Require().NoError(pending.MarkApproved(ctx, first.ID, b.ID, time.Now()))
	s.ErrorIs(pending.MarkApproved(ctx, first.ID, b.ID, time.Now()), store.ErrConflict)
	_, err = pending.Get(ctx, uuid.New())
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *PostgresStoreSuite) TestAffiliationsAreCreatedOnce() {
	ctx := context.Background()
	org, _, err := s.store.Stores().Organizations.FindOrCreateByDomain(ctx, models.OrgKindUniversity, "ku.ac.ke",
		models.OrganizationDefaults{Name: "Kenyatta University", Verified: true, Now: time.Now()})
	s.Require().NoError(err)
	a := s.createUser("a@ku.ac.ke", models.RoleStudent, true)
	b := s.createUser("b@ku.ac.ke", models.RoleStudent, true)
	c := s.createUser("c@ku.ac.ke", models.RoleStudent, true)
	aff := s.store.Stores().Affiliations
	def := models.AffiliationDefaults{EnrollmentDate: time.Date(2025, 1, 1, 15, 0, 0, 0, time.UTC)}

	first, created, err := aff.FindOrCreate(ctx, a.ID, org, def)
	s.Require().NoError(err)
	s.True(created)
	second, created, err := aff.FindOrCreate(ctx, a.ID, org, def)
	s.Require().NoError(err)
	s.False(created)
	s.Equal(first.ID, second.ID)

	n, err := aff.CreateMissing(ctx, []uuid.UUID{a.ID, b.ID, c.ID}, org, def)
	s.Require().NoError(err)
	s.Equal(2, n)
	n, err = aff.CreateMissing(ctx, []uuid.UUID{a.ID, b.ID, c.ID}, org, def)
	s.Require().NoError(err)
	s.Zero(n)

	list, err := aff.ListByUser(ctx, c.ID)
	s.Require().NoError(err)
	s.Len(list, 1)
	ok, err := aff.HasVerifiedAffiliation(ctx, c.ID, models.OrgKindUniversity)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *PostgresStoreSuite) TestMarkCompaniesVerified() {
	ctx := context.Background()
	hr := s.createUser("hr@acme.com", models.RoleCompanyUser, false)
	other := s.createUser("ops@acme.com", models.RoleCompanyUser, false)
	profiles := s.store.Stores().Profiles
	for _, u := range []*models.User{hr, other} {
		s.Require().NoError(profiles.Create(ctx, &models.CompanyProfile{
			UserID: u.ID, CompanyName: "Acme", VerificationStatus: models.CompanyVerificationPending,
		}))
	}

	s.Require().NoError(profiles.MarkCompaniesVerified(ctx, []uuid.UUID{hr.ID}))

	status := func(id uuid.UUID) string {
		var v string
		s.Require().NoError(s.postgres.Pool.QueryRow(ctx,
			`SELECT verification_status FROM company_profiles WHERE user_id = $1`, id).Scan(&v))
		return v
	}
	s.Equal(string(models.CompanyVerificationVerified), status(hr.ID))
	s.Equal(string(models.CompanyVerificationPending), status(other.ID))
}

func (s *PostgresStoreSuite) TestRunInTxRollsBack() {
	ctx := context.Background()
	boom := errors.New("boom")
	err := s.store.RunInTx(ctx, func(st store.Stores) error {
		u := &models.User{Email: "orphan@ku.ac.ke", Password: "hash", Role: models.RoleStudent}
		if err := st.Users.Create(ctx, u); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)
	_, err = s.store.Stores().Users.GetByEmail(ctx, "orphan@ku.ac.ke")
	s.ErrorIs(err, store.ErrNotFound)
}

// TestConcurrentApprovalsApplyOnce verifies that concurrent approvals of one
// request result in exactly one success and one cascade.
func (s *PostgresStoreSuite) TestConcurrentApprovalsApplyOnce() {
	ctx := context.Background()
	admin := s.createUser("root@skillproof.dev", models.RoleAdmin, true)
	res := s.registerStudent("b@newschool.edu")
	s.Require().NotNil(res.PendingRequest)
	s.registerStudent("x@newschool.edu")
	s.registerStudent("y@newschool.edu")

	const approvers = 10
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		invalid   atomic.Int32
		counted   atomic.Int32
	)
	for i := 0; i < approvers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := s.engine.ApprovePendingDomain(ctx, res.PendingRequest.ID, admin.ID, verification.ApprovalOverrides{})
			switch {
			case err == nil:
				successes.Add(1)
				counted.Add(int32(out.VerifiedCount))
			case errors.Is(err, verification.ErrInvalidState):
				invalid.Add(1)
			default:
				s.T().Errorf("unexpected approval error: %v", err)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(approvers-1), invalid.Load())
	s.Equal(int32(2), counted.Load())

	for _, email := range []string{"b@newschool.edu", "x@newschool.edu", "y@newschool.edu"} {
		_, err := s.engine.LoginGate(ctx, email, integrationPassword)
		s.NoError(err, email)
	}
}

// TestRegistrationRacingApprovalIsNeverMissed verifies that a student who
// registers while their domain is being approved ends up verified, either by
// the cascade or by their own registration.
func (s *PostgresStoreSuite) TestRegistrationRacingApprovalIsNeverMissed() {
	ctx := context.Background()
	admin := s.createUser("root@skillproof.dev", models.RoleAdmin, true)

	const rounds = 20
	for i := 0; i < rounds; i++ {
		domain := fmt.Sprintf("race%d.edu", i)
		res := s.registerStudent("first@" + domain)
		s.Require().NotNil(res.PendingRequest)

		late := "late@" + domain
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.engine.ApprovePendingDomain(ctx, res.PendingRequest.ID, admin.ID, verification.ApprovalOverrides{})
			s.NoError(err)
		}()
		go func() {
			defer wg.Done()
			_, err := s.workflow.Register(ctx,
				registration.Account{Email: late, Password: integrationPassword, FirstName: "Late", LastName: "Comer"},
				&models.StudentProfile{UniversityName: "Race"})
			s.NoError(err)
		}()
		wg.Wait()

		_, err := s.engine.LoginGate(ctx, late, integrationPassword)
		s.NoError(err, late)
	}
}
