package registration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillproof/backend/internal/models"
	"github.com/skillproof/backend/internal/store"
	"github.com/skillproof/backend/internal/verification"
)

func newWorkflow(t *testing.T) (*Workflow, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	engine := verification.NewEngine(mem, verification.Config{}, nil)
	return NewWorkflow(mem, engine, nil), mem
}

func account(email string) Account {
	return Account{Email: email, Password: "password123", FirstName: "Amina", LastName: "Otieno"}
}

func TestRegisterStudent(t *testing.T) {
	ctx := context.Background()

	t.Run("verified university domain", func(t *testing.T) {
		w, mem := newWorkflow(t)
		_, _, err := mem.Stores().Organizations.FindOrCreateByDomain(ctx, models.OrgKindUniversity, "ku.ac.ke",
			models.OrganizationDefaults{Name: "Kenyatta University", Verified: true, Now: time.Now()})
		require.NoError(t, err)

		res, err := w.Register(ctx, account("A@KU.ac.ke"), &models.StudentProfile{UniversityName: "Kenyatta University"})
		require.NoError(t, err)
		assert.True(t, res.Verified)
		assert.Nil(t, res.PendingRequest)
		assert.Equal(t, "a@ku.ac.ke", res.User.Email)

		p, ok := mem.Profile(res.User.ID)
		require.True(t, ok)
		assert.Equal(t, "ku.ac.ke", p.(*models.StudentProfile).UniversityDomain)
	})

	t.Run("unknown domain is queued", func(t *testing.T) {
		w, _ := newWorkflow(t)
		res, err := w.Register(ctx, account("b@newschool.edu"), &models.StudentProfile{
			UniversityName: "New School", UniversityDomain: "NewSchool.edu",
		})
		require.NoError(t, err)
		assert.False(t, res.Verified)
		require.NotNil(t, res.PendingRequest)
		assert.Equal(t, "newschool.edu", res.PendingRequest.Domain)
		assert.Equal(t, "New School", res.PendingRequest.OrganizationName)
	})

	t.Run("claimed domain must match email", func(t *testing.T) {
		w, mem := newWorkflow(t)
		_, err := w.Register(ctx, account("c@gmail.com"), &models.StudentProfile{
			UniversityName: "KU", UniversityDomain: "ku.ac.ke",
		})
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "university_domain", verr.Field)

		_, err = mem.Stores().Users.GetByEmail(ctx, "c@gmail.com")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	w, _ := newWorkflow(t)
	year := 1800

	tests := []struct {
		name    string
		acct    Account
		profile models.Profile
		field   string
	}{
		{"missing email", Account{Password: "password123", FirstName: "A", LastName: "B"}, &models.MentorProfile{ExpertiseAreas: "go"}, "email"},
		{"short password", Account{Email: "m@x.io", Password: "short", FirstName: "A", LastName: "B"}, &models.MentorProfile{ExpertiseAreas: "go"}, "password"},
		{"mentor without expertise", account("m@x.io"), &models.MentorProfile{}, "expertise_areas"},
		{"graduate without year", account("g@x.io"), &models.GraduateProfile{UniversityName: "KU"}, "graduation_year"},
		{"student with absurd year", account("s@x.io"), &models.StudentProfile{UniversityName: "KU", GraduationYear: &year}, "graduation_year"},
		{"company with bad website", account("c@x.io"), &models.CompanyProfile{CompanyName: "X", Website: "not a url"}, "website"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.Register(ctx, tt.acct, tt.profile)
			require.ErrorIs(t, err, models.ErrValidation)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	w, _ := newWorkflow(t)
	_, err := w.Register(ctx, account("dup@x.io"), &models.MentorProfile{ExpertiseAreas: "go"})
	require.NoError(t, err)

	_, err = w.Register(ctx, account("DUP@x.io"), &models.MentorProfile{ExpertiseAreas: "go"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestRegisterIsAtomic(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("profile insert failed")

	tests := []struct {
		name    string
		op      string
		email   string
		profile models.Profile
	}{
		{"profile failure", store.OpCreateProfile, "p@newschool.edu", &models.StudentProfile{UniversityName: "New School"}},
		{"affiliation failure", store.OpCreateAffiliation, "a@ku.ac.ke", &models.StudentProfile{UniversityName: "KU"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, mem := newWorkflow(t)
			_, _, err := mem.Stores().Organizations.FindOrCreateByDomain(ctx, models.OrgKindUniversity, "ku.ac.ke",
				models.OrganizationDefaults{Name: "KU", Verified: true, Now: time.Now()})
			require.NoError(t, err)

			mem.FailNext(tt.op, boom)
			_, err = w.Register(ctx, account(tt.email), tt.profile)
			require.ErrorIs(t, err, boom)

			_, err = mem.Stores().Users.GetByEmail(ctx, tt.email)
			assert.ErrorIs(t, err, store.ErrNotFound)
			pending, err := mem.Stores().PendingDomains.List(ctx, models.PendingDomainFilter{})
			require.NoError(t, err)
			assert.Empty(t, pending)
		})
	}
}

func TestRegisterCompanyUser(t *testing.T) {
	ctx := context.Background()
	w, mem := newWorkflow(t)

	first, err := w.Register(ctx, account("hr@acme.com"), &models.CompanyProfile{CompanyName: "Acme", Industry: "Retail"})
	require.NoError(t, err)
	second, err := w.Register(ctx, account("ops@acme.com"), &models.CompanyProfile{CompanyName: "Acme"})
	require.NoError(t, err)

	require.NotNil(t, first.PendingRequest)
	require.NotNil(t, second.PendingRequest)
	assert.NotEqual(t, first.PendingRequest.ID, second.PendingRequest.ID)
	assert.Equal(t, "Retail", first.PendingRequest.Industry)
	assert.False(t, first.Verified)

	p, ok := mem.Profile(first.User.ID)
	require.True(t, ok)
	assert.Equal(t, models.CompanyVerificationPending, p.(*models.CompanyProfile).VerificationStatus)
}

func TestRegisterGraduateAndMentor(t *testing.T) {
	ctx := context.Background()
	w, mem := newWorkflow(t)

	grad, err := w.Register(ctx, account("g@gmail.com"), &models.GraduateProfile{UniversityName: "KU", GraduationYear: 2022})
	require.NoError(t, err)
	assert.False(t, grad.Verified)
	assert.Nil(t, grad.PendingRequest)

	_, _, err = mem.Stores().Organizations.FindOrCreateByDomain(ctx, models.OrgKindUniversity, "ku.ac.ke",
		models.OrganizationDefaults{Name: "KU", Verified: true, Now: time.Now()})
	require.NoError(t, err)
	alum, err := w.Register(ctx, account("alum@ku.ac.ke"), &models.GraduateProfile{
		UniversityName: "KU", UniversityDomain: "ku.ac.ke", GraduationYear: 2021,
	})
	require.NoError(t, err)
	assert.True(t, alum.Verified)

	mentor, err := w.Register(ctx, account("mentor@gmail.com"), &models.MentorProfile{ExpertiseAreas: "backend"})
	require.NoError(t, err)
	assert.False(t, mentor.Verified)
	assert.Nil(t, mentor.PendingRequest)
}

func TestCreateSuperuser(t *testing.T) {
	ctx := context.Background()
	w, _ := newWorkflow(t)

	res, err := w.CreateSuperuser(ctx, "root@skillproof.dev", "password123")
	require.NoError(t, err)
	assert.True(t, res.User.IsVerified)
	assert.True(t, res.User.IsStaff)
	assert.Equal(t, models.RoleAdmin, res.User.Role)

	_, err = w.CreateSuperuser(ctx, "root@skillproof.dev", "password123")
	assert.ErrorIs(t, err, ErrEmailTaken)
}
