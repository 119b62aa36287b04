package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skillproof/backend/internal/models"
)

// Operations that Memory.FailNext can make fail once.
const (
	OpCreateUser        = "users.create"
	OpVerifyByDomain    = "users.verify_by_domain"
	OpCreateProfile     = "profiles.create"
	OpCreateAffiliation = "affiliations.create"
	OpMarkApproved      = "pending.mark_approved"
)

var _ Store = (*Memory)(nil)

// Memory is an in-process Store. Transactions hold a single lock for their
// whole duration and restore a snapshot when fn fails.
type Memory struct {
	mu   sync.Mutex
	data *memData
	fail map[string]error
}

type memData struct {
	users        map[uuid.UUID]models.User
	emails       map[string]uuid.UUID
	orgs         map[uuid.UUID]models.Organization
	requests     map[uuid.UUID]models.PendingDomainRequest
	requestOrder []uuid.UUID
	affiliations map[uuid.UUID]models.Affiliation
	profiles     map[uuid.UUID]models.Profile
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data: &memData{
			users:        make(map[uuid.UUID]models.User),
			emails:       make(map[string]uuid.UUID),
			orgs:         make(map[uuid.UUID]models.Organization),
			requests:     make(map[uuid.UUID]models.PendingDomainRequest),
			affiliations: make(map[uuid.UUID]models.Affiliation),
			profiles:     make(map[uuid.UUID]models.Profile),
		},
		fail: make(map[string]error),
	}
}

// FailNext makes the next call of op return err.
func (m *Memory) FailNext(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[op] = err
}

// Stores returns ports whose calls each lock and apply immediately.
func (m *Memory) Stores() Stores {
	return m.bind(memView{m: m})
}

// RunInTx runs fn with the store locked; an error or panic restores the prior state.
func (m *Memory) RunInTx(ctx context.Context, fn func(st Stores) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := m.data.clone()
	defer func() {
		if p := recover(); p != nil {
			m.data = snapshot
			panic(p)
		}
	}()
	if err := fn(m.bind(memView{m: m, inTx: true})); err != nil {
		m.data = snapshot
		return err
	}
	if err := ctx.Err(); err != nil {
		m.data = snapshot
		return fmt.Errorf("transaction aborted: %w", err)
	}
	return nil
}

func (m *Memory) bind(v memView) Stores {
	return Stores{
		Users:          memUsers{v},
		Organizations:  memOrganizations{v},
		PendingDomains: memPendingDomains{v},
		Affiliations:   memAffiliations{v},
		Profiles:       memProfiles{v},
		Locks:          memLocker{},
	}
}

func (d *memData) clone() *memData {
	c := &memData{
		users:        make(map[uuid.UUID]models.User, len(d.users)),
		emails:       make(map[string]uuid.UUID, len(d.emails)),
		orgs:         make(map[uuid.UUID]models.Organization, len(d.orgs)),
		requests:     make(map[uuid.UUID]models.PendingDomainRequest, len(d.requests)),
		requestOrder: append([]uuid.UUID(nil), d.requestOrder...),
		affiliations: make(map[uuid.UUID]models.Affiliation, len(d.affiliations)),
		profiles:     make(map[uuid.UUID]models.Profile, len(d.profiles)),
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.emails {
		c.emails[k] = v
	}
	for k, v := range d.orgs {
		c.orgs[k] = v
	}
	for k, v := range d.requests {
		c.requests[k] = v
	}
	for k, v := range d.affiliations {
		c.affiliations[k] = v
	}
	for k, v := range d.profiles {
		c.profiles[k] = v
	}
	return c
}

type memView struct {
	m    *Memory
	inTx bool
}

func (v memView) do(op string, fn func(d *memData) error) error {
	if !v.inTx {
		v.m.mu.Lock()
		defer v.m.mu.Unlock()
	}
	if op != "" {
		if err, ok := v.m.fail[op]; ok {
			delete(v.m.fail, op)
			return err
		}
	}
	return fn(v.m.data)
}

func now() time.Time { return time.Now().UTC() }

// memLocker is a no-op: a memory transaction already excludes every other writer.
type memLocker struct{}

func (memLocker) LockDomain(context.Context, models.OrgKind, string) error { return nil }

type memUsers struct{ v memView }

func (s memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	var out *models.User
	err := s.v.do("", func(d *memData) error {
		u, ok := d.users[id]
		if !ok {
			return ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (s memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	var out *models.User
	err := s.v.do("", func(d *memData) error {
		id, ok := d.emails[email]
		if !ok {
			return ErrNotFound
		}
		u := d.users[id]
		out = &u
		return nil
	})
	return out, err
}

func (s memUsers) Create(_ context.Context, u *models.User) error {
	return s.v.do(OpCreateUser, func(d *memData) error {
		if _, taken := d.emails[u.Email]; taken {
			return fmt.Errorf("%w: email %s", ErrConflict, u.Email)
		}
		u.ID = uuid.New()
		u.CreatedAt = now()
		u.UpdatedAt = u.CreatedAt
		d.users[u.ID] = *u
		d.emails[u.Email] = u.ID
		return nil
	})
}

func (s memUsers) SetVerified(_ context.Context, id uuid.UUID) (bool, error) {
	changed := false
	err := s.v.do("", func(d *memData) error {
		u, ok := d.users[id]
		if !ok {
			return ErrNotFound
		}
		if u.IsVerified {
			return nil
		}
		u.IsVerified = true
		u.UpdatedAt = now()
		d.users[id] = u
		changed = true
		return nil
	})
	return changed, err
}

func (s memUsers) VerifyByDomain(_ context.Context, role models.Role, domain string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.v.do(OpVerifyByDomain, func(d *memData) error {
		for id, u := range d.users {
			if u.Role != role || u.IsVerified || !models.HasDomain(u.Email, domain) {
				continue
			}
			u.IsVerified = true
			u.UpdatedAt = now()
			d.users[id] = u
			ids = append(ids, id)
		}
		return nil
	})
	return ids, err
}

func (s memUsers) List(_ context.Context) ([]models.UserPublic, error) {
	var list []models.UserPublic
	err := s.v.do("", func(d *memData) error {
		for _, u := range d.users {
			list = append(list, u.ToPublic())
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Email < list[j].Email })
	return list, err
}

type memOrganizations struct{ v memView }

func (s memOrganizations) GetByID(_ context.Context, id uuid.UUID) (*models.Organization, error) {
	var out *models.Organization
	err := s.v.do("", func(d *memData) error {
		o, ok := d.orgs[id]
		if !ok {
			return ErrNotFound
		}
		out = &o
		return nil
	})
	return out, err
}

func findOrg(d *memData, kind models.OrgKind, domain string) (models.Organization, bool) {
	for _, o := range d.orgs {
		if o.Kind == kind && o.Domain == domain {
			return o, true
		}
	}
	return models.Organization{}, false
}

func (s memOrganizations) FindByDomain(_ context.Context, kind models.OrgKind, domain string) (*models.Organization, error) {
	var out *models.Organization
	err := s.v.do("", func(d *memData) error {
		o, ok := findOrg(d, kind, domain)
		if !ok {
			return ErrNotFound
		}
		out = &o
		return nil
	})
	return out, err
}

func (s memOrganizations) FindOrCreateByDomain(_ context.Context, kind models.OrgKind, domain string, def models.OrganizationDefaults) (*models.Organization, bool, error) {
	var out *models.Organization
	created := false
	err := s.v.do("", func(d *memData) error {
		if o, ok := findOrg(d, kind, domain); ok {
			out = &o
			return nil
		}
		o := models.Organization{
			ID:         uuid.New(),
			Kind:       kind,
			Domain:     domain,
			Name:       def.Name,
			Location:   def.Location,
			Industry:   def.Industry,
			Website:    def.Website,
			IsVerified: def.Verified,
			CreatedAt:  now(),
		}
		if def.Verified {
			at := def.Now
			o.VerifiedAt = &at
		}
		o.UpdatedAt = o.CreatedAt
		d.orgs[o.ID] = o
		out = &o
		created = true
		return nil
	})
	return out, created, err
}

func (s memOrganizations) MarkVerified(_ context.Context, id uuid.UUID, at time.Time) (*models.Organization, error) {
	var out *models.Organization
	err := s.v.do("", func(d *memData) error {
		o, ok := d.orgs[id]
		if !ok {
			return ErrNotFound
		}
		o.IsVerified = true
		o.VerifiedAt = &at
		o.UpdatedAt = now()
		d.orgs[id] = o
		out = &o
		return nil
	})
	return out, err
}

func (s memOrganizations) List(_ context.Context, kind models.OrgKind) ([]*models.Organization, error) {
	var list []*models.Organization
	err := s.v.do("", func(d *memData) error {
		for _, o := range d.orgs {
			if kind != "" && o.Kind != kind {
				continue
			}
			o := o
			list = append(list, &o)
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name) })
	return list, err
}

type memPendingDomains struct{ v memView }

func (s memPendingDomains) Get(_ context.Context, id uuid.UUID) (*models.PendingDomainRequest, error) {
	var out *models.PendingDomainRequest
	err := s.v.do("", func(d *memData) error {
		r, ok := d.requests[id]
		if !ok {
			return ErrNotFound
		}
		out = &r
		return nil
	})
	return out, err
}

// GetForUpdate needs no extra locking; see Memory.
func (s memPendingDomains) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.PendingDomainRequest, error) {
	return s.Get(ctx, id)
}

func insertRequest(d *memData, kind models.OrgKind, domain string, def models.PendingDomainDefaults) models.PendingDomainRequest {
	r := models.PendingDomainRequest{
		ID:               uuid.New(),
		Kind:             kind,
		Domain:           domain,
		OrganizationName: def.OrganizationName,
		Industry:         def.Industry,
		Website:          def.Website,
		SubmittedBy:      def.SubmittedBy,
		Status:           models.PendingStatusPending,
		CreatedAt:        now(),
	}
	d.requests[r.ID] = r
	d.requestOrder = append(d.requestOrder, r.ID)
	return r
}

func (s memPendingDomains) FindOrCreate(_ context.Context, kind models.OrgKind, domain string, def models.PendingDomainDefaults) (*models.PendingDomainRequest, bool, error) {
	if kind != models.OrgKindUniversity {
		return nil, false, fmt.Errorf("find-or-create is keyed on university domains, got %s", kind)
	}
	var out *models.PendingDomainRequest
	created := false
	err := s.v.do("", func(d *memData) error {
		for _, id := range d.requestOrder {
			if r := d.requests[id]; r.Kind == kind && r.Domain == domain {
				out = &r
				return nil
			}
		}
		r := insertRequest(d, kind, domain, def)
		out = &r
		created = true
		return nil
	})
	return out, created, err
}

func (s memPendingDomains) Create(_ context.Context, kind models.OrgKind, domain string, def models.PendingDomainDefaults) (*models.PendingDomainRequest, error) {
	var out *models.PendingDomainRequest
	err := s.v.do("", func(d *memData) error {
		r := insertRequest(d, kind, domain, def)
		out = &r
		return nil
	})
	return out, err
}

func (s memPendingDomains) MarkApproved(_ context.Context, id, actor uuid.UUID, at time.Time) error {
	return s.v.do(OpMarkApproved, func(d *memData) error {
		r, ok := d.requests[id]
		if !ok || !r.IsPending() {
			return ErrConflict
		}
		r.Status = models.PendingStatusApproved
		r.ApprovedAt = &at
		r.ApprovedBy = &actor
		d.requests[id] = r
		return nil
	})
}

func (s memPendingDomains) List(_ context.Context, f models.PendingDomainFilter) ([]*models.PendingDomainRequest, error) {
	var list []*models.PendingDomainRequest
	err := s.v.do("", func(d *memData) error {
		for _, id := range d.requestOrder {
			r := d.requests[id]
			if (f.Kind != "" && r.Kind != f.Kind) || (f.Status != "" && r.Status != f.Status) {
				continue
			}
			list = append(list, &r)
		}
		return nil
	})
	return list, err
}

type memAffiliations struct{ v memView }

func newAffiliation(userID uuid.UUID, org *models.Organization, def models.AffiliationDefaults) models.Affiliation {
	a := models.Affiliation{
		ID:             uuid.New(),
		UserID:         userID,
		OrganizationID: org.ID,
		Kind:           org.Kind,
		CreatedAt:      now(),
	}
	if org.Kind == models.OrgKindCompany {
		a.RoleInCompany = def.RoleInCompany
		if a.RoleInCompany == "" {
			a.RoleInCompany = models.DefaultRoleInCompany
		}
		return a
	}
	date := models.DateOnly(def.EnrollmentDate)
	a.EnrollmentDate = &date
	a.GraduationDate = def.GraduationDate
	return a
}

func findAffiliation(d *memData, userID, orgID uuid.UUID) (models.Affiliation, bool) {
	for _, a := range d.affiliations {
		if a.UserID == userID && a.OrganizationID == orgID {
			return a, true
		}
	}
	return models.Affiliation{}, false
}

func (s memAffiliations) FindOrCreate(_ context.Context, userID uuid.UUID, org *models.Organization, def models.AffiliationDefaults) (*models.Affiliation, bool, error) {
	var out *models.Affiliation
	created := false
	err := s.v.do(OpCreateAffiliation, func(d *memData) error {
		if a, ok := findAffiliation(d, userID, org.ID); ok {
			out = &a
			return nil
		}
		a := newAffiliation(userID, org, def)
		d.affiliations[a.ID] = a
		out = &a
		created = true
		return nil
	})
	return out, created, err
}

func (s memAffiliations) CreateMissing(_ context.Context, userIDs []uuid.UUID, org *models.Organization, def models.AffiliationDefaults) (int, error) {
	n := 0
	err := s.v.do(OpCreateAffiliation, func(d *memData) error {
		for _, id := range userIDs {
			if _, ok := findAffiliation(d, id, org.ID); ok {
				continue
			}
			a := newAffiliation(id, org, def)
			d.affiliations[a.ID] = a
			n++
		}
		return nil
	})
	return n, err
}

func (s memAffiliations) HasVerifiedAffiliation(_ context.Context, userID uuid.UUID, kind models.OrgKind) (bool, error) {
	found := false
	err := s.v.do("", func(d *memData) error {
		for _, a := range d.affiliations {
			if a.UserID != userID {
				continue
			}
			if o, ok := d.orgs[a.OrganizationID]; ok && o.Kind == kind && o.IsVerified {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (s memAffiliations) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Affiliation, error) {
	var list []*models.Affiliation
	err := s.v.do("", func(d *memData) error {
		for _, a := range d.affiliations {
			if a.UserID == userID {
				a := a
				list = append(list, &a)
			}
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, err
}

type memProfiles struct{ v memView }

func (s memProfiles) Create(_ context.Context, p models.Profile) error {
	return s.v.do(OpCreateProfile, func(d *memData) error {
		id := profileUserID(p)
		if _, ok := d.users[id]; !ok {
			return fmt.Errorf("insert %s profile: %w", p.Role(), ErrNotFound)
		}
		if _, ok := d.profiles[id]; ok {
			return fmt.Errorf("insert %s profile: %w", p.Role(), ErrConflict)
		}
		d.profiles[id] = copyProfile(p)
		return nil
	})
}

func (s memProfiles) MarkCompaniesVerified(_ context.Context, userIDs []uuid.UUID) error {
	return s.v.do("", func(d *memData) error {
		for _, id := range userIDs {
			cp, ok := d.profiles[id].(*models.CompanyProfile)
			if !ok {
				continue
			}
			updated := *cp
			updated.VerificationStatus = models.CompanyVerificationVerified
			d.profiles[id] = &updated
		}
		return nil
	})
}

func (s memProfiles) Summary(_ context.Context, userID uuid.UUID, role models.Role) (models.ProfileSummary, error) {
	var sum models.ProfileSummary
	err := s.v.do("", func(d *memData) error {
		p, ok := d.profiles[userID]
		if !ok {
			if role == models.RoleMentor || role == models.RoleAdmin {
				return nil
			}
			return ErrNotFound
		}
		switch v := p.(type) {
		case *models.StudentProfile:
			sum = models.ProfileSummary{UniversityName: v.UniversityName, GraduationYear: v.GraduationYear, Skills: v.Skills}
		case *models.GraduateProfile:
			year := v.GraduationYear
			sum = models.ProfileSummary{UniversityName: v.UniversityName, GraduationYear: &year, Skills: v.Skills}
		case *models.CompanyProfile:
			sum = models.ProfileSummary{CompanyName: v.CompanyName}
		}
		return nil
	})
	return sum, err
}

// Profile returns a copy of the stored profile for userID.
func (m *Memory) Profile(userID uuid.UUID) (models.Profile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.data.profiles[userID]
	if !ok {
		return nil, false
	}
	return copyProfile(p), true
}

func profileUserID(p models.Profile) uuid.UUID {
	switch v := p.(type) {
	case *models.StudentProfile:
		return v.UserID
	case *models.GraduateProfile:
		return v.UserID
	case *models.CompanyProfile:
		return v.UserID
	case *models.MentorProfile:
		return v.UserID
	case *models.AdminProfile:
		return v.UserID
	}
	return uuid.Nil
}

func copyProfile(p models.Profile) models.Profile {
	switch v := p.(type) {
	case *models.StudentProfile:
		c := *v
		return &c
	case *models.GraduateProfile:
		c := *v
		return &c
	case *models.CompanyProfile:
		c := *v
		return &c
	case *models.MentorProfile:
		c := *v
		return &c
	case *models.AdminProfile:
		c := *v
		return &c
	}
	return p
}
