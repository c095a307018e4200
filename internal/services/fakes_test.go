package services

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lokercirebon/jobportal/internal/models"
	pgrepo "github.com/lokercirebon/jobportal/internal/repositories/postgres"
	"github.com/lokercirebon/jobportal/internal/utils"
)

// store is an in-memory stand-in for the postgres schema, including the
// unique constraints the services rely on.
type store struct {
	mu sync.Mutex

	users         map[string]models.User
	jobseekers    map[string]models.Jobseeker
	companies     map[string]models.Company
	recruiters    map[string]models.Recruiter
	jobs          map[string]models.Job
	applications  map[string]models.Application
	interviews    map[string]models.Interview
	participants  map[string]models.InterviewParticipant
	registrations map[string]models.ContractRegistration
	workers       map[string]models.ContractWorker
	resignations  map[string]models.Resignation
	audit         []models.AuditLog
}

func newStore() *store {
	return &store{
		users:         map[string]models.User{},
		jobseekers:    map[string]models.Jobseeker{},
		companies:     map[string]models.Company{},
		recruiters:    map[string]models.Recruiter{},
		jobs:          map[string]models.Job{},
		applications:  map[string]models.Application{},
		interviews:    map[string]models.Interview{},
		participants:  map[string]models.InterviewParticipant{},
		registrations: map[string]models.ContractRegistration{},
		workers:       map[string]models.ContractWorker{},
		resignations:  map[string]models.Resignation{},
	}
}

func (s *store) snapshot() *store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &store{
		users:         maps.Clone(s.users),
		jobseekers:    maps.Clone(s.jobseekers),
		companies:     maps.Clone(s.companies),
		recruiters:    maps.Clone(s.recruiters),
		jobs:          maps.Clone(s.jobs),
		applications:  maps.Clone(s.applications),
		interviews:    maps.Clone(s.interviews),
		participants:  maps.Clone(s.participants),
		registrations: maps.Clone(s.registrations),
		workers:       maps.Clone(s.workers),
		resignations:  maps.Clone(s.resignations),
		audit:         append([]models.AuditLog(nil), s.audit...),
	}
}

func (s *store) restore(snap *store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.jobseekers = snap.jobseekers
	s.companies = snap.companies
	s.recruiters = snap.recruiters
	s.jobs = snap.jobs
	s.applications = snap.applications
	s.interviews = snap.interviews
	s.participants = snap.participants
	s.registrations = snap.registrations
	s.workers = snap.workers
	s.resignations = snap.resignations
	s.audit = snap.audit
}

func (s *store) repos() Repos {
	return Repos{
		Users:        fakeUsers{s},
		Jobseekers:   fakeJobseekers{s},
		Companies:    fakeCompanies{s},
		Recruiters:   fakeRecruiters{s},
		Jobs:         fakeJobs{s},
		Applications: fakeApplications{s},
		Interviews:   fakeInterviews{s},
		Contracts:    fakeContracts{s},
		Resignations: fakeResignations{s},
		Audit:        fakeAudit{s},
	}
}

// fakeTx serialises transactions and rolls the store back when fn fails.
type fakeTx struct {
	mu sync.Mutex
	st *store
}

type fakeTxKey struct{}

func (f *fakeTx) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return f.within(ctx, fn)
}

func (f *fakeTx) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return f.within(ctx, fn)
}

func (f *fakeTx) within(ctx context.Context, fn func(context.Context) error) error {
	if ctx.Value(fakeTxKey{}) != nil {
		return fn(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := f.st.snapshot()
	if err := fn(context.WithValue(ctx, fakeTxKey{}, true)); err != nil {
		f.st.restore(snap)
		return err
	}
	return nil
}

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stubClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []models.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, item models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, item)
}

func (n *recordingNotifier) count(typ models.NotificationType) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, it := range n.items {
		if it.Type == typ {
			c++
		}
	}
	return c
}

// ---- users ----

type fakeUsers struct{ s *store }

func (f fakeUsers) Create(_ context.Context, u *models.User) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, x := range f.s.users {
		if x.Email == u.Email {
			return utils.ErrDuplicate
		}
	}
	f.s.users[u.ID] = *u
	return nil
}

func (f fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &u, nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range f.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f fakeUsers) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return utils.ErrNotFound
	}
	u.LastLoginAt = &at
	f.s.users[id] = u
	return nil
}

func (f fakeUsers) UpdateStatus(_ context.Context, id string, status models.AccountStatus, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return utils.ErrNotFound
	}
	u.Status = status
	u.UpdatedAt = at
	f.s.users[id] = u
	return nil
}

func (f fakeUsers) CountByRole(context.Context) (map[models.UserRole]int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := map[models.UserRole]int64{}
	for _, u := range f.s.users {
		out[u.Role]++
	}
	return out, nil
}

// ---- jobseekers ----

type fakeJobseekers struct{ s *store }

func (f fakeJobseekers) Create(_ context.Context, j *models.Jobseeker) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.jobseekers[j.ID] = *j
	return nil
}

func (f fakeJobseekers) GetByID(_ context.Context, id string) (*models.Jobseeker, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	j, ok := f.s.jobseekers[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &j, nil
}

func (f fakeJobseekers) GetByUserID(_ context.Context, userID string) (*models.Jobseeker, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, j := range f.s.jobseekers {
		if j.UserID == userID {
			return &j, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f fakeJobseekers) LockByID(ctx context.Context, id string) (*models.Jobseeker, error) {
	return f.GetByID(ctx, id)
}

func (f fakeJobseekers) UpdateProfile(_ context.Context, j *models.Jobseeker) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cur, ok := f.s.jobseekers[j.ID]
	if !ok {
		return utils.ErrNotFound
	}
	next := *j
	next.IsEmployed, next.IsLookingForJob = cur.IsEmployed, cur.IsLookingForJob
	next.EmployedAt, next.EmployedCompany = cur.EmployedAt, cur.EmployedCompany
	f.s.jobseekers[j.ID] = next
	return nil
}

func (f fakeJobseekers) SetEmployment(_ context.Context, id string, e models.Employment, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	j, ok := f.s.jobseekers[id]
	if !ok {
		return nil
	}
	j.IsEmployed = e.IsEmployed
	j.IsLookingForJob = e.IsLookingForJob
	j.EmployedAt = e.EmployedAt
	j.EmployedCompany = e.EmployedCompany
	j.UpdatedAt = at
	f.s.jobseekers[id] = j
	return nil
}

func (f fakeJobseekers) Count(context.Context) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return int64(len(f.s.jobseekers)), nil
}

func (f fakeJobseekers) summaries() []pgrepo.JobseekerSummary {
	var out []pgrepo.JobseekerSummary
	for _, js := range f.s.jobseekers {
		u := f.s.users[js.UserID]
		sum := pgrepo.JobseekerSummary{
			ID: js.ID, UserID: js.UserID, FirstName: js.FirstName, LastName: js.LastName,
			Email: u.Email, Phone: js.Phone, City: js.City,
			IsEmployed: js.IsEmployed, EmployedCompany: js.EmployedCompany, JoinedAt: u.CreatedAt,
		}
		for _, a := range f.s.applications {
			if a.JobseekerID != js.ID {
				continue
			}
			sum.TotalApplications++
			switch {
			case a.Status == models.AppAccepted:
				sum.AcceptedCount++
			case a.Status == models.AppRejected:
				sum.RejectedCount++
			case a.Status.PreTerminal():
				sum.PendingCount++
			}
			if applied := a.AppliedAt; sum.LastAppliedAt == nil || applied.After(*sum.LastAppliedAt) {
				sum.LastAppliedAt = &applied
			}
		}
		switch {
		case sum.IsEmployed:
			sum.State = models.SeekerEmployed
		case sum.RejectedCount > 0 && sum.PendingCount == 0:
			sum.State = models.SeekerRejected
		default:
			sum.State = models.SeekerActive
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f fakeJobseekers) ListSummaries(_ context.Context, fl pgrepo.JobseekerFilter) ([]pgrepo.JobseekerSummary, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []pgrepo.JobseekerSummary
	for _, sum := range f.summaries() {
		if fl.State != "" && sum.State != fl.State {
			continue
		}
		if fl.Search != "" && !strings.Contains(strings.ToLower(sum.FirstName+" "+sum.LastName+" "+sum.Email), strings.ToLower(fl.Search)) {
			continue
		}
		out = append(out, sum)
	}
	return page(out, fl.Limit, fl.Offset), int64(len(out)), nil
}

func (f fakeJobseekers) CountByState(context.Context) (pgrepo.SeekerStateCounts, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out pgrepo.SeekerStateCounts
	for _, sum := range f.summaries() {
		out.Total++
		switch sum.State {
		case models.SeekerEmployed:
			out.Employed++
		case models.SeekerRejected:
			out.Rejected++
		default:
			out.Active++
		}
	}
	return out, nil
}

// ---- companies ----

type fakeCompanies struct{ s *store }

func (f fakeCompanies) Create(_ context.Context, c *models.Company) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, x := range f.s.companies {
		if x.Slug == c.Slug {
			return utils.ErrDuplicate
		}
	}
	f.s.companies[c.ID] = *c
	return nil
}

func (f fakeCompanies) GetByID(_ context.Context, id string) (*models.Company, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.s.companies[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &c, nil
}

func (f fakeCompanies) GetBySlug(_ context.Context, slug string) (*models.Company, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, c := range f.s.companies {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f fakeCompanies) LockByID(ctx context.Context, id string) (*models.Company, error) {
	return f.GetByID(ctx, id)
}

func (f fakeCompanies) Update(_ context.Context, c *models.Company) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.companies[c.ID] = *c
	return nil
}

func (f fakeCompanies) List(_ context.Context, fl pgrepo.CompanyFilter) ([]models.Company, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.Company
	for _, c := range f.s.companies {
		if fl.Status != "" && c.Status != fl.Status {
			continue
		}
		if fl.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(fl.Search)) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, fl.Limit, fl.Offset), int64(len(out)), nil
}

func (f fakeCompanies) CountByStatus(context.Context) (map[models.CompanyStatus]int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := map[models.CompanyStatus]int64{}
	for _, c := range f.s.companies {
		out[c.Status]++
	}
	return out, nil
}

func page[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}

// ---- recruiters ----

type fakeRecruiters struct{ s *store }

func (f fakeRecruiters) Create(_ context.Context, rec *models.Recruiter) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, x := range f.s.recruiters {
		if x.UserID == rec.UserID {
			return utils.ErrDuplicate
		}
	}
	r := *rec
	r.Company = nil
	f.s.recruiters[rec.ID] = r
	return nil
}

func (f fakeRecruiters) withCompany(r models.Recruiter) *models.Recruiter {
	if c, ok := f.s.companies[r.CompanyID]; ok {
		r.Company = &c
	}
	return &r
}

func (f fakeRecruiters) GetByID(_ context.Context, id string) (*models.Recruiter, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	r, ok := f.s.recruiters[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return f.withCompany(r), nil
}

func (f fakeRecruiters) GetByUserID(_ context.Context, userID string) (*models.Recruiter, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, r := range f.s.recruiters {
		if r.UserID == userID {
			return f.withCompany(r), nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f fakeRecruiters) SetVerified(_ context.Context, id string, verified bool, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	r, ok := f.s.recruiters[id]
	if !ok {
		return utils.ErrNotFound
	}
	r.IsVerified = verified
	r.UpdatedAt = at
	f.s.recruiters[id] = r
	return nil
}

func (f fakeRecruiters) ListByCompany(_ context.Context, companyID string) ([]models.Recruiter, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.Recruiter
	for _, r := range f.s.recruiters {
		if r.CompanyID == companyID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f fakeRecruiters) Count(context.Context) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return int64(len(f.s.recruiters)), nil
}

// ---- jobs ----

type fakeJobs struct{ s *store }

func (f fakeJobs) Create(_ context.Context, j *models.Job) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, x := range f.s.jobs {
		if x.Slug == j.Slug {
			return utils.ErrDuplicate
		}
	}
	v := *j
	v.Company = nil
	f.s.jobs[j.ID] = v
	return nil
}

func (f fakeJobs) withCompany(j models.Job) *models.Job {
	if c, ok := f.s.companies[j.CompanyID]; ok {
		j.Company = &c
	}
	return &j
}

func (f fakeJobs) GetByID(_ context.Context, id string) (*models.Job, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	j, ok := f.s.jobs[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return f.withCompany(j), nil
}

func (f fakeJobs) GetBySlug(_ context.Context, slug string) (*models.Job, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, j := range f.s.jobs {
		if j.Slug == slug {
			return f.withCompany(j), nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f fakeJobs) LockByID(_ context.Context, id string) (*models.Job, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	j, ok := f.s.jobs[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &j, nil
}

func (f fakeJobs) Update(_ context.Context, j *models.Job) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	v := *j
	v.Company = nil
	f.s.jobs[j.ID] = v
	return nil
}

func (f fakeJobs) Delete(_ context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.jobs[id]; !ok {
		return utils.ErrNotFound
	}
	delete(f.s.jobs, id)
	for aid, a := range f.s.applications {
		if a.JobID == id {
			delete(f.s.applications, aid)
		}
	}
	return nil
}

func (f fakeJobs) filter(fl pgrepo.JobFilter, keep func(models.Job) bool) ([]models.Job, int64) {
	var out []models.Job
	for _, j := range f.s.jobs {
		if fl.CompanyID != "" && j.CompanyID != fl.CompanyID {
			continue
		}
		if fl.Status != "" && j.Status != fl.Status {
			continue
		}
		if fl.Search != "" && !strings.Contains(strings.ToLower(j.Title), strings.ToLower(fl.Search)) {
			continue
		}
		if keep != nil && !keep(j) {
			continue
		}
		out = append(out, *f.withCompany(j))
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return page(out, fl.Limit, fl.Offset), int64(len(out))
}

func (f fakeJobs) ListPublic(_ context.Context, fl pgrepo.JobFilter, now time.Time) ([]models.Job, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out, total := f.filter(fl, func(j models.Job) bool { return j.Visible(now) })
	return out, total, nil
}

func (f fakeJobs) List(_ context.Context, fl pgrepo.JobFilter) ([]models.Job, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out, total := f.filter(fl, nil)
	return out, total, nil
}

func (f fakeJobs) CountApplications(_ context.Context, ids []string) (map[string]int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := map[string]int64{}
	for _, a := range f.s.applications {
		for _, id := range ids {
			if a.JobID == id {
				out[id]++
			}
		}
	}
	return out, nil
}

func (f fakeJobs) Categories(_ context.Context, now time.Time) ([]pgrepo.CategoryCount, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	counts := map[string]int64{}
	for _, j := range f.s.jobs {
		if j.Visible(now) && j.Category != "" {
			counts[j.Category]++
		}
	}
	var out []pgrepo.CategoryCount
	for c, n := range counts {
		out = append(out, pgrepo.CategoryCount{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

func (f fakeJobs) TopCompanies(_ context.Context, now time.Time, limit int) ([]pgrepo.CompanyJobCount, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	counts := map[string]int64{}
	for _, j := range f.s.jobs {
		if j.Visible(now) {
			counts[j.CompanyID]++
		}
	}
	var out []pgrepo.CompanyJobCount
	for id, n := range counts {
		out = append(out, pgrepo.CompanyJobCount{CompanyID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].CompanyID < out[j].CompanyID
	})
	return page(out, limit, 0), nil
}

func (f fakeJobs) CountByStatus(context.Context) (map[models.JobStatus]int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := map[models.JobStatus]int64{}
	for _, j := range f.s.jobs {
		out[j.Status]++
	}
	return out, nil
}

func (f fakeJobs) MonthlyPostings(_ context.Context, since time.Time) ([]pgrepo.MonthlyCount, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	counts := map[string]int64{}
	for _, j := range f.s.jobs {
		if !j.CreatedAt.Before(since) {
			counts[j.CreatedAt.UTC().Format("2006-01")]++
		}
	}
	var out []pgrepo.MonthlyCount
	for m, n := range counts {
		out = append(out, pgrepo.MonthlyCount{Month: m, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (f fakeJobs) LockOverdueActive(_ context.Context, now time.Time, limit int) ([]models.Job, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.Job
	for _, j := range f.s.jobs {
		if j.Status == models.JobActive && j.Deadline != nil && j.Deadline.Before(now) {
			out = append(out, j)
		}
	}
	return page(out, limit, 0), nil
}

func (f fakeJobs) Expire(_ context.Context, ids []string, now time.Time) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for _, id := range ids {
		j, ok := f.s.jobs[id]
		if !ok || j.Status != models.JobActive {
			continue
		}
		j.Status = models.JobExpired
		j.UpdatedAt = now
		f.s.jobs[id] = j
		n++
	}
	return n, nil
}

// ---- applications ----

type fakeApplications struct{ s *store }

// checkUnique mirrors uq_applications_job_jobseeker and uq_applications_confirmed.
func (f fakeApplications) checkUnique(a models.Application) error {
	for _, x := range f.s.applications {
		if x.ID == a.ID {
			continue
		}
		if x.JobID == a.JobID && x.JobseekerID == a.JobseekerID {
			return utils.ErrDuplicate
		}
		if a.ConfirmedByJobseeker && x.ConfirmedByJobseeker && x.JobseekerID == a.JobseekerID {
			return utils.ErrDuplicate
		}
	}
	return nil
}

func (f fakeApplications) Create(_ context.Context, a *models.Application) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.checkUnique(*a); err != nil {
		return err
	}
	v := *a
	v.Job, v.Jobseeker = nil, nil
	f.s.applications[a.ID] = v
	return nil
}

func (f fakeApplications) GetByID(_ context.Context, id string) (*models.Application, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a, ok := f.s.applications[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	if j, ok := f.s.jobs[a.JobID]; ok {
		a.Job = fakeJobs{f.s}.withCompany(j)
	}
	if js, ok := f.s.jobseekers[a.JobseekerID]; ok {
		a.Jobseeker = &js
	}
	return &a, nil
}

func (f fakeApplications) LockByID(_ context.Context, id string) (*models.Application, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a, ok := f.s.applications[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &a, nil
}

func (f fakeApplications) LockByIDs(_ context.Context, ids []string) ([]models.Application, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.Application
	for _, id := range ids {
		if a, ok := f.s.applications[id]; ok {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeApplications) Update(_ context.Context, a *models.Application) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.checkUnique(*a); err != nil {
		return err
	}
	v := *a
	v.Job, v.Jobseeker = nil, nil
	f.s.applications[a.ID] = v
	return nil
}

func (f fakeApplications) Exists(_ context.Context, jobID, jobseekerID string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, a := range f.s.applications {
		if a.JobID == jobID && a.JobseekerID == jobseekerID {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeApplications) list(keep func(models.Application) bool) []models.Application {
	var out []models.Application
	for _, a := range f.s.applications {
		if !keep(a) {
			continue
		}
		if j, ok := f.s.jobs[a.JobID]; ok {
			a.Job = fakeJobs{f.s}.withCompany(j)
		}
		if js, ok := f.s.jobseekers[a.JobseekerID]; ok {
			a.Jobseeker = &js
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f fakeApplications) ListByJobseeker(_ context.Context, jobseekerID string) ([]models.Application, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.list(func(a models.Application) bool { return a.JobseekerID == jobseekerID }), nil
}

func (f fakeApplications) ListByJob(_ context.Context, jobID string, status models.ApplicationStatus) ([]models.Application, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.list(func(a models.Application) bool {
		return a.JobID == jobID && (status == "" || a.Status == status)
	}), nil
}

func (f fakeApplications) ListAcceptedWithoutContract(_ context.Context, companyID string) ([]models.Application, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.list(func(a models.Application) bool {
		j, ok := f.s.jobs[a.JobID]
		if !ok || j.CompanyID != companyID || a.Status != models.AppAccepted {
			return false
		}
		return !fakeContracts{f.s}.openRegistration(a.ID)
	}), nil
}

func (f fakeApplications) FindConfirmed(_ context.Context, jobseekerID string) (*models.Application, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, a := range f.s.applications {
		if a.JobseekerID == jobseekerID && a.ConfirmedByJobseeker {
			return &a, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f fakeApplications) SetStatus(_ context.Context, ids []string, from []models.ApplicationStatus, to models.ApplicationStatus, now time.Time) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for _, id := range ids {
		a, ok := f.s.applications[id]
		if !ok || (len(from) > 0 && !statusIn(a.Status, from)) {
			continue
		}
		a.Status = to
		a.UpdatedAt = now
		f.s.applications[id] = a
		n++
	}
	return n, nil
}

func (f fakeApplications) LockPreTerminalByJobseeker(_ context.Context, jobseekerID, exceptID string) ([]models.Application, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.Application
	for _, a := range f.s.applications {
		if a.JobseekerID == jobseekerID && a.ID != exceptID && a.Status.PreTerminal() {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeApplications) Resign(_ context.Context, ids []string, now time.Time) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for _, id := range ids {
		a, ok := f.s.applications[id]
		if !ok || a.Status != models.AppAccepted {
			continue
		}
		a.Status = models.AppResigned
		a.ConfirmedByJobseeker = false
		a.UpdatedAt = now
		f.s.applications[id] = a
		n++
	}
	return n, nil
}

func (f fakeApplications) CountByStatus(context.Context) (map[models.ApplicationStatus]int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := map[models.ApplicationStatus]int64{}
	for _, a := range f.s.applications {
		out[a.Status]++
	}
	return out, nil
}

func (f fakeApplications) inCompany(a models.Application, companyID string) bool {
	j, ok := f.s.jobs[a.JobID]
	return ok && j.CompanyID == companyID
}

func (f fakeApplications) CountByStatusForCompany(_ context.Context, companyID string) (map[models.ApplicationStatus]int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := map[models.ApplicationStatus]int64{}
	for _, a := range f.s.applications {
		if f.inCompany(a, companyID) {
			out[a.Status]++
		}
	}
	return out, nil
}

func (f fakeApplications) CountForCompanySince(_ context.Context, companyID string, since time.Time) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for _, a := range f.s.applications {
		if f.inCompany(a, companyID) && !a.AppliedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f fakeApplications) ListRecentForCompany(_ context.Context, companyID string, limit int) ([]models.Application, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := f.list(func(a models.Application) bool { return f.inCompany(a, companyID) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].AppliedAt.After(out[j].AppliedAt) })
	return page(out, limit, 0), nil
}

// ---- interviews ----

type fakeInterviews struct{ s *store }

func (f fakeInterviews) Create(_ context.Context, iv *models.Interview) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	v := *iv
	for _, p := range v.Participants {
		p.Interview, p.Application = nil, nil
		f.s.participants[p.ID] = p
	}
	v.Participants, v.Job = nil, nil
	f.s.interviews[iv.ID] = v
	return nil
}

func (f fakeInterviews) participantsOf(id string, withApp bool) []models.InterviewParticipant {
	var out []models.InterviewParticipant
	for _, p := range f.s.participants {
		if p.InterviewID != id {
			continue
		}
		if withApp {
			if a, ok := f.s.applications[p.ApplicationID]; ok {
				if js, ok := f.s.jobseekers[a.JobseekerID]; ok {
					a.Jobseeker = &js
				}
				p.Application = &a
			}
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f fakeInterviews) GetByID(_ context.Context, id string) (*models.Interview, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	iv, ok := f.s.interviews[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	if j, ok := f.s.jobs[iv.JobID]; ok {
		iv.Job = &j
	}
	iv.Participants = f.participantsOf(id, true)
	return &iv, nil
}

func (f fakeInterviews) LockByID(_ context.Context, id string) (*models.Interview, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	iv, ok := f.s.interviews[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &iv, nil
}

func (f fakeInterviews) Update(_ context.Context, iv *models.Interview) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	v := *iv
	v.Participants, v.Job = nil, nil
	f.s.interviews[iv.ID] = v
	return nil
}

func (f fakeInterviews) ListByCompany(_ context.Context, companyID string, status models.InterviewStatus) ([]models.Interview, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.Interview
	for _, iv := range f.s.interviews {
		j, ok := f.s.jobs[iv.JobID]
		if !ok || j.CompanyID != companyID || (status != "" && iv.Status != status) {
			continue
		}
		iv.Job = &j
		iv.Participants = f.participantsOf(iv.ID, true)
		out = append(out, iv)
	}
	return out, nil
}

func (f fakeInterviews) ActiveParticipantExists(_ context.Context, applicationID string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, p := range f.s.participants {
		if p.ApplicationID != applicationID {
			continue
		}
		if iv, ok := f.s.interviews[p.InterviewID]; ok && iv.Status.Open() {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeInterviews) GetParticipant(_ context.Context, id string) (*models.InterviewParticipant, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.participants[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	if iv, ok := f.s.interviews[p.InterviewID]; ok {
		if j, ok := f.s.jobs[iv.JobID]; ok {
			iv.Job = &j
		}
		p.Interview = &iv
	}
	if a, ok := f.s.applications[p.ApplicationID]; ok {
		p.Application = &a
	}
	return &p, nil
}

func (f fakeInterviews) LockParticipant(_ context.Context, id string) (*models.InterviewParticipant, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.participants[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &p, nil
}

func (f fakeInterviews) UpdateParticipant(_ context.Context, p *models.InterviewParticipant) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	v := *p
	v.Interview, v.Application = nil, nil
	f.s.participants[p.ID] = v
	return nil
}

func (f fakeInterviews) ListParticipants(_ context.Context, interviewID string) ([]models.InterviewParticipant, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.participantsOf(interviewID, true), nil
}

func (f fakeInterviews) CountParticipants(_ context.Context, interviewID string) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return int64(len(f.participantsOf(interviewID, false))), nil
}

func (f fakeInterviews) ResetParticipants(_ context.Context, interviewID string, now time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for id, p := range f.s.participants {
		if p.InterviewID != interviewID {
			continue
		}
		p.Status = models.ParticipantPending
		p.ResponseMessage, p.RespondedAt = nil, nil
		p.UpdatedAt = now
		f.s.participants[id] = p
	}
	return nil
}

func (f fakeInterviews) CompleteParticipants(_ context.Context, interviewID string, from []models.ParticipantStatus, now time.Time) ([]models.InterviewParticipant, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.InterviewParticipant
	for id, p := range f.s.participants {
		if p.InterviewID != interviewID {
			continue
		}
		match := false
		for _, st := range from {
			if p.Status == st {
				match = true
			}
		}
		if !match {
			continue
		}
		p.Status = models.ParticipantCompleted
		p.UpdatedAt = now
		f.s.participants[id] = p
		out = append(out, p)
	}
	return out, nil
}

func (f fakeInterviews) ListForJobseeker(_ context.Context, jobseekerID string) ([]models.InterviewParticipant, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.InterviewParticipant
	for _, p := range f.s.participants {
		a, ok := f.s.applications[p.ApplicationID]
		if !ok || a.JobseekerID != jobseekerID {
			continue
		}
		if iv, ok := f.s.interviews[p.InterviewID]; ok {
			p.Interview = &iv
		}
		p.Application = &a
		out = append(out, p)
	}
	return out, nil
}

func (f fakeInterviews) LockOverdue(_ context.Context, cutoff time.Time, limit int) ([]models.Interview, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.Interview
	for _, iv := range f.s.interviews {
		if iv.Status.Open() && !iv.ScheduledAt.After(cutoff) {
			out = append(out, iv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return page(out, limit, 0), nil
}

// ---- contracts ----

type fakeContracts struct{ s *store }

func (f fakeContracts) openRegistration(applicationID string) bool {
	for _, w := range f.s.workers {
		if w.ApplicationID != applicationID {
			continue
		}
		reg, ok := f.s.registrations[w.ContractRegistrationID]
		if ok && (reg.Status == models.RegistrationPending || reg.Status == models.RegistrationApproved) {
			return true
		}
	}
	return false
}

func (f fakeContracts) workersOf(regID string) []models.ContractWorker {
	var out []models.ContractWorker
	for _, w := range f.s.workers {
		if w.ContractRegistrationID == regID {
			if js, ok := f.s.jobseekers[w.JobseekerID]; ok {
				w.Jobseeker = &js
			}
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ApplicationID < out[j].ApplicationID })
	return out
}

func (f fakeContracts) Create(_ context.Context, reg *models.ContractRegistration) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	v := *reg
	for _, w := range v.Workers {
		w.Registration, w.Jobseeker = nil, nil
		f.s.workers[w.ID] = w
	}
	v.Workers, v.Company = nil, nil
	f.s.registrations[reg.ID] = v
	return nil
}

func (f fakeContracts) GetByID(_ context.Context, id string) (*models.ContractRegistration, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	reg, ok := f.s.registrations[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	if c, ok := f.s.companies[reg.CompanyID]; ok {
		reg.Company = &c
	}
	reg.Workers = f.workersOf(id)
	return &reg, nil
}

func (f fakeContracts) LockByID(ctx context.Context, id string) (*models.ContractRegistration, error) {
	return f.GetByID(ctx, id)
}

func (f fakeContracts) Update(_ context.Context, reg *models.ContractRegistration) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	v := *reg
	v.Workers, v.Company = nil, nil
	f.s.registrations[reg.ID] = v
	return nil
}

func (f fakeContracts) Delete(_ context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.registrations[id]; !ok {
		return utils.ErrNotFound
	}
	for wid, w := range f.s.workers {
		if w.ContractRegistrationID == id {
			delete(f.s.workers, wid)
		}
	}
	delete(f.s.registrations, id)
	return nil
}

func (f fakeContracts) List(_ context.Context, companyID string, status models.RegistrationStatus) ([]models.ContractRegistration, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.ContractRegistration
	for _, reg := range f.s.registrations {
		if (companyID != "" && reg.CompanyID != companyID) || (status != "" && reg.Status != status) {
			continue
		}
		reg.Workers = f.workersOf(reg.ID)
		out = append(out, reg)
	}
	return out, nil
}

func (f fakeContracts) CountByStatus(_ context.Context, companyID string) (map[models.RegistrationStatus]int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := map[models.RegistrationStatus]int64{}
	for _, reg := range f.s.registrations {
		if companyID == "" || reg.CompanyID == companyID {
			out[reg.Status]++
		}
	}
	return out, nil
}

func (f fakeContracts) OpenRegistrationExists(_ context.Context, applicationID string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.openRegistration(applicationID), nil
}

func (f fakeContracts) CountApprovedWorkers(_ context.Context, companyID string) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for _, w := range f.s.workers {
		reg := f.s.registrations[w.ContractRegistrationID]
		if reg.CompanyID == companyID && reg.Status == models.RegistrationApproved {
			n++
		}
	}
	return n, nil
}

func (f fakeContracts) LockWorker(_ context.Context, id string) (*models.ContractWorker, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	w, ok := f.s.workers[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	reg := f.s.registrations[w.ContractRegistrationID]
	w.Registration = &reg
	return &w, nil
}

func (f fakeContracts) UpdateWorker(_ context.Context, w *models.ContractWorker) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	v := *w
	v.Registration, v.Jobseeker = nil, nil
	f.s.workers[w.ID] = v
	return nil
}

func (f fakeContracts) LockActiveWorkerByApplication(_ context.Context, applicationID string) (*models.ContractWorker, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, w := range f.s.workers {
		if w.ApplicationID == applicationID && w.Status == models.WorkerActive {
			return &w, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f fakeContracts) FindActiveWorkerByJobseeker(_ context.Context, jobseekerID string) (*models.ContractWorker, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var found *models.ContractWorker
	for _, w := range f.s.workers {
		reg, ok := f.s.registrations[w.ContractRegistrationID]
		if w.JobseekerID != jobseekerID || w.Status != models.WorkerActive || !ok || reg.Status != models.RegistrationApproved {
			continue
		}
		if found == nil || w.StartDate.After(found.StartDate) {
			if c, ok := f.s.companies[reg.CompanyID]; ok {
				reg.Company = &c
			}
			w.Registration = &reg
			found = &w
		}
	}
	if found == nil {
		return nil, utils.ErrNotFound
	}
	return found, nil
}

func (f fakeContracts) LockExpiredWorkers(_ context.Context, now time.Time, limit int) ([]models.ContractWorker, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.ContractWorker
	for _, w := range f.s.workers {
		reg := f.s.registrations[w.ContractRegistrationID]
		if w.Status == models.WorkerActive && w.EndDate.Before(now) && reg.Status == models.RegistrationApproved {
			out = append(out, w)
		}
	}
	return page(out, limit, 0), nil
}

func (f fakeContracts) CompleteWorkers(_ context.Context, ids []string, now time.Time) ([]models.ContractWorker, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.ContractWorker
	for _, id := range ids {
		w, ok := f.s.workers[id]
		if !ok || w.Status != models.WorkerActive {
			continue
		}
		w.Status = models.WorkerCompleted
		w.UpdatedAt = now
		f.s.workers[id] = w
		out = append(out, w)
	}
	return out, nil
}

// ---- resignations ----

type fakeResignations struct{ s *store }

func (f fakeResignations) Create(_ context.Context, res *models.Resignation) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, x := range f.s.resignations {
		if x.ApplicationID == res.ApplicationID {
			return utils.ErrDuplicate
		}
	}
	f.s.resignations[res.ID] = *res
	return nil
}

func (f fakeResignations) GetByID(_ context.Context, id string) (*models.Resignation, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	r, ok := f.s.resignations[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &r, nil
}

func (f fakeResignations) LockByID(ctx context.Context, id string) (*models.Resignation, error) {
	return f.GetByID(ctx, id)
}

func (f fakeResignations) Update(_ context.Context, res *models.Resignation) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.resignations[res.ID] = *res
	return nil
}

func (f fakeResignations) ListByCompany(_ context.Context, companyID string, status models.ResignationStatus) ([]models.Resignation, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.Resignation
	for _, r := range f.s.resignations {
		if r.CompanyID == companyID && (status == "" || r.Status == status) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f fakeResignations) ListByJobseeker(_ context.Context, jobseekerID string) ([]models.Resignation, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.Resignation
	for _, r := range f.s.resignations {
		if r.JobseekerID == jobseekerID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ---- audit ----

type fakeAudit struct{ s *store }

func (f fakeAudit) Create(_ context.Context, entry *models.AuditLog) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	entry.ID = int64(len(f.s.audit) + 1)
	f.s.audit = append(f.s.audit, *entry)
	return nil
}

func (f fakeAudit) List(_ context.Context, fl pgrepo.AuditFilter) ([]models.AuditLog, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.AuditLog
	for i := len(f.s.audit) - 1; i >= 0; i-- {
		e := f.s.audit[i]
		if fl.AfterID > 0 && e.ID >= fl.AfterID {
			continue
		}
		if fl.ResourceType != "" && e.ResourceType != fl.ResourceType {
			continue
		}
		if fl.ActorID != "" && e.ActorID != fl.ActorID {
			continue
		}
		out = append(out, e)
	}
	return page(out, fl.Limit, 0), nil
}

// ---- fixtures ----

var testEpoch = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	t     *testing.T
	st    *store
	clock *stubClock
	notes *recordingNotifier
	deps  Deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := newStore()
	clock := &stubClock{now: testEpoch}
	notes := &recordingNotifier{}
	return &testEnv{
		t:     t,
		st:    st,
		clock: clock,
		notes: notes,
		deps: Deps{
			Repos:    st.repos(),
			Tx:       &fakeTx{st: st},
			Clock:    clock,
			Notifier: notes,
		},
	}
}

func (e *testEnv) addUser(role models.UserRole) *models.User {
	u := models.User{
		ID:        uuid.NewString(),
		Email:     uuid.NewString() + "@example.com",
		Role:      role,
		Status:    models.AccountActive,
		CreatedAt: e.clock.Now(),
	}
	e.st.mu.Lock()
	e.st.users[u.ID] = u
	e.st.mu.Unlock()
	return &u
}

func (e *testEnv) addJobseeker(first string) *models.Jobseeker {
	u := e.addUser(models.RoleJobseeker)
	js := models.Jobseeker{
		ID:              uuid.NewString(),
		UserID:          u.ID,
		FirstName:       first,
		Email:           u.Email,
		IsLookingForJob: true,
		CreatedAt:       e.clock.Now(),
	}
	e.st.mu.Lock()
	e.st.jobseekers[js.ID] = js
	e.st.mu.Unlock()
	return &js
}

func (e *testEnv) addCompany(name string, status models.CompanyStatus) *models.Company {
	c := models.Company{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      utils.Slugify(name),
		Status:    status,
		CreatedAt: e.clock.Now(),
	}
	e.st.mu.Lock()
	e.st.companies[c.ID] = c
	e.st.mu.Unlock()
	return &c
}

func (e *testEnv) addRecruiter(c *models.Company, verified bool) *models.Recruiter {
	u := e.addUser(models.RoleRecruiter)
	r := models.Recruiter{
		ID:         uuid.NewString(),
		UserID:     u.ID,
		CompanyID:  c.ID,
		FirstName:  "Rina",
		IsVerified: verified,
		CreatedAt:  e.clock.Now(),
	}
	e.st.mu.Lock()
	e.st.recruiters[r.ID] = r
	e.st.mu.Unlock()
	r.Company = c
	return &r
}

func (e *testEnv) addJob(rec *models.Recruiter, slug string, status models.JobStatus) *models.Job {
	j := models.Job{
		ID:          uuid.NewString(),
		CompanyID:   rec.CompanyID,
		RecruiterID: rec.ID,
		Title:       strings.ReplaceAll(slug, "-", " "),
		Slug:        slug,
		Category:    "IT",
		Skills:      []string{"go", "sql"},
		Status:      status,
		CreatedAt:   e.clock.Now(),
	}
	e.st.mu.Lock()
	e.st.jobs[j.ID] = j
	e.st.mu.Unlock()
	return &j
}

func (e *testEnv) addApplication(job *models.Job, js *models.Jobseeker, status models.ApplicationStatus) *models.Application {
	a := models.Application{
		ID:          uuid.NewString(),
		JobID:       job.ID,
		JobseekerID: js.ID,
		Status:      status,
		AppliedAt:   e.clock.Now(),
	}
	e.st.mu.Lock()
	e.st.applications[a.ID] = a
	e.st.mu.Unlock()
	return &a
}

func (e *testEnv) application(id string) models.Application {
	e.t.Helper()
	e.st.mu.Lock()
	defer e.st.mu.Unlock()
	a, ok := e.st.applications[id]
	if !ok {
		e.t.Fatalf("application %s not found", id)
	}
	return a
}

func (e *testEnv) jobseeker(id string) models.Jobseeker {
	e.t.Helper()
	e.st.mu.Lock()
	defer e.st.mu.Unlock()
	return e.st.jobseekers[id]
}

func (e *testEnv) participant(id string) models.InterviewParticipant {
	e.t.Helper()
	e.st.mu.Lock()
	defer e.st.mu.Unlock()
	return e.st.participants[id]
}

func (e *testEnv) interview(id string) models.Interview {
	e.t.Helper()
	e.st.mu.Lock()
	defer e.st.mu.Unlock()
	return e.st.interviews[id]
}

func wantCode(t *testing.T, err error, code utils.Code) {
	t.Helper()
	if !utils.IsCode(err, code) {
		t.Fatalf("expected %s, got %v", code, err)
	}
}
