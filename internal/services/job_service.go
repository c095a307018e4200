package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lokercirebon/jobportal/internal/cache"
	"github.com/lokercirebon/jobportal/internal/models"
	pgrepo "github.com/lokercirebon/jobportal/internal/repositories/postgres"
	"github.com/lokercirebon/jobportal/internal/utils"
)

type JobInput struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Requirements  string     `json:"requirements"`
	Category      string     `json:"category"`
	JobType       string     `json:"job_type"`
	Location      string     `json:"location"`
	City          string     `json:"city"`
	MinExperience int        `json:"min_experience"`
	SalaryMin     int64      `json:"salary_min"`
	SalaryMax     int64      `json:"salary_max"`
	Skills        []string   `json:"skills"`
	Benefits      []string   `json:"benefits"`
	Deadline      *time.Time `json:"deadline"`
}

// JobView is a job as served to clients, with derived fields.
type JobView struct {
	models.Job
	IsActive         bool  `json:"is_active"`
	ApplicationCount int64 `json:"application_count"`
	HasApplied       *bool `json:"has_applied,omitempty"`
}

type JobPage struct {
	Items  []JobView `json:"items"`
	Total  int64     `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

type HomeStats struct {
	ActiveJobs int64 `json:"active_jobs"`
	Companies  int64 `json:"companies"`
	Jobseekers int64 `json:"jobseekers"`
}

const (
	defaultFeaturedJobs  = 6
	defaultTopCompanies  = 8
	maxHomeItems         = 24
	topCompanyLatestJobs = 3
)

type TopCompany struct {
	models.Company
	ActiveJobs int64        `json:"active_jobs"`
	LatestJobs []models.Job `json:"latest_jobs"`
}

type JobService interface {
	Create(ctx context.Context, rec *models.Recruiter, in JobInput) (*models.Job, error)
	Update(ctx context.Context, rec *models.Recruiter, jobID string, in JobInput) (*models.Job, error)
	Toggle(ctx context.Context, rec *models.Recruiter, jobID string) (*models.Job, error)
	Delete(ctx context.Context, rec *models.Recruiter, jobID string) error
	GetForRecruiter(ctx context.Context, rec *models.Recruiter, jobID string) (*JobView, error)
	ListForRecruiter(ctx context.Context, rec *models.Recruiter, f pgrepo.JobFilter) (*JobPage, error)

	ListPublic(ctx context.Context, f pgrepo.JobFilter) (*JobPage, error)
	// GetPublic fills HasApplied when jobseekerID is set.
	GetPublic(ctx context.Context, slug, jobseekerID string) (*JobView, error)
	ListAll(ctx context.Context, f pgrepo.JobFilter) (*JobPage, error)

	Categories(ctx context.Context) ([]pgrepo.CategoryCount, error)
	HomeStats(ctx context.Context) (*HomeStats, error)
	// FeaturedJobs returns the newest publicly visible jobs.
	FeaturedJobs(ctx context.Context, limit int) ([]JobView, error)
	// TopCompanies ranks companies by their publicly visible jobs.
	TopCompanies(ctx context.Context, limit int) ([]TopCompany, error)
}

type jobService struct {
	Deps
	cache cache.Cache
}

// NewJobService accepts a nil cache.
func NewJobService(d Deps, c cache.Cache) JobService {
	return &jobService{Deps: d.withDefaults(), cache: c}
}

func (s *jobService) validate(op string, in *JobInput, now time.Time) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return utils.E(utils.CodeInvalidArgument, op, "judul lowongan wajib diisi", nil)
	}
	if strings.TrimSpace(in.Description) == "" {
		return utils.E(utils.CodeInvalidArgument, op, "deskripsi lowongan wajib diisi", nil)
	}
	if in.SalaryMin < 0 || in.SalaryMax < 0 || (in.SalaryMax > 0 && in.SalaryMin > in.SalaryMax) {
		return utils.E(utils.CodeInvalidArgument, op, "rentang gaji tidak valid", nil)
	}
	if in.MinExperience < 0 {
		return utils.E(utils.CodeInvalidArgument, op, "pengalaman minimal tidak valid", nil)
	}
	if in.Deadline != nil && !in.Deadline.After(now) {
		return utils.E(utils.CodeInvalidArgument, op, "batas lamaran harus di masa depan", nil)
	}
	return nil
}

func applyJobInput(j *models.Job, in JobInput) {
	j.Title = in.Title
	j.Description = in.Description
	j.Requirements = in.Requirements
	j.Category = strings.TrimSpace(in.Category)
	j.JobType = strings.TrimSpace(in.JobType)
	j.Location = strings.TrimSpace(in.Location)
	j.City = strings.TrimSpace(in.City)
	j.MinExperience = in.MinExperience
	j.SalaryMin = in.SalaryMin
	j.SalaryMax = in.SalaryMax
	j.Skills = cleanList(in.Skills)
	j.Benefits = cleanList(in.Benefits)
	j.Deadline = in.Deadline
}

func (s *jobService) Create(ctx context.Context, rec *models.Recruiter, in JobInput) (*models.Job, error) {
	const op = "JobService.Create"

	if !rec.IsVerified {
		return nil, utils.E(utils.CodeForbidden, op, "akun recruiter belum diverifikasi", nil)
	}
	if rec.Company == nil || !rec.Company.Status.CanPost() {
		return nil, utils.E(utils.CodeForbidden, op, "perusahaan tidak dapat memasang lowongan", nil)
	}
	now := s.Clock.Now()
	if err := s.validate(op, &in, now); err != nil {
		return nil, err
	}

	job := &models.Job{
		ID:          uuid.NewString(),
		CompanyID:   rec.CompanyID,
		RecruiterID: rec.ID,
		Slug:        utils.UniqueSlug(in.Title),
		Status:      models.JobPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	applyJobInput(job, in)

	if err := s.Repos.Jobs.Create(ctx, job); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create job", err)
	}
	return job, nil
}

func (s *jobService) loadOwned(ctx context.Context, op string, rec *models.Recruiter, jobID string, lock bool) (*models.Job, error) {
	var (
		job *models.Job
		err error
	)
	if lock {
		job, err = s.Repos.Jobs.LockByID(ctx, jobID)
	} else {
		job, err = s.Repos.Jobs.GetByID(ctx, jobID)
	}
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "lowongan tidak ditemukan", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load job", err)
	}
	if job.CompanyID != rec.CompanyID {
		return nil, utils.E(utils.CodeForbidden, op, "lowongan bukan milik perusahaan anda", nil)
	}
	return job, nil
}

func (s *jobService) Update(ctx context.Context, rec *models.Recruiter, jobID string, in JobInput) (*models.Job, error) {
	const op = "JobService.Update"

	now := s.Clock.Now()
	if err := s.validate(op, &in, now); err != nil {
		return nil, err
	}

	var out *models.Job
	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		job, err := s.loadOwned(ctx, op, rec, jobID, true)
		if err != nil {
			return err
		}
		applyJobInput(job, in)
		// edits to a live or rejected posting go back to moderation
		if job.Status == models.JobActive || job.Status == models.JobRejected {
			job.Status = models.JobPending
		}
		job.UpdatedAt = now
		if err := s.Repos.Jobs.Update(ctx, job); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to update job", err)
		}
		out = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *jobService) Toggle(ctx context.Context, rec *models.Recruiter, jobID string) (*models.Job, error) {
	const op = "JobService.Toggle"

	var out *models.Job
	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		job, err := s.loadOwned(ctx, op, rec, jobID, true)
		if err != nil {
			return err
		}
		now := s.Clock.Now()
		switch job.Status {
		case models.JobActive:
			job.Status = models.JobClosed
		case models.JobClosed:
			if job.Deadline != nil && job.Deadline.Before(now) {
				return utils.E(utils.CodeInvalidTransition, op, "batas lamaran sudah lewat", nil)
			}
			job.Status = models.JobActive
		default:
			return utils.E(utils.CodeInvalidTransition, op, "status lowongan tidak dapat diubah", nil)
		}
		job.UpdatedAt = now
		if err := s.Repos.Jobs.Update(ctx, job); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to update job", err)
		}
		out = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *jobService) Delete(ctx context.Context, rec *models.Recruiter, jobID string) error {
	const op = "JobService.Delete"

	return s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		if _, err := s.loadOwned(ctx, op, rec, jobID, true); err != nil {
			return err
		}
		if err := s.Repos.Jobs.Delete(ctx, jobID); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to delete job", err)
		}
		return nil
	})
}

func (s *jobService) GetForRecruiter(ctx context.Context, rec *models.Recruiter, jobID string) (*JobView, error) {
	const op = "JobService.GetForRecruiter"

	job, err := s.loadOwned(ctx, op, rec, jobID, false)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, []models.Job{*job})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count applications", err)
	}
	return &views[0], nil
}

func (s *jobService) ListForRecruiter(ctx context.Context, rec *models.Recruiter, f pgrepo.JobFilter) (*JobPage, error) {
	f.CompanyID = rec.CompanyID
	return s.list(ctx, "JobService.ListForRecruiter", f, s.Repos.Jobs.List)
}

func (s *jobService) ListAll(ctx context.Context, f pgrepo.JobFilter) (*JobPage, error) {
	return s.list(ctx, "JobService.ListAll", f, s.Repos.Jobs.List)
}

func (s *jobService) ListPublic(ctx context.Context, f pgrepo.JobFilter) (*JobPage, error) {
	now := s.Clock.Now()
	f.CompanyID = ""
	f.Status = ""
	return s.list(ctx, "JobService.ListPublic", f, func(ctx context.Context, f pgrepo.JobFilter) ([]models.Job, int64, error) {
		return s.Repos.Jobs.ListPublic(ctx, f, now)
	})
}

func (s *jobService) list(ctx context.Context, op string, f pgrepo.JobFilter,
	fetch func(context.Context, pgrepo.JobFilter) ([]models.Job, int64, error)) (*JobPage, error) {
	f.Limit, f.Offset = clampPage(f.Limit, f.Offset)

	jobs, total, err := fetch(ctx, f)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list jobs", err)
	}
	views, err := s.views(ctx, jobs)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count applications", err)
	}
	return &JobPage{Items: views, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func (s *jobService) views(ctx context.Context, jobs []models.Job) ([]JobView, error) {
	ids := make([]string, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	counts, err := s.Repos.Jobs.CountApplications(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]JobView, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, JobView{Job: j, IsActive: j.Active(), ApplicationCount: counts[j.ID]})
	}
	return out, nil
}

func (s *jobService) GetPublic(ctx context.Context, slug, jobseekerID string) (*JobView, error) {
	const op = "JobService.GetPublic"

	job, err := s.Repos.Jobs.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "lowongan tidak ditemukan", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load job", err)
	}
	if !job.Visible(s.Clock.Now()) {
		return nil, utils.E(utils.CodeNotFound, op, "lowongan tidak ditemukan", nil)
	}

	views, err := s.views(ctx, []models.Job{*job})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count applications", err)
	}
	view := views[0]

	if jobseekerID != "" {
		applied, err := s.Repos.Applications.Exists(ctx, job.ID, jobseekerID)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to check application", err)
		}
		view.HasApplied = &applied
	}
	return &view, nil
}

func (s *jobService) Categories(ctx context.Context) ([]pgrepo.CategoryCount, error) {
	const op = "JobService.Categories"

	var cached []pgrepo.CategoryCount
	if s.cacheGet(ctx, cache.KeyHomeCategories, &cached) {
		return cached, nil
	}

	out, err := s.Repos.Jobs.Categories(ctx, s.Clock.Now())
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load categories", err)
	}
	s.cacheSet(ctx, cache.KeyHomeCategories, out)
	return out, nil
}

func (s *jobService) HomeStats(ctx context.Context) (*HomeStats, error) {
	const op = "JobService.HomeStats"

	var cached HomeStats
	if s.cacheGet(ctx, cache.KeyHomeStats, &cached) {
		return &cached, nil
	}

	_, active, err := s.Repos.Jobs.ListPublic(ctx, pgrepo.JobFilter{Limit: 1}, s.Clock.Now())
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count jobs", err)
	}
	_, companies, err := s.Repos.Companies.List(ctx, pgrepo.CompanyFilter{Status: models.CompanyVerified, Limit: 1})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count companies", err)
	}
	seekers, err := s.Repos.Jobseekers.Count(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count jobseekers", err)
	}

	out := &HomeStats{ActiveJobs: active, Companies: companies, Jobseekers: seekers}
	s.cacheSet(ctx, cache.KeyHomeStats, out)
	return out, nil
}

func (s *jobService) FeaturedJobs(ctx context.Context, limit int) ([]JobView, error) {
	const op = "JobService.FeaturedJobs"

	limit = clampHome(limit, defaultFeaturedJobs)
	key := cache.KeyHomeFeatured + ":" + strconv.Itoa(limit)
	var cached []JobView
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	jobs, _, err := s.Repos.Jobs.ListPublic(ctx, pgrepo.JobFilter{Limit: limit}, s.Clock.Now())
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list jobs", err)
	}
	out, err := s.views(ctx, jobs)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count applications", err)
	}
	s.cacheSet(ctx, key, out)
	return out, nil
}

func (s *jobService) TopCompanies(ctx context.Context, limit int) ([]TopCompany, error) {
	const op = "JobService.TopCompanies"

	limit = clampHome(limit, defaultTopCompanies)
	key := cache.KeyHomeTopCompanies + ":" + strconv.Itoa(limit)
	var cached []TopCompany
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	now := s.Clock.Now()
	ranked, err := s.Repos.Jobs.TopCompanies(ctx, now, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to rank companies", err)
	}
	out := make([]TopCompany, 0, len(ranked))
	for _, rc := range ranked {
		c, err := s.Repos.Companies.GetByID(ctx, rc.CompanyID)
		if errors.Is(err, utils.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to load company", err)
		}
		latest, _, err := s.Repos.Jobs.ListPublic(ctx,
			pgrepo.JobFilter{CompanyID: c.ID, Limit: topCompanyLatestJobs}, now)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to list company jobs", err)
		}
		for i := range latest {
			latest[i].Company = nil
		}
		out = append(out, TopCompany{Company: *c, ActiveJobs: rc.Count, LatestJobs: latest})
	}
	s.cacheSet(ctx, key, out)
	return out, nil
}

func clampHome(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxHomeItems {
		return maxHomeItems
	}
	return limit
}

func (s *jobService) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.GetJSON(ctx, key, dst)
	if err != nil {
		s.Log.WithError(err).WithField("key", key).Warn("cache get failed")
		return false
	}
	return hit
}

func (s *jobService) cacheSet(ctx context.Context, key string, val any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, key, val, cache.PublicTTL); err != nil {
		s.Log.WithError(err).WithField("key", key).Warn("cache set failed")
	}
}
