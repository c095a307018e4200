package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lokercirebon/jobportal/internal/models"
	pgrepo "github.com/lokercirebon/jobportal/internal/repositories/postgres"
	"github.com/lokercirebon/jobportal/internal/utils"
	"gorm.io/datatypes"
)

type JobseekerProfileInput struct {
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Phone        string          `json:"phone"`
	City         string          `json:"city"`
	Address      string          `json:"address"`
	Photo        string          `json:"photo"`
	CVURL        string          `json:"cv_url"`
	CurrentTitle string          `json:"current_title"`
	Summary      string          `json:"summary"`
	Skills       []string        `json:"skills"`
	Experience   json.RawMessage `json:"experience"`
	Education    json.RawMessage `json:"education"`
}

type CompanyInput struct {
	Name        string `json:"name"`
	Industry    string `json:"industry"`
	City        string `json:"city"`
	Address     string `json:"address"`
	Description string `json:"description"`
	Website     string `json:"website"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Logo        string `json:"logo"`
}

type OnboardInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
	Phone     string `json:"phone"`
	// CompanySlug joins an existing company; otherwise Company is created.
	CompanySlug string        `json:"company_slug"`
	Company     *CompanyInput `json:"company"`
}

type CompanyPage struct {
	Items  []models.Company `json:"items"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

const (
	dashboardRecent = 5
	dashboardWindow = 7 * 24 * time.Hour
)

// EmploymentStatus is the jobseeker's current employment as seen by the
// jobseeker: an active contract wins over the stored flags.
type EmploymentStatus struct {
	JobseekerID     string                 `json:"id"`
	IsEmployed      bool                   `json:"is_employed"`
	IsLookingForJob bool                   `json:"is_looking_for_job"`
	EmployedAt      *time.Time             `json:"employed_at,omitempty"`
	EmployedCompany *string                `json:"employed_company,omitempty"`
	ActiveContract  *models.ContractWorker `json:"active_contract,omitempty"`
}

type DashboardStats struct {
	TotalJobs         int64                              `json:"total_jobs"`
	ActiveJobs        int64                              `json:"active_jobs"`
	TotalApplications int64                              `json:"total_applications"`
	NewThisWeek       int64                              `json:"new_applications_this_week"`
	ByStatus          map[models.ApplicationStatus]int64 `json:"applications_by_status"`
}

type RecruiterDashboard struct {
	Company            *models.Company      `json:"company"`
	Recruiter          *models.Recruiter    `json:"recruiter"`
	Stats              DashboardStats       `json:"stats"`
	RecentJobs         []models.Job         `json:"recent_jobs"`
	RecentApplications []models.Application `json:"recent_applications"`
}

type ProfileService interface {
	UpdateJobseeker(ctx context.Context, jobseekerID string, in JobseekerProfileInput) (*models.Jobseeker, error)
	Onboard(ctx context.Context, user *models.User, in OnboardInput) (*models.Recruiter, error)
	ResubmitCompany(ctx context.Context, rec *models.Recruiter, in CompanyInput) (*models.Company, error)
	EmploymentStatus(ctx context.Context, js *models.Jobseeker) (*EmploymentStatus, error)
	RecruiterDashboard(ctx context.Context, rec *models.Recruiter) (*RecruiterDashboard, error)

	ListPublicCompanies(ctx context.Context, search string, limit, offset int) (*CompanyPage, error)
	GetPublicCompany(ctx context.Context, slug string) (*models.Company, error)
}

type profileService struct {
	Deps
}

func NewProfileService(d Deps) ProfileService {
	return &profileService{Deps: d.withDefaults()}
}

func (s *profileService) UpdateJobseeker(ctx context.Context, jobseekerID string, in JobseekerProfileInput) (*models.Jobseeker, error) {
	const op = "ProfileService.UpdateJobseeker"

	if strings.TrimSpace(in.FirstName) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "nama depan wajib diisi", nil)
	}
	for _, raw := range []json.RawMessage{in.Experience, in.Education} {
		if len(raw) > 0 && !json.Valid(raw) {
			return nil, utils.E(utils.CodeInvalidArgument, op, "format pengalaman/pendidikan tidak valid", nil)
		}
	}

	js, err := s.Repos.Jobseekers.GetByID(ctx, jobseekerID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeProfileNotFound, op, "profil jobseeker tidak ditemukan", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load jobseeker", err)
	}

	js.FirstName = strings.TrimSpace(in.FirstName)
	js.LastName = strings.TrimSpace(in.LastName)
	js.Phone = strings.TrimSpace(in.Phone)
	js.City = strings.TrimSpace(in.City)
	js.Address = strings.TrimSpace(in.Address)
	js.Photo = in.Photo
	js.CVURL = in.CVURL
	js.CurrentTitle = strings.TrimSpace(in.CurrentTitle)
	js.Summary = in.Summary
	js.Skills = cleanList(in.Skills)
	if len(in.Experience) > 0 {
		js.Experience = datatypes.JSON(in.Experience)
	}
	if len(in.Education) > 0 {
		js.Education = datatypes.JSON(in.Education)
	}
	js.UpdatedAt = s.Clock.Now()

	if err := s.Repos.Jobseekers.UpdateProfile(ctx, js); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update jobseeker", err)
	}
	return js, nil
}

func (s *profileService) Onboard(ctx context.Context, user *models.User, in OnboardInput) (*models.Recruiter, error) {
	const op = "ProfileService.Onboard"

	if user == nil || user.Role != models.RoleRecruiter {
		return nil, utils.E(utils.CodeForbidden, op, "forbidden", nil)
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "nama depan wajib diisi", nil)
	}
	slug := strings.TrimSpace(in.CompanySlug)
	if slug == "" && (in.Company == nil || strings.TrimSpace(in.Company.Name) == "") {
		return nil, utils.E(utils.CodeInvalidArgument, op, "nama perusahaan wajib diisi", nil)
	}

	now := s.Clock.Now()
	rec := &models.Recruiter{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Position:  strings.TrimSpace(in.Position),
		Phone:     strings.TrimSpace(in.Phone),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		var company *models.Company
		if slug != "" {
			c, err := s.Repos.Companies.GetBySlug(ctx, slug)
			if err != nil {
				if errors.Is(err, utils.ErrNotFound) {
					return utils.E(utils.CodeNotFound, op, "perusahaan tidak ditemukan", err)
				}
				return utils.E(utils.CodeInternal, op, "failed to load company", err)
			}
			company = c
		} else {
			company = newCompany(*in.Company, now)
			if err := s.Repos.Companies.Create(ctx, company); err != nil {
				return utils.E(utils.CodeInternal, op, "failed to create company", err)
			}
		}

		rec.CompanyID = company.ID
		if err := s.Repos.Recruiters.Create(ctx, rec); err != nil {
			if errors.Is(err, utils.ErrDuplicate) {
				return utils.E(utils.CodeConflict, op, "profil recruiter sudah ada", err)
			}
			return utils.E(utils.CodeInternal, op, "failed to create recruiter", err)
		}
		rec.Company = company
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func newCompany(in CompanyInput, now time.Time) *models.Company {
	c := &models.Company{
		ID:        uuid.NewString(),
		Slug:      utils.UniqueSlug(in.Name),
		Status:    models.CompanyPendingVerification,
		CreatedAt: now,
	}
	applyCompanyInput(c, in, now)
	return c
}

func applyCompanyInput(c *models.Company, in CompanyInput, now time.Time) {
	c.Name = strings.TrimSpace(in.Name)
	c.Industry = strings.TrimSpace(in.Industry)
	c.City = strings.TrimSpace(in.City)
	c.Address = strings.TrimSpace(in.Address)
	c.Description = in.Description
	c.Website = strings.TrimSpace(in.Website)
	c.Email = strings.ToLower(strings.TrimSpace(in.Email))
	c.Phone = strings.TrimSpace(in.Phone)
	c.Logo = in.Logo
	c.UpdatedAt = now
}

func (s *profileService) ResubmitCompany(ctx context.Context, rec *models.Recruiter, in CompanyInput) (*models.Company, error) {
	const op = "ProfileService.ResubmitCompany"

	if strings.TrimSpace(in.Name) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "nama perusahaan wajib diisi", nil)
	}

	var out *models.Company
	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		c, err := s.Repos.Companies.LockByID(ctx, rec.CompanyID)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.E(utils.CodeNotFound, op, "perusahaan tidak ditemukan", err)
			}
			return utils.E(utils.CodeInternal, op, "failed to load company", err)
		}
		if c.Status != models.CompanyRejected {
			return utils.E(utils.CodeInvalidTransition, op, "hanya perusahaan yang ditolak yang dapat diajukan ulang", nil)
		}

		applyCompanyInput(c, in, s.Clock.Now())
		c.Status = models.CompanyPendingResubmission
		c.RejectionReason = nil
		if err := s.Repos.Companies.Update(ctx, c); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to update company", err)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *profileService) ListPublicCompanies(ctx context.Context, search string, limit, offset int) (*CompanyPage, error) {
	const op = "ProfileService.ListPublicCompanies"

	limit, offset = clampPage(limit, offset)
	items, total, err := s.Repos.Companies.List(ctx, pgrepo.CompanyFilter{
		Status: models.CompanyVerified,
		Search: search,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list companies", err)
	}
	return &CompanyPage{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *profileService) GetPublicCompany(ctx context.Context, slug string) (*models.Company, error) {
	const op = "ProfileService.GetPublicCompany"

	c, err := s.Repos.Companies.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "perusahaan tidak ditemukan", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load company", err)
	}
	if c.Status != models.CompanyVerified {
		return nil, utils.E(utils.CodeNotFound, op, "perusahaan tidak ditemukan", nil)
	}
	return c, nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (s *profileService) EmploymentStatus(ctx context.Context, js *models.Jobseeker) (*EmploymentStatus, error) {
	const op = "ProfileService.EmploymentStatus"

	out := &EmploymentStatus{
		JobseekerID:     js.ID,
		IsEmployed:      js.IsEmployed,
		IsLookingForJob: js.IsLookingForJob,
		EmployedAt:      js.EmployedAt,
		EmployedCompany: js.EmployedCompany,
	}
	w, err := s.Repos.Contracts.FindActiveWorkerByJobseeker(ctx, js.ID)
	switch {
	case errors.Is(err, utils.ErrNotFound):
		return out, nil
	case err != nil:
		return nil, utils.E(utils.CodeInternal, op, "failed to load active contract", err)
	}

	start := w.StartDate
	out.IsEmployed, out.IsLookingForJob = true, false
	out.EmployedAt = &start
	out.ActiveContract = w
	if w.Registration != nil && w.Registration.Company != nil {
		name := w.Registration.Company.Name
		out.EmployedCompany = &name
	}
	return out, nil
}

func (s *profileService) RecruiterDashboard(ctx context.Context, rec *models.Recruiter) (*RecruiterDashboard, error) {
	const op = "ProfileService.RecruiterDashboard"

	company, err := s.Repos.Companies.GetByID(ctx, rec.CompanyID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "perusahaan tidak ditemukan", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load company", err)
	}

	now := s.Clock.Now()
	out := &RecruiterDashboard{Company: company, Recruiter: rec}

	if _, out.Stats.TotalJobs, err = s.Repos.Jobs.List(ctx, pgrepo.JobFilter{CompanyID: company.ID, Limit: 1}); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count jobs", err)
	}
	out.RecentJobs, out.Stats.ActiveJobs, err = s.Repos.Jobs.ListPublic(ctx,
		pgrepo.JobFilter{CompanyID: company.ID, Limit: dashboardRecent}, now)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list active jobs", err)
	}

	if out.Stats.ByStatus, err = s.Repos.Applications.CountByStatusForCompany(ctx, company.ID); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count applications", err)
	}
	for _, n := range out.Stats.ByStatus {
		out.Stats.TotalApplications += n
	}
	if out.Stats.NewThisWeek, err = s.Repos.Applications.CountForCompanySince(ctx, company.ID, now.Add(-dashboardWindow)); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count new applications", err)
	}
	if out.RecentApplications, err = s.Repos.Applications.ListRecentForCompany(ctx, company.ID, dashboardRecent); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list recent applications", err)
	}
	return out, nil
}
