package services

import (
	"context"
	"errors"
	"strings"

	"github.com/lokercirebon/jobportal/internal/models"
	pgrepo "github.com/lokercirebon/jobportal/internal/repositories/postgres"
	"github.com/lokercirebon/jobportal/internal/utils"
)

const statsMonths = 6

type CompanyPageAdmin struct {
	Items []models.Company `json:"items"`
	Total int64            `json:"total"`
}

type PendingCounts struct {
	Companies int64 `json:"companies"`
	Jobs      int64 `json:"jobs"`
	Contracts int64 `json:"contracts"`
}

type AdminStats struct {
	Users        map[models.UserRole]int64           `json:"users"`
	Companies    map[models.CompanyStatus]int64      `json:"companies"`
	Jobs         map[models.JobStatus]int64          `json:"jobs"`
	Applications map[models.ApplicationStatus]int64  `json:"applications"`
	Contracts    map[models.RegistrationStatus]int64 `json:"contracts"`
	Monthly      []pgrepo.MonthlyCount               `json:"monthly_jobs"`
}

type JobseekerPageAdmin struct {
	Items []pgrepo.JobseekerSummary `json:"items"`
	Total int64                     `json:"total"`
}

type JobseekerStats struct {
	pgrepo.SeekerStateCounts
	TotalApplications    int64 `json:"total_applications"`
	AcceptedApplications int64 `json:"accepted_applications"`
	RejectedApplications int64 `json:"rejected_applications"`
	PendingApplications  int64 `json:"pending_applications"`
}

type AdminService interface {
	ListCompanies(ctx context.Context, f pgrepo.CompanyFilter) (*CompanyPageAdmin, error)
	VerifyCompany(ctx context.Context, admin *models.User, id string) (*models.Company, error)
	RejectCompany(ctx context.Context, admin *models.User, id, reason string) (*models.Company, error)
	SuspendCompany(ctx context.Context, admin *models.User, id, reason string) (*models.Company, error)
	SetRecruiterVerified(ctx context.Context, admin *models.User, recruiterID string, verified bool) (*models.Recruiter, error)

	ApproveJob(ctx context.Context, admin *models.User, id string) (*models.Job, error)
	// RejectJob carries no reason; jobs have no rejection reason column.
	RejectJob(ctx context.Context, admin *models.User, id string) (*models.Job, error)

	SetUserStatus(ctx context.Context, admin *models.User, userID string, status models.AccountStatus) (*models.User, error)
	Pending(ctx context.Context) (*PendingCounts, error)
	Stats(ctx context.Context) (*AdminStats, error)
	ListJobseekers(ctx context.Context, f pgrepo.JobseekerFilter) (*JobseekerPageAdmin, error)
	JobseekerStats(ctx context.Context) (*JobseekerStats, error)
	ListAudit(ctx context.Context, f pgrepo.AuditFilter) ([]models.AuditLog, error)
}

type adminService struct {
	Deps
}

func NewAdminService(d Deps) AdminService {
	return &adminService{Deps: d.withDefaults()}
}

func (s *adminService) ListCompanies(ctx context.Context, f pgrepo.CompanyFilter) (*CompanyPageAdmin, error) {
	f.Limit, f.Offset = clampPage(f.Limit, f.Offset)
	items, total, err := s.Repos.Companies.List(ctx, f)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, "AdminService.ListCompanies", "failed to list companies", err)
	}
	return &CompanyPageAdmin{Items: items, Total: total}, nil
}

// moderateCompany locks the company, checks the allowed source statuses and
// applies the change with an audit row in one transaction.
func (s *adminService) moderateCompany(ctx context.Context, op string, admin *models.User, id, action string,
	from []models.CompanyStatus, apply func(c *models.Company), meta map[string]any, notice string) (*models.Company, error) {

	var (
		out *models.Company
		box outbox
	)
	now := s.Clock.Now()
	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		c, err := s.Repos.Companies.LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.E(utils.CodeNotFound, op, "perusahaan tidak ditemukan", err)
			}
			return utils.E(utils.CodeInternal, op, "failed to lock company", err)
		}
		allowed := false
		for _, st := range from {
			if c.Status == st {
				allowed = true
				break
			}
		}
		if !allowed {
			return utils.E(utils.CodeInvalidTransition, op, "status perusahaan tidak dapat diubah", nil)
		}

		prev := c.Status
		apply(c)
		c.UpdatedAt = now
		if err := s.Repos.Companies.Update(ctx, c); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to update company", err)
		}
		if meta == nil {
			meta = map[string]any{}
		}
		meta["from"] = prev
		meta["to"] = c.Status
		if err := writeAudit(ctx, s.Repos, admin.ID, action, "company", c.ID, meta, now); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to write audit log", err)
		}

		recs, err := s.Repos.Recruiters.ListByCompany(ctx, c.ID)
		if err != nil {
			return utils.E(utils.CodeInternal, op, "failed to list recruiters", err)
		}
		for _, r := range recs {
			box.add(r.UserID, models.NotifyModeration, "Status perusahaan", notice, "/recruiter/company")
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, s.Notifier, now)
	return out, nil
}

func (s *adminService) VerifyCompany(ctx context.Context, admin *models.User, id string) (*models.Company, error) {
	now := s.Clock.Now()
	return s.moderateCompany(ctx, "AdminService.VerifyCompany", admin, id, AuditCompanyVerify,
		[]models.CompanyStatus{models.CompanyPendingVerification, models.CompanyPendingResubmission, models.CompanySuspended},
		func(c *models.Company) {
			c.Status = models.CompanyVerified
			c.RejectionReason = nil
			c.VerifiedAt = &now
		}, nil, "Perusahaan anda telah diverifikasi")
}

func (s *adminService) RejectCompany(ctx context.Context, admin *models.User, id, reason string) (*models.Company, error) {
	const op = "AdminService.RejectCompany"

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "alasan penolakan wajib diisi", nil)
	}
	return s.moderateCompany(ctx, op, admin, id, AuditCompanyReject,
		[]models.CompanyStatus{models.CompanyPendingVerification, models.CompanyPendingResubmission},
		func(c *models.Company) {
			c.Status = models.CompanyRejected
			c.RejectionReason = &reason
		}, map[string]any{"reason": reason}, "Verifikasi perusahaan ditolak: "+reason)
}

func (s *adminService) SuspendCompany(ctx context.Context, admin *models.User, id, reason string) (*models.Company, error) {
	reason = strings.TrimSpace(reason)
	return s.moderateCompany(ctx, "AdminService.SuspendCompany", admin, id, AuditCompanySuspend,
		[]models.CompanyStatus{models.CompanyVerified},
		func(c *models.Company) { c.Status = models.CompanySuspended },
		map[string]any{"reason": reason}, "Perusahaan anda ditangguhkan")
}

func (s *adminService) SetRecruiterVerified(ctx context.Context, admin *models.User, recruiterID string, verified bool) (*models.Recruiter, error) {
	const op = "AdminService.SetRecruiterVerified"

	var (
		out *models.Recruiter
		box outbox
	)
	now := s.Clock.Now()
	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		if err := s.Repos.Recruiters.SetVerified(ctx, recruiterID, verified, now); err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.E(utils.CodeNotFound, op, "recruiter tidak ditemukan", err)
			}
			return utils.E(utils.CodeInternal, op, "failed to update recruiter", err)
		}
		if err := writeAudit(ctx, s.Repos, admin.ID, AuditRecruiterVerify, "recruiter", recruiterID,
			map[string]any{"verified": verified}, now); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to write audit log", err)
		}
		rec, err := s.Repos.Recruiters.GetByID(ctx, recruiterID)
		if err != nil {
			return utils.E(utils.CodeInternal, op, "failed to load recruiter", err)
		}
		msg := "Akun recruiter anda telah diverifikasi"
		if !verified {
			msg = "Verifikasi akun recruiter anda dicabut"
		}
		box.add(rec.UserID, models.NotifyModeration, "Verifikasi recruiter", msg, "/recruiter")
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, s.Notifier, now)
	return out, nil
}

func (s *adminService) moderateJob(ctx context.Context, op string, admin *models.User, id, action string, approve bool) (*models.Job, error) {
	var (
		out *models.Job
		box outbox
	)
	now := s.Clock.Now()
	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		job, err := s.Repos.Jobs.LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.E(utils.CodeNotFound, op, "lowongan tidak ditemukan", err)
			}
			return utils.E(utils.CodeInternal, op, "failed to lock job", err)
		}
		if job.Status != models.JobPending {
			return utils.E(utils.CodeInvalidTransition, op, "hanya lowongan yang menunggu review yang dapat dimoderasi", nil)
		}

		msg := "Lowongan " + job.Title + " ditolak"
		job.Status = models.JobRejected
		if approve {
			job.Status = models.JobActive
			job.PublishedAt = &now
			msg = "Lowongan " + job.Title + " telah ditayangkan"
		}
		job.UpdatedAt = now
		if err := s.Repos.Jobs.Update(ctx, job); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to update job", err)
		}
		if err := writeAudit(ctx, s.Repos, admin.ID, action, "job", job.ID,
			map[string]any{"to": job.Status}, now); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to write audit log", err)
		}

		box.add(recruiterUserID(ctx, s.Repos, job.RecruiterID), models.NotifyModeration,
			"Moderasi lowongan", msg, "/recruiter/jobs/"+job.ID)
		out = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, s.Notifier, now)
	return out, nil
}

func (s *adminService) ApproveJob(ctx context.Context, admin *models.User, id string) (*models.Job, error) {
	return s.moderateJob(ctx, "AdminService.ApproveJob", admin, id, AuditJobApprove, true)
}

func (s *adminService) RejectJob(ctx context.Context, admin *models.User, id string) (*models.Job, error) {
	return s.moderateJob(ctx, "AdminService.RejectJob", admin, id, AuditJobReject, false)
}

func (s *adminService) SetUserStatus(ctx context.Context, admin *models.User, userID string, status models.AccountStatus) (*models.User, error) {
	const op = "AdminService.SetUserStatus"

	if !status.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "status akun tidak valid", nil)
	}
	if userID == admin.ID {
		return nil, utils.E(utils.CodeForbidden, op, "tidak dapat mengubah status akun sendiri", nil)
	}

	var out *models.User
	now := s.Clock.Now()
	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		if err := s.Repos.Users.UpdateStatus(ctx, userID, status, now); err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.E(utils.CodeNotFound, op, "pengguna tidak ditemukan", err)
			}
			return utils.E(utils.CodeInternal, op, "failed to update user", err)
		}
		if err := writeAudit(ctx, s.Repos, admin.ID, AuditUserStatus, "user", userID,
			map[string]any{"status": status}, now); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to write audit log", err)
		}
		u, err := s.Repos.Users.GetByID(ctx, userID)
		if err != nil {
			return utils.E(utils.CodeInternal, op, "failed to load user", err)
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *adminService) Pending(ctx context.Context) (*PendingCounts, error) {
	const op = "AdminService.Pending"

	companies, err := s.Repos.Companies.CountByStatus(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count companies", err)
	}
	jobs, err := s.Repos.Jobs.CountByStatus(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count jobs", err)
	}
	contracts, err := s.Repos.Contracts.CountByStatus(ctx, "")
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count contracts", err)
	}
	return &PendingCounts{
		Companies: companies[models.CompanyPendingVerification] + companies[models.CompanyPendingResubmission],
		Jobs:      jobs[models.JobPending],
		Contracts: contracts[models.RegistrationPending],
	}, nil
}

func (s *adminService) Stats(ctx context.Context) (*AdminStats, error) {
	const op = "AdminService.Stats"

	var (
		out AdminStats
		err error
	)
	if out.Users, err = s.Repos.Users.CountByRole(ctx); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count users", err)
	}
	if out.Companies, err = s.Repos.Companies.CountByStatus(ctx); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count companies", err)
	}
	if out.Jobs, err = s.Repos.Jobs.CountByStatus(ctx); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count jobs", err)
	}
	if out.Applications, err = s.Repos.Applications.CountByStatus(ctx); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count applications", err)
	}
	if out.Contracts, err = s.Repos.Contracts.CountByStatus(ctx, ""); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count contracts", err)
	}

	now := s.Clock.Now()
	since := monthStart(now).AddDate(0, -(statsMonths - 1), 0)
	if out.Monthly, err = s.Repos.Jobs.MonthlyPostings(ctx, since); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load monthly postings", err)
	}
	return &out, nil
}

func (s *adminService) ListJobseekers(ctx context.Context, f pgrepo.JobseekerFilter) (*JobseekerPageAdmin, error) {
	const op = "AdminService.ListJobseekers"

	if f.State != "" && !f.State.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "status jobseeker tidak valid", nil)
	}
	f.Limit, f.Offset = clampPage(f.Limit, f.Offset)
	items, total, err := s.Repos.Jobseekers.ListSummaries(ctx, f)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list jobseekers", err)
	}
	if items == nil {
		items = []pgrepo.JobseekerSummary{}
	}
	return &JobseekerPageAdmin{Items: items, Total: total}, nil
}

func (s *adminService) JobseekerStats(ctx context.Context) (*JobseekerStats, error) {
	const op = "AdminService.JobseekerStats"

	states, err := s.Repos.Jobseekers.CountByState(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count jobseekers", err)
	}
	apps, err := s.Repos.Applications.CountByStatus(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count applications", err)
	}

	out := &JobseekerStats{
		SeekerStateCounts:    states,
		AcceptedApplications: apps[models.AppAccepted],
		RejectedApplications: apps[models.AppRejected],
	}
	for status, n := range apps {
		out.TotalApplications += n
		if status.PreTerminal() {
			out.PendingApplications += n
		}
	}
	return out, nil
}

func (s *adminService) ListAudit(ctx context.Context, f pgrepo.AuditFilter) ([]models.AuditLog, error) {
	if f.Limit <= 0 || f.Limit > maxPageSize {
		f.Limit = defaultPageSize
	}
	out, err := s.Repos.Audit.List(ctx, f)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, "AdminService.ListAudit", "failed to list audit log", err)
	}
	return out, nil
}
