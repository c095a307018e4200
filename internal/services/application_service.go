package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lokercirebon/jobportal/internal/models"
	"github.com/lokercirebon/jobportal/internal/providers/llm"
	"github.com/lokercirebon/jobportal/internal/utils"
)

type ApplyInput struct {
	CoverLetter  string `json:"cover_letter"`
	ResumeURL    string `json:"resume_url"`
	PortfolioURL string `json:"portfolio_url"`
}

type ConfirmResult struct {
	Application *models.Application `json:"application"`
	// Withdrawn lists the applications closed by this confirmation.
	Withdrawn []string `json:"withdrawn"`
}

type MatchResult struct {
	ApplicationID string                   `json:"application_id"`
	JobseekerID   string                   `json:"jobseeker_id"`
	Name          string                   `json:"name"`
	Status        models.ApplicationStatus `json:"status"`
	Score         llm.Score                `json:"score"`
}

type ApplicationService interface {
	Apply(ctx context.Context, js *models.Jobseeker, jobSlug string, in ApplyInput) (*models.Application, error)
	ListMine(ctx context.Context, js *models.Jobseeker) ([]models.Application, error)
	GetMine(ctx context.Context, js *models.Jobseeker, id string) (*models.Application, error)
	Withdraw(ctx context.Context, js *models.Jobseeker, id string) (*models.Application, error)
	ConfirmOffer(ctx context.Context, js *models.Jobseeker, id string) (*ConfirmResult, error)

	ListForJob(ctx context.Context, rec *models.Recruiter, jobID string, status models.ApplicationStatus) ([]models.Application, error)
	GetForRecruiter(ctx context.Context, rec *models.Recruiter, id string) (*models.Application, error)
	UpdateStatus(ctx context.Context, rec *models.Recruiter, id string, to models.ApplicationStatus, notes *string) (*models.Application, error)
	// BatchUpdateStatus applies UpdateStatus to every id in one transaction.
	BatchUpdateStatus(ctx context.Context, rec *models.Recruiter, ids []string, to models.ApplicationStatus) ([]models.Application, error)
	MatchApplicants(ctx context.Context, rec *models.Recruiter, jobID string) ([]MatchResult, error)
}

type applicationService struct {
	Deps
	scorer llm.Scorer
}

// NewApplicationService falls back to keyword scoring when scorer is nil.
func NewApplicationService(d Deps, scorer llm.Scorer) ApplicationService {
	if scorer == nil {
		scorer = llm.KeywordScorer{}
	}
	return &applicationService{Deps: d.withDefaults(), scorer: scorer}
}

func (s *applicationService) Apply(ctx context.Context, js *models.Jobseeker, jobSlug string, in ApplyInput) (*models.Application, error) {
	const op = "ApplicationService.Apply"

	job, err := s.Repos.Jobs.GetBySlug(ctx, jobSlug)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "lowongan tidak ditemukan", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load job", err)
	}
	now := s.Clock.Now()
	if !job.Visible(now) {
		return nil, utils.E(utils.CodeInvalidTransition, op, "lowongan sudah ditutup", nil)
	}

	resume := strings.TrimSpace(in.ResumeURL)
	if resume == "" {
		resume = js.CVURL
	}
	app := &models.Application{
		ID:           uuid.NewString(),
		JobID:        job.ID,
		JobseekerID:  js.ID,
		CoverLetter:  in.CoverLetter,
		ResumeURL:    resume,
		PortfolioURL: strings.TrimSpace(in.PortfolioURL),
		Status:       models.AppPending,
		AppliedAt:    now,
		UpdatedAt:    now,
	}

	// the unique (job_id, jobseeker_id) constraint decides concurrent duplicates
	if err := s.Repos.Applications.Create(ctx, app); err != nil {
		if errors.Is(err, utils.ErrDuplicate) {
			return nil, utils.E(utils.CodeConflict, op, "anda sudah melamar lowongan ini", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to create application", err)
	}

	var box outbox
	box.add(recruiterUserID(ctx, s.Repos, job.RecruiterID), models.NotifyApplicationReceived,
		"Lamaran baru", js.FullName()+" melamar "+job.Title, "/recruiter/applications/"+app.ID)
	box.flush(ctx, s.Notifier, now)
	return app, nil
}

func (s *applicationService) ListMine(ctx context.Context, js *models.Jobseeker) ([]models.Application, error) {
	out, err := s.Repos.Applications.ListByJobseeker(ctx, js.ID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, "ApplicationService.ListMine", "failed to list applications", err)
	}
	return out, nil
}

func (s *applicationService) load(ctx context.Context, op, id string, lock bool) (*models.Application, error) {
	var (
		app *models.Application
		err error
	)
	if lock {
		app, err = s.Repos.Applications.LockByID(ctx, id)
	} else {
		app, err = s.Repos.Applications.GetByID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "lamaran tidak ditemukan", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load application", err)
	}
	return app, nil
}

func (s *applicationService) GetMine(ctx context.Context, js *models.Jobseeker, id string) (*models.Application, error) {
	const op = "ApplicationService.GetMine"

	app, err := s.load(ctx, op, id, false)
	if err != nil {
		return nil, err
	}
	if app.JobseekerID != js.ID {
		return nil, utils.E(utils.CodeForbidden, op, "lamaran bukan milik anda", nil)
	}
	return app, nil
}

func (s *applicationService) Withdraw(ctx context.Context, js *models.Jobseeker, id string) (*models.Application, error) {
	const op = "ApplicationService.Withdraw"

	var (
		out *models.Application
		box outbox
	)
	now := s.Clock.Now()
	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		app, err := s.load(ctx, op, id, true)
		if err != nil {
			return err
		}
		if app.JobseekerID != js.ID {
			return utils.E(utils.CodeForbidden, op, "lamaran bukan milik anda", nil)
		}
		if !canWithdraw(app.Status) {
			return utils.E(utils.CodeInvalidTransition, op, "lamaran tidak dapat ditarik", nil)
		}
		app.Status = models.AppWithdrawn
		app.UpdatedAt = now
		if err := s.Repos.Applications.Update(ctx, app); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to update application", err)
		}
		s.notifyWithdrawn(ctx, &box, app.JobID, js)
		out = app
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, s.Notifier, now)
	return out, nil
}

func (s *applicationService) notifyWithdrawn(ctx context.Context, box *outbox, jobID string, js *models.Jobseeker) {
	job, err := s.Repos.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return
	}
	box.add(recruiterUserID(ctx, s.Repos, job.RecruiterID), models.NotifyApplicationWithdraw,
		"Lamaran ditarik", js.FullName()+" menarik lamaran untuk "+job.Title, "/recruiter/jobs/"+job.ID)
}

// ConfirmOffer commits the jobseeker to one ACCEPTED application. The jobseeker
// row lock serialises concurrent confirmations; the partial unique index on
// confirmed applications backs it up.
func (s *applicationService) ConfirmOffer(ctx context.Context, js *models.Jobseeker, id string) (*ConfirmResult, error) {
	const op = "ApplicationService.ConfirmOffer"

	var (
		out *ConfirmResult
		box outbox
	)
	now := s.Clock.Now()
	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		if _, err := s.Repos.Jobseekers.LockByID(ctx, js.ID); err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.E(utils.CodeProfileNotFound, op, "profil jobseeker tidak ditemukan", err)
			}
			return utils.E(utils.CodeInternal, op, "failed to lock jobseeker", err)
		}

		app, err := s.load(ctx, op, id, true)
		if err != nil {
			return err
		}
		if app.JobseekerID != js.ID {
			return utils.E(utils.CodeForbidden, op, "lamaran bukan milik anda", nil)
		}
		if app.ConfirmedByJobseeker {
			out = &ConfirmResult{Application: app, Withdrawn: []string{}}
			return nil
		}
		existing, err := s.Repos.Applications.FindConfirmed(ctx, js.ID)
		switch {
		case err == nil && existing.ID != app.ID:
			return utils.E(utils.CodeConflict, op, "anda sudah mengonfirmasi lamaran lain", nil)
		case err != nil && !errors.Is(err, utils.ErrNotFound):
			return utils.E(utils.CodeInternal, op, "failed to check confirmed application", err)
		}

		if app.Status != models.AppAccepted {
			return utils.E(utils.CodeInvalidTransition, op, "hanya tawaran yang diterima yang dapat dikonfirmasi", nil)
		}

		app.ConfirmedByJobseeker = true
		app.ConfirmedAt = &now
		app.UpdatedAt = now
		if err := s.Repos.Applications.Update(ctx, app); err != nil {
			if errors.Is(err, utils.ErrDuplicate) {
				return utils.E(utils.CodeConflict, op, "anda sudah mengonfirmasi lamaran lain", err)
			}
			return utils.E(utils.CodeInternal, op, "failed to confirm application", err)
		}

		others, err := s.Repos.Applications.LockPreTerminalByJobseeker(ctx, js.ID, app.ID)
		if err != nil {
			return utils.E(utils.CodeInternal, op, "failed to load other applications", err)
		}
		withdrawn := make([]string, 0, len(others))
		for _, o := range others {
			withdrawn = append(withdrawn, o.ID)
		}
		if _, err := s.Repos.Applications.SetStatus(ctx, withdrawn, models.PreTerminalStatuses, models.AppWithdrawn, now); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to withdraw other applications", err)
		}

		job, err := s.Repos.Jobs.GetByID(ctx, app.JobID)
		if err != nil {
			return utils.E(utils.CodeInternal, op, "failed to load job", err)
		}
		companyName := ""
		if job.Company != nil {
			companyName = job.Company.Name
		}
		if err := s.Repos.Jobseekers.SetEmployment(ctx, js.ID, models.EmployedBy(companyName, now), now); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to update employment", err)
		}

		box.add(recruiterUserID(ctx, s.Repos, job.RecruiterID), models.NotifyOfferConfirmed,
			"Tawaran dikonfirmasi", js.FullName()+" mengonfirmasi tawaran "+job.Title, "/recruiter/applications/"+app.ID)
		for _, o := range others {
			s.notifyWithdrawn(ctx, &box, o.JobID, js)
		}
		out = &ConfirmResult{Application: app, Withdrawn: withdrawn}
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, s.Notifier, now)
	return out, nil
}

func (s *applicationService) ListForJob(ctx context.Context, rec *models.Recruiter, jobID string, status models.ApplicationStatus) ([]models.Application, error) {
	const op = "ApplicationService.ListForJob"

	if _, err := ownedJob(ctx, s.Repos, op, rec, jobID); err != nil {
		return nil, err
	}
	out, err := s.Repos.Applications.ListByJob(ctx, jobID, status)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list applications", err)
	}
	return out, nil
}

func (s *applicationService) GetForRecruiter(ctx context.Context, rec *models.Recruiter, id string) (*models.Application, error) {
	const op = "ApplicationService.GetForRecruiter"

	app, err := s.load(ctx, op, id, false)
	if err != nil {
		return nil, err
	}
	if app.Job == nil || app.Job.CompanyID != rec.CompanyID {
		return nil, utils.E(utils.CodeForbidden, op, "lamaran bukan untuk perusahaan anda", nil)
	}
	return app, nil
}

func (s *applicationService) UpdateStatus(ctx context.Context, rec *models.Recruiter, id string, to models.ApplicationStatus, notes *string) (*models.Application, error) {
	var (
		out *models.Application
		box outbox
	)
	now := s.Clock.Now()
	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		app, err := s.updateStatus(ctx, &box, rec, id, to, notes)
		out = app
		return err
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, s.Notifier, now)
	return out, nil
}

func (s *applicationService) BatchUpdateStatus(ctx context.Context, rec *models.Recruiter, ids []string, to models.ApplicationStatus) ([]models.Application, error) {
	const op = "ApplicationService.BatchUpdateStatus"

	if len(ids) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "pilih minimal satu lamaran", nil)
	}
	var (
		out []models.Application
		box outbox
	)
	now := s.Clock.Now()
	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		for _, id := range uniqueIDs(ids) {
			app, err := s.updateStatus(ctx, &box, rec, id, to, nil)
			if err != nil {
				return err
			}
			out = append(out, *app)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, s.Notifier, now)
	return out, nil
}

func (s *applicationService) updateStatus(ctx context.Context, box *outbox, rec *models.Recruiter, id string, to models.ApplicationStatus, notes *string) (*models.Application, error) {
	const op = "ApplicationService.UpdateStatus"

	app, err := s.load(ctx, op, id, true)
	if err != nil {
		return nil, err
	}
	job, err := ownedJob(ctx, s.Repos, op, rec, app.JobID)
	if err != nil {
		return nil, err
	}
	if err := recruiterTransition(op, app.Status, to); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	app.Status = to
	if notes != nil {
		app.RecruiterNotes = notes
	}
	app.ReviewedAt = &now
	app.UpdatedAt = now
	if err := s.Repos.Applications.Update(ctx, app); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update application", err)
	}

	box.add(jobseekerUserID(ctx, s.Repos, app.JobseekerID), models.NotifyApplicationStatus,
		"Status lamaran diperbarui", "Lamaran anda untuk "+job.Title+" kini "+string(to), "/jobseeker/applications/"+app.ID)
	return app, nil
}

func (s *applicationService) MatchApplicants(ctx context.Context, rec *models.Recruiter, jobID string) ([]MatchResult, error) {
	const op = "ApplicationService.MatchApplicants"

	job, err := ownedJob(ctx, s.Repos, op, rec, jobID)
	if err != nil {
		return nil, err
	}
	apps, err := s.Repos.Applications.ListByJob(ctx, jobID, "")
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list applications", err)
	}

	opening := llm.Opening{
		Title:         job.Title,
		Description:   job.Description,
		Requirements:  job.Requirements,
		Skills:        job.Skills,
		MinExperience: job.MinExperience,
	}
	out := make([]MatchResult, 0, len(apps))
	for _, a := range apps {
		if a.Status == models.AppWithdrawn || a.Jobseeker == nil {
			continue
		}
		js := a.Jobseeker
		score, err := s.scorer.ScoreCandidate(ctx, opening, llm.Candidate{
			Name:         js.FullName(),
			CurrentTitle: js.CurrentTitle,
			Summary:      js.Summary,
			Skills:       js.Skills,
			Experience:   string(js.Experience),
			Education:    string(js.Education),
		})
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to score applicant", err)
		}
		out = append(out, MatchResult{
			ApplicationID: a.ID,
			JobseekerID:   js.ID,
			Name:          js.FullName(),
			Status:        a.Status,
			Score:         score,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score.Value > out[j].Score.Value })
	return out, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
