package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lokercirebon/jobportal/internal/models"
	"github.com/lokercirebon/jobportal/internal/utils"
)

type SubmitResignationInput struct {
	ApplicationID string `json:"application_id"`
	Reason        string `json:"reason"`
	LetterURL     string `json:"letter_url"`
}

type ProcessResignationInput struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes"`
}

type ResignationService interface {
	Submit(ctx context.Context, js *models.Jobseeker, in SubmitResignationInput) (*models.Resignation, error)
	ListMine(ctx context.Context, js *models.Jobseeker) ([]models.Resignation, error)
	// Process decides a PENDING resignation. Approval resigns the application,
	// terminates the active contract worker and reverts the employment flags.
	Process(ctx context.Context, rec *models.Recruiter, id string, in ProcessResignationInput) (*models.Resignation, error)
	ListForRecruiter(ctx context.Context, rec *models.Recruiter, status models.ResignationStatus) ([]models.Resignation, error)
	// Get is open to the owning jobseeker, recruiters of the company and admins.
	Get(ctx context.Context, user *models.User, id string) (*models.Resignation, error)
}

type resignationService struct {
	Deps
}

func NewResignationService(d Deps) ResignationService {
	return &resignationService{Deps: d.withDefaults()}
}

func (s *resignationService) Submit(ctx context.Context, js *models.Jobseeker, in SubmitResignationInput) (*models.Resignation, error) {
	const op = "ResignationService.Submit"

	in.ApplicationID = strings.TrimSpace(in.ApplicationID)
	in.Reason = strings.TrimSpace(in.Reason)
	in.LetterURL = strings.TrimSpace(in.LetterURL)
	if in.ApplicationID == "" || in.Reason == "" || in.LetterURL == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "lamaran, alasan dan surat pengunduran diri wajib diisi", nil)
	}

	var (
		out *models.Resignation
		box outbox
	)
	now := s.Clock.Now()
	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		app, err := s.Repos.Applications.LockByID(ctx, in.ApplicationID)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.E(utils.CodeNotFound, op, "lamaran tidak ditemukan", err)
			}
			return utils.E(utils.CodeInternal, op, "failed to lock application", err)
		}
		if app.JobseekerID != js.ID {
			return utils.E(utils.CodeForbidden, op, "lamaran bukan milik anda", nil)
		}
		if app.Status != models.AppAccepted {
			return utils.E(utils.CodeInvalidTransition, op, "hanya lamaran yang diterima yang dapat mengajukan pengunduran diri", nil)
		}
		job, err := s.Repos.Jobs.GetByID(ctx, app.JobID)
		if err != nil {
			return utils.E(utils.CodeInternal, op, "failed to load job", err)
		}

		res := &models.Resignation{
			ID:            uuid.NewString(),
			ApplicationID: app.ID,
			JobseekerID:   js.ID,
			CompanyID:     job.CompanyID,
			Reason:        in.Reason,
			LetterURL:     in.LetterURL,
			Status:        models.ResignationPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.Repos.Resignations.Create(ctx, res); err != nil {
			if errors.Is(err, utils.ErrDuplicate) {
				return utils.E(utils.CodeConflict, op, "pengunduran diri untuk lamaran ini sudah diajukan", err)
			}
			return utils.E(utils.CodeInternal, op, "failed to create resignation", err)
		}

		box.add(recruiterUserID(ctx, s.Repos, job.RecruiterID), models.NotifyResignation,
			"Pengajuan pengunduran diri", js.FullName()+" mengajukan pengunduran diri dari "+job.Title, "/recruiter/resignations/"+res.ID)
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, s.Notifier, now)
	return out, nil
}

func (s *resignationService) ListMine(ctx context.Context, js *models.Jobseeker) ([]models.Resignation, error) {
	out, err := s.Repos.Resignations.ListByJobseeker(ctx, js.ID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, "ResignationService.ListMine", "failed to list resignations", err)
	}
	return out, nil
}

func (s *resignationService) ListForRecruiter(ctx context.Context, rec *models.Recruiter, status models.ResignationStatus) ([]models.Resignation, error) {
	out, err := s.Repos.Resignations.ListByCompany(ctx, rec.CompanyID, status)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, "ResignationService.ListForRecruiter", "failed to list resignations", err)
	}
	return out, nil
}

func (s *resignationService) Process(ctx context.Context, rec *models.Recruiter, id string, in ProcessResignationInput) (*models.Resignation, error) {
	const op = "ResignationService.Process"

	var (
		out *models.Resignation
		box outbox
	)
	now := s.Clock.Now()
	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		res, err := s.Repos.Resignations.LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.E(utils.CodeNotFound, op, "pengunduran diri tidak ditemukan", err)
			}
			return utils.E(utils.CodeInternal, op, "failed to lock resignation", err)
		}
		if res.CompanyID != rec.CompanyID {
			return utils.E(utils.CodeForbidden, op, "pengunduran diri bukan untuk perusahaan anda", nil)
		}
		if res.Status != models.ResignationPending {
			return utils.E(utils.CodeInvalidTransition, op, "pengunduran diri sudah diproses", nil)
		}
		if in.Approve {
			app, err := s.Repos.Applications.LockByID(ctx, res.ApplicationID)
			if err != nil {
				return utils.E(utils.CodeInternal, op, "failed to lock application", err)
			}
			if app.Status != models.AppAccepted {
				return utils.E(utils.CodeInvalidTransition, op, "lamaran sudah tidak berstatus diterima", nil)
			}
		}

		res.Status = models.ResignationRejected
		if in.Approve {
			res.Status = models.ResignationApproved
		}
		if notes := strings.TrimSpace(in.Notes); notes != "" {
			res.RecruiterNotes = &notes
		}
		res.ProcessedAt = &now
		res.ProcessedBy = &rec.ID
		res.UpdatedAt = now
		if err := s.Repos.Resignations.Update(ctx, res); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to update resignation", err)
		}

		if in.Approve {
			w, err := s.Repos.Contracts.LockActiveWorkerByApplication(ctx, res.ApplicationID)
			switch {
			case err == nil:
				reason := "Pengunduran diri disetujui"
				w.Status = models.WorkerTerminated
				w.TerminatedAt = &now
				w.TerminationReason = &reason
				w.UpdatedAt = now
				if err := s.Repos.Contracts.UpdateWorker(ctx, w); err != nil {
					return utils.E(utils.CodeInternal, op, "failed to terminate worker", err)
				}
			case !errors.Is(err, utils.ErrNotFound):
				return utils.E(utils.CodeInternal, op, "failed to lock worker", err)
			}
			if err := releaseWorker(ctx, s.Repos, res.ApplicationID, res.JobseekerID, now); err != nil {
				return utils.E(utils.CodeInternal, op, "failed to release jobseeker", err)
			}
		}

		msg := "Pengunduran diri anda ditolak"
		if in.Approve {
			msg = "Pengunduran diri anda disetujui"
		}
		box.add(jobseekerUserID(ctx, s.Repos, res.JobseekerID), models.NotifyResignation,
			"Pengunduran diri diproses", msg, "/jobseeker/resignations/"+res.ID)
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, s.Notifier, now)
	return out, nil
}

func (s *resignationService) Get(ctx context.Context, user *models.User, id string) (*models.Resignation, error) {
	const op = "ResignationService.Get"

	res, err := s.Repos.Resignations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "pengunduran diri tidak ditemukan", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load resignation", err)
	}

	denied := utils.E(utils.CodeForbidden, op, "akses ditolak", nil)
	switch user.Role {
	case models.RoleAdmin:
		return res, nil
	case models.RoleJobseeker:
		js, err := s.Repos.Jobseekers.GetByUserID(ctx, user.ID)
		if err != nil || js.ID != res.JobseekerID {
			return nil, denied
		}
	case models.RoleRecruiter:
		rec, err := s.Repos.Recruiters.GetByUserID(ctx, user.ID)
		if err != nil || rec.CompanyID != res.CompanyID {
			return nil, denied
		}
	default:
		return nil, denied
	}
	return res, nil
}
