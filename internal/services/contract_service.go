package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lokercirebon/jobportal/internal/models"
	"github.com/lokercirebon/jobportal/internal/report"
	"github.com/lokercirebon/jobportal/internal/utils"
)

type WorkerInput struct {
	ApplicationID string    `json:"application_id"`
	JobTitle      string    `json:"job_title"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Salary        int64     `json:"salary"`
	Notes         string    `json:"notes"`
}

type RegisterContractInput struct {
	Workers         []WorkerInput `json:"workers"`
	RecruiterDocURL string        `json:"recruiter_doc_url"`
}

type ProcessContractInput struct {
	Approve         bool   `json:"approve"`
	AdminNotes      string `json:"admin_notes"`
	RejectionReason string `json:"rejection_reason"`
}

type ContractStats struct {
	Pending      int64 `json:"pending"`
	Approved     int64 `json:"approved"`
	Rejected     int64 `json:"rejected"`
	TotalWorkers int64 `json:"total_workers"`
}

type ContractList struct {
	Items []models.ContractRegistration `json:"items"`
	Stats ContractStats                 `json:"stats"`
}

type ContractService interface {
	Register(ctx context.Context, rec *models.Recruiter, in RegisterContractInput) (*models.ContractRegistration, error)
	ListForCompany(ctx context.Context, rec *models.Recruiter, status models.RegistrationStatus) (*ContractList, error)
	AcceptedApplicants(ctx context.Context, rec *models.Recruiter) ([]models.Application, error)
	GetForRecruiter(ctx context.Context, rec *models.Recruiter, id string) (*models.ContractRegistration, error)
	// Resubmit replaces a REJECTED registration with a fresh PENDING one. When
	// in.Workers is empty the previous workers are registered again.
	Resubmit(ctx context.Context, rec *models.Recruiter, id string, in RegisterContractInput) (*models.ContractRegistration, error)
	TerminateWorker(ctx context.Context, rec *models.Recruiter, workerID, reason string) (*models.ContractWorker, error)

	List(ctx context.Context, status models.RegistrationStatus) ([]models.ContractRegistration, error)
	Get(ctx context.Context, id string) (*models.ContractRegistration, error)
	Process(ctx context.Context, admin *models.User, id string, in ProcessContractInput) (*models.ContractRegistration, error)
	SummaryPDF(ctx context.Context, id string) ([]byte, error)
}

type contractService struct {
	Deps
}

func NewContractService(d Deps) ContractService {
	return &contractService{Deps: d.withDefaults()}
}

func validateWorkers(op string, workers []WorkerInput) error {
	if len(workers) == 0 {
		return utils.E(utils.CodeInvalidArgument, op, "minimal satu pekerja wajib didaftarkan", nil)
	}
	seen := make(map[string]struct{}, len(workers))
	for i := range workers {
		w := &workers[i]
		w.ApplicationID = strings.TrimSpace(w.ApplicationID)
		w.JobTitle = strings.TrimSpace(w.JobTitle)
		if w.ApplicationID == "" {
			return utils.E(utils.CodeInvalidArgument, op, "lamaran pekerja wajib dipilih", nil)
		}
		if _, dup := seen[w.ApplicationID]; dup {
			return utils.E(utils.CodeInvalidArgument, op, "pekerja yang sama didaftarkan lebih dari sekali", nil)
		}
		seen[w.ApplicationID] = struct{}{}
		if w.JobTitle == "" {
			return utils.E(utils.CodeInvalidArgument, op, "jabatan pekerja wajib diisi", nil)
		}
		if w.StartDate.IsZero() || w.EndDate.IsZero() {
			return utils.E(utils.CodeInvalidArgument, op, "tanggal kontrak wajib diisi", nil)
		}
		if !w.EndDate.After(w.StartDate) {
			return utils.E(utils.CodeInvalidArgument, op, "tanggal selesai harus setelah tanggal mulai", nil)
		}
		if w.Salary <= 0 {
			return utils.E(utils.CodeInvalidArgument, op, "gaji harus lebih dari 0", nil)
		}
	}
	return nil
}

func (s *contractService) Register(ctx context.Context, rec *models.Recruiter, in RegisterContractInput) (*models.ContractRegistration, error) {
	const op = "ContractService.Register"

	if err := validateWorkers(op, in.Workers); err != nil {
		return nil, err
	}
	var out *models.ContractRegistration
	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		reg, err := s.register(ctx, op, rec, in)
		out = reg
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// register runs inside a transaction. Locking the application rows makes the
// open-registration check and the insert atomic per worker.
func (s *contractService) register(ctx context.Context, op string, rec *models.Recruiter, in RegisterContractInput) (*models.ContractRegistration, error) {
	ids := make([]string, 0, len(in.Workers))
	for _, w := range in.Workers {
		ids = append(ids, w.ApplicationID)
	}
	apps, err := s.Repos.Applications.LockByIDs(ctx, ids)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to lock applications", err)
	}
	if len(apps) != len(ids) {
		return nil, utils.E(utils.CodeNotFound, op, "lamaran tidak ditemukan", nil)
	}
	byID := make(map[string]models.Application, len(apps))
	for _, a := range apps {
		byID[a.ID] = a
	}

	now := s.Clock.Now()
	reg := &models.ContractRegistration{
		ID:          uuid.NewString(),
		RecruiterID: rec.ID,
		CompanyID:   rec.CompanyID,
		Status:      models.RegistrationPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if doc := strings.TrimSpace(in.RecruiterDocURL); doc != "" {
		reg.RecruiterDocURL = &doc
	}

	for _, w := range in.Workers {
		a := byID[w.ApplicationID]
		job, err := s.Repos.Jobs.GetByID(ctx, a.JobID)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to load job", err)
		}
		if job.CompanyID != rec.CompanyID {
			return nil, utils.E(utils.CodeForbidden, op, "lamaran bukan untuk perusahaan anda", nil)
		}
		if a.Status != models.AppAccepted {
			return nil, utils.E(utils.CodeInvalidTransition, op, "hanya pelamar yang diterima yang dapat didaftarkan", nil)
		}
		open, err := s.Repos.Contracts.OpenRegistrationExists(ctx, a.ID)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to check registrations", err)
		}
		if open {
			return nil, utils.E(utils.CodeConflict, op, "pekerja sudah terdaftar di registrasi kontrak lain", nil)
		}

		worker := models.ContractWorker{
			ID:                     uuid.NewString(),
			ContractRegistrationID: reg.ID,
			ApplicationID:          a.ID,
			JobseekerID:            a.JobseekerID,
			JobTitle:               w.JobTitle,
			StartDate:              w.StartDate.UTC(),
			EndDate:                w.EndDate.UTC(),
			Salary:                 w.Salary,
			Status:                 models.WorkerActive,
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		if notes := strings.TrimSpace(w.Notes); notes != "" {
			worker.Notes = &notes
		}
		reg.Workers = append(reg.Workers, worker)
	}

	if err := s.Repos.Contracts.Create(ctx, reg); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create registration", err)
	}
	return reg, nil
}

func (s *contractService) ListForCompany(ctx context.Context, rec *models.Recruiter, status models.RegistrationStatus) (*ContractList, error) {
	const op = "ContractService.ListForCompany"

	items, err := s.Repos.Contracts.List(ctx, rec.CompanyID, status)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list registrations", err)
	}
	counts, err := s.Repos.Contracts.CountByStatus(ctx, rec.CompanyID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count registrations", err)
	}
	workers, err := s.Repos.Contracts.CountApprovedWorkers(ctx, rec.CompanyID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count workers", err)
	}
	return &ContractList{
		Items: items,
		Stats: ContractStats{
			Pending:      counts[models.RegistrationPending],
			Approved:     counts[models.RegistrationApproved],
			Rejected:     counts[models.RegistrationRejected],
			TotalWorkers: workers,
		},
	}, nil
}

func (s *contractService) AcceptedApplicants(ctx context.Context, rec *models.Recruiter) ([]models.Application, error) {
	out, err := s.Repos.Applications.ListAcceptedWithoutContract(ctx, rec.CompanyID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, "ContractService.AcceptedApplicants", "failed to list applicants", err)
	}
	return out, nil
}

func (s *contractService) Get(ctx context.Context, id string) (*models.ContractRegistration, error) {
	const op = "ContractService.Get"

	reg, err := s.Repos.Contracts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "registrasi kontrak tidak ditemukan", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load registration", err)
	}
	return reg, nil
}

func (s *contractService) GetForRecruiter(ctx context.Context, rec *models.Recruiter, id string) (*models.ContractRegistration, error) {
	reg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg.CompanyID != rec.CompanyID {
		return nil, utils.E(utils.CodeForbidden, "ContractService.GetForRecruiter", "registrasi bukan milik perusahaan anda", nil)
	}
	return reg, nil
}

func (s *contractService) List(ctx context.Context, status models.RegistrationStatus) ([]models.ContractRegistration, error) {
	out, err := s.Repos.Contracts.List(ctx, "", status)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, "ContractService.List", "failed to list registrations", err)
	}
	return out, nil
}

func (s *contractService) lock(ctx context.Context, op, id string) (*models.ContractRegistration, error) {
	reg, err := s.Repos.Contracts.LockByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "registrasi kontrak tidak ditemukan", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to lock registration", err)
	}
	return reg, nil
}

func (s *contractService) Process(ctx context.Context, admin *models.User, id string, in ProcessContractInput) (*models.ContractRegistration, error) {
	const op = "ContractService.Process"

	reason := strings.TrimSpace(in.RejectionReason)
	if !in.Approve && reason == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "alasan penolakan wajib diisi", nil)
	}

	var (
		out *models.ContractRegistration
		box outbox
	)
	now := s.Clock.Now()
	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		reg, err := s.lock(ctx, op, id)
		if err != nil {
			return err
		}
		if reg.Status != models.RegistrationPending {
			return utils.E(utils.CodeInvalidTransition, op, "registrasi kontrak sudah diproses", nil)
		}

		action := "approve"
		reg.Status = models.RegistrationApproved
		reg.RejectionReason = nil
		if !in.Approve {
			action = "reject"
			reg.Status = models.RegistrationRejected
			reg.RejectionReason = &reason
		}
		if notes := strings.TrimSpace(in.AdminNotes); notes != "" {
			reg.AdminNotes = &notes
		}
		reg.ProcessedAt = &now
		reg.ProcessedBy = &admin.ID
		reg.UpdatedAt = now
		if err := s.Repos.Contracts.Update(ctx, reg); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to update registration", err)
		}
		if err := writeAudit(ctx, s.Repos, admin.ID, AuditContractProcess, "contract_registration", reg.ID,
			map[string]any{"action": action, "reason": reason, "workers": len(reg.Workers)}, now); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to write audit log", err)
		}

		msg := "Registrasi kontrak anda disetujui"
		if !in.Approve {
			msg = "Registrasi kontrak anda ditolak: " + reason
		}
		box.add(recruiterUserID(ctx, s.Repos, reg.RecruiterID), models.NotifyContractProcessed,
			"Registrasi kontrak diproses", msg, "/recruiter/contracts/"+reg.ID)
		out = reg
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, s.Notifier, now)
	return out, nil
}

func (s *contractService) Resubmit(ctx context.Context, rec *models.Recruiter, id string, in RegisterContractInput) (*models.ContractRegistration, error) {
	const op = "ContractService.Resubmit"

	if len(in.Workers) > 0 {
		if err := validateWorkers(op, in.Workers); err != nil {
			return nil, err
		}
	}

	var out *models.ContractRegistration
	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		old, err := s.lock(ctx, op, id)
		if err != nil {
			return err
		}
		if old.CompanyID != rec.CompanyID {
			return utils.E(utils.CodeForbidden, op, "registrasi bukan milik perusahaan anda", nil)
		}
		if old.Status != models.RegistrationRejected {
			return utils.E(utils.CodeInvalidTransition, op, "hanya registrasi yang ditolak yang dapat diajukan ulang", nil)
		}

		previous := make([]WorkerInput, 0, len(old.Workers))
		for _, w := range old.Workers {
			notes := ""
			if w.Notes != nil {
				notes = *w.Notes
			}
			previous = append(previous, WorkerInput{
				ApplicationID: w.ApplicationID,
				JobTitle:      w.JobTitle,
				StartDate:     w.StartDate,
				EndDate:       w.EndDate,
				Salary:        w.Salary,
				Notes:         notes,
			})
		}

		// registration never moves applications off ACCEPTED; deleting the
		// rejected rows is what makes them eligible again
		if err := s.Repos.Contracts.Delete(ctx, old.ID); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to delete registration", err)
		}

		next := in
		if len(next.Workers) == 0 {
			next.Workers = previous
			if err := validateWorkers(op, next.Workers); err != nil {
				return err
			}
		}
		if strings.TrimSpace(next.RecruiterDocURL) == "" && old.RecruiterDocURL != nil {
			next.RecruiterDocURL = *old.RecruiterDocURL
		}
		reg, err := s.register(ctx, op, rec, next)
		out = reg
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *contractService) TerminateWorker(ctx context.Context, rec *models.Recruiter, workerID, reason string) (*models.ContractWorker, error) {
	const op = "ContractService.TerminateWorker"

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "alasan pemutusan wajib diisi", nil)
	}

	var (
		out *models.ContractWorker
		box outbox
	)
	now := s.Clock.Now()
	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		w, err := s.Repos.Contracts.LockWorker(ctx, workerID)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.E(utils.CodeNotFound, op, "pekerja tidak ditemukan", err)
			}
			return utils.E(utils.CodeInternal, op, "failed to lock worker", err)
		}
		if w.Registration == nil || w.Registration.CompanyID != rec.CompanyID {
			return utils.E(utils.CodeForbidden, op, "pekerja bukan milik perusahaan anda", nil)
		}
		if w.Registration.Status != models.RegistrationApproved {
			return utils.E(utils.CodeInvalidTransition, op, "registrasi kontrak belum disetujui", nil)
		}
		if w.Status != models.WorkerActive {
			return utils.E(utils.CodeInvalidTransition, op, "pekerja sudah tidak aktif", nil)
		}

		w.Status = models.WorkerTerminated
		w.TerminatedAt = &now
		w.TerminationReason = &reason
		w.UpdatedAt = now
		if err := s.Repos.Contracts.UpdateWorker(ctx, w); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to update worker", err)
		}
		if err := releaseWorker(ctx, s.Repos, w.ApplicationID, w.JobseekerID, now); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to release worker", err)
		}

		box.add(jobseekerUserID(ctx, s.Repos, w.JobseekerID), models.NotifyContractEnded,
			"Kontrak diakhiri", "Kontrak anda sebagai "+w.JobTitle+" diakhiri: "+reason, "/jobseeker/applications/"+w.ApplicationID)
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, s.Notifier, now)
	return out, nil
}

// releaseWorker resigns the application and puts the jobseeker back on the
// market. Employment is left alone when the application had already moved on.
func releaseWorker(ctx context.Context, repos Repos, applicationID, jobseekerID string, now time.Time) error {
	moved, err := repos.Applications.Resign(ctx, []string{applicationID}, now)
	if err != nil || moved == 0 {
		return err
	}
	return repos.Jobseekers.SetEmployment(ctx, jobseekerID, models.Looking(), now)
}

func (s *contractService) SummaryPDF(ctx context.Context, id string) ([]byte, error) {
	reg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := report.ContractSummary(reg, s.Clock.Now())
	if err != nil {
		return nil, utils.E(utils.CodeInternal, "ContractService.SummaryPDF", "failed to render summary", err)
	}
	return out, nil
}
