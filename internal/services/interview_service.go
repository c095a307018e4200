package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lokercirebon/jobportal/internal/models"
	"github.com/lokercirebon/jobportal/internal/utils"
)

const (
	defaultInterviewDuration = 60
	minRescheduleReason      = 10
)

type ScheduleInput struct {
	JobID          string    `json:"job_id"`
	ApplicationIDs []string  `json:"application_ids"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	Duration       int       `json:"duration"`
	MeetingType    string    `json:"meeting_type"`
	MeetingURL     string    `json:"meeting_url"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
}

type RescheduleInput struct {
	ScheduledAt time.Time `json:"scheduled_at"`
	Duration    int       `json:"duration"`
	MeetingURL  string    `json:"meeting_url"`
	Reason      string    `json:"reason"`
}

type RespondInput struct {
	Status  models.ParticipantStatus `json:"status"`
	Message string                   `json:"message"`
}

type InterviewService interface {
	Schedule(ctx context.Context, rec *models.Recruiter, in ScheduleInput) (*models.Interview, error)
	Respond(ctx context.Context, js *models.Jobseeker, participantID string, in RespondInput) (*models.InterviewParticipant, error)
	// Reschedule moves the whole interview and resets every participant to PENDING.
	Reschedule(ctx context.Context, rec *models.Recruiter, interviewID string, in RescheduleInput) (*models.Interview, error)
	// RescheduleParticipant detaches one participant into a new interview.
	RescheduleParticipant(ctx context.Context, rec *models.Recruiter, participantID string, in RescheduleInput) (*models.Interview, error)
	Complete(ctx context.Context, rec *models.Recruiter, interviewID string) (*models.Interview, error)

	ListForRecruiter(ctx context.Context, rec *models.Recruiter, status models.InterviewStatus) ([]models.Interview, error)
	Get(ctx context.Context, rec *models.Recruiter, interviewID string) (*models.Interview, error)
	ListForJobseeker(ctx context.Context, js *models.Jobseeker) ([]models.InterviewParticipant, error)
}

type interviewService struct {
	Deps
}

func NewInterviewService(d Deps) InterviewService {
	return &interviewService{Deps: d.withDefaults()}
}

func (s *interviewService) Schedule(ctx context.Context, rec *models.Recruiter, in ScheduleInput) (*models.Interview, error) {
	const op = "InterviewService.Schedule"

	ids := uniqueIDs(in.ApplicationIDs)
	if len(ids) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "pilih minimal satu pelamar", nil)
	}
	if in.ScheduledAt.IsZero() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "jadwal interview wajib diisi", nil)
	}
	now := s.Clock.Now()
	if !in.ScheduledAt.After(now) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "jadwal interview harus di masa depan", nil)
	}
	if in.Duration < 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "durasi tidak valid", nil)
	}

	var (
		out *models.Interview
		box outbox
	)
	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		job, err := ownedJob(ctx, s.Repos, op, rec, in.JobID)
		if err != nil {
			return err
		}

		apps, err := s.Repos.Applications.LockByIDs(ctx, ids)
		if err != nil {
			return utils.E(utils.CodeInternal, op, "failed to lock applications", err)
		}
		if len(apps) != len(ids) {
			return utils.E(utils.CodeNotFound, op, "lamaran tidak ditemukan", nil)
		}
		for _, a := range apps {
			if a.JobID != job.ID {
				return utils.E(utils.CodeInvalidArgument, op, "lamaran bukan untuk lowongan ini", nil)
			}
			if !statusIn(a.Status, schedulableStatuses) {
				return utils.E(utils.CodeInvalidTransition, op, "status lamaran tidak dapat dijadwalkan interview", nil)
			}
			// the application row lock makes this check-and-create atomic
			busy, err := s.Repos.Interviews.ActiveParticipantExists(ctx, a.ID)
			if err != nil {
				return utils.E(utils.CodeInternal, op, "failed to check interviews", err)
			}
			if busy {
				return utils.E(utils.CodeConflict, op, "pelamar sudah memiliki interview aktif", nil)
			}
		}

		title := strings.TrimSpace(in.Title)
		if title == "" {
			title = "Interview " + job.Title
		}
		duration := in.Duration
		if duration == 0 {
			duration = defaultInterviewDuration
		}
		meetingType := strings.TrimSpace(in.MeetingType)
		if meetingType == "" {
			meetingType = "ONLINE"
		}
		iv := &models.Interview{
			ID:          uuid.NewString(),
			JobID:       job.ID,
			RecruiterID: rec.ID,
			Title:       title,
			Description: in.Description,
			ScheduledAt: in.ScheduledAt.UTC(),
			Duration:    duration,
			MeetingType: meetingType,
			MeetingURL:  strings.TrimSpace(in.MeetingURL),
			Status:      models.InterviewScheduled,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		for _, a := range apps {
			iv.Participants = append(iv.Participants, models.InterviewParticipant{
				ID:            uuid.NewString(),
				InterviewID:   iv.ID,
				ApplicationID: a.ID,
				Status:        models.ParticipantPending,
				CreatedAt:     now,
				UpdatedAt:     now,
			})
		}
		if err := s.Repos.Interviews.Create(ctx, iv); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to create interview", err)
		}
		if _, err := s.Repos.Applications.SetStatus(ctx, ids, schedulableStatuses, models.AppInterviewScheduled, now); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to update applications", err)
		}

		for _, a := range apps {
			box.add(jobseekerUserID(ctx, s.Repos, a.JobseekerID), models.NotifyInterviewInvite,
				"Undangan interview", "Anda diundang interview untuk "+job.Title, "/jobseeker/interviews")
		}
		iv.Job = job
		out = iv
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, s.Notifier, now)
	return out, nil
}

// lockOwned locks the interview and checks it belongs to the recruiter's company.
func (s *interviewService) lockOwned(ctx context.Context, op string, rec *models.Recruiter, id string) (*models.Interview, *models.Job, error) {
	iv, err := s.Repos.Interviews.LockByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, nil, utils.E(utils.CodeNotFound, op, "interview tidak ditemukan", err)
		}
		return nil, nil, utils.E(utils.CodeInternal, op, "failed to lock interview", err)
	}
	job, err := ownedJob(ctx, s.Repos, op, rec, iv.JobID)
	if err != nil {
		return nil, nil, err
	}
	return iv, job, nil
}

func (s *interviewService) Respond(ctx context.Context, js *models.Jobseeker, participantID string, in RespondInput) (*models.InterviewParticipant, error) {
	const op = "InterviewService.Respond"

	msg := strings.TrimSpace(in.Message)
	switch in.Status {
	case models.ParticipantAccepted, models.ParticipantDeclined:
	case models.ParticipantRescheduleRequested:
		if len([]rune(msg)) < minRescheduleReason {
			return nil, utils.E(utils.CodeInvalidArgument, op, "alasan reschedule minimal 10 karakter", nil)
		}
	default:
		return nil, utils.E(utils.CodeInvalidArgument, op, "respon interview tidak valid", nil)
	}

	// participant first to learn the interview, then lock in interview -> participant order
	found, err := s.Repos.Interviews.GetParticipant(ctx, participantID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "undangan interview tidak ditemukan", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load participant", err)
	}
	if found.Application == nil || found.Application.JobseekerID != js.ID {
		return nil, utils.E(utils.CodeForbidden, op, "undangan interview bukan milik anda", nil)
	}

	var (
		out *models.InterviewParticipant
		box outbox
	)
	now := s.Clock.Now()
	err = s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		iv, err := s.Repos.Interviews.LockByID(ctx, found.InterviewID)
		if err != nil {
			return utils.E(utils.CodeInternal, op, "failed to lock interview", err)
		}
		p, err := s.Repos.Interviews.LockParticipant(ctx, participantID)
		if err != nil {
			return utils.E(utils.CodeInternal, op, "failed to lock participant", err)
		}
		if p.InterviewID != iv.ID {
			return utils.E(utils.CodeConflict, op, "interview telah dijadwalkan ulang, silakan muat ulang", nil)
		}
		if !iv.Status.Open() {
			return utils.E(utils.CodeInvalidTransition, op, "interview sudah tidak aktif", nil)
		}
		if p.Status != models.ParticipantPending {
			return utils.E(utils.CodeInvalidTransition, op, "anda sudah merespon undangan ini", nil)
		}

		p.Status = in.Status
		if msg != "" {
			p.ResponseMessage = &msg
		}
		p.RespondedAt = &now
		p.UpdatedAt = now
		if err := s.Repos.Interviews.UpdateParticipant(ctx, p); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to update participant", err)
		}

		box.add(recruiterUserID(ctx, s.Repos, iv.RecruiterID), models.NotifyInterviewResponse,
			"Respon interview", js.FullName()+" merespon "+string(in.Status)+" untuk "+iv.Title, "/recruiter/interviews/"+iv.ID)
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, s.Notifier, now)
	return out, nil
}

func validReschedule(op string, in RescheduleInput, now time.Time) error {
	if in.ScheduledAt.IsZero() {
		return utils.E(utils.CodeInvalidArgument, op, "jadwal interview wajib diisi", nil)
	}
	if !in.ScheduledAt.After(now) {
		return utils.E(utils.CodeInvalidArgument, op, "jadwal interview harus di masa depan", nil)
	}
	if in.Duration < 0 {
		return utils.E(utils.CodeInvalidArgument, op, "durasi tidak valid", nil)
	}
	return nil
}

func applyReschedule(iv *models.Interview, in RescheduleInput, now time.Time) {
	iv.ScheduledAt = in.ScheduledAt.UTC()
	if in.Duration > 0 {
		iv.Duration = in.Duration
	}
	if u := strings.TrimSpace(in.MeetingURL); u != "" {
		iv.MeetingURL = u
	}
	iv.Status = models.InterviewRescheduled
	iv.UpdatedAt = now
}

func (s *interviewService) Reschedule(ctx context.Context, rec *models.Recruiter, interviewID string, in RescheduleInput) (*models.Interview, error) {
	const op = "InterviewService.Reschedule"

	now := s.Clock.Now()
	if err := validReschedule(op, in, now); err != nil {
		return nil, err
	}

	var (
		out *models.Interview
		box outbox
	)
	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		iv, job, err := s.lockOwned(ctx, op, rec, interviewID)
		if err != nil {
			return err
		}
		if !iv.Status.Open() {
			return utils.E(utils.CodeInvalidTransition, op, "interview sudah tidak aktif", nil)
		}
		applyReschedule(iv, in, now)
		if err := s.Repos.Interviews.Update(ctx, iv); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to update interview", err)
		}
		if err := s.Repos.Interviews.ResetParticipants(ctx, iv.ID, now); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to reset participants", err)
		}

		parts, err := s.Repos.Interviews.ListParticipants(ctx, iv.ID)
		if err != nil {
			return utils.E(utils.CodeInternal, op, "failed to list participants", err)
		}
		for _, p := range parts {
			if p.Application == nil {
				continue
			}
			box.add(jobseekerUserID(ctx, s.Repos, p.Application.JobseekerID), models.NotifyInterviewReschedule,
				"Interview dijadwalkan ulang", "Jadwal interview "+job.Title+" berubah", "/jobseeker/interviews")
		}
		iv.Participants = parts
		iv.Job = job
		out = iv
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, s.Notifier, now)
	return out, nil
}

func (s *interviewService) RescheduleParticipant(ctx context.Context, rec *models.Recruiter, participantID string, in RescheduleInput) (*models.Interview, error) {
	const op = "InterviewService.RescheduleParticipant"

	now := s.Clock.Now()
	if err := validReschedule(op, in, now); err != nil {
		return nil, err
	}
	found, err := s.Repos.Interviews.GetParticipant(ctx, participantID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "peserta interview tidak ditemukan", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load participant", err)
	}

	var (
		out *models.Interview
		box outbox
	)
	err = s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		src, job, err := s.lockOwned(ctx, op, rec, found.InterviewID)
		if err != nil {
			return err
		}
		p, err := s.Repos.Interviews.LockParticipant(ctx, participantID)
		if err != nil {
			return utils.E(utils.CodeInternal, op, "failed to lock participant", err)
		}
		if p.InterviewID != src.ID {
			return utils.E(utils.CodeConflict, op, "peserta sudah dipindahkan, silakan muat ulang", nil)
		}
		if !src.Status.Open() {
			return utils.E(utils.CodeInvalidTransition, op, "interview sudah tidak aktif", nil)
		}
		if p.Status == models.ParticipantCompleted {
			return utils.E(utils.CodeInvalidTransition, op, "peserta sudah menyelesaikan interview", nil)
		}

		detached := *src
		detached.ID = uuid.NewString()
		detached.Participants = nil
		detached.Job = nil
		detached.CreatedAt = now
		applyReschedule(&detached, in, now)
		if err := s.Repos.Interviews.Create(ctx, &detached); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to create interview", err)
		}

		p.InterviewID = detached.ID
		p.Status = models.ParticipantPending
		p.ResponseMessage = nil
		p.RespondedAt = nil
		p.UpdatedAt = now
		if err := s.Repos.Interviews.UpdateParticipant(ctx, p); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to move participant", err)
		}

		left, err := s.Repos.Interviews.CountParticipants(ctx, src.ID)
		if err != nil {
			return utils.E(utils.CodeInternal, op, "failed to count participants", err)
		}
		if left == 0 {
			src.Status = models.InterviewCancelled
			src.UpdatedAt = now
			if err := s.Repos.Interviews.Update(ctx, src); err != nil {
				return utils.E(utils.CodeInternal, op, "failed to cancel interview", err)
			}
		}

		if found.Application != nil {
			box.add(jobseekerUserID(ctx, s.Repos, found.Application.JobseekerID), models.NotifyInterviewReschedule,
				"Interview dijadwalkan ulang", "Jadwal interview "+job.Title+" berubah", "/jobseeker/interviews")
		}
		detached.Participants = []models.InterviewParticipant{*p}
		detached.Job = job
		out = &detached
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, s.Notifier, now)
	return out, nil
}

func (s *interviewService) Complete(ctx context.Context, rec *models.Recruiter, interviewID string) (*models.Interview, error) {
	const op = "InterviewService.Complete"

	var (
		out *models.Interview
		box outbox
	)
	now := s.Clock.Now()
	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		iv, job, err := s.lockOwned(ctx, op, rec, interviewID)
		if err != nil {
			return err
		}
		if !iv.Status.Open() {
			return utils.E(utils.CodeInvalidTransition, op, "interview sudah tidak aktif", nil)
		}
		if now.Before(iv.ScheduledAt) {
			return utils.E(utils.CodeInvalidTransition, op, "interview belum dimulai", nil)
		}

		done, err := s.Repos.Interviews.CompleteParticipants(ctx, iv.ID,
			[]models.ParticipantStatus{models.ParticipantAccepted}, now)
		if err != nil {
			return utils.E(utils.CodeInternal, op, "failed to complete participants", err)
		}
		moved, err := completeInterviewApplications(ctx, s.Repos, done, now)
		if err != nil {
			return utils.Internal(op, "failed to update applications", err)
		}

		iv.Status = models.InterviewCompleted
		iv.UpdatedAt = now
		if err := s.Repos.Interviews.Update(ctx, iv); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to update interview", err)
		}

		for _, a := range moved {
			box.add(jobseekerUserID(ctx, s.Repos, a.JobseekerID), models.NotifyInterviewCompleted,
				"Interview selesai", "Interview "+job.Title+" telah selesai", "/jobseeker/applications/"+a.ID)
		}
		iv.Job = job
		out = iv
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, s.Notifier, now)
	return out, nil
}

// completeInterviewApplications moves the applications of completed participants
// from INTERVIEW_SCHEDULED to INTERVIEW_COMPLETED and returns the ones that moved.
func completeInterviewApplications(ctx context.Context, repos Repos, parts []models.InterviewParticipant, now time.Time) ([]models.Application, error) {
	if len(parts) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		ids = append(ids, p.ApplicationID)
	}
	apps, err := repos.Applications.LockByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	var (
		moved    []models.Application
		movedIDs []string
	)
	for _, a := range apps {
		if a.Status == models.AppInterviewScheduled {
			moved = append(moved, a)
			movedIDs = append(movedIDs, a.ID)
		}
	}
	if _, err := repos.Applications.SetStatus(ctx, movedIDs,
		[]models.ApplicationStatus{models.AppInterviewScheduled}, models.AppInterviewCompleted, now); err != nil {
		return nil, err
	}
	return moved, nil
}

func (s *interviewService) ListForRecruiter(ctx context.Context, rec *models.Recruiter, status models.InterviewStatus) ([]models.Interview, error) {
	out, err := s.Repos.Interviews.ListByCompany(ctx, rec.CompanyID, status)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, "InterviewService.ListForRecruiter", "failed to list interviews", err)
	}
	return out, nil
}

func (s *interviewService) Get(ctx context.Context, rec *models.Recruiter, interviewID string) (*models.Interview, error) {
	const op = "InterviewService.Get"

	iv, err := s.Repos.Interviews.GetByID(ctx, interviewID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "interview tidak ditemukan", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load interview", err)
	}
	if iv.Job == nil || iv.Job.CompanyID != rec.CompanyID {
		return nil, utils.E(utils.CodeForbidden, op, "interview bukan milik perusahaan anda", nil)
	}
	return iv, nil
}

func (s *interviewService) ListForJobseeker(ctx context.Context, js *models.Jobseeker) ([]models.InterviewParticipant, error) {
	out, err := s.Repos.Interviews.ListForJobseeker(ctx, js.ID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, "InterviewService.ListForJobseeker", "failed to list interviews", err)
	}
	return out, nil
}
