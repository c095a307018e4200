package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lokercirebon/jobportal/internal/models"
	"github.com/lokercirebon/jobportal/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var openInterviewStatuses = []models.InterviewStatus{models.InterviewScheduled, models.InterviewRescheduled}

type InterviewRepository interface {
	// Create inserts the interview together with its Participants.
	Create(ctx context.Context, iv *models.Interview) error
	GetByID(ctx context.Context, id string) (*models.Interview, error)
	LockByID(ctx context.Context, id string) (*models.Interview, error)
	Update(ctx context.Context, iv *models.Interview) error
	ListByCompany(ctx context.Context, companyID string, status models.InterviewStatus) ([]models.Interview, error)

	ActiveParticipantExists(ctx context.Context, applicationID string) (bool, error)
	GetParticipant(ctx context.Context, id string) (*models.InterviewParticipant, error)
	LockParticipant(ctx context.Context, id string) (*models.InterviewParticipant, error)
	UpdateParticipant(ctx context.Context, p *models.InterviewParticipant) error
	ListParticipants(ctx context.Context, interviewID string) ([]models.InterviewParticipant, error)
	CountParticipants(ctx context.Context, interviewID string) (int64, error)
	ResetParticipants(ctx context.Context, interviewID string, now time.Time) error
	// CompleteParticipants moves participants in one of from to COMPLETED and returns them.
	CompleteParticipants(ctx context.Context, interviewID string, from []models.ParticipantStatus, now time.Time) ([]models.InterviewParticipant, error)
	ListForJobseeker(ctx context.Context, jobseekerID string) ([]models.InterviewParticipant, error)

	LockOverdue(ctx context.Context, cutoff time.Time, limit int) ([]models.Interview, error)
}

type interviewRepo struct {
	db *gorm.DB
}

func NewInterviewRepo(db *gorm.DB) InterviewRepository {
	return &interviewRepo{db: db}
}

func (r *interviewRepo) Create(ctx context.Context, iv *models.Interview) error {
	return conn(ctx, r.db).Omit("Job", "Participants.Interview", "Participants.Application").Create(iv).Error
}

func (r *interviewRepo) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	var iv models.Interview
	err := conn(ctx, r.db).
		Preload("Job").
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Participants.Application").
		Preload("Participants.Application.Jobseeker").
		Where("id = ?", id).
		Take(&iv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &iv, err
}

func (r *interviewRepo) LockByID(ctx context.Context, id string) (*models.Interview, error) {
	var iv models.Interview
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&iv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &iv, err
}

func (r *interviewRepo) Update(ctx context.Context, iv *models.Interview) error {
	return conn(ctx, r.db).Omit(clause.Associations).Save(iv).Error
}

func (r *interviewRepo) ListByCompany(ctx context.Context, companyID string, status models.InterviewStatus) ([]models.Interview, error) {
	q := conn(ctx, r.db).
		Preload("Job").
		Preload("Participants").
		Preload("Participants.Application").
		Preload("Participants.Application.Jobseeker").
		Joins("JOIN jobs ON jobs.id = interviews.job_id").
		Where("jobs.company_id = ?", companyID)
	if status != "" {
		q = q.Where("interviews.status = ?", status)
	}
	var out []models.Interview
	err := q.Order("interviews.scheduled_at DESC").Find(&out).Error
	return out, err
}

func (r *interviewRepo) ActiveParticipantExists(ctx context.Context, applicationID string) (bool, error) {
	var n int64
	err := conn(ctx, r.db).Model(&models.InterviewParticipant{}).
		Joins("JOIN interviews ON interviews.id = interview_participants.interview_id").
		Where("interview_participants.application_id = ?", applicationID).
		Where("interviews.status IN ?", openInterviewStatuses).
		Count(&n).Error
	return n > 0, err
}

func (r *interviewRepo) GetParticipant(ctx context.Context, id string) (*models.InterviewParticipant, error) {
	var p models.InterviewParticipant
	err := conn(ctx, r.db).
		Preload("Interview").
		Preload("Interview.Job").
		Preload("Application").
		Where("id = ?", id).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &p, err
}

func (r *interviewRepo) LockParticipant(ctx context.Context, id string) (*models.InterviewParticipant, error) {
	var p models.InterviewParticipant
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &p, err
}

func (r *interviewRepo) UpdateParticipant(ctx context.Context, p *models.InterviewParticipant) error {
	return conn(ctx, r.db).Omit(clause.Associations).Save(p).Error
}

func (r *interviewRepo) ListParticipants(ctx context.Context, interviewID string) ([]models.InterviewParticipant, error) {
	var out []models.InterviewParticipant
	err := conn(ctx, r.db).
		Preload("Application").
		Where("interview_id = ?", interviewID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *interviewRepo) CountParticipants(ctx context.Context, interviewID string) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&models.InterviewParticipant{}).
		Where("interview_id = ?", interviewID).
		Count(&n).Error
	return n, err
}

func (r *interviewRepo) ResetParticipants(ctx context.Context, interviewID string, now time.Time) error {
	return conn(ctx, r.db).Model(&models.InterviewParticipant{}).
		Where("interview_id = ?", interviewID).
		Updates(map[string]any{
			"status":           models.ParticipantPending,
			"response_message": nil,
			"responded_at":     nil,
			"updated_at":       now,
		}).Error
}

func (r *interviewRepo) CompleteParticipants(ctx context.Context, interviewID string, from []models.ParticipantStatus, now time.Time) ([]models.InterviewParticipant, error) {
	var out []models.InterviewParticipant
	err := conn(ctx, r.db).Model(&out).
		Clauses(clause.Returning{}).
		Where("interview_id = ? AND status IN ?", interviewID, from).
		Updates(map[string]any{"status": models.ParticipantCompleted, "updated_at": now}).Error
	return out, err
}

func (r *interviewRepo) ListForJobseeker(ctx context.Context, jobseekerID string) ([]models.InterviewParticipant, error) {
	var out []models.InterviewParticipant
	err := conn(ctx, r.db).
		Preload("Interview").
		Preload("Interview.Job").
		Preload("Interview.Job.Company").
		Preload("Application").
		Joins("JOIN applications ON applications.id = interview_participants.application_id").
		Where("applications.jobseeker_id = ?", jobseekerID).
		Order("interview_participants.created_at DESC").
		Find(&out).Error
	return out, err
}

// LockOverdue locks open interviews scheduled at or before cutoff, skipping rows
// another sweep already holds.
func (r *interviewRepo) LockOverdue(ctx context.Context, cutoff time.Time, limit int) ([]models.Interview, error) {
	var out []models.Interview
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status IN ? AND scheduled_at <= ?", openInterviewStatuses, cutoff).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
