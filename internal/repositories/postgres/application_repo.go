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

type ApplicationRepository interface {
	Create(ctx context.Context, a *models.Application) error
	GetByID(ctx context.Context, id string) (*models.Application, error)
	LockByID(ctx context.Context, id string) (*models.Application, error)
	// LockByIDs locks rows in id order so concurrent batches cannot deadlock.
	LockByIDs(ctx context.Context, ids []string) ([]models.Application, error)
	Update(ctx context.Context, a *models.Application) error
	Exists(ctx context.Context, jobID, jobseekerID string) (bool, error)

	ListByJobseeker(ctx context.Context, jobseekerID string) ([]models.Application, error)
	ListByJob(ctx context.Context, jobID string, status models.ApplicationStatus) ([]models.Application, error)
	ListAcceptedWithoutContract(ctx context.Context, companyID string) ([]models.Application, error)

	FindConfirmed(ctx context.Context, jobseekerID string) (*models.Application, error)
	// SetStatus moves the rows still in one of from to the status to.
	SetStatus(ctx context.Context, ids []string, from []models.ApplicationStatus, to models.ApplicationStatus, now time.Time) (int64, error)
	LockPreTerminalByJobseeker(ctx context.Context, jobseekerID, exceptID string) ([]models.Application, error)
	// Resign moves ACCEPTED rows to RESIGNED and releases their confirmation.
	Resign(ctx context.Context, ids []string, now time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int64, error)

	CountByStatusForCompany(ctx context.Context, companyID string) (map[models.ApplicationStatus]int64, error)
	CountForCompanySince(ctx context.Context, companyID string, since time.Time) (int64, error)
	// ListRecentForCompany returns the newest applications to the company's jobs.
	ListRecentForCompany(ctx context.Context, companyID string, limit int) ([]models.Application, error)
}

type applicationRepo struct {
	db *gorm.DB
}

func NewApplicationRepo(db *gorm.DB) ApplicationRepository {
	return &applicationRepo{db: db}
}

func (r *applicationRepo) Create(ctx context.Context, a *models.Application) error {
	err := conn(ctx, r.db).Omit(clause.Associations).Create(a).Error
	if isUniqueViolation(err) {
		return utils.ErrDuplicate
	}
	return err
}

func (r *applicationRepo) GetByID(ctx context.Context, id string) (*models.Application, error) {
	var a models.Application
	err := conn(ctx, r.db).
		Preload("Job").Preload("Job.Company").Preload("Jobseeker").
		Where("id = ?", id).
		Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &a, err
}

func (r *applicationRepo) LockByID(ctx context.Context, id string) (*models.Application, error) {
	var a models.Application
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &a, err
}

func (r *applicationRepo) LockByIDs(ctx context.Context, ids []string) ([]models.Application, error) {
	var out []models.Application
	if len(ids) == 0 {
		return out, nil
	}
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *applicationRepo) Update(ctx context.Context, a *models.Application) error {
	err := conn(ctx, r.db).Omit(clause.Associations).Save(a).Error
	if isUniqueViolation(err) {
		return utils.ErrDuplicate
	}
	return err
}

func (r *applicationRepo) Exists(ctx context.Context, jobID, jobseekerID string) (bool, error) {
	var n int64
	err := conn(ctx, r.db).Model(&models.Application{}).
		Where("job_id = ? AND jobseeker_id = ?", jobID, jobseekerID).
		Count(&n).Error
	return n > 0, err
}

func (r *applicationRepo) ListByJobseeker(ctx context.Context, jobseekerID string) ([]models.Application, error) {
	var out []models.Application
	err := conn(ctx, r.db).
		Preload("Job").Preload("Job.Company").
		Where("jobseeker_id = ?", jobseekerID).
		Order("applied_at DESC").
		Find(&out).Error
	return out, err
}

func (r *applicationRepo) ListByJob(ctx context.Context, jobID string, status models.ApplicationStatus) ([]models.Application, error) {
	q := conn(ctx, r.db).Preload("Jobseeker").Where("job_id = ?", jobID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.Application
	err := q.Order("applied_at DESC").Find(&out).Error
	return out, err
}

func (r *applicationRepo) ListAcceptedWithoutContract(ctx context.Context, companyID string) ([]models.Application, error) {
	var out []models.Application
	err := conn(ctx, r.db).
		Preload("Jobseeker").Preload("Job").
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("jobs.company_id = ? AND applications.status = ?", companyID, models.AppAccepted).
		Where(`NOT EXISTS (
			SELECT 1 FROM contract_workers w
			JOIN contract_registrations cr ON cr.id = w.contract_registration_id
			WHERE w.application_id = applications.id AND cr.status IN ?)`,
			[]models.RegistrationStatus{models.RegistrationPending, models.RegistrationApproved}).
		Order("applications.updated_at DESC").
		Find(&out).Error
	return out, err
}

func (r *applicationRepo) FindConfirmed(ctx context.Context, jobseekerID string) (*models.Application, error) {
	var a models.Application
	err := conn(ctx, r.db).
		Where("jobseeker_id = ? AND confirmed_by_jobseeker", jobseekerID).
		Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &a, err
}

func (r *applicationRepo) SetStatus(ctx context.Context, ids []string, from []models.ApplicationStatus, to models.ApplicationStatus, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := conn(ctx, r.db).Model(&models.Application{}).Where("id IN ?", ids)
	if len(from) > 0 {
		q = q.Where("status IN ?", from)
	}
	res := q.Updates(map[string]any{"status": to, "updated_at": now})
	return res.RowsAffected, res.Error
}

func (r *applicationRepo) LockPreTerminalByJobseeker(ctx context.Context, jobseekerID, exceptID string) ([]models.Application, error) {
	var out []models.Application
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("jobseeker_id = ? AND id <> ? AND status IN ?", jobseekerID, exceptID, models.PreTerminalStatuses).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *applicationRepo) Resign(ctx context.Context, ids []string, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := conn(ctx, r.db).Model(&models.Application{}).
		Where("id IN ? AND status = ?", ids, models.AppAccepted).
		Updates(map[string]any{
			"status":                 models.AppResigned,
			"confirmed_by_jobseeker": false,
			"updated_at":             now,
		})
	return res.RowsAffected, res.Error
}

func (r *applicationRepo) CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int64, error) {
	return countApplicationsByStatus(conn(ctx, r.db).Model(&models.Application{}))
}

func (r *applicationRepo) CountByStatusForCompany(ctx context.Context, companyID string) (map[models.ApplicationStatus]int64, error) {
	return countApplicationsByStatus(r.forCompany(ctx, companyID))
}

func countApplicationsByStatus(q *gorm.DB) (map[models.ApplicationStatus]int64, error) {
	var rows []struct {
		Status models.ApplicationStatus
		Count  int64
	}
	err := q.Select("applications.status AS status, COUNT(*) AS count").
		Group("applications.status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[models.ApplicationStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *applicationRepo) CountForCompanySince(ctx context.Context, companyID string, since time.Time) (int64, error) {
	var n int64
	err := r.forCompany(ctx, companyID).
		Where("applications.applied_at >= ?", since).
		Count(&n).Error
	return n, err
}

func (r *applicationRepo) ListRecentForCompany(ctx context.Context, companyID string, limit int) ([]models.Application, error) {
	var out []models.Application
	err := r.forCompany(ctx, companyID).
		Select("applications.*").
		Preload("Jobseeker").Preload("Job").
		Order("applications.applied_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *applicationRepo) forCompany(ctx context.Context, companyID string) *gorm.DB {
	return conn(ctx, r.db).Model(&models.Application{}).
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("jobs.company_id = ?", companyID)
}
