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

type ContractRepository interface {
	// Create inserts the registration together with its Workers.
	Create(ctx context.Context, reg *models.ContractRegistration) error
	GetByID(ctx context.Context, id string) (*models.ContractRegistration, error)
	LockByID(ctx context.Context, id string) (*models.ContractRegistration, error)
	Update(ctx context.Context, reg *models.ContractRegistration) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, companyID string, status models.RegistrationStatus) ([]models.ContractRegistration, error)
	CountByStatus(ctx context.Context, companyID string) (map[models.RegistrationStatus]int64, error)

	OpenRegistrationExists(ctx context.Context, applicationID string) (bool, error)
	CountApprovedWorkers(ctx context.Context, companyID string) (int64, error)
	LockWorker(ctx context.Context, id string) (*models.ContractWorker, error)
	UpdateWorker(ctx context.Context, w *models.ContractWorker) error
	LockActiveWorkerByApplication(ctx context.Context, applicationID string) (*models.ContractWorker, error)
	// FindActiveWorkerByJobseeker returns the newest ACTIVE worker row under an
	// APPROVED registration, with Registration.Company loaded.
	FindActiveWorkerByJobseeker(ctx context.Context, jobseekerID string) (*models.ContractWorker, error)
	LockExpiredWorkers(ctx context.Context, now time.Time, limit int) ([]models.ContractWorker, error)
	// CompleteWorkers repeats the ACTIVE predicate and returns the rows it changed.
	CompleteWorkers(ctx context.Context, ids []string, now time.Time) ([]models.ContractWorker, error)
}

type contractRepo struct {
	db *gorm.DB
}

func NewContractRepo(db *gorm.DB) ContractRepository {
	return &contractRepo{db: db}
}

func (r *contractRepo) Create(ctx context.Context, reg *models.ContractRegistration) error {
	return conn(ctx, r.db).Omit("Company", "Workers.Registration", "Workers.Jobseeker").Create(reg).Error
}

func (r *contractRepo) GetByID(ctx context.Context, id string) (*models.ContractRegistration, error) {
	var reg models.ContractRegistration
	err := conn(ctx, r.db).
		Preload("Company").
		Preload("Workers", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Workers.Jobseeker").
		Where("id = ?", id).
		Take(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &reg, err
}

func (r *contractRepo) LockByID(ctx context.Context, id string) (*models.ContractRegistration, error) {
	var reg models.ContractRegistration
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	err = conn(ctx, r.db).Where("contract_registration_id = ?", id).Order("created_at ASC").Find(&reg.Workers).Error
	return &reg, err
}

func (r *contractRepo) Update(ctx context.Context, reg *models.ContractRegistration) error {
	return conn(ctx, r.db).Omit(clause.Associations).Save(reg).Error
}

func (r *contractRepo) Delete(ctx context.Context, id string) error {
	db := conn(ctx, r.db)
	if err := db.Where("contract_registration_id = ?", id).Delete(&models.ContractWorker{}).Error; err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&models.ContractRegistration{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *contractRepo) List(ctx context.Context, companyID string, status models.RegistrationStatus) ([]models.ContractRegistration, error) {
	q := conn(ctx, r.db).Preload("Company").Preload("Workers").Preload("Workers.Jobseeker")
	if companyID != "" {
		q = q.Where("company_id = ?", companyID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.ContractRegistration
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *contractRepo) CountByStatus(ctx context.Context, companyID string) (map[models.RegistrationStatus]int64, error) {
	q := conn(ctx, r.db).Model(&models.ContractRegistration{}).Select("status, COUNT(*) AS count")
	if companyID != "" {
		q = q.Where("company_id = ?", companyID)
	}
	var rows []struct {
		Status models.RegistrationStatus
		Count  int64
	}
	if err := q.Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[models.RegistrationStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *contractRepo) OpenRegistrationExists(ctx context.Context, applicationID string) (bool, error) {
	var n int64
	err := conn(ctx, r.db).Model(&models.ContractWorker{}).
		Joins("JOIN contract_registrations ON contract_registrations.id = contract_workers.contract_registration_id").
		Where("contract_workers.application_id = ?", applicationID).
		Where("contract_registrations.status IN ?", []models.RegistrationStatus{models.RegistrationPending, models.RegistrationApproved}).
		Count(&n).Error
	return n > 0, err
}

func (r *contractRepo) CountApprovedWorkers(ctx context.Context, companyID string) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&models.ContractWorker{}).
		Joins("JOIN contract_registrations ON contract_registrations.id = contract_workers.contract_registration_id").
		Where("contract_registrations.company_id = ? AND contract_registrations.status = ?", companyID, models.RegistrationApproved).
		Count(&n).Error
	return n, err
}

func (r *contractRepo) LockWorker(ctx context.Context, id string) (*models.ContractWorker, error) {
	var w models.ContractWorker
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var reg models.ContractRegistration
	if err := conn(ctx, r.db).Where("id = ?", w.ContractRegistrationID).Take(&reg).Error; err != nil {
		return nil, err
	}
	w.Registration = &reg
	return &w, nil
}

func (r *contractRepo) UpdateWorker(ctx context.Context, w *models.ContractWorker) error {
	return conn(ctx, r.db).Omit(clause.Associations).Save(w).Error
}

func (r *contractRepo) LockActiveWorkerByApplication(ctx context.Context, applicationID string) (*models.ContractWorker, error) {
	var w models.ContractWorker
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("application_id = ? AND status = ?", applicationID, models.WorkerActive).
		Order("created_at DESC").
		Take(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &w, err
}

func (r *contractRepo) FindActiveWorkerByJobseeker(ctx context.Context, jobseekerID string) (*models.ContractWorker, error) {
	var w models.ContractWorker
	err := conn(ctx, r.db).
		Preload("Registration").Preload("Registration.Company").
		Joins("JOIN contract_registrations cr ON cr.id = contract_workers.contract_registration_id").
		Where("contract_workers.jobseeker_id = ? AND contract_workers.status = ? AND cr.status = ?",
			jobseekerID, models.WorkerActive, models.RegistrationApproved).
		Order("contract_workers.start_date DESC").
		Take(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &w, err
}

func (r *contractRepo) LockExpiredWorkers(ctx context.Context, now time.Time, limit int) ([]models.ContractWorker, error) {
	var out []models.ContractWorker
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ? AND end_date < ?", models.WorkerActive, now).
		Where("contract_registration_id IN (?)",
			conn(ctx, r.db).Model(&models.ContractRegistration{}).Select("id").Where("status = ?", models.RegistrationApproved)).
		Order("end_date ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *contractRepo) CompleteWorkers(ctx context.Context, ids []string, now time.Time) ([]models.ContractWorker, error) {
	var out []models.ContractWorker
	if len(ids) == 0 {
		return out, nil
	}
	err := conn(ctx, r.db).Model(&out).
		Clauses(clause.Returning{}).
		Where("id IN ? AND status = ?", ids, models.WorkerActive).
		Updates(map[string]any{"status": models.WorkerCompleted, "updated_at": now}).Error
	return out, err
}
