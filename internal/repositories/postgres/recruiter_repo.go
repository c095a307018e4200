package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lokercirebon/jobportal/internal/models"
	"github.com/lokercirebon/jobportal/internal/utils"
	"gorm.io/gorm"
)

type RecruiterRepository interface {
	Create(ctx context.Context, rec *models.Recruiter) error
	GetByID(ctx context.Context, id string) (*models.Recruiter, error)
	GetByUserID(ctx context.Context, userID string) (*models.Recruiter, error)
	SetVerified(ctx context.Context, id string, verified bool, at time.Time) error
	ListByCompany(ctx context.Context, companyID string) ([]models.Recruiter, error)
	Count(ctx context.Context) (int64, error)
}

type recruiterRepo struct {
	db *gorm.DB
}

func NewRecruiterRepo(db *gorm.DB) RecruiterRepository {
	return &recruiterRepo{db: db}
}

func (r *recruiterRepo) Create(ctx context.Context, rec *models.Recruiter) error {
	err := conn(ctx, r.db).Omit("Company").Create(rec).Error
	if isUniqueViolation(err) {
		return utils.ErrDuplicate
	}
	return err
}

func (r *recruiterRepo) GetByID(ctx context.Context, id string) (*models.Recruiter, error) {
	return r.take(conn(ctx, r.db).Preload("Company").Where("id = ?", id))
}

func (r *recruiterRepo) GetByUserID(ctx context.Context, userID string) (*models.Recruiter, error) {
	return r.take(conn(ctx, r.db).Preload("Company").Where("user_id = ?", userID))
}

func (r *recruiterRepo) take(q *gorm.DB) (*models.Recruiter, error) {
	var rec models.Recruiter
	err := q.Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &rec, err
}

func (r *recruiterRepo) SetVerified(ctx context.Context, id string, verified bool, at time.Time) error {
	res := conn(ctx, r.db).Model(&models.Recruiter{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_verified": verified, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *recruiterRepo) ListByCompany(ctx context.Context, companyID string) ([]models.Recruiter, error) {
	var out []models.Recruiter
	err := conn(ctx, r.db).Where("company_id = ?", companyID).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *recruiterRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&models.Recruiter{}).Count(&n).Error
	return n, err
}
