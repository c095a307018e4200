package postgres

import (
	"context"
	"errors"

	"github.com/lokercirebon/jobportal/internal/models"
	"github.com/lokercirebon/jobportal/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResignationRepository interface {
	Create(ctx context.Context, res *models.Resignation) error
	GetByID(ctx context.Context, id string) (*models.Resignation, error)
	LockByID(ctx context.Context, id string) (*models.Resignation, error)
	Update(ctx context.Context, res *models.Resignation) error
	ListByCompany(ctx context.Context, companyID string, status models.ResignationStatus) ([]models.Resignation, error)
	ListByJobseeker(ctx context.Context, jobseekerID string) ([]models.Resignation, error)
}

type resignationRepo struct {
	db *gorm.DB
}

func NewResignationRepo(db *gorm.DB) ResignationRepository {
	return &resignationRepo{db: db}
}

func (r *resignationRepo) Create(ctx context.Context, res *models.Resignation) error {
	err := conn(ctx, r.db).Create(res).Error
	if isUniqueViolation(err) {
		return utils.ErrDuplicate
	}
	return err
}

func (r *resignationRepo) GetByID(ctx context.Context, id string) (*models.Resignation, error) {
	return r.take(conn(ctx, r.db).Where("id = ?", id))
}

func (r *resignationRepo) LockByID(ctx context.Context, id string) (*models.Resignation, error) {
	return r.take(conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

func (r *resignationRepo) take(q *gorm.DB) (*models.Resignation, error) {
	var res models.Resignation
	err := q.Take(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &res, err
}

func (r *resignationRepo) Update(ctx context.Context, res *models.Resignation) error {
	return conn(ctx, r.db).Save(res).Error
}

func (r *resignationRepo) ListByCompany(ctx context.Context, companyID string, status models.ResignationStatus) ([]models.Resignation, error) {
	q := conn(ctx, r.db).Where("company_id = ?", companyID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.Resignation
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *resignationRepo) ListByJobseeker(ctx context.Context, jobseekerID string) ([]models.Resignation, error) {
	var out []models.Resignation
	err := conn(ctx, r.db).Where("jobseeker_id = ?", jobseekerID).Order("created_at DESC").Find(&out).Error
	return out, err
}
