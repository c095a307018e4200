package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/lokercirebon/jobportal/internal/models"
	"github.com/lokercirebon/jobportal/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CompanyFilter struct {
	Status models.CompanyStatus
	Search string
	Limit  int
	Offset int
}

type CompanyRepository interface {
	Create(ctx context.Context, c *models.Company) error
	GetByID(ctx context.Context, id string) (*models.Company, error)
	GetBySlug(ctx context.Context, slug string) (*models.Company, error)
	LockByID(ctx context.Context, id string) (*models.Company, error)
	Update(ctx context.Context, c *models.Company) error
	List(ctx context.Context, f CompanyFilter) ([]models.Company, int64, error)
	CountByStatus(ctx context.Context) (map[models.CompanyStatus]int64, error)
}

type companyRepo struct {
	db *gorm.DB
}

func NewCompanyRepo(db *gorm.DB) CompanyRepository {
	return &companyRepo{db: db}
}

func (r *companyRepo) Create(ctx context.Context, c *models.Company) error {
	err := conn(ctx, r.db).Create(c).Error
	if isUniqueViolation(err) {
		return utils.ErrDuplicate
	}
	return err
}

func (r *companyRepo) GetByID(ctx context.Context, id string) (*models.Company, error) {
	return r.take(conn(ctx, r.db).Where("id = ?", id))
}

func (r *companyRepo) GetBySlug(ctx context.Context, slug string) (*models.Company, error) {
	return r.take(conn(ctx, r.db).Where("slug = ?", slug))
}

func (r *companyRepo) LockByID(ctx context.Context, id string) (*models.Company, error) {
	return r.take(conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

func (r *companyRepo) take(q *gorm.DB) (*models.Company, error) {
	var c models.Company
	err := q.Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &c, err
}

func (r *companyRepo) Update(ctx context.Context, c *models.Company) error {
	err := conn(ctx, r.db).Omit(clause.Associations).Save(c).Error
	if isUniqueViolation(err) {
		return utils.ErrDuplicate
	}
	return err
}

func (r *companyRepo) List(ctx context.Context, f CompanyFilter) ([]models.Company, int64, error) {
	q := conn(ctx, r.db).Model(&models.Company{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := containsPattern(s)
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(city) LIKE ? OR LOWER(industry) LIKE ?)", like, like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []models.Company
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&out).Error
	return out, total, err
}

func (r *companyRepo) CountByStatus(ctx context.Context) (map[models.CompanyStatus]int64, error) {
	var rows []struct {
		Status models.CompanyStatus
		Count  int64
	}
	err := conn(ctx, r.db).Model(&models.Company{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[models.CompanyStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
