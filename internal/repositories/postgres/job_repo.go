package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lokercirebon/jobportal/internal/models"
	"github.com/lokercirebon/jobportal/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	SortLatest  = "latest"
	SortSalary  = "salary"
	SortPopular = "popular"
)

type JobFilter struct {
	Search        string
	Location      string
	Types         []string
	Categories    []string
	MaxExperience *int
	CompanyID     string
	Status        models.JobStatus
	Sort          string
	Limit         int
	Offset        int
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type CompanyJobCount struct {
	CompanyID string
	Count     int64
}

type MonthlyCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int64  `json:"count"`
}

type JobRepository interface {
	Create(ctx context.Context, j *models.Job) error
	GetByID(ctx context.Context, id string) (*models.Job, error)
	GetBySlug(ctx context.Context, slug string) (*models.Job, error)
	LockByID(ctx context.Context, id string) (*models.Job, error)
	Update(ctx context.Context, j *models.Job) error
	Delete(ctx context.Context, id string) error

	// ListPublic returns ACTIVE jobs whose deadline has not passed at now.
	ListPublic(ctx context.Context, f JobFilter, now time.Time) ([]models.Job, int64, error)
	// List returns jobs of every status, scoped by CompanyID and Status when set.
	List(ctx context.Context, f JobFilter) ([]models.Job, int64, error)

	CountApplications(ctx context.Context, jobIDs []string) (map[string]int64, error)
	Categories(ctx context.Context, now time.Time) ([]CategoryCount, error)
	// TopCompanies ranks companies by their publicly visible jobs at now.
	TopCompanies(ctx context.Context, now time.Time, limit int) ([]CompanyJobCount, error)
	CountByStatus(ctx context.Context) (map[models.JobStatus]int64, error)
	MonthlyPostings(ctx context.Context, since time.Time) ([]MonthlyCount, error)

	LockOverdueActive(ctx context.Context, now time.Time, limit int) ([]models.Job, error)
	Expire(ctx context.Context, ids []string, now time.Time) (int64, error)
}

type jobRepo struct {
	db *gorm.DB
}

func NewJobRepo(db *gorm.DB) JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, j *models.Job) error {
	err := conn(ctx, r.db).Omit(clause.Associations).Create(j).Error
	if isUniqueViolation(err) {
		return utils.ErrDuplicate
	}
	return err
}

func (r *jobRepo) GetByID(ctx context.Context, id string) (*models.Job, error) {
	return r.take(conn(ctx, r.db).Preload("Company").Where("id = ?", id))
}

func (r *jobRepo) GetBySlug(ctx context.Context, slug string) (*models.Job, error) {
	return r.take(conn(ctx, r.db).Preload("Company").Where("slug = ?", slug))
}

func (r *jobRepo) LockByID(ctx context.Context, id string) (*models.Job, error) {
	return r.take(conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

func (r *jobRepo) take(q *gorm.DB) (*models.Job, error) {
	var j models.Job
	err := q.Take(&j).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &j, err
}

func (r *jobRepo) Update(ctx context.Context, j *models.Job) error {
	err := conn(ctx, r.db).Omit(clause.Associations).Save(j).Error
	if isUniqueViolation(err) {
		return utils.ErrDuplicate
	}
	return err
}

// Delete removes the job; applications, interviews and participants cascade in the schema.
func (r *jobRepo) Delete(ctx context.Context, id string) error {
	res := conn(ctx, r.db).Where("id = ?", id).Delete(&models.Job{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *jobRepo) ListPublic(ctx context.Context, f JobFilter, now time.Time) ([]models.Job, int64, error) {
	q := conn(ctx, r.db).Model(&models.Job{}).
		Joins("JOIN companies ON companies.id = jobs.company_id").
		Where("jobs.status = ?", models.JobActive).
		Where("(jobs.deadline IS NULL OR jobs.deadline >= ?)", now)
	q = applyJobFilter(q, f)
	return r.page(q, f)
}

func (r *jobRepo) List(ctx context.Context, f JobFilter) ([]models.Job, int64, error) {
	q := conn(ctx, r.db).Model(&models.Job{}).
		Joins("JOIN companies ON companies.id = jobs.company_id")
	if f.Status != "" {
		q = q.Where("jobs.status = ?", f.Status)
	}
	q = applyJobFilter(q, f)
	return r.page(q, f)
}

func applyJobFilter(q *gorm.DB, f JobFilter) *gorm.DB {
	if f.CompanyID != "" {
		q = q.Where("jobs.company_id = ?", f.CompanyID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := containsPattern(s)
		q = q.Where("(LOWER(jobs.title) LIKE ? OR LOWER(jobs.description) LIKE ? OR LOWER(jobs.category) LIKE ? OR LOWER(companies.name) LIKE ?)",
			like, like, like, like)
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		like := containsPattern(loc)
		q = q.Where("(LOWER(jobs.location) LIKE ? OR LOWER(jobs.city) LIKE ?)", like, like)
	}
	if len(f.Types) > 0 {
		q = q.Where("jobs.job_type IN ?", f.Types)
	}
	if len(f.Categories) > 0 {
		q = q.Where("jobs.category IN ?", f.Categories)
	}
	if f.MaxExperience != nil {
		q = q.Where("jobs.min_experience <= ?", *f.MaxExperience)
	}
	return q
}

func (r *jobRepo) page(q *gorm.DB, f JobFilter) ([]models.Job, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch f.Sort {
	case SortSalary:
		q = q.Order("jobs.salary_max DESC").Order("jobs.created_at DESC")
	case SortPopular:
		q = q.Order("(SELECT COUNT(*) FROM applications a WHERE a.job_id = jobs.id) DESC").Order("jobs.created_at DESC")
	default:
		q = q.Order("jobs.published_at DESC NULLS LAST").Order("jobs.created_at DESC")
	}

	var out []models.Job
	err := q.Select("jobs.*").Preload("Company").Limit(f.Limit).Offset(f.Offset).Find(&out).Error
	return out, total, err
}

// CountApplications derives application counts; withdrawn applications are counted.
func (r *jobRepo) CountApplications(ctx context.Context, jobIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(jobIDs))
	if len(jobIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		JobID string
		Count int64
	}
	err := conn(ctx, r.db).Model(&models.Application{}).
		Select("job_id, COUNT(*) AS count").
		Where("job_id IN ?", jobIDs).
		Group("job_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.JobID] = row.Count
	}
	return out, nil
}

func (r *jobRepo) Categories(ctx context.Context, now time.Time) ([]CategoryCount, error) {
	var out []CategoryCount
	err := conn(ctx, r.db).Model(&models.Job{}).
		Select("category, COUNT(*) AS count").
		Where("status = ?", models.JobActive).
		Where("(deadline IS NULL OR deadline >= ?)", now).
		Where("category <> ''").
		Group("category").
		Order("count DESC").
		Scan(&out).Error
	return out, err
}

func (r *jobRepo) TopCompanies(ctx context.Context, now time.Time, limit int) ([]CompanyJobCount, error) {
	var out []CompanyJobCount
	err := conn(ctx, r.db).Model(&models.Job{}).
		Select("company_id, COUNT(*) AS count").
		Where("status = ?", models.JobActive).
		Where("(deadline IS NULL OR deadline >= ?)", now).
		Group("company_id").
		Order("count DESC").Order("company_id").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

func (r *jobRepo) CountByStatus(ctx context.Context) (map[models.JobStatus]int64, error) {
	var rows []struct {
		Status models.JobStatus
		Count  int64
	}
	err := conn(ctx, r.db).Model(&models.Job{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[models.JobStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *jobRepo) MonthlyPostings(ctx context.Context, since time.Time) ([]MonthlyCount, error) {
	var out []MonthlyCount
	err := conn(ctx, r.db).Model(&models.Job{}).
		Select("to_char(date_trunc('month', created_at), 'YYYY-MM') AS month, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("1").
		Order("1").
		Scan(&out).Error
	return out, err
}

func (r *jobRepo) LockOverdueActive(ctx context.Context, now time.Time, limit int) ([]models.Job, error) {
	var out []models.Job
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ? AND deadline IS NOT NULL AND deadline < ?", models.JobActive, now).
		Order("deadline ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// Expire repeats the ACTIVE predicate so a row already expired is not touched twice.
func (r *jobRepo) Expire(ctx context.Context, ids []string, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := conn(ctx, r.db).Model(&models.Job{}).
		Where("id IN ? AND status = ?", ids, models.JobActive).
		Updates(map[string]any{"status": models.JobExpired, "updated_at": now})
	return res.RowsAffected, res.Error
}
