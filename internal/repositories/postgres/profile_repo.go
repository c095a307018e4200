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

type JobseekerFilter struct {
	State  models.SeekerState
	Search string
	Limit  int
	Offset int
}

// JobseekerSummary is a jobseeker row with its application counts.
type JobseekerSummary struct {
	ID                string             `json:"id"`
	UserID            string             `json:"user_id"`
	FirstName         string             `json:"first_name"`
	LastName          string             `json:"last_name"`
	Email             string             `json:"email"`
	Phone             string             `json:"phone"`
	City              string             `json:"city"`
	IsEmployed        bool               `json:"is_employed"`
	EmployedCompany   *string            `json:"employed_company,omitempty"`
	State             models.SeekerState `json:"employment_status"`
	TotalApplications int64              `json:"total_applications"`
	AcceptedCount     int64              `json:"accepted_count"`
	RejectedCount     int64              `json:"rejected_count"`
	PendingCount      int64              `json:"pending_count"`
	LastAppliedAt     *time.Time         `json:"last_applied_at,omitempty"`
	JoinedAt          time.Time          `json:"joined_at"`
}

type SeekerStateCounts struct {
	Total    int64 `json:"total"`
	Employed int64 `json:"employed"`
	Rejected int64 `json:"rejected"`
	Active   int64 `json:"active"`
}

type JobseekerRepository interface {
	Create(ctx context.Context, j *models.Jobseeker) error
	GetByID(ctx context.Context, id string) (*models.Jobseeker, error)
	GetByUserID(ctx context.Context, userID string) (*models.Jobseeker, error)
	LockByID(ctx context.Context, id string) (*models.Jobseeker, error)
	UpdateProfile(ctx context.Context, j *models.Jobseeker) error
	SetEmployment(ctx context.Context, id string, e models.Employment, at time.Time) error
	Count(ctx context.Context) (int64, error)

	ListSummaries(ctx context.Context, f JobseekerFilter) ([]JobseekerSummary, int64, error)
	CountByState(ctx context.Context) (SeekerStateCounts, error)
}

type jobseekerRepo struct {
	db *gorm.DB
}

func NewJobseekerRepo(db *gorm.DB) JobseekerRepository {
	return &jobseekerRepo{db: db}
}

func (r *jobseekerRepo) Create(ctx context.Context, j *models.Jobseeker) error {
	err := conn(ctx, r.db).Create(j).Error
	if isUniqueViolation(err) {
		return utils.ErrDuplicate
	}
	return err
}

func (r *jobseekerRepo) GetByID(ctx context.Context, id string) (*models.Jobseeker, error) {
	return r.take(conn(ctx, r.db).Where("id = ?", id))
}

func (r *jobseekerRepo) GetByUserID(ctx context.Context, userID string) (*models.Jobseeker, error) {
	return r.take(conn(ctx, r.db).Where("user_id = ?", userID))
}

func (r *jobseekerRepo) LockByID(ctx context.Context, id string) (*models.Jobseeker, error) {
	return r.take(conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

func (r *jobseekerRepo) take(q *gorm.DB) (*models.Jobseeker, error) {
	var j models.Jobseeker
	err := q.Take(&j).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &j, err
}

// UpdateProfile writes the personal fields only; employment flags go through SetEmployment.
func (r *jobseekerRepo) UpdateProfile(ctx context.Context, j *models.Jobseeker) error {
	return conn(ctx, r.db).Model(&models.Jobseeker{}).
		Where("id = ?", j.ID).
		Select("first_name", "last_name", "phone", "city", "address", "photo", "cv_url",
			"current_title", "summary", "skills", "experience", "education", "updated_at").
		Updates(j).Error
}

func (r *jobseekerRepo) SetEmployment(ctx context.Context, id string, e models.Employment, at time.Time) error {
	return conn(ctx, r.db).Model(&models.Jobseeker{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_employed":        e.IsEmployed,
			"is_looking_for_job": e.IsLookingForJob,
			"employed_at":        e.EmployedAt,
			"employed_company":   e.EmployedCompany,
			"updated_at":         at,
		}).Error
}

func (r *jobseekerRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&models.Jobseeker{}).Count(&n).Error
	return n, err
}

// summaries aggregates applications per jobseeker and derives the state column.
func (r *jobseekerRepo) summaries(ctx context.Context) *gorm.DB {
	db := conn(ctx, r.db)
	agg := db.Table("jobseekers AS js").
		Select(`js.id, js.user_id, js.first_name, js.last_name, u.email, js.phone, js.city,
			js.is_employed, js.employed_company, u.created_at AS joined_at,
			COUNT(a.id) AS total_applications,
			COUNT(a.id) FILTER (WHERE a.status = ?) AS accepted_count,
			COUNT(a.id) FILTER (WHERE a.status = ?) AS rejected_count,
			COUNT(a.id) FILTER (WHERE a.status IN ?) AS pending_count,
			MAX(a.applied_at) AS last_applied_at`,
			models.AppAccepted, models.AppRejected, models.PreTerminalStatuses).
		Joins("JOIN users u ON u.id = js.user_id").
		Joins("LEFT JOIN applications a ON a.jobseeker_id = js.id").
		Group("js.id, u.email, u.created_at")
	return db.Table("(?) AS s", agg).
		Select(`s.*, CASE
			WHEN s.is_employed THEN ?
			WHEN s.rejected_count > 0 AND s.pending_count = 0 THEN ?
			ELSE ? END AS state`,
			models.SeekerEmployed, models.SeekerRejected, models.SeekerActive)
}

func (r *jobseekerRepo) ListSummaries(ctx context.Context, f JobseekerFilter) ([]JobseekerSummary, int64, error) {
	q := conn(ctx, r.db).Table("(?) AS t", r.summaries(ctx))
	if f.State != "" {
		q = q.Where("t.state = ?", f.State)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := containsPattern(s)
		q = q.Where("(LOWER(t.first_name || ' ' || t.last_name) LIKE ? OR LOWER(t.email) LIKE ?)", like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []JobseekerSummary
	err := q.Order("t.last_applied_at DESC NULLS LAST").Order("t.joined_at DESC").
		Limit(f.Limit).Offset(f.Offset).
		Scan(&out).Error
	return out, total, err
}

func (r *jobseekerRepo) CountByState(ctx context.Context) (SeekerStateCounts, error) {
	var out SeekerStateCounts
	err := conn(ctx, r.db).Table("(?) AS t", r.summaries(ctx)).
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE t.state = ?) AS employed,
			COUNT(*) FILTER (WHERE t.state = ?) AS rejected,
			COUNT(*) FILTER (WHERE t.state = ?) AS active`,
			models.SeekerEmployed, models.SeekerRejected, models.SeekerActive).
		Scan(&out).Error
	return out, err
}
