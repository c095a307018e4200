package postgres

import (
	"context"

	"github.com/lokercirebon/jobportal/internal/models"
	"gorm.io/gorm"
)

type AuditFilter struct {
	AfterID      int64
	ResourceType string
	ActorID      string
	Limit        int
}

type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	// List pages backwards by id; AfterID is the last id of the previous page.
	List(ctx context.Context, f AuditFilter) ([]models.AuditLog, error)
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	return conn(ctx, r.db).Create(entry).Error
}

func (r *auditRepo) List(ctx context.Context, f AuditFilter) ([]models.AuditLog, error) {
	q := conn(ctx, r.db).Model(&models.AuditLog{})
	if f.AfterID > 0 {
		q = q.Where("id < ?", f.AfterID)
	}
	if f.ResourceType != "" {
		q = q.Where("resource_type = ?", f.ResourceType)
	}
	if f.ActorID != "" {
		q = q.Where("actor_id = ?", f.ActorID)
	}
	var out []models.AuditLog
	err := q.Order("id DESC").Limit(f.Limit).Find(&out).Error
	return out, err
}
