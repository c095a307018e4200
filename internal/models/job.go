package models

import (
	"time"

	"github.com/lib/pq"
)

type JobStatus string

const (
	JobPending  JobStatus = "PENDING"
	JobActive   JobStatus = "ACTIVE"
	JobRejected JobStatus = "REJECTED"
	JobClosed   JobStatus = "CLOSED"
	JobExpired  JobStatus = "EXPIRED"
)

type Job struct {
	ID            string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CompanyID     string         `gorm:"column:company_id;type:uuid" json:"company_id"`
	RecruiterID   string         `gorm:"column:recruiter_id;type:uuid" json:"recruiter_id"`
	Title         string         `gorm:"column:title;type:text" json:"title"`
	Slug          string         `gorm:"column:slug;type:text;uniqueIndex" json:"slug"`
	Description   string         `gorm:"column:description;type:text" json:"description"`
	Requirements  string         `gorm:"column:requirements;type:text" json:"requirements"`
	Category      string         `gorm:"column:category;type:text" json:"category"`
	JobType       string         `gorm:"column:job_type;type:text" json:"job_type"`
	Location      string         `gorm:"column:location;type:text" json:"location"`
	City          string         `gorm:"column:city;type:text" json:"city"`
	MinExperience int            `gorm:"column:min_experience" json:"min_experience"`
	SalaryMin     int64          `gorm:"column:salary_min" json:"salary_min"`
	SalaryMax     int64          `gorm:"column:salary_max" json:"salary_max"`
	Skills        pq.StringArray `gorm:"column:skills;type:text[]" json:"skills"`
	Benefits      pq.StringArray `gorm:"column:benefits;type:text[]" json:"benefits"`
	Deadline      *time.Time     `gorm:"column:deadline;type:timestamptz" json:"deadline,omitempty"`
	Status        JobStatus      `gorm:"column:status;type:text" json:"status"`
	PublishedAt   *time.Time     `gorm:"column:published_at;type:timestamptz" json:"published_at,omitempty"`
	CreatedAt     time.Time      `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`

	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}

func (Job) TableName() string { return "jobs" }

// Active is derived from the status; there is no stored flag.
func (j Job) Active() bool { return j.Status == JobActive }

// Visible reports whether the public may see and apply to the job at now.
func (j Job) Visible(now time.Time) bool {
	if j.Status != JobActive {
		return false
	}
	return j.Deadline == nil || !j.Deadline.Before(now)
}
