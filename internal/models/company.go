package models

import "time"

type CompanyStatus string

const (
	CompanyPendingVerification CompanyStatus = "PENDING_VERIFICATION"
	CompanyPendingResubmission CompanyStatus = "PENDING_RESUBMISSION"
	CompanyVerified            CompanyStatus = "VERIFIED"
	CompanySuspended           CompanyStatus = "SUSPENDED"
	CompanyRejected            CompanyStatus = "REJECTED"
)

// CanPost reports whether recruiters of the company may create jobs.
func (s CompanyStatus) CanPost() bool {
	return s != CompanySuspended && s != CompanyRejected
}

type Company struct {
	ID              string        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name            string        `gorm:"column:name;type:text" json:"name"`
	Slug            string        `gorm:"column:slug;type:text;uniqueIndex" json:"slug"`
	Industry        string        `gorm:"column:industry;type:text" json:"industry"`
	City            string        `gorm:"column:city;type:text" json:"city"`
	Address         string        `gorm:"column:address;type:text" json:"address"`
	Description     string        `gorm:"column:description;type:text" json:"description"`
	Website         string        `gorm:"column:website;type:text" json:"website"`
	Email           string        `gorm:"column:email;type:text" json:"email"`
	Phone           string        `gorm:"column:phone;type:text" json:"phone"`
	Logo            string        `gorm:"column:logo;type:text" json:"logo"`
	Status          CompanyStatus `gorm:"column:status;type:text" json:"status"`
	RejectionReason *string       `gorm:"column:rejection_reason;type:text" json:"rejection_reason,omitempty"`
	VerifiedAt      *time.Time    `gorm:"column:verified_at;type:timestamptz" json:"verified_at,omitempty"`
	CreatedAt       time.Time     `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Company) TableName() string { return "companies" }

type Recruiter struct {
	ID         string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID     string    `gorm:"column:user_id;type:uuid;uniqueIndex" json:"user_id"`
	CompanyID  string    `gorm:"column:company_id;type:uuid" json:"company_id"`
	FirstName  string    `gorm:"column:first_name;type:text" json:"first_name"`
	LastName   string    `gorm:"column:last_name;type:text" json:"last_name"`
	Position   string    `gorm:"column:position;type:text" json:"position"`
	Phone      string    `gorm:"column:phone;type:text" json:"phone"`
	IsVerified bool      `gorm:"column:is_verified" json:"is_verified"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`

	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}

func (Recruiter) TableName() string { return "recruiters" }
