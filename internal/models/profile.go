package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Jobseeker is the role profile of a JOBSEEKER user.
type Jobseeker struct {
	ID           string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID       string `gorm:"column:user_id;type:uuid;uniqueIndex" json:"user_id"`
	FirstName    string `gorm:"column:first_name;type:text" json:"first_name"`
	LastName     string `gorm:"column:last_name;type:text" json:"last_name"`
	Email        string `gorm:"column:email;type:text" json:"email"`
	Phone        string `gorm:"column:phone;type:text" json:"phone"`
	City         string `gorm:"column:city;type:text" json:"city"`
	Address      string `gorm:"column:address;type:text" json:"address"`
	Photo        string `gorm:"column:photo;type:text" json:"photo"`
	CVURL        string `gorm:"column:cv_url;type:text" json:"cv_url"`
	CurrentTitle string `gorm:"column:current_title;type:text" json:"current_title"`
	Summary      string `gorm:"column:summary;type:text" json:"summary"`

	Skills pq.StringArray `gorm:"column:skills;type:text[]" json:"skills"`

	// JSONB, free-form lists entered by the jobseeker
	Experience datatypes.JSON `gorm:"column:experience;type:jsonb" json:"experience"`
	Education  datatypes.JSON `gorm:"column:education;type:jsonb" json:"education"`

	// employment flags, written only by the application lifecycle
	IsEmployed      bool       `gorm:"column:is_employed" json:"is_employed"`
	IsLookingForJob bool       `gorm:"column:is_looking_for_job" json:"is_looking_for_job"`
	EmployedAt      *time.Time `gorm:"column:employed_at;type:timestamptz" json:"employed_at,omitempty"`
	EmployedCompany *string    `gorm:"column:employed_company;type:text" json:"employed_company,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Jobseeker) TableName() string { return "jobseekers" }

func (j Jobseeker) FullName() string {
	if j.LastName == "" {
		return j.FirstName
	}
	return j.FirstName + " " + j.LastName
}

// Employment is the set of employment flags changed together.
type Employment struct {
	IsEmployed      bool
	IsLookingForJob bool
	EmployedAt      *time.Time
	EmployedCompany *string
}

// Looking is the employment state of a jobseeker back on the market.
func Looking() Employment {
	return Employment{IsEmployed: false, IsLookingForJob: true}
}

func EmployedBy(company string, at time.Time) Employment {
	return Employment{IsEmployed: true, IsLookingForJob: false, EmployedAt: &at, EmployedCompany: &company}
}

// SeekerState classifies a jobseeker for admin reporting.
type SeekerState string

const (
	// SeekerEmployed holds the employment flag.
	SeekerEmployed SeekerState = "EMPLOYED"
	// SeekerRejected has rejections and nothing left in progress.
	SeekerRejected SeekerState = "REJECTED"
	SeekerActive   SeekerState = "ACTIVE"
)

func (s SeekerState) Valid() bool {
	switch s {
	case SeekerEmployed, SeekerRejected, SeekerActive:
		return true
	}
	return false
}
