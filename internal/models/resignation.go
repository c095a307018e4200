package models

import "time"

type ResignationStatus string

const (
	ResignationPending  ResignationStatus = "PENDING"
	ResignationApproved ResignationStatus = "APPROVED"
	ResignationRejected ResignationStatus = "REJECTED"
)

type Resignation struct {
	ID             string            `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ApplicationID  string            `gorm:"column:application_id;type:uuid;uniqueIndex" json:"application_id"`
	JobseekerID    string            `gorm:"column:jobseeker_id;type:uuid" json:"jobseeker_id"`
	CompanyID      string            `gorm:"column:company_id;type:uuid" json:"company_id"`
	Reason         string            `gorm:"column:reason;type:text" json:"reason"`
	LetterURL      string            `gorm:"column:letter_url;type:text" json:"letter_url"`
	Status         ResignationStatus `gorm:"column:status;type:text" json:"status"`
	RecruiterNotes *string           `gorm:"column:recruiter_notes;type:text" json:"recruiter_notes,omitempty"`
	ProcessedAt    *time.Time        `gorm:"column:processed_at;type:timestamptz" json:"processed_at,omitempty"`
	ProcessedBy    *string           `gorm:"column:processed_by;type:uuid" json:"processed_by,omitempty"`
	CreatedAt      time.Time         `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Resignation) TableName() string { return "resignations" }
