package models

import "time"

type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "PENDING"
	RegistrationApproved RegistrationStatus = "APPROVED"
	RegistrationRejected RegistrationStatus = "REJECTED"
)

type WorkerStatus string

const (
	WorkerActive     WorkerStatus = "ACTIVE"
	WorkerCompleted  WorkerStatus = "COMPLETED"
	WorkerTerminated WorkerStatus = "TERMINATED"
)

type ContractRegistration struct {
	ID              string             `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	RecruiterID     string             `gorm:"column:recruiter_id;type:uuid" json:"recruiter_id"`
	CompanyID       string             `gorm:"column:company_id;type:uuid" json:"company_id"`
	Status          RegistrationStatus `gorm:"column:status;type:text" json:"status"`
	RecruiterDocURL *string            `gorm:"column:recruiter_doc_url;type:text" json:"recruiter_doc_url,omitempty"`
	AdminNotes      *string            `gorm:"column:admin_notes;type:text" json:"admin_notes,omitempty"`
	RejectionReason *string            `gorm:"column:rejection_reason;type:text" json:"rejection_reason,omitempty"`
	ProcessedAt     *time.Time         `gorm:"column:processed_at;type:timestamptz" json:"processed_at,omitempty"`
	ProcessedBy     *string            `gorm:"column:processed_by;type:uuid" json:"processed_by,omitempty"`
	CreatedAt       time.Time          `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`

	Company *Company         `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Workers []ContractWorker `gorm:"foreignKey:ContractRegistrationID" json:"workers,omitempty"`
}

func (ContractRegistration) TableName() string { return "contract_registrations" }

type ContractWorker struct {
	ID                     string       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ContractRegistrationID string       `gorm:"column:contract_registration_id;type:uuid" json:"contract_registration_id"`
	ApplicationID          string       `gorm:"column:application_id;type:uuid" json:"application_id"`
	JobseekerID            string       `gorm:"column:jobseeker_id;type:uuid" json:"jobseeker_id"`
	JobTitle               string       `gorm:"column:job_title;type:text" json:"job_title"`
	StartDate              time.Time    `gorm:"column:start_date;type:timestamptz" json:"start_date"`
	EndDate                time.Time    `gorm:"column:end_date;type:timestamptz" json:"end_date"`
	Salary                 int64        `gorm:"column:salary" json:"salary"`
	Notes                  *string      `gorm:"column:notes;type:text" json:"notes,omitempty"`
	Status                 WorkerStatus `gorm:"column:status;type:text" json:"status"`
	TerminatedAt           *time.Time   `gorm:"column:terminated_at;type:timestamptz" json:"terminated_at,omitempty"`
	TerminationReason      *string      `gorm:"column:termination_reason;type:text" json:"termination_reason,omitempty"`
	CreatedAt              time.Time    `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt              time.Time    `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`

	Registration *ContractRegistration `gorm:"foreignKey:ContractRegistrationID" json:"registration,omitempty"`
	Jobseeker    *Jobseeker            `gorm:"foreignKey:JobseekerID" json:"jobseeker,omitempty"`
}

func (ContractWorker) TableName() string { return "contract_workers" }
