package models

import "time"

type ApplicationStatus string

const (
	AppPending            ApplicationStatus = "PENDING"
	AppReviewing          ApplicationStatus = "REVIEWING"
	AppShortlisted        ApplicationStatus = "SHORTLISTED"
	AppInterviewScheduled ApplicationStatus = "INTERVIEW_SCHEDULED"
	AppInterviewCompleted ApplicationStatus = "INTERVIEW_COMPLETED"
	AppAccepted           ApplicationStatus = "ACCEPTED"
	AppRejected           ApplicationStatus = "REJECTED"
	AppWithdrawn          ApplicationStatus = "WITHDRAWN"
	AppResigned           ApplicationStatus = "RESIGNED"
)

// PreTerminalStatuses are the statuses an application can still be withdrawn from
// without having received a decision.
var PreTerminalStatuses = []ApplicationStatus{
	AppPending, AppReviewing, AppShortlisted, AppInterviewScheduled, AppInterviewCompleted,
}

var applicationRank = map[ApplicationStatus]int{
	AppPending:            0,
	AppReviewing:          1,
	AppShortlisted:        2,
	AppInterviewScheduled: 3,
	AppInterviewCompleted: 4,
	AppAccepted:           5,
	AppRejected:           5,
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case AppWithdrawn, AppResigned:
		return true
	}
	_, ok := applicationRank[s]
	return ok
}

// Rank orders the forward statuses. Side exits return -1.
func (s ApplicationStatus) Rank() int {
	if r, ok := applicationRank[s]; ok {
		return r
	}
	return -1
}

func (s ApplicationStatus) PreTerminal() bool {
	for _, p := range PreTerminalStatuses {
		if p == s {
			return true
		}
	}
	return false
}

type Application struct {
	ID                   string            `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	JobID                string            `gorm:"column:job_id;type:uuid" json:"job_id"`
	JobseekerID          string            `gorm:"column:jobseeker_id;type:uuid" json:"jobseeker_id"`
	CoverLetter          string            `gorm:"column:cover_letter;type:text" json:"cover_letter"`
	ResumeURL            string            `gorm:"column:resume_url;type:text" json:"resume_url"`
	PortfolioURL         string            `gorm:"column:portfolio_url;type:text" json:"portfolio_url"`
	Status               ApplicationStatus `gorm:"column:status;type:text" json:"status"`
	RecruiterNotes       *string           `gorm:"column:recruiter_notes;type:text" json:"recruiter_notes,omitempty"`
	ConfirmedByJobseeker bool              `gorm:"column:confirmed_by_jobseeker" json:"confirmed_by_jobseeker"`
	ConfirmedAt          *time.Time        `gorm:"column:confirmed_at;type:timestamptz" json:"confirmed_at,omitempty"`
	ReviewedAt           *time.Time        `gorm:"column:reviewed_at;type:timestamptz" json:"reviewed_at,omitempty"`
	AppliedAt            time.Time         `gorm:"column:applied_at;type:timestamptz" json:"applied_at"`
	UpdatedAt            time.Time         `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`

	Job       *Job       `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Jobseeker *Jobseeker `gorm:"foreignKey:JobseekerID" json:"jobseeker,omitempty"`
}

func (Application) TableName() string { return "applications" }
