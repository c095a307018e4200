package models

import "time"

type InterviewStatus string

const (
	InterviewScheduled   InterviewStatus = "SCHEDULED"
	InterviewRescheduled InterviewStatus = "RESCHEDULED"
	InterviewCompleted   InterviewStatus = "COMPLETED"
	InterviewCancelled   InterviewStatus = "CANCELLED"
)

func (s InterviewStatus) Open() bool {
	return s == InterviewScheduled || s == InterviewRescheduled
}

type ParticipantStatus string

const (
	ParticipantPending             ParticipantStatus = "PENDING"
	ParticipantAccepted            ParticipantStatus = "ACCEPTED"
	ParticipantDeclined            ParticipantStatus = "DECLINED"
	ParticipantRescheduleRequested ParticipantStatus = "RESCHEDULE_REQUESTED"
	ParticipantCompleted           ParticipantStatus = "COMPLETED"
)

type Interview struct {
	ID          string          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	JobID       string          `gorm:"column:job_id;type:uuid" json:"job_id"`
	RecruiterID string          `gorm:"column:recruiter_id;type:uuid" json:"recruiter_id"`
	Title       string          `gorm:"column:title;type:text" json:"title"`
	Description string          `gorm:"column:description;type:text" json:"description"`
	ScheduledAt time.Time       `gorm:"column:scheduled_at;type:timestamptz" json:"scheduled_at"`
	Duration    int             `gorm:"column:duration" json:"duration"` // minutes
	MeetingType string          `gorm:"column:meeting_type;type:text" json:"meeting_type"`
	MeetingURL  string          `gorm:"column:meeting_url;type:text" json:"meeting_url"`
	Status      InterviewStatus `gorm:"column:status;type:text" json:"status"`
	CreatedAt   time.Time       `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`

	Job          *Job                   `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Participants []InterviewParticipant `gorm:"foreignKey:InterviewID" json:"participants,omitempty"`
}

func (Interview) TableName() string { return "interviews" }

type InterviewParticipant struct {
	ID              string            `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	InterviewID     string            `gorm:"column:interview_id;type:uuid" json:"interview_id"`
	ApplicationID   string            `gorm:"column:application_id;type:uuid" json:"application_id"`
	Status          ParticipantStatus `gorm:"column:status;type:text" json:"status"`
	ResponseMessage *string           `gorm:"column:response_message;type:text" json:"response_message,omitempty"`
	RespondedAt     *time.Time        `gorm:"column:responded_at;type:timestamptz" json:"responded_at,omitempty"`
	CreatedAt       time.Time         `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`

	Interview   *Interview   `gorm:"foreignKey:InterviewID" json:"interview,omitempty"`
	Application *Application `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
}

func (InterviewParticipant) TableName() string { return "interview_participants" }
