package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotifyApplicationReceived NotificationType = "APPLICATION_RECEIVED"
	NotifyApplicationStatus   NotificationType = "APPLICATION_STATUS"
	NotifyApplicationWithdraw NotificationType = "APPLICATION_WITHDRAWN"
	NotifyOfferConfirmed      NotificationType = "OFFER_CONFIRMED"
	NotifyInterviewInvite     NotificationType = "INTERVIEW_INVITE"
	NotifyInterviewResponse   NotificationType = "INTERVIEW_RESPONSE"
	NotifyInterviewReschedule NotificationType = "INTERVIEW_RESCHEDULED"
	NotifyInterviewCompleted  NotificationType = "INTERVIEW_COMPLETED"
	NotifyContractProcessed   NotificationType = "CONTRACT_PROCESSED"
	NotifyContractEnded       NotificationType = "CONTRACT_ENDED"
	NotifyResignation         NotificationType = "RESIGNATION"
	NotifyModeration          NotificationType = "MODERATION"
)

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Type      NotificationType   `bson:"type" json:"type"`
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	Link      string             `bson:"link,omitempty" json:"link,omitempty"`
	Metadata  map[string]string  `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
