package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditLog struct {
	ID           int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ActorID      string         `gorm:"column:actor_id;type:uuid" json:"actor_id"`
	Action       string         `gorm:"column:action;type:text" json:"action"`
	ResourceType string         `gorm:"column:resource_type;type:text" json:"resource_type"`
	ResourceID   string         `gorm:"column:resource_id;type:text" json:"resource_id"`
	Metadata     datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
	CreatedAt    time.Time      `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
