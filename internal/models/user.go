package models

import "time"

type UserRole string

const (
	RoleJobseeker UserRole = "JOBSEEKER"
	RoleRecruiter UserRole = "RECRUITER"
	RoleAdmin     UserRole = "ADMIN"
)

type AccountStatus string

const (
	AccountActive    AccountStatus = "ACTIVE"
	AccountSuspended AccountStatus = "SUSPENDED"
	AccountBanned    AccountStatus = "BANNED"
)

func (s AccountStatus) Valid() bool {
	switch s {
	case AccountActive, AccountSuspended, AccountBanned:
		return true
	}
	return false
}

type User struct {
	ID           string        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email        string        `gorm:"column:email;type:text;uniqueIndex" json:"email"`
	PasswordHash string        `gorm:"column:password_hash;type:text" json:"-"`
	Role         UserRole      `gorm:"column:role;type:text" json:"role"`
	Status       AccountStatus `gorm:"column:status;type:text" json:"status"`
	LastLoginAt  *time.Time    `gorm:"column:last_login_at;type:timestamptz" json:"last_login_at,omitempty"`
	CreatedAt    time.Time     `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (User) TableName() string { return "users" }
