package models

import "time"

// User represents a member of a team.
type User struct {
	Base
	TeamID           string     `gorm:"type:uuid;not null;index" json:"team_id"`
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	Password         string     `gorm:"not null" json:"-"`
	Name             string     `json:"name"`
	IsActive         bool       `gorm:"default:true" json:"is_active"`
	RefreshTokenHash string     `gorm:"size:64" json:"-"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`

	Team *Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
}
