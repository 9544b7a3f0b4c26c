package models

// AuditLog records a mutation for traceability.
type AuditLog struct {
	Base
	TeamID       string `gorm:"type:uuid;not null;index" json:"team_id"`
	UserID       string `gorm:"type:uuid" json:"user_id"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   string `gorm:"type:uuid" json:"resource_id"`
	IPAddress    string `json:"ip_address"`
	Changes      string `gorm:"type:text" json:"changes"`
}
