package models

// Tag is a free-form label attached to transactions. Tags carry no balance.
type Tag struct {
	Base
	TeamID string `gorm:"type:uuid;not null;index" json:"team_id"`
	Name   string `gorm:"not null" json:"name"`
	Color  string `json:"color"`

	Transactions []Transaction `gorm:"many2many:transaction_tags" json:"transactions,omitempty"`
}
