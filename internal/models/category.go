package models

// Category groups transactions by purpose (groceries, rent, salary).
// Balance follows the same rules as Account.Balance.
type Category struct {
	Base
	TeamID  string `gorm:"type:uuid;not null;index" json:"team_id"`
	Name    string `gorm:"not null" json:"name"`
	Color   string `json:"color"`
	Balance int64  `gorm:"type:bigint;not null;default:0" json:"balance"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
}
