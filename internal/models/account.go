package models

// Account represents a financial account (checking, savings, card, cash).
//
// Balance is a denormalized running counter in minor currency units and is
// the sum of Amount over all live transactions referencing this account.
// It is mutated exclusively through the balance service's atomic increment
// path; nothing else writes to it.
type Account struct {
	Base
	TeamID      string `gorm:"type:uuid;not null;index" json:"team_id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Currency    string `gorm:"not null;default:'USD'" json:"currency"`
	Balance     int64  `gorm:"type:bigint;not null;default:0" json:"balance"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"transactions,omitempty"`
}
