package models

// Merchant is the counterparty of a transaction (store, employer, landlord).
// Balance follows the same rules as Account.Balance.
type Merchant struct {
	Base
	TeamID  string `gorm:"type:uuid;not null;index" json:"team_id"`
	Name    string `gorm:"not null" json:"name"`
	Balance int64  `gorm:"type:bigint;not null;default:0" json:"balance"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:MerchantID" json:"transactions,omitempty"`
}
