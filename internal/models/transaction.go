package models

import "time"

// Transaction is a single ledger movement. Amount is in signed minor
// currency units: positive is income, negative is outcome.
//
// Every transaction references exactly one account, one category, and one
// merchant; those three running balances are kept in sync with the
// transaction table by the balance service on every create, update,
// reparent, and delete.
//
// IsProcessing marks a row owned by an in-flight batch import. While set,
// ordinary updates are rejected with a conflict.
type Transaction struct {
	Base
	TeamID       string    `gorm:"type:uuid;not null;index" json:"team_id"`
	AccountID    string    `gorm:"type:uuid;not null;index" json:"account_id"`
	CategoryID   string    `gorm:"type:uuid;not null;index" json:"category_id"`
	MerchantID   string    `gorm:"type:uuid;not null;index" json:"merchant_id"`
	Amount       int64     `gorm:"type:bigint;not null" json:"amount"`
	Date         time.Time `gorm:"not null;index" json:"date"`
	Notes        string    `json:"notes"`
	IsProcessing bool      `gorm:"not null;default:false" json:"is_processing"`

	// Relationships
	Account  *Account  `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Merchant *Merchant `gorm:"foreignKey:MerchantID" json:"merchant,omitempty"`
	Tags     []Tag     `gorm:"many2many:transaction_tags" json:"tags,omitempty"`
}
