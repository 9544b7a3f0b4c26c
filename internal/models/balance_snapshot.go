package models

import "time"

// The three snapshot tables below are derived aggregates recomputed wholesale
// from the transaction table by the reconciliation service. They are never
// written by the live transaction path and are never updated incrementally;
// a refresh replaces the whole table inside one storage transaction so
// readers see either the previous or the new complete snapshot.
//
// A parent with no live transactions simply has no row.
// No Base embed and no soft deletes: these rows are disposable.

// AccountBalance is the independently derived income/outcome/net snapshot
// for one account.
type AccountBalance struct {
	AccountID    string    `gorm:"type:uuid;primaryKey" json:"account_id"`
	TotalIncome  int64     `gorm:"type:bigint;not null" json:"total_income"`
	TotalOutcome int64     `gorm:"type:bigint;not null" json:"total_outcome"`
	Balance      int64     `gorm:"type:bigint;not null" json:"balance"`
	RefreshedAt  time.Time `gorm:"not null" json:"refreshed_at"`
}

// CategoryBalance is the derived snapshot for one category.
type CategoryBalance struct {
	CategoryID   string    `gorm:"type:uuid;primaryKey" json:"category_id"`
	TotalIncome  int64     `gorm:"type:bigint;not null" json:"total_income"`
	TotalOutcome int64     `gorm:"type:bigint;not null" json:"total_outcome"`
	Balance      int64     `gorm:"type:bigint;not null" json:"balance"`
	RefreshedAt  time.Time `gorm:"not null" json:"refreshed_at"`
}

// MerchantBalance is the derived snapshot for one merchant.
type MerchantBalance struct {
	MerchantID   string    `gorm:"type:uuid;primaryKey" json:"merchant_id"`
	TotalIncome  int64     `gorm:"type:bigint;not null" json:"total_income"`
	TotalOutcome int64     `gorm:"type:bigint;not null" json:"total_outcome"`
	Balance      int64     `gorm:"type:bigint;not null" json:"balance"`
	RefreshedAt  time.Time `gorm:"not null" json:"refreshed_at"`
}
