package models

import (
	"time"

	"tally/internal/uuid"

	"gorm.io/gorm"
)

// Base contains common columns for all tables
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}

// ParentKind names one of the three entity kinds whose running balance
// aggregates the amounts of the transactions referencing it.
type ParentKind string

const (
	ParentKindAccount  ParentKind = "account"
	ParentKindCategory ParentKind = "category"
	ParentKindMerchant ParentKind = "merchant"
)

// ParentKinds lists all valid parent kinds.
var ParentKinds = []ParentKind{ParentKindAccount, ParentKindCategory, ParentKindMerchant}
