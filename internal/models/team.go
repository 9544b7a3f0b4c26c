package models

// Team is the tenancy boundary. Every ledger entity and every transaction
// belongs to exactly one team.
type Team struct {
	Base
	Name string `gorm:"not null" json:"name"`

	// Relationships
	Users        []User        `gorm:"foreignKey:TeamID" json:"users,omitempty"`
	Accounts     []Account     `gorm:"foreignKey:TeamID" json:"accounts,omitempty"`
	Categories   []Category    `gorm:"foreignKey:TeamID" json:"categories,omitempty"`
	Merchants    []Merchant    `gorm:"foreignKey:TeamID" json:"merchants,omitempty"`
	Tags         []Tag         `gorm:"foreignKey:TeamID" json:"tags,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:TeamID" json:"transactions,omitempty"`
}
