package services

import (
	"time"

	"gorm.io/gorm"

	"tally/internal/models"
	"tally/internal/pagination"
)

// UserServicer defines the contract for user and team membership logic.
type UserServicer interface {
	Register(teamName, email, password, name string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(teamID, name, description, currency string) (*models.Account, error)
	GetTeamAccounts(teamID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(teamID, accountID string) (*models.Account, error)
	UpdateAccount(teamID, accountID, name, description string) (*models.Account, error)
	DeleteAccount(teamID, accountID string) error
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(teamID, name, color string) (*models.Category, error)
	GetTeamCategories(teamID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(teamID, categoryID string) (*models.Category, error)
	UpdateCategory(teamID, categoryID, name, color string) (*models.Category, error)
	DeleteCategory(teamID, categoryID string) error
}

// MerchantServicer defines the contract for merchant-related business logic.
type MerchantServicer interface {
	CreateMerchant(teamID, name string) (*models.Merchant, error)
	GetTeamMerchants(teamID string, page pagination.PageRequest) (*pagination.PageResponse[models.Merchant], error)
	GetMerchantByID(teamID, merchantID string) (*models.Merchant, error)
	UpdateMerchant(teamID, merchantID, name string) (*models.Merchant, error)
	DeleteMerchant(teamID, merchantID string) error
}

// TagServicer defines the contract for tag-related business logic.
type TagServicer interface {
	CreateTag(teamID, name, color string) (*models.Tag, error)
	GetTeamTags(teamID string, page pagination.PageRequest) (*pagination.PageResponse[models.Tag], error)
	GetTagByID(teamID, tagID string) (*models.Tag, error)
	DeleteTag(teamID, tagID string) error
}

// BalanceServicer keeps the denormalized balance counters on accounts,
// categories, and merchants consistent with the transaction table. Each
// method must be called exactly once per committed lifecycle event, on the
// same gorm transaction handle as the transaction row write, so counter
// changes commit or roll back with the row itself.
type BalanceServicer interface {
	OnCreate(tx *gorm.DB, txn *models.Transaction) error
	OnUpdate(tx *gorm.DB, updated, previous *models.Transaction) error
	OnDelete(tx *gorm.DB, txn *models.Transaction) error
}

// TransactionInput carries the full state for a new transaction.
type TransactionInput struct {
	AccountID  string
	CategoryID string
	MerchantID string
	Amount     int64
	Date       time.Time
	Notes      string
	TagIDs     []string

	// Processing marks the row as owned by a batch import from birth.
	// Only the import pipeline sets this.
	Processing bool
}

// TransactionUpdateFields holds optional field changes for an update.
// Nil pointers leave the current value untouched.
type TransactionUpdateFields struct {
	AccountID  *string
	CategoryID *string
	MerchantID *string
	Amount     *int64
	Date       *time.Time
	Notes      *string
	TagIDs     []string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	AccountID  *string
	CategoryID *string
	MerchantID *string
	MinAmount  *int64
	MaxAmount  *int64
}

// TransactionServicer defines the contract for the transaction write pipeline.
type TransactionServicer interface {
	CreateTransaction(teamID string, input TransactionInput) (*models.Transaction, error)
	UpdateTransaction(teamID, transactionID string, fields TransactionUpdateFields) (*models.Transaction, error)
	DeleteTransaction(teamID, transactionID string) error
	GetTransactionByID(teamID, transactionID string) (*models.Transaction, error)
	GetTeamTransactions(teamID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	// DeleteByParent removes every live transaction referencing the given
	// parent on the caller's gorm transaction, applying the balance
	// decrement cascade for each. Used when a parent entity is deleted.
	DeleteByParent(tx *gorm.DB, kind models.ParentKind, parentID string) error
}

// BalanceSnapshot is one row of an aggregate reconciliation view.
type BalanceSnapshot struct {
	ParentID     string    `json:"parent_id"`
	TotalIncome  int64     `json:"total_income"`
	TotalOutcome int64     `json:"total_outcome"`
	Balance      int64     `json:"balance"`
	RefreshedAt  time.Time `json:"refreshed_at"`
}

// Drift reports a parent whose denormalized counter disagrees with the
// latest snapshot. Both values are exposed; nothing is auto-corrected.
type Drift struct {
	ParentID        string `json:"parent_id"`
	CounterBalance  int64  `json:"counter_balance"`
	SnapshotBalance int64  `json:"snapshot_balance"`
}

// ReconciliationServicer re-derives per-parent income/outcome/net totals
// directly from the transaction table, independent of the incrementally
// maintained counters.
type ReconciliationServicer interface {
	Refresh(kind models.ParentKind) error
	Lookup(kind models.ParentKind, parentID string) (*BalanceSnapshot, error)
	FindDrift(kind models.ParentKind) ([]Drift, error)
}

// ImportRow is one line of a batch import.
type ImportRow struct {
	AccountID  string    `json:"account_id"`
	CategoryID string    `json:"category_id"`
	MerchantID string    `json:"merchant_id"`
	Amount     int64     `json:"amount"`
	Date       time.Time `json:"date"`
	Notes      string    `json:"notes"`
}

// ImportResult summarizes a completed batch import.
type ImportResult struct {
	Created        int      `json:"created"`
	TransactionIDs []string `json:"transaction_ids"`
}

// ImportServicer ingests batches of transactions through the regular write
// pipeline. It owns the is_processing flag lifecycle: imported rows stay
// flagged until the batch finishes, so concurrent edits are rejected.
type ImportServicer interface {
	Run(teamID string, rows []ImportRow) (*ImportResult, error)
	MarkProcessing(teamID string, transactionIDs []string) error
	ClearProcessing(teamID string, transactionIDs []string) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(teamID, userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
