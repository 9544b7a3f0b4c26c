package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "tally/internal/errors"
	"tally/internal/models"
	"tally/internal/pagination"
)

// accountService handles account-related business logic.
type accountService struct {
	db           *gorm.DB
	transactions TransactionServicer
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB, transactions TransactionServicer) AccountServicer {
	return &accountService{db: db, transactions: transactions}
}

// CreateAccount creates a new account for a team. New accounts start with a
// zero balance; the counter only ever moves through the balance service.
func (s *accountService) CreateAccount(teamID, name, description, currency string) (*models.Account, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if currency == "" {
		currency = "USD"
	}

	account := &models.Account{
		TeamID:      teamID,
		Name:        name,
		Description: description,
		Currency:    currency,
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// GetTeamAccounts retrieves a paginated list of accounts for a team.
func (s *accountService) GetTeamAccounts(teamID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Account{}).Where("team_id = ?", teamID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Scopes(pagination.Paginate(page)).Order("name").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountByID retrieves an account by ID for a specific team.
func (s *accountService) GetAccountByID(teamID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("id = ? AND team_id = ?", accountID, teamID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateAccount updates an account's descriptive fields. The balance is not
// updatable here.
func (s *accountService) UpdateAccount(teamID, accountID, name, description string) (*models.Account, error) {
	account, err := s.GetAccountByID(teamID, accountID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	updates["description"] = description

	if err := s.db.Model(account).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// DeleteAccount removes an account together with its transactions. The
// transactions go through the write pipeline's cascade first, while the
// account row is still live, so category and merchant counters stay
// consistent.
func (s *accountService) DeleteAccount(teamID, accountID string) error {
	account, err := s.GetAccountByID(teamID, accountID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.transactions.DeleteByParent(tx, models.ParentKindAccount, account.ID); err != nil {
			return err
		}
		if err := tx.Delete(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
