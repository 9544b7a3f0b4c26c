package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "tally/internal/errors"
	"tally/internal/models"
	"tally/internal/pagination"
)

// merchantService handles merchant-related business logic.
type merchantService struct {
	db           *gorm.DB
	transactions TransactionServicer
}

// NewMerchantService creates a new MerchantServicer.
func NewMerchantService(db *gorm.DB, transactions TransactionServicer) MerchantServicer {
	return &merchantService{db: db, transactions: transactions}
}

// CreateMerchant creates a new merchant.
func (s *merchantService) CreateMerchant(teamID, name string) (*models.Merchant, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "merchant name is required")
	}

	merchant := &models.Merchant{
		TeamID: teamID,
		Name:   name,
	}

	if err := s.db.Create(merchant).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return merchant, nil
}

// GetTeamMerchants retrieves a paginated list of merchants for a team.
func (s *merchantService) GetTeamMerchants(teamID string, page pagination.PageRequest) (*pagination.PageResponse[models.Merchant], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Merchant{}).Where("team_id = ?", teamID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var merchants []models.Merchant
	if err := base.Scopes(pagination.Paginate(page)).Order("name").Find(&merchants).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(merchants, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetMerchantByID retrieves a merchant by ID for a specific team.
func (s *merchantService) GetMerchantByID(teamID, merchantID string) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := s.db.Where("id = ? AND team_id = ?", merchantID, teamID).First(&merchant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMerchantNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &merchant, nil
}

// UpdateMerchant renames a merchant.
func (s *merchantService) UpdateMerchant(teamID, merchantID, name string) (*models.Merchant, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "merchant name is required")
	}

	merchant, err := s.GetMerchantByID(teamID, merchantID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(merchant).Update("name", name).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return merchant, nil
}

// DeleteMerchant removes a merchant together with its transactions via the
// write pipeline's cascade, keeping account and category counters
// consistent.
func (s *merchantService) DeleteMerchant(teamID, merchantID string) error {
	merchant, err := s.GetMerchantByID(teamID, merchantID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.transactions.DeleteByParent(tx, models.ParentKindMerchant, merchant.ID); err != nil {
			return err
		}
		if err := tx.Delete(merchant).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
