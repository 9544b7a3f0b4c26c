package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "tally/internal/errors"
	"tally/internal/models"
	"tally/internal/pagination"
)

// lockForUpdate adds FOR UPDATE to a query so the previous state read of a
// transaction row stays current until the surrounding storage transaction
// commits. Without it, two concurrent updates of the same row can both read
// the same previous state; the loser then writes a stale column map and
// computes a zero delta, leaving the row and the counters disagreeing.
// SQLite has no row locks and rejects the clause; its single writer already
// serializes whole transactions there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// transactionService is the transaction write pipeline. Every create,
// update, and delete runs inside one gorm transaction together with the
// matching balance hook, so the row write and its counter deltas commit or
// roll back as a unit.
type transactionService struct {
	db      *gorm.DB
	balance BalanceServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, balance BalanceServicer) TransactionServicer {
	return &transactionService{db: db, balance: balance}
}

// CreateTransaction persists a new transaction and applies the balance
// increment cascade to its account, merchant, and category.
func (s *transactionService) CreateTransaction(teamID string, input TransactionInput) (*models.Transaction, error) {
	if input.AccountID == "" || input.CategoryID == "" || input.MerchantID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account, category and merchant are required")
	}

	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	tags, err := s.tagsForTeam(teamID, input.TagIDs)
	if err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		TeamID:       teamID,
		AccountID:    input.AccountID,
		CategoryID:   input.CategoryID,
		MerchantID:   input.MerchantID,
		Amount:       input.Amount,
		Date:         input.Date,
		Notes:        input.Notes,
		IsProcessing: input.Processing,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.ensureParents(tx, teamID, txn.AccountID, txn.CategoryID, txn.MerchantID); err != nil {
			return err
		}
		if err := tx.Create(txn).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(tags) > 0 {
			if err := tx.Model(txn).Association("Tags").Append(&tags); err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return s.balance.OnCreate(tx, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// UpdateTransaction applies field changes to an existing transaction and
// reconciles the balance counters against its previous persisted state.
// A transaction flagged as processing by a batch import is rejected before
// anything is written.
func (s *transactionService) UpdateTransaction(teamID, transactionID string, fields TransactionUpdateFields) (*models.Transaction, error) {
	var tags []models.Tag
	if fields.TagIDs != nil {
		loaded, err := s.tagsForTeam(teamID, fields.TagIDs)
		if err != nil {
			return nil, err
		}
		tags = loaded
	}

	var updated models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var previous models.Transaction
		if err := lockForUpdate(tx).Where("id = ? AND team_id = ?", transactionID, teamID).First(&previous).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTransactionNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := CheckMutable(&previous); err != nil {
			return err
		}

		updated = previous
		if fields.AccountID != nil {
			updated.AccountID = *fields.AccountID
		}
		if fields.CategoryID != nil {
			updated.CategoryID = *fields.CategoryID
		}
		if fields.MerchantID != nil {
			updated.MerchantID = *fields.MerchantID
		}
		if fields.Amount != nil {
			updated.Amount = *fields.Amount
		}
		if fields.Date != nil {
			updated.Date = *fields.Date
		}
		if fields.Notes != nil {
			updated.Notes = *fields.Notes
		}

		if err := s.ensureParents(tx, teamID, updated.AccountID, updated.CategoryID, updated.MerchantID); err != nil {
			return err
		}

		// Updates with a map so zero values (amount 0, empty notes) persist.
		if err := tx.Model(&models.Transaction{}).Where("id = ?", previous.ID).Updates(map[string]interface{}{
			"account_id":  updated.AccountID,
			"category_id": updated.CategoryID,
			"merchant_id": updated.MerchantID,
			"amount":      updated.Amount,
			"date":        updated.Date,
			"notes":       updated.Notes,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if fields.TagIDs != nil {
			if err := tx.Model(&updated).Association("Tags").Replace(&tags); err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		return s.balance.OnUpdate(tx, &updated, &previous)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTransaction removes a transaction and applies the balance decrement
// cascade.
func (s *transactionService) DeleteTransaction(teamID, transactionID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		if err := lockForUpdate(tx).Where("id = ? AND team_id = ?", transactionID, teamID).First(&txn).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTransactionNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(&txn).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.balance.OnDelete(tx, &txn)
	})
}

// GetTransactionByID retrieves a transaction by ID for a specific team.
func (s *transactionService) GetTransactionByID(teamID, transactionID string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.db.Preload("Tags").Where("id = ? AND team_id = ?", transactionID, teamID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &txn, nil
}

// GetTeamTransactions retrieves a paginated, filtered list of transactions.
func (s *transactionService) GetTeamTransactions(teamID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("team_id = ?", teamID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// DeleteByParent removes every live transaction referencing the given
// parent, applying the decrement cascade for each, on the caller's gorm
// transaction. The parent row itself must still be live when this runs so
// its own counter updates resolve.
func (s *transactionService) DeleteByParent(tx *gorm.DB, kind models.ParentKind, parentID string) error {
	target, err := targetFor(kind)
	if err != nil {
		return err
	}

	var txns []models.Transaction
	if err := lockForUpdate(tx).Where(target.column+" = ?", parentID).Find(&txns).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range txns {
		if err := tx.Delete(&txns[i]).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.balance.OnDelete(tx, &txns[i]); err != nil {
			return err
		}
	}
	return nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.AccountID != nil {
		q = q.Where("account_id = ?", *f.AccountID)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.MerchantID != nil {
		q = q.Where("merchant_id = ?", *f.MerchantID)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

// ensureParents verifies that the three referenced parents exist and belong
// to the team.
func (s *transactionService) ensureParents(tx *gorm.DB, teamID, accountID, categoryID, merchantID string) error {
	checks := []struct {
		kind models.ParentKind
		id   string
	}{
		{models.ParentKindAccount, accountID},
		{models.ParentKindCategory, categoryID},
		{models.ParentKindMerchant, merchantID},
	}
	for _, check := range checks {
		target, err := targetFor(check.kind)
		if err != nil {
			return err
		}
		var count int64
		if err := tx.Model(target.model).Where("id = ? AND team_id = ?", check.id, teamID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return target.notFound
		}
	}
	return nil
}

// tagsForTeam loads the given tags, rejecting ids that do not exist or
// belong to another team.
func (s *transactionService) tagsForTeam(teamID string, tagIDs []string) ([]models.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := s.db.Where("team_id = ? AND id IN ?", teamID, tagIDs).Find(&tags).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(tags) != len(tagIDs) {
		return nil, apperrors.ErrTagNotFound
	}
	return tags, nil
}
