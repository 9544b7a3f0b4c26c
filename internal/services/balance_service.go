package services

import (
	"fmt"

	"gorm.io/gorm"

	apperrors "tally/internal/errors"
	"tally/internal/logger"
	"tally/internal/models"
)

// balanceService applies signed deltas to the account, category, and
// merchant balance counters for every transaction lifecycle event.
//
// Every counter change is a single atomic in-database increment
// (UPDATE ... SET balance = balance + ? WHERE id = ?), never a
// read-modify-write in application memory, so concurrent deltas against the
// same parent serialize on the row lock and neither is lost. The service is
// stateless; callers hand in the gorm transaction that also carries the
// transaction row write, which makes each lifecycle event all-or-nothing.
//
// The service provides no idempotency: invoking a hook twice for the same
// event double-applies the delta.
type balanceService struct{}

// NewBalanceService creates a new BalanceServicer.
func NewBalanceService() BalanceServicer {
	return &balanceService{}
}

// OnCreate applies +amount to the transaction's account, merchant, and
// category balances.
func (s *balanceService) OnCreate(tx *gorm.DB, txn *models.Transaction) error {
	if err := s.increment(tx, &models.Account{}, txn.AccountID, txn.Amount, txn.ID); err != nil {
		return err
	}
	if err := s.increment(tx, &models.Merchant{}, txn.MerchantID, txn.Amount, txn.ID); err != nil {
		return err
	}
	return s.increment(tx, &models.Category{}, txn.CategoryID, txn.Amount, txn.ID)
}

// OnUpdate reconciles the counters with a transaction update, handling each
// of the three parent kinds independently: a changed reference moves the
// amount between old and new parent, an unchanged reference absorbs the
// amount difference.
func (s *balanceService) OnUpdate(tx *gorm.DB, updated, previous *models.Transaction) error {
	if err := s.shift(tx, &models.Account{}, previous.AccountID, updated.AccountID, previous.Amount, updated.Amount, updated.ID); err != nil {
		return err
	}
	if err := s.shift(tx, &models.Merchant{}, previous.MerchantID, updated.MerchantID, previous.Amount, updated.Amount, updated.ID); err != nil {
		return err
	}
	return s.shift(tx, &models.Category{}, previous.CategoryID, updated.CategoryID, previous.Amount, updated.Amount, updated.ID)
}

// OnDelete applies -amount to the transaction's account, merchant, and
// category balances.
func (s *balanceService) OnDelete(tx *gorm.DB, txn *models.Transaction) error {
	if err := s.increment(tx, &models.Account{}, txn.AccountID, -txn.Amount, txn.ID); err != nil {
		return err
	}
	if err := s.increment(tx, &models.Merchant{}, txn.MerchantID, -txn.Amount, txn.ID); err != nil {
		return err
	}
	return s.increment(tx, &models.Category{}, txn.CategoryID, -txn.Amount, txn.ID)
}

// shift moves a transaction's contribution between parents of one kind.
// When the reference is unchanged the amount difference is applied as-is;
// a zero difference is a harmless increment, deliberately not skipped.
// When the previous reference is absent the decrement step is skipped.
func (s *balanceService) shift(tx *gorm.DB, parent interface{}, prevID, newID string, prevAmount, newAmount int64, txnID string) error {
	if prevID == newID {
		return s.increment(tx, parent, newID, newAmount-prevAmount, txnID)
	}
	if prevID == "" {
		return s.increment(tx, parent, newID, newAmount, txnID)
	}
	// Reparenting touches two rows of the same table. Lock them in
	// ascending id order so concurrent movers cannot deadlock.
	if prevID < newID {
		if err := s.increment(tx, parent, prevID, -prevAmount, txnID); err != nil {
			return err
		}
		return s.increment(tx, parent, newID, newAmount, txnID)
	}
	if err := s.increment(tx, parent, newID, newAmount, txnID); err != nil {
		return err
	}
	return s.increment(tx, parent, prevID, -prevAmount, txnID)
}

// increment adds delta to one parent's balance counter as a single locked
// UPDATE. Failures are logged with the transaction and parent identifiers
// and returned so the caller aborts the surrounding write.
func (s *balanceService) increment(tx *gorm.DB, parent interface{}, parentID string, delta int64, txnID string) error {
	result := tx.Model(parent).
		Where("id = ?", parentID).
		UpdateColumn("balance", gorm.Expr("balance + ?", delta))

	if result.Error != nil {
		logger.Get().Errorw("balance increment failed",
			"error", result.Error,
			"transaction_id", txnID,
			"parent_id", parentID,
			"delta", delta,
		)
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		logger.Get().Errorw("balance increment matched no row",
			"transaction_id", txnID,
			"parent_id", parentID,
			"delta", delta,
		)
		return apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("balance parent %s not found", parentID))
	}
	return nil
}
