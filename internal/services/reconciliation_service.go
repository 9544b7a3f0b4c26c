package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "tally/internal/errors"
	"tally/internal/logger"
	"tally/internal/models"
)

// reconciliationService materializes the aggregate balance views: per-parent
// income/outcome/net totals re-derived wholesale from the transaction table.
// It never reads the denormalized counters, which makes its output an
// independent cross-check for them. Snapshots are not kept live; staleness
// between refreshes is expected.
type reconciliationService struct {
	db *gorm.DB
}

// NewReconciliationService creates a new ReconciliationServicer.
func NewReconciliationService(db *gorm.DB) ReconciliationServicer {
	return &reconciliationService{db: db}
}

// Refresh recomputes the snapshot table for one parent kind from a single
// consistent scan of the transaction table. Delete and rebuild happen inside
// one storage transaction: concurrent readers keep seeing the previous
// complete snapshot until commit, and a failed refresh leaves it intact.
func (s *reconciliationService) Refresh(kind models.ParentKind) error {
	target, err := targetFor(kind)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM " + target.snapshotTable).Error; err != nil {
			return err
		}

		insert := fmt.Sprintf(`
			INSERT INTO %s (%s, total_income, total_outcome, balance, refreshed_at)
			SELECT %s,
			       SUM(CASE WHEN amount >= 0 THEN amount ELSE 0 END),
			       SUM(CASE WHEN amount < 0 THEN -amount ELSE 0 END),
			       SUM(amount),
			       ?
			FROM transactions
			WHERE deleted_at IS NULL
			GROUP BY %s`,
			target.snapshotTable, target.column, target.column, target.column)

		return tx.Exec(insert, time.Now().UTC()).Error
	})
	if err != nil {
		logger.Get().Errorw("aggregate refresh failed",
			"error", err,
			"parent_kind", string(kind),
		)
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Lookup returns the latest snapshot row for one parent. A parent with no
// transactions at the last refresh has no row.
func (s *reconciliationService) Lookup(kind models.ParentKind, parentID string) (*BalanceSnapshot, error) {
	target, err := targetFor(kind)
	if err != nil {
		return nil, err
	}

	var snap BalanceSnapshot
	err = s.db.Table(target.snapshotTable).
		Select(target.column+" AS parent_id, total_income, total_outcome, balance, refreshed_at").
		Where(target.column+" = ?", parentID).
		Take(&snap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBalanceSnapshotNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &snap, nil
}

// FindDrift joins the snapshot table against the live counters and returns
// every parent whose denormalized balance disagrees with the re-derived
// one. Parents without a snapshot row compare against zero. The report is
// informational only; correcting a counter is an operator decision.
func (s *reconciliationService) FindDrift(kind models.ParentKind) ([]Drift, error) {
	target, err := targetFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT p.id AS parent_id,
		       p.balance AS counter_balance,
		       COALESCE(b.balance, 0) AS snapshot_balance
		FROM %s p
		LEFT JOIN %s b ON b.%s = p.id
		WHERE p.deleted_at IS NULL
		  AND p.balance <> COALESCE(b.balance, 0)
		ORDER BY p.id`,
		target.table, target.snapshotTable, target.column)

	var drifts []Drift
	if err := s.db.Raw(query).Scan(&drifts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if len(drifts) > 0 {
		logger.Get().Warnw("balance drift detected",
			"parent_kind", string(kind),
			"count", len(drifts),
		)
	}
	return drifts, nil
}
