package services

import (
	"gorm.io/gorm"

	apperrors "tally/internal/errors"
	"tally/internal/logger"
	"tally/internal/models"
)

// importService ingests transaction batches through the regular write
// pipeline. Rows are created with is_processing set and stay flagged until
// the whole batch completes; ordinary updates against them are rejected by
// the mutability guard for the duration.
type importService struct {
	db           *gorm.DB
	transactions TransactionServicer
}

// NewImportService creates a new ImportServicer.
func NewImportService(db *gorm.DB, transactions TransactionServicer) ImportServicer {
	return &importService{db: db, transactions: transactions}
}

// Run creates one transaction per row, each through the write pipeline so
// the balance cascade applies row by row. If a row fails, rows already
// created stay created but their processing flags are cleared before the
// error is returned; re-submitting the failed remainder is safe.
func (s *importService) Run(teamID string, rows []ImportRow) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "import batch is empty")
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		txn, err := s.transactions.CreateTransaction(teamID, TransactionInput{
			AccountID:  row.AccountID,
			CategoryID: row.CategoryID,
			MerchantID: row.MerchantID,
			Amount:     row.Amount,
			Date:       row.Date,
			Notes:      row.Notes,
			Processing: true,
		})
		if err != nil {
			logger.Get().Errorw("import row failed",
				"error", err,
				"team_id", teamID,
				"created_so_far", len(ids),
			)
			if clearErr := s.ClearProcessing(teamID, ids); clearErr != nil {
				logger.Get().Errorw("failed to release processing flags after import error",
					"error", clearErr,
					"team_id", teamID,
				)
			}
			return nil, err
		}
		ids = append(ids, txn.ID)
	}

	if err := s.ClearProcessing(teamID, ids); err != nil {
		return nil, err
	}

	logger.Get().Infow("import batch completed", "team_id", teamID, "created", len(ids))
	return &ImportResult{Created: len(ids), TransactionIDs: ids}, nil
}

// MarkProcessing flags the given transactions as owned by a batch process.
func (s *importService) MarkProcessing(teamID string, transactionIDs []string) error {
	return s.setProcessing(teamID, transactionIDs, true)
}

// ClearProcessing releases the processing flag on the given transactions.
func (s *importService) ClearProcessing(teamID string, transactionIDs []string) error {
	return s.setProcessing(teamID, transactionIDs, false)
}

func (s *importService) setProcessing(teamID string, transactionIDs []string, processing bool) error {
	if len(transactionIDs) == 0 {
		return nil
	}
	err := s.db.Model(&models.Transaction{}).
		Where("team_id = ? AND id IN ?", teamID, transactionIDs).
		UpdateColumn("is_processing", processing).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
