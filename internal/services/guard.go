package services

import (
	apperrors "tally/internal/errors"
	"tally/internal/models"
)

// CheckMutable rejects updates to a transaction that a batch import has
// flagged as processing. The check runs against the persisted prior state,
// before any field change or balance delta is computed. Creation and
// deletion are not guarded; the flag's lifecycle belongs to the import
// pipeline.
func CheckMutable(prev *models.Transaction) error {
	if prev.IsProcessing {
		return apperrors.ErrTransactionProcessing
	}
	return nil
}
