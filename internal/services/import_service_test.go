package services

import (
	"testing"

	apperrors "tally/internal/errors"
	"tally/internal/models"
	"tally/internal/testutil"
)

func TestImportRun(t *testing.T) {
	t.Run("creates every row and clears processing flags", func(t *testing.T) {
		env := newTxnTestEnv(t)
		svc := NewImportService(env.db, env.svc)

		rows := []ImportRow{
			{AccountID: env.account.ID, CategoryID: env.category.ID, MerchantID: env.merchant.ID, Amount: 1000},
			{AccountID: env.account.ID, CategoryID: env.category.ID, MerchantID: env.merchant.ID, Amount: -400},
			{AccountID: env.account.ID, CategoryID: env.category.ID, MerchantID: env.merchant.ID, Amount: 250},
		}

		result, err := svc.Run(env.team.ID, rows)
		testutil.AssertNoError(t, err)
		if result.Created != 3 {
			t.Errorf("expected 3 created rows, got %d", result.Created)
		}

		// Balance cascade ran per row.
		a, c, m := env.balances(t)
		if a != 850 || c != 850 || m != 850 {
			t.Errorf("expected balances 850/850/850, got %d/%d/%d", a, c, m)
		}

		// Flags have been released; the rows are editable again.
		for _, id := range result.TransactionIDs {
			txn, err := env.svc.GetTransactionByID(env.team.ID, id)
			testutil.AssertNoError(t, err)
			if txn.IsProcessing {
				t.Errorf("expected transaction %s released after import", id)
			}
		}
	})

	t.Run("rejects an empty batch", func(t *testing.T) {
		env := newTxnTestEnv(t)
		svc := NewImportService(env.db, env.svc)

		_, err := svc.Run(env.team.ID, nil)
		testutil.AssertAppError(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("failed row releases earlier rows", func(t *testing.T) {
		env := newTxnTestEnv(t)
		svc := NewImportService(env.db, env.svc)

		rows := []ImportRow{
			{AccountID: env.account.ID, CategoryID: env.category.ID, MerchantID: env.merchant.ID, Amount: 500},
			{AccountID: "00000000-0000-0000-0000-000000000000", CategoryID: env.category.ID, MerchantID: env.merchant.ID, Amount: 100},
		}

		_, err := svc.Run(env.team.ID, rows)
		testutil.AssertAppError(t, err, apperrors.ErrAccountNotFound)

		// The first row survives, released, with its cascade applied.
		var count int64
		testutil.AssertNoError(t, env.db.Model(&models.Transaction{}).
			Where("team_id = ? AND is_processing = ?", env.team.ID, true).
			Count(&count).Error)
		if count != 0 {
			t.Errorf("expected no rows left flagged as processing, got %d", count)
		}

		a, _, _ := env.balances(t)
		if a != 500 {
			t.Errorf("expected account balance 500 from the surviving row, got %d", a)
		}
	})
}

func TestImportBlocksConcurrentEdits(t *testing.T) {
	env := newTxnTestEnv(t)
	svc := NewImportService(env.db, env.svc)

	input := env.input(700)
	txn, err := env.svc.CreateTransaction(env.team.ID, input)
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, svc.MarkProcessing(env.team.ID, []string{txn.ID}))

	amount := int64(1)
	_, err = env.svc.UpdateTransaction(env.team.ID, txn.ID, TransactionUpdateFields{Amount: &amount})
	testutil.AssertAppError(t, err, apperrors.ErrTransactionProcessing)

	testutil.AssertNoError(t, svc.ClearProcessing(env.team.ID, []string{txn.ID}))

	_, err = env.svc.UpdateTransaction(env.team.ID, txn.ID, TransactionUpdateFields{Amount: &amount})
	testutil.AssertNoError(t, err)
}

func TestMarkProcessingScopedToTeam(t *testing.T) {
	env := newTxnTestEnv(t)
	svc := NewImportService(env.db, env.svc)

	txn, err := env.svc.CreateTransaction(env.team.ID, env.input(100))
	testutil.AssertNoError(t, err)

	otherTeam := testutil.CreateTestTeam(t, env.db)
	testutil.AssertNoError(t, svc.MarkProcessing(otherTeam.ID, []string{txn.ID}))

	loaded, err := env.svc.GetTransactionByID(env.team.ID, txn.ID)
	testutil.AssertNoError(t, err)
	if loaded.IsProcessing {
		t.Error("another team must not be able to flag this team's transactions")
	}
}
