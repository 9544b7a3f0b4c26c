package services

import (
	"testing"

	apperrors "tally/internal/errors"
	"tally/internal/models"
	"tally/internal/testutil"
)

func TestMerchantCRUD(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	team := testutil.CreateTestTeam(t, db)
	svc := NewMerchantService(db, NewTransactionService(db, NewBalanceService()))

	merchant, err := svc.CreateMerchant(team.ID, "Corner Shop")
	testutil.AssertNoError(t, err)
	if merchant.Balance != 0 {
		t.Errorf("expected new merchant balance 0, got %d", merchant.Balance)
	}

	updated, err := svc.UpdateMerchant(team.ID, merchant.ID, "Corner Store")
	testutil.AssertNoError(t, err)
	if updated.Name != "Corner Store" {
		t.Errorf("expected name Corner Store, got %s", updated.Name)
	}

	testutil.AssertNoError(t, svc.DeleteMerchant(team.ID, merchant.ID))
	_, err = svc.GetMerchantByID(team.ID, merchant.ID)
	testutil.AssertAppError(t, err, apperrors.ErrMerchantNotFound)
}

func TestDeleteMerchantCascade(t *testing.T) {
	env := newTxnTestEnv(t)
	svc := NewMerchantService(env.db, env.svc)

	_, err := env.svc.CreateTransaction(env.team.ID, env.input(-275))
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, svc.DeleteMerchant(env.team.ID, env.merchant.ID))

	var account models.Account
	testutil.AssertNoError(t, env.db.First(&account, "id = ?", env.account.ID).Error)
	if account.Balance != 0 {
		t.Errorf("expected account balance 0 after merchant cascade, got %d", account.Balance)
	}
}
