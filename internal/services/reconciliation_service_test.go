package services

import (
	"testing"

	apperrors "tally/internal/errors"
	"tally/internal/models"
	"tally/internal/testutil"
)

func TestReconciliationRefreshAndLookup(t *testing.T) {
	env := newTxnTestEnv(t)
	recon := NewReconciliationService(env.db)

	_, err := env.svc.CreateTransaction(env.team.ID, env.input(3000))
	testutil.AssertNoError(t, err)
	_, err = env.svc.CreateTransaction(env.team.ID, env.input(-1200))
	testutil.AssertNoError(t, err)
	_, err = env.svc.CreateTransaction(env.team.ID, env.input(500))
	testutil.AssertNoError(t, err)

	for _, kind := range models.ParentKinds {
		testutil.AssertNoError(t, recon.Refresh(kind))
	}

	t.Run("snapshot splits income and outcome", func(t *testing.T) {
		snap, err := recon.Lookup(models.ParentKindAccount, env.account.ID)
		testutil.AssertNoError(t, err)

		if snap.TotalIncome != 3500 {
			t.Errorf("expected total income 3500, got %d", snap.TotalIncome)
		}
		if snap.TotalOutcome != 1200 {
			t.Errorf("expected total outcome 1200, got %d", snap.TotalOutcome)
		}
		if snap.Balance != 2300 {
			t.Errorf("expected balance 2300, got %d", snap.Balance)
		}
		if snap.RefreshedAt.IsZero() {
			t.Error("expected a refreshed_at timestamp")
		}
	})

	t.Run("snapshot agrees with the live counter", func(t *testing.T) {
		a, c, m := env.balances(t)

		accSnap, err := recon.Lookup(models.ParentKindAccount, env.account.ID)
		testutil.AssertNoError(t, err)
		catSnap, err := recon.Lookup(models.ParentKindCategory, env.category.ID)
		testutil.AssertNoError(t, err)
		merSnap, err := recon.Lookup(models.ParentKindMerchant, env.merchant.ID)
		testutil.AssertNoError(t, err)

		if accSnap.Balance != a || catSnap.Balance != c || merSnap.Balance != m {
			t.Errorf("snapshots %d/%d/%d disagree with counters %d/%d/%d",
				accSnap.Balance, catSnap.Balance, merSnap.Balance, a, c, m)
		}
	})

	t.Run("parent with no transactions has no snapshot row", func(t *testing.T) {
		idle := testutil.CreateTestAccount(t, env.db, env.team.ID)
		testutil.AssertNoError(t, recon.Refresh(models.ParentKindAccount))

		_, err := recon.Lookup(models.ParentKindAccount, idle.ID)
		testutil.AssertAppError(t, err, apperrors.ErrBalanceSnapshotNotFound)
	})

	t.Run("refresh replaces stale totals wholesale", func(t *testing.T) {
		_, err := env.svc.CreateTransaction(env.team.ID, env.input(-800))
		testutil.AssertNoError(t, err)

		// Stale until refreshed.
		snap, err := recon.Lookup(models.ParentKindAccount, env.account.ID)
		testutil.AssertNoError(t, err)
		if snap.Balance != 2300 {
			t.Errorf("expected stale balance 2300 before refresh, got %d", snap.Balance)
		}

		testutil.AssertNoError(t, recon.Refresh(models.ParentKindAccount))

		snap, err = recon.Lookup(models.ParentKindAccount, env.account.ID)
		testutil.AssertNoError(t, err)
		if snap.Balance != 1500 {
			t.Errorf("expected balance 1500 after refresh, got %d", snap.Balance)
		}
		if snap.TotalOutcome != 2000 {
			t.Errorf("expected total outcome 2000 after refresh, got %d", snap.TotalOutcome)
		}
	})

	t.Run("deleted transactions are excluded", func(t *testing.T) {
		txn, err := env.svc.CreateTransaction(env.team.ID, env.input(10000))
		testutil.AssertNoError(t, err)
		testutil.AssertNoError(t, env.svc.DeleteTransaction(env.team.ID, txn.ID))

		testutil.AssertNoError(t, recon.Refresh(models.ParentKindAccount))

		snap, err := recon.Lookup(models.ParentKindAccount, env.account.ID)
		testutil.AssertNoError(t, err)
		if snap.Balance != 1500 {
			t.Errorf("expected deleted row excluded from snapshot, got balance %d", snap.Balance)
		}
	})

	t.Run("unknown parent kind is rejected", func(t *testing.T) {
		testutil.AssertAppError(t, recon.Refresh(models.ParentKind("wallet")), apperrors.ErrUnknownParentKind)

		_, err := recon.Lookup(models.ParentKind("wallet"), env.account.ID)
		testutil.AssertAppError(t, err, apperrors.ErrUnknownParentKind)

		_, err = recon.FindDrift(models.ParentKind("wallet"))
		testutil.AssertAppError(t, err, apperrors.ErrUnknownParentKind)
	})
}

func TestReconciliationFindDrift(t *testing.T) {
	env := newTxnTestEnv(t)
	recon := NewReconciliationService(env.db)

	_, err := env.svc.CreateTransaction(env.team.ID, env.input(2000))
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, recon.Refresh(models.ParentKindAccount))

	t.Run("healthy counters report no drift", func(t *testing.T) {
		drifts, err := recon.FindDrift(models.ParentKindAccount)
		testutil.AssertNoError(t, err)
		if len(drifts) != 0 {
			t.Errorf("expected no drift, got %+v", drifts)
		}
	})

	t.Run("a skewed counter is reported with both values", func(t *testing.T) {
		// Skew the counter behind the pipeline's back.
		err := env.db.Model(&models.Account{}).
			Where("id = ?", env.account.ID).
			UpdateColumn("balance", 9999).Error
		testutil.AssertNoError(t, err)

		drifts, err := recon.FindDrift(models.ParentKindAccount)
		testutil.AssertNoError(t, err)
		if len(drifts) != 1 {
			t.Fatalf("expected one drifting account, got %d", len(drifts))
		}
		if drifts[0].ParentID != env.account.ID {
			t.Errorf("expected drift for account %s, got %s", env.account.ID, drifts[0].ParentID)
		}
		if drifts[0].CounterBalance != 9999 || drifts[0].SnapshotBalance != 2000 {
			t.Errorf("expected counter 9999 vs snapshot 2000, got %d vs %d",
				drifts[0].CounterBalance, drifts[0].SnapshotBalance)
		}

		// Drift detection reports; it never corrects.
		var account models.Account
		testutil.AssertNoError(t, env.db.First(&account, "id = ?", env.account.ID).Error)
		if account.Balance != 9999 {
			t.Errorf("expected counter left at 9999, got %d", account.Balance)
		}
	})

	t.Run("counter without a snapshot row compares against zero", func(t *testing.T) {
		stray := testutil.CreateTestAccount(t, env.db, env.team.ID)
		err := env.db.Model(&models.Account{}).
			Where("id = ?", stray.ID).
			UpdateColumn("balance", 50).Error
		testutil.AssertNoError(t, err)

		drifts, err := recon.FindDrift(models.ParentKindAccount)
		testutil.AssertNoError(t, err)

		found := false
		for _, d := range drifts {
			if d.ParentID == stray.ID {
				found = true
				if d.SnapshotBalance != 0 {
					t.Errorf("expected snapshot balance 0 for missing row, got %d", d.SnapshotBalance)
				}
			}
		}
		if !found {
			t.Error("expected the snapshot-less account to be reported")
		}
	})
}
