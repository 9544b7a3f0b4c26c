package services

import (
	"testing"

	apperrors "tally/internal/errors"
	"tally/internal/testutil"
)

func TestTagCRUD(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	team := testutil.CreateTestTeam(t, db)
	svc := NewTagService(db)

	tag, err := svc.CreateTag(team.ID, "recurring", "#ABCDEF")
	testutil.AssertNoError(t, err)

	page, err := svc.GetTeamTags(team.ID, pageRequest(1, 10))
	testutil.AssertNoError(t, err)
	if page.TotalItems != 1 {
		t.Errorf("expected 1 tag, got %d", page.TotalItems)
	}

	t.Run("requires a name", func(t *testing.T) {
		_, err := svc.CreateTag(team.ID, "", "")
		testutil.AssertAppError(t, err, apperrors.ErrInvalidInput)
	})

	testutil.AssertNoError(t, svc.DeleteTag(team.ID, tag.ID))
	_, err = svc.GetTagByID(team.ID, tag.ID)
	testutil.AssertAppError(t, err, apperrors.ErrTagNotFound)
}

func TestDeleteTagKeepsTransactions(t *testing.T) {
	env := newTxnTestEnv(t)
	svc := NewTagService(env.db)

	tag := testutil.CreateTestTag(t, env.db, env.team.ID)
	input := env.input(100)
	input.TagIDs = []string{tag.ID}
	txn, err := env.svc.CreateTransaction(env.team.ID, input)
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, svc.DeleteTag(env.team.ID, tag.ID))

	loaded, err := env.svc.GetTransactionByID(env.team.ID, txn.ID)
	testutil.AssertNoError(t, err)
	if len(loaded.Tags) != 0 {
		t.Errorf("expected no tags after delete, got %d", len(loaded.Tags))
	}

	// Counters are untouched by tag removal.
	a, _, _ := env.balances(t)
	if a != 100 {
		t.Errorf("expected account balance 100, got %d", a)
	}
}
