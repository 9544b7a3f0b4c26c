package services

import (
	"testing"

	apperrors "tally/internal/errors"
	"tally/internal/testutil"
)

func TestRegister(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	svc := NewUserService(db)

	t.Run("creates a team and its first user", func(t *testing.T) {
		user, err := svc.Register("Household", "alex@example.com", "secret123", "Alex")
		testutil.AssertNoError(t, err)
		if user.TeamID == "" {
			t.Error("expected the user to belong to a new team")
		}
		if user.Password == "secret123" {
			t.Error("expected the password to be hashed")
		}
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		_, err := svc.Register("Another", "alex@example.com", "secret123", "Alex")
		testutil.AssertAppError(t, err, apperrors.ErrDuplicateEmail)
	})

	t.Run("requires credentials", func(t *testing.T) {
		_, err := svc.Register("Team", "", "", "")
		testutil.AssertAppError(t, err, apperrors.ErrInvalidInput)
	})
}

func TestAttemptLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	svc := NewUserService(db)
	_, err := svc.Register("Household", "sam@example.com", "correct-horse", "Sam")
	testutil.AssertNoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.AttemptLogin("sam@example.com", "correct-horse")
		testutil.AssertNoError(t, err)
		if user.Email != "sam@example.com" {
			t.Errorf("expected sam@example.com, got %s", user.Email)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.AttemptLogin("sam@example.com", "wrong")
		testutil.AssertAppError(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.AttemptLogin("nobody@example.com", "whatever")
		testutil.AssertAppError(t, err, apperrors.ErrInvalidCredentials)
	})
}

func TestRefreshTokenHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	svc := NewUserService(db)
	user, err := svc.Register("Household", "kim@example.com", "password1", "Kim")
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, svc.StoreRefreshTokenHash(user.ID, "hash-value"))

	hash, err := svc.GetRefreshTokenHash(user.ID)
	testutil.AssertNoError(t, err)
	if hash != "hash-value" {
		t.Errorf("expected stored hash, got %q", hash)
	}

	err = svc.StoreRefreshTokenHash("00000000-0000-0000-0000-000000000000", "x")
	testutil.AssertAppError(t, err, apperrors.ErrUserNotFound)
}
