package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"tally/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var fixtureCounter atomic.Int64

func nextN() int64 {
	return fixtureCounter.Add(1)
}

// CreateTestTeam inserts a team with a unique name.
func CreateTestTeam(t *testing.T, db *gorm.DB) *models.Team {
	t.Helper()

	team := &models.Team{
		Name: fmt.Sprintf("Test Team %d", nextN()),
	}
	if err := db.Create(team).Error; err != nil {
		t.Fatalf("failed to create test team: %v", err)
	}
	return team
}

// CreateTestUser inserts a user belonging to the given team, with a unique
// email and a bcrypt-hashed password of "password123".
func CreateTestUser(t *testing.T, db *gorm.DB, teamID string) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}
	user := &models.User{
		TeamID:   teamID,
		Email:    fmt.Sprintf("user%d@example.com", nextN()),
		Password: string(hashed),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAccount inserts an account with a zero balance.
func CreateTestAccount(t *testing.T, db *gorm.DB, teamID string) *models.Account {
	t.Helper()

	account := &models.Account{
		TeamID:   teamID,
		Name:     fmt.Sprintf("Account %d", nextN()),
		Currency: "USD",
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCategory inserts a category with a zero balance.
func CreateTestCategory(t *testing.T, db *gorm.DB, teamID string) *models.Category {
	t.Helper()

	category := &models.Category{
		TeamID: teamID,
		Name:   fmt.Sprintf("Category %d", nextN()),
		Color:  "#33C4B3",
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestMerchant inserts a merchant with a zero balance.
func CreateTestMerchant(t *testing.T, db *gorm.DB, teamID string) *models.Merchant {
	t.Helper()

	merchant := &models.Merchant{
		TeamID: teamID,
		Name:   fmt.Sprintf("Merchant %d", nextN()),
	}
	if err := db.Create(merchant).Error; err != nil {
		t.Fatalf("failed to create test merchant: %v", err)
	}
	return merchant
}

// CreateTestTag inserts a tag with a unique name.
func CreateTestTag(t *testing.T, db *gorm.DB, teamID string) *models.Tag {
	t.Helper()

	tag := &models.Tag{
		TeamID: teamID,
		Name:   fmt.Sprintf("tag-%d", nextN()),
	}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return tag
}

// CreateTestTransaction inserts a transaction row directly, bypassing the
// service layer. Balance counters are NOT updated; use this only when a test
// needs raw rows, e.g. to exercise reconciliation against unmutated counters.
func CreateTestTransaction(t *testing.T, db *gorm.DB, teamID, accountID, categoryID, merchantID string, amount int64) *models.Transaction {
	t.Helper()

	txn := &models.Transaction{
		TeamID:     teamID,
		AccountID:  accountID,
		CategoryID: categoryID,
		MerchantID: merchantID,
		Amount:     amount,
		Date:       time.Now().UTC(),
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return txn
}
