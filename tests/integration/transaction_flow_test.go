package integration

import (
	"fmt"
	"net/http"
	"testing"
)

// ledgerIDs bundles the parent entities most flows need.
type ledgerIDs struct {
	account  string
	category string
	merchant string
}

func setupLedger(t *testing.T, app *testApp, token string) ledgerIDs {
	t.Helper()
	return ledgerIDs{
		account:  app.createEntity(t, token, "/api/v1/accounts", `{"name":"Checking","currency":"USD"}`, "account"),
		category: app.createEntity(t, token, "/api/v1/categories", `{"name":"Groceries","color":"#00AA00"}`, "category"),
		merchant: app.createEntity(t, token, "/api/v1/merchants", `{"name":"Corner Shop"}`, "merchant"),
	}
}

func (app *testApp) accountBalance(t *testing.T, token, accountID string) float64 {
	t.Helper()
	rec := app.request("GET", "/api/v1/accounts/"+accountID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get account failed: %d %s", rec.Code, rec.Body.String())
	}
	account := parseJSON(t, rec)["account"].(map[string]interface{})
	return account["balance"].(float64)
}

func transactionBody(ids ledgerIDs, amount int64) string {
	return fmt.Sprintf(`{"account_id":%q,"category_id":%q,"merchant_id":%q,"amount":%d}`,
		ids.account, ids.category, ids.merchant, amount)
}

func TestTransactionBalanceFlow(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "flow@example.com", "password123")
	ids := setupLedger(t, app, token)

	// Income then outcome.
	txnID := app.createEntity(t, token, "/api/v1/transactions", transactionBody(ids, 5000), "transaction")
	app.createEntity(t, token, "/api/v1/transactions", transactionBody(ids, -1800), "transaction")

	if got := app.accountBalance(t, token, ids.account); got != 3200 {
		t.Errorf("expected account balance 3200, got %v", got)
	}

	// Amount change shifts by the difference.
	rec := app.request("PUT", "/api/v1/transactions/"+txnID, `{"amount":2000}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", rec.Code, rec.Body.String())
	}
	if got := app.accountBalance(t, token, ids.account); got != 200 {
		t.Errorf("expected account balance 200 after update, got %v", got)
	}

	// Reparenting moves the contribution to the new account.
	otherAccount := app.createEntity(t, token, "/api/v1/accounts", `{"name":"Savings","currency":"USD"}`, "account")
	rec = app.request("PUT", "/api/v1/transactions/"+txnID, fmt.Sprintf(`{"account_id":%q}`, otherAccount), token)
	if rec.Code != http.StatusOK {
		t.Fatalf("reparent failed: %d %s", rec.Code, rec.Body.String())
	}
	if got := app.accountBalance(t, token, ids.account); got != -1800 {
		t.Errorf("expected old account balance -1800 after reparent, got %v", got)
	}
	if got := app.accountBalance(t, token, otherAccount); got != 2000 {
		t.Errorf("expected new account balance 2000 after reparent, got %v", got)
	}

	// Delete reverses the contribution.
	rec = app.request("DELETE", "/api/v1/transactions/"+txnID, "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete failed: %d %s", rec.Code, rec.Body.String())
	}
	if got := app.accountBalance(t, token, otherAccount); got != 0 {
		t.Errorf("expected new account balance 0 after delete, got %v", got)
	}
}

func TestTransactionValidation(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "validation@example.com", "password123")
	ids := setupLedger(t, app, token)

	t.Run("missing parent reference", func(t *testing.T) {
		body := fmt.Sprintf(`{"account_id":%q,"amount":100}`, ids.account)
		rec := app.request("POST", "/api/v1/transactions", body, token)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown parent", func(t *testing.T) {
		body := fmt.Sprintf(`{"account_id":"0198c5f3-1111-7222-8333-444455556666","category_id":%q,"merchant_id":%q,"amount":100}`,
			ids.category, ids.merchant)
		rec := app.request("POST", "/api/v1/transactions", body, token)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("requires auth", func(t *testing.T) {
		rec := app.request("POST", "/api/v1/transactions", transactionBody(ids, 100), "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})
}

func TestImportAndProcessingConflict(t *testing.T) {
	app := setupApp(t)
	token, teamID := app.registerUser(t, "import@example.com", "password123")
	ids := setupLedger(t, app, token)

	body := fmt.Sprintf(`{"team_id":%q,"rows":[
		{"account_id":%q,"category_id":%q,"merchant_id":%q,"amount":1200},
		{"account_id":%q,"category_id":%q,"merchant_id":%q,"amount":-300}
	]}`, teamID, ids.account, ids.category, ids.merchant, ids.account, ids.category, ids.merchant)

	rec := app.pipelineRequest("POST", "/api/v1/pipeline/import", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("import failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)["result"].(map[string]interface{})
	if result["created"].(float64) != 2 {
		t.Errorf("expected 2 created rows, got %v", result["created"])
	}

	if got := app.accountBalance(t, token, ids.account); got != 900 {
		t.Errorf("expected account balance 900 after import, got %v", got)
	}

	t.Run("pipeline key required", func(t *testing.T) {
		rec := app.request("POST", "/api/v1/pipeline/import", body, token)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 without pipeline key, got %d", rec.Code)
		}
	})

	t.Run("processing rows reject edits with 409", func(t *testing.T) {
		// Flag a row manually, as a long-running batch would.
		txnIDs := result["transaction_ids"].([]interface{})
		txnID := txnIDs[0].(string)
		err := app.DB.Exec("UPDATE transactions SET is_processing = true WHERE id = ?", txnID).Error
		if err != nil {
			t.Fatalf("failed to flag row: %v", err)
		}

		rec := app.request("PUT", "/api/v1/transactions/"+txnID, `{"amount":99}`, token)
		if rec.Code != http.StatusConflict {
			t.Errorf("expected 409 for processing row, got %d %s", rec.Code, rec.Body.String())
		}

		// Balance untouched by the rejected edit.
		if got := app.accountBalance(t, token, ids.account); got != 900 {
			t.Errorf("expected balance unchanged at 900, got %v", got)
		}
	})
}

func TestReconciliationFlow(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "recon@example.com", "password123")
	ids := setupLedger(t, app, token)

	app.createEntity(t, token, "/api/v1/transactions", transactionBody(ids, 4000), "transaction")
	app.createEntity(t, token, "/api/v1/transactions", transactionBody(ids, -1500), "transaction")

	rec := app.pipelineRequest("POST", "/api/v1/pipeline/reconciliation/account/refresh", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh failed: %d %s", rec.Code, rec.Body.String())
	}

	t.Run("lookup returns reconciled totals", func(t *testing.T) {
		rec := app.pipelineRequest("GET", "/api/v1/pipeline/reconciliation/account/"+ids.account, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("lookup failed: %d %s", rec.Code, rec.Body.String())
		}
		snap := parseJSON(t, rec)["snapshot"].(map[string]interface{})
		if snap["total_income"].(float64) != 4000 {
			t.Errorf("expected total income 4000, got %v", snap["total_income"])
		}
		if snap["total_outcome"].(float64) != 1500 {
			t.Errorf("expected total outcome 1500, got %v", snap["total_outcome"])
		}
		if snap["balance"].(float64) != 2500 {
			t.Errorf("expected balance 2500, got %v", snap["balance"])
		}
	})

	t.Run("drift report is empty for a healthy ledger", func(t *testing.T) {
		rec := app.pipelineRequest("GET", "/api/v1/pipeline/reconciliation/account/drift", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("drift failed: %d %s", rec.Code, rec.Body.String())
		}
		drift := parseJSON(t, rec)["drift"].([]interface{})
		if len(drift) != 0 {
			t.Errorf("expected no drift, got %v", drift)
		}
	})

	t.Run("skewed counter shows up in the drift report", func(t *testing.T) {
		err := app.DB.Exec("UPDATE accounts SET balance = 7777 WHERE id = ?", ids.account).Error
		if err != nil {
			t.Fatalf("failed to skew counter: %v", err)
		}

		rec := app.pipelineRequest("GET", "/api/v1/pipeline/reconciliation/account/drift", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("drift failed: %d %s", rec.Code, rec.Body.String())
		}
		drift := parseJSON(t, rec)["drift"].([]interface{})
		if len(drift) != 1 {
			t.Fatalf("expected one drift entry, got %v", drift)
		}
		entry := drift[0].(map[string]interface{})
		if entry["counter_balance"].(float64) != 7777 || entry["snapshot_balance"].(float64) != 2500 {
			t.Errorf("expected 7777 vs 2500, got %v vs %v", entry["counter_balance"], entry["snapshot_balance"])
		}
	})

	t.Run("unknown kind is a bad request", func(t *testing.T) {
		rec := app.pipelineRequest("POST", "/api/v1/pipeline/reconciliation/wallet/refresh", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for unknown kind, got %d", rec.Code)
		}
	})
}

func TestAccountDeleteCascadeFlow(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "cascade@example.com", "password123")
	ids := setupLedger(t, app, token)

	app.createEntity(t, token, "/api/v1/transactions", transactionBody(ids, 1000), "transaction")

	rec := app.request("DELETE", "/api/v1/accounts/"+ids.account, "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete account failed: %d %s", rec.Code, rec.Body.String())
	}

	// The category's counter gives the contribution back.
	rec = app.request("GET", "/api/v1/categories/"+ids.category, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get category failed: %d %s", rec.Code, rec.Body.String())
	}
	category := parseJSON(t, rec)["category"].(map[string]interface{})
	if category["balance"].(float64) != 0 {
		t.Errorf("expected category balance 0 after cascade, got %v", category["balance"])
	}
}
