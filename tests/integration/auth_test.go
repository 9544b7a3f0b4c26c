package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestAuthFlow(t *testing.T) {
	app := setupApp(t)

	t.Run("register login refresh", func(t *testing.T) {
		token, teamID := app.registerUser(t, "auth@example.com", "password123")
		if token == "" || teamID == "" {
			t.Fatal("expected tokens and a team from registration")
		}

		rec := app.request("POST", "/api/v1/auth/login", `{"email":"auth@example.com","password":"password123"}`, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
		}
		refreshToken := parseJSON(t, rec)["refresh_token"].(string)

		rec = app.request("POST", "/api/v1/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, refreshToken), "")
		if rec.Code != http.StatusOK {
			t.Fatalf("refresh failed: %d %s", rec.Code, rec.Body.String())
		}

		// Refresh rotates the stored hash; replaying the old token fails.
		rec = app.request("POST", "/api/v1/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, refreshToken), "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected replayed refresh token rejected, got %d", rec.Code)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		app.registerUser(t, "auth2@example.com", "password123")
		rec := app.request("POST", "/api/v1/auth/login", `{"email":"auth2@example.com","password":"nope12345"}`, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("profile requires token", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/profile", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}

		token, _ := app.registerUser(t, "auth3@example.com", "password123")
		rec = app.request("GET", "/api/v1/profile", "", token)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("teams are isolated", func(t *testing.T) {
		tokenA, _ := app.registerUser(t, "teama@example.com", "password123")
		tokenB, _ := app.registerUser(t, "teamb@example.com", "password123")

		accountID := app.createEntity(t, tokenA, "/api/v1/accounts", `{"name":"A Checking","currency":"USD"}`, "account")

		rec := app.request("GET", "/api/v1/accounts/"+accountID, "", tokenB)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 across teams, got %d", rec.Code)
		}
	})
}
