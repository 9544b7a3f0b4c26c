package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func engine(t *testing.T) *validator.Validate {
	t.Helper()
	Register()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		t.Fatal("binding engine is not a *validator.Validate")
	}
	return v
}

func TestParentKindValidation(t *testing.T) {
	v := engine(t)

	for _, kind := range []string{"account", "category", "merchant"} {
		if err := v.Var(kind, "parent_kind"); err != nil {
			t.Errorf("expected %q to pass parent_kind validation: %v", kind, err)
		}
	}

	for _, kind := range []string{"wallet", "", "Accounts", "account "} {
		if err := v.Var(kind, "parent_kind"); err == nil {
			t.Errorf("expected %q to fail parent_kind validation", kind)
		}
	}
}

func TestISO4217Validation(t *testing.T) {
	v := engine(t)

	if err := v.Var("USD", "iso4217"); err != nil {
		t.Errorf("expected USD to pass iso4217 validation: %v", err)
	}
	if err := v.Var("usd", "iso4217"); err == nil {
		t.Error("expected lowercase code to fail iso4217 validation")
	}
}

func TestHexColorValidation(t *testing.T) {
	v := engine(t)

	for _, color := range []string{"#fff", "#1A2b3C"} {
		if err := v.Var(color, "hex_color"); err != nil {
			t.Errorf("expected %q to pass hex_color validation: %v", color, err)
		}
	}
	if err := v.Var("fff", "hex_color"); err == nil {
		t.Error("expected missing # prefix to fail hex_color validation")
	}
}
