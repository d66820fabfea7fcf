package authapi

import (
	"errors"
	"net/url"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "teste@email.com", want: "teste@email.com", ok: true},
		{in: "  Bob@X.com ", want: "bob@x.com", ok: true},
		{in: "emailinvalido", ok: false},
		{in: "sem-ponto@dominio", ok: false},
		{in: "@x.com", ok: false},
		{in: "a@b@c.com", ok: false},
		{in: "a@.com", ok: false},
		{in: "a@x.", ok: false},
		{in: "a b@x.com", ok: false},
		{in: "", ok: false},
	}

	for _, tc := range tests {
		got, err := validateEmail(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("validateEmail(%q) unexpected err: %v", tc.in, err)
		}
		if !tc.ok {
			var ve validationError
			if !errors.As(err, &ve) || ve.Field != "email" {
				t.Fatalf("validateEmail(%q) expected email validation error, got %v", tc.in, err)
			}
			continue
		}
		if got != tc.want {
			t.Fatalf("validateEmail(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	strict := &Handler{cfg: ConfigForVariant(VariantAdvanced)}
	basic := &Handler{cfg: ConfigForVariant(VariantBasic)}

	if got, err := strict.validateUsername("  joao123 "); err != nil || got != "joao123" {
		t.Fatalf("strict joao123: got %q, %v", got, err)
	}
	if _, err := strict.validateUsername("ab"); err == nil {
		t.Fatalf("strict: expected error for short username")
	}
	if _, err := strict.validateUsername("user@test.com"); err == nil {
		t.Fatalf("strict: expected error for symbols")
	}
	if got, err := basic.validateUsername("user@test.com"); err != nil || got != "user@test.com" {
		t.Fatalf("basic: got %q, %v", got, err)
	}
	if _, err := basic.validateUsername("   "); err == nil {
		t.Fatalf("basic: expected error for blank username")
	}
}

func TestParsePaging(t *testing.T) {
	if n, err := parseLimit(url.Values{}); err != nil || n != defaultPageLimit {
		t.Fatalf("default limit: %d, %v", n, err)
	}
	if n, err := parseLimit(url.Values{"limite": {"100"}}); err != nil || n != 100 {
		t.Fatalf("limit 100: %d, %v", n, err)
	}
	if _, err := parseLimit(url.Values{"limite": {"101"}}); err == nil {
		t.Fatalf("expected error for limit 101")
	}
	if n, err := parseOffset(url.Values{"offset": {"5"}}); err != nil || n != 5 {
		t.Fatalf("offset 5: %d, %v", n, err)
	}
	if _, err := parseOffset(url.Values{"offset": {"-1"}}); err == nil {
		t.Fatalf("expected error for negative offset")
	}
}

func TestValidateUpdate_Empty(t *testing.T) {
	if _, err := validateUpdate(updateRequest{}); err == nil {
		t.Fatalf("expected error for empty update")
	}
}
