package fiscal

import (
	"errors"
	"fmt"
	"testing"
)

func TestCheckDigitKnownBases(t *testing.T) {
	cases := []struct {
		base string
		want int
	}{
		{"80012345", 3},
		{"123456", 0},
		{"800000", 1},
		{"1234567", 4},
	}
	for _, tc := range cases {
		if got := CheckDigit(tc.base); got != tc.want {
			t.Fatalf("CheckDigit(%q) = %d, want %d", tc.base, got, tc.want)
		}
	}
}

func TestValidateRUCRoundTrip(t *testing.T) {
	// Any base joined with its computed check digit must validate and
	// format back to base-checkdigit.
	bases := []string{"800123", "1234567", "80012345", "999999999"}
	for _, base := range bases {
		dv := CheckDigit(base)
		ruc, err := ValidateRUC(fmt.Sprintf("%s%d", base, dv))
		if err != nil {
			t.Fatalf("ValidateRUC(%s%d): %v", base, dv, err)
		}
		if ruc.Base != base {
			t.Fatalf("base = %q, want %q", ruc.Base, base)
		}
		if ruc.CheckDigit != dv {
			t.Fatalf("check digit = %d, want %d", ruc.CheckDigit, dv)
		}
		if want := fmt.Sprintf("%s-%d", base, dv); ruc.Formatted() != want {
			t.Fatalf("formatted = %q, want %q", ruc.Formatted(), want)
		}
	}
}

func TestValidateRUCWrongCheckDigit(t *testing.T) {
	base := "80012345"
	dv := CheckDigit(base)
	wrong := (dv + 1) % 10

	_, err := ValidateRUC(fmt.Sprintf("%s%d", base, wrong))
	if !errors.Is(err, ErrCheckDigitMismatch) {
		t.Fatalf("expected check digit mismatch, got %v", err)
	}

	var mismatch *CheckDigitError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected *CheckDigitError, got %T", err)
	}
	if mismatch.Expected != dv || mismatch.Received != wrong {
		t.Fatalf("mismatch = expected %d received %d, want expected %d received %d",
			mismatch.Expected, mismatch.Received, dv, wrong)
	}
}

func TestValidateRUCFormat(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"too short", "12345"},
		{"too long", "12345678901"},
		{"letters only", "abcdef"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ValidateRUC(tc.raw); !errors.Is(err, ErrInvalidFormat) {
				t.Fatalf("ValidateRUC(%q): expected invalid format, got %v", tc.raw, err)
			}
		})
	}
}

func TestValidateRUCWithoutCheckDigit(t *testing.T) {
	// Six digits is a bare base: the check digit is computed, not verified.
	ruc, err := ValidateRUC("800123")
	if err != nil {
		t.Fatalf("ValidateRUC: %v", err)
	}
	if ruc.Base != "800123" {
		t.Fatalf("base = %q, want 800123", ruc.Base)
	}
	if ruc.CheckDigit != CheckDigit("800123") {
		t.Fatalf("check digit = %d, want %d", ruc.CheckDigit, CheckDigit("800123"))
	}
}

func TestValidateRUCStripsSeparators(t *testing.T) {
	base := "80012345"
	dv := CheckDigit(base)
	ruc, err := ValidateRUC(fmt.Sprintf("%s-%d", base, dv))
	if err != nil {
		t.Fatalf("ValidateRUC with hyphen: %v", err)
	}
	if ruc.Clean != fmt.Sprintf("%s%d", base, dv) {
		t.Fatalf("clean = %q", ruc.Clean)
	}
}
