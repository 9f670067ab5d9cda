// Package fiscal implements Paraguayan fiscal identifier validation:
// RUC check digits, timbrado lifecycle and document number formatting.
// Everything here is pure computation; persistence and eligibility rules
// live with the callers.
package fiscal

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidFormat      = errors.New("invalid_format")
	ErrCheckDigitMismatch = errors.New("check_digit_mismatch")
)

// rucWeights are the modulo-11 multipliers applied from the least
// significant base digit outward. Nine positions cover every RUC base
// the format allows.
var rucWeights = [9]int{2, 3, 4, 5, 6, 7, 2, 3, 4}

// RUC is a validated taxpayer registration number.
type RUC struct {
	// Clean is the digit-only form of the input.
	Clean string
	// Base is Clean without the check digit.
	Base string
	// CheckDigit is the verified (or computed) dígito verificador.
	CheckDigit int
}

// Formatted returns the display form "base-checkdigit".
func (r RUC) Formatted() string {
	return fmt.Sprintf("%s-%d", r.Base, r.CheckDigit)
}

// CheckDigitError reports a supplied check digit that does not match the
// one computed from the base.
type CheckDigitError struct {
	Expected int
	Received int
}

func (e *CheckDigitError) Error() string {
	return fmt.Sprintf("ruc check digit mismatch: expected %d, received %d", e.Expected, e.Received)
}

func (e *CheckDigitError) Unwrap() error { return ErrCheckDigitMismatch }

// ValidateRUC validates a Paraguayan RUC. Hyphens, dots and spaces are
// stripped before validation. Inputs of 7 or more digits are split into
// base plus supplied check digit; shorter inputs are treated as a bare
// base and the check digit is computed for them.
func ValidateRUC(raw string) (RUC, error) {
	clean := digitsOnly(raw)
	if len(clean) < 6 {
		return RUC{}, fmt.Errorf("%w: ruc must have at least 6 digits, got %q", ErrInvalidFormat, raw)
	}
	if len(clean) > 10 {
		return RUC{}, fmt.Errorf("%w: ruc must have at most 10 digits, got %q", ErrInvalidFormat, raw)
	}

	if len(clean) >= 7 {
		base := clean[:len(clean)-1]
		received := int(clean[len(clean)-1] - '0')
		expected := CheckDigit(base)
		if received != expected {
			return RUC{}, &CheckDigitError{Expected: expected, Received: received}
		}
		return RUC{Clean: clean, Base: base, CheckDigit: received}, nil
	}

	return RUC{Clean: clean, Base: clean, CheckDigit: CheckDigit(clean)}, nil
}

// CheckDigit computes the modulo-11 dígito verificador for a RUC base.
// The base is processed from its last digit to its first; a remainder
// below 2 is the check digit itself, anything else is 11 minus the
// remainder.
func CheckDigit(base string) int {
	total := 0
	n := len(base)
	for i := 0; i < n && i < len(rucWeights); i++ {
		d := int(base[n-1-i] - '0')
		total += d * rucWeights[i]
	}

	remainder := total % 11
	if remainder < 2 {
		return remainder
	}
	return 11 - remainder
}

func digitsOnly(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
