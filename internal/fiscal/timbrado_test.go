package fiscal

import (
	"errors"
	"testing"
	"time"
)

var testToday = time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)

func TestValidateTimbradoFormat(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"letters", "timbrado"},
		{"too short", "1234567"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ValidateTimbrado(tc.raw, nil, testToday); !errors.Is(err, ErrInvalidFormat) {
				t.Fatalf("ValidateTimbrado(%q): expected invalid format, got %v", tc.raw, err)
			}
		})
	}
}

func TestValidateTimbradoNoExpiry(t *testing.T) {
	tb, err := ValidateTimbrado("12345678", nil, testToday)
	if err != nil {
		t.Fatalf("ValidateTimbrado: %v", err)
	}
	if tb.Number != "12345678" {
		t.Fatalf("number = %q", tb.Number)
	}
	if tb.ExpiryWarning {
		t.Fatal("unexpected expiry warning without expiry date")
	}
}

func TestValidateTimbradoExpiredYesterday(t *testing.T) {
	expiry := testToday.AddDate(0, 0, -1)
	_, err := ValidateTimbrado("12345678", &expiry, testToday)
	if !errors.Is(err, ErrTimbradoExpired) {
		t.Fatalf("expected expired, got %v", err)
	}

	var expired *ExpiredError
	if !errors.As(err, &expired) {
		t.Fatalf("expected *ExpiredError, got %T", err)
	}
	if expired.DaysExpired != 1 {
		t.Fatalf("days expired = %d, want 1", expired.DaysExpired)
	}
}

func TestValidateTimbradoWarningWindow(t *testing.T) {
	cases := []struct {
		name    string
		daysOut int
		warning bool
	}{
		{"expires today", 0, true},
		{"expires in 30 days", 30, true},
		{"expires in 31 days", 31, false},
		{"expires in a year", 365, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expiry := testToday.AddDate(0, 0, tc.daysOut)
			tb, err := ValidateTimbrado("12345678", &expiry, testToday)
			if err != nil {
				t.Fatalf("ValidateTimbrado: %v", err)
			}
			if tb.ExpiryWarning != tc.warning {
				t.Fatalf("warning = %v, want %v", tb.ExpiryWarning, tc.warning)
			}
			if tb.DaysToExpire != tc.daysOut {
				t.Fatalf("days to expire = %d, want %d", tb.DaysToExpire, tc.daysOut)
			}
		})
	}
}
