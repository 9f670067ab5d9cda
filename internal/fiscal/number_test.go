package fiscal

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatDocumentNumber(t *testing.T) {
	cases := []struct {
		seq   int64
		punto string
		want  string
	}{
		{1, "001", "001-0000001"},
		{1, "1", "001-0000001"},
		{123, "2", "002-0000123"},
		{9999999, "003", "003-9999999"},
		{42, "", "001-0000042"},
	}
	for _, tc := range cases {
		if got := FormatDocumentNumber(tc.seq, tc.punto); got != tc.want {
			t.Fatalf("FormatDocumentNumber(%d, %q) = %q, want %q", tc.seq, tc.punto, got, tc.want)
		}
	}
}

func TestNormalizePuntoExpedicion(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"", "001"},
		{"1", "001"},
		{"01", "001"},
		{"003", "003"},
		{"0001", "001"},
		{"pe-2", "002"},
	}
	for _, tc := range cases {
		if got := NormalizePuntoExpedicion(tc.raw); got != tc.want {
			t.Fatalf("NormalizePuntoExpedicion(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		amount   string
		currency string
		want     string
	}{
		{"1234567", "PYG", "1.234.567 Gs."},
		{"1000", "PYG", "1.000 Gs."},
		{"500", "PYG", "500 Gs."},
		{"1234.5", "USD", "US$ 1,234.50"},
		{"99.99", "USD", "US$ 99.99"},
		{"10", "BRL", "10.00 BRL"},
	}
	for _, tc := range cases {
		amount := decimal.RequireFromString(tc.amount)
		if got := FormatCurrency(amount, tc.currency); got != tc.want {
			t.Fatalf("FormatCurrency(%s, %s) = %q, want %q", tc.amount, tc.currency, got, tc.want)
		}
	}
}
