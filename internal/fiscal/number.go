package fiscal

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatDocumentNumber renders the legal invoice/quote number from a
// punto de expedición and a sequence issued by the numbering authority,
// e.g. (1, "1") -> "001-0000001".
func FormatDocumentNumber(seq int64, puntoExpedicion string) string {
	return fmt.Sprintf("%s-%07d", NormalizePuntoExpedicion(puntoExpedicion), seq)
}

// NormalizePuntoExpedicion cleans a punto de expedición to its
// canonical 3-digit form. Empty input falls back to "001".
func NormalizePuntoExpedicion(raw string) string {
	clean := digitsOnly(raw)
	if clean == "" {
		clean = "1"
	}
	if len(clean) > 3 {
		clean = clean[len(clean)-3:]
	}
	for len(clean) < 3 {
		clean = "0" + clean
	}
	return clean
}

// FormatCurrency renders an amount for display. Guaraníes carry no
// decimal places and group thousands with dots; dollars use the usual
// two-decimal comma grouping.
func FormatCurrency(amount decimal.Decimal, currency string) string {
	switch currency {
	case "PYG":
		return fmt.Sprintf("%s Gs.", groupThousands(amount.Round(0).String(), "."))
	case "USD":
		return fmt.Sprintf("US$ %s", groupThousands(amount.StringFixed(2), ","))
	default:
		return fmt.Sprintf("%s %s", amount.StringFixed(2), currency)
	}
}

func groupThousands(s, sep string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(sep)
		}
		b.WriteRune(r)
	}

	out := b.String() + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
