// Package iva computes the Paraguayan VAT breakdown for document lines.
// All arithmetic is exact decimal; rounding is left to presentation.
package iva

import (
	"strings"

	"github.com/shopspring/decimal"
)

// IVA categories as stored on document lines.
const (
	CategoryGravado10 = "10"
	CategoryGravado5  = "5"
	CategoryExento    = "EXENTO"
)

// Line is the slice of a document line the calculator needs.
type Line struct {
	LineTotal decimal.Decimal
	Category  string
}

// Breakdown aggregates subtotals and tax per IVA category. Documents
// persist their own copy of these fields; the breakdown itself is never
// stored independently.
type Breakdown struct {
	Gravado10 decimal.Decimal `json:"subtotal_gravado_10"`
	Gravado5  decimal.Decimal `json:"subtotal_gravado_5"`
	Exento    decimal.Decimal `json:"subtotal_exento"`

	IVA10    decimal.Decimal `json:"iva_10"`
	IVA5     decimal.Decimal `json:"iva_5"`
	TotalIVA decimal.Decimal `json:"total_iva"`

	Subtotal decimal.Decimal `json:"subtotal"`
	Total    decimal.Decimal `json:"total"`

	// TourismDiscount is the IVA forgiven under régimen de turismo,
	// zero unless ApplyTourismRegime ran.
	TourismDiscount decimal.Decimal `json:"tourism_discount"`
}

// NormalizeCategory maps a raw line category to one of the three IVA
// categories. Unrecognized values fall through to exempt, matching how
// historical documents were recorded.
func NormalizeCategory(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case CategoryGravado10:
		return CategoryGravado10
	case CategoryGravado5:
		return CategoryGravado5
	default:
		return CategoryExento
	}
}

// CalculateBreakdown accumulates line totals per category and derives
// the IVA amounts from the configured rates (expressed as percentages,
// e.g. 10 for 10%).
func CalculateBreakdown(lines []Line, rate10, rate5 decimal.Decimal) Breakdown {
	var b Breakdown
	for _, line := range lines {
		switch NormalizeCategory(line.Category) {
		case CategoryGravado10:
			b.Gravado10 = b.Gravado10.Add(line.LineTotal)
		case CategoryGravado5:
			b.Gravado5 = b.Gravado5.Add(line.LineTotal)
		default:
			b.Exento = b.Exento.Add(line.LineTotal)
		}
	}

	// rate.Shift(-2) is the exact form of rate/100.
	b.IVA10 = b.Gravado10.Mul(rate10.Shift(-2))
	b.IVA5 = b.Gravado5.Mul(rate5.Shift(-2))
	b.TotalIVA = b.IVA10.Add(b.IVA5)
	b.Subtotal = b.Gravado10.Add(b.Gravado5).Add(b.Exento)
	b.Total = b.Subtotal.Add(b.TotalIVA)
	return b
}

// ApplyTourismRegime discounts the given percentage of both IVA amounts
// from the breakdown. The régimen de turismo forgives tax, never the
// taxable base, so subtotals are untouched. Eligibility (customer flag
// and unexpired authorization) is the caller's responsibility.
func ApplyTourismRegime(b Breakdown, percentage decimal.Decimal) Breakdown {
	if percentage.Sign() <= 0 {
		return b
	}

	factor := percentage.Shift(-2)
	discount10 := b.IVA10.Mul(factor)
	discount5 := b.IVA5.Mul(factor)
	totalDiscount := discount10.Add(discount5)

	b.IVA10 = b.IVA10.Sub(discount10)
	b.IVA5 = b.IVA5.Sub(discount5)
	b.TotalIVA = b.TotalIVA.Sub(totalDiscount)
	b.Total = b.Total.Sub(totalDiscount)
	b.TourismDiscount = b.TourismDiscount.Add(totalDiscount)
	return b
}
