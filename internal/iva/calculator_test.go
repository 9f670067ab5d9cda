package iva

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var (
	rate10 = decimal.NewFromInt(10)
	rate5  = decimal.NewFromInt(5)
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalculateBreakdownMixedCategories(t *testing.T) {
	lines := []Line{
		{LineTotal: dec("100"), Category: "10"},
		{LineTotal: dec("50"), Category: "EXENTO"},
	}

	b := CalculateBreakdown(lines, rate10, rate5)

	assert.True(t, b.Gravado10.Equal(dec("100")), "gravado 10 = %s", b.Gravado10)
	assert.True(t, b.Exento.Equal(dec("50")), "exento = %s", b.Exento)
	assert.True(t, b.IVA10.Equal(dec("10")), "iva 10 = %s", b.IVA10)
	assert.True(t, b.TotalIVA.Equal(dec("10")), "total iva = %s", b.TotalIVA)
	assert.True(t, b.Subtotal.Equal(dec("150")), "subtotal = %s", b.Subtotal)
	assert.True(t, b.Total.Equal(dec("160")), "total = %s", b.Total)
}

func TestCalculateBreakdownAllCategories(t *testing.T) {
	lines := []Line{
		{LineTotal: dec("1000000"), Category: "10"},
		{LineTotal: dec("200000"), Category: "5"},
		{LineTotal: dec("300000"), Category: "exento"},
	}

	b := CalculateBreakdown(lines, rate10, rate5)

	assert.True(t, b.IVA10.Equal(dec("100000")))
	assert.True(t, b.IVA5.Equal(dec("10000")))
	assert.True(t, b.TotalIVA.Equal(dec("110000")))
	assert.True(t, b.Subtotal.Equal(dec("1500000")))
	assert.True(t, b.Total.Equal(dec("1610000")))
}

func TestCalculateBreakdownUnknownCategoryIsExempt(t *testing.T) {
	lines := []Line{{LineTotal: dec("75"), Category: "IVA-RARO"}}

	b := CalculateBreakdown(lines, rate10, rate5)

	assert.True(t, b.Exento.Equal(dec("75")))
	assert.True(t, b.TotalIVA.IsZero())
	assert.True(t, b.Total.Equal(dec("75")))
}

func TestCalculateBreakdownLinearity(t *testing.T) {
	first := []Line{
		{LineTotal: dec("123.45"), Category: "10"},
		{LineTotal: dec("67.89"), Category: "5"},
	}
	second := []Line{
		{LineTotal: dec("1000"), Category: "10"},
		{LineTotal: dec("0.55"), Category: "EXENTO"},
	}

	combined := CalculateBreakdown(append(append([]Line{}, first...), second...), rate10, rate5)
	a := CalculateBreakdown(first, rate10, rate5)
	b := CalculateBreakdown(second, rate10, rate5)

	assert.True(t, combined.Subtotal.Equal(a.Subtotal.Add(b.Subtotal)))
	assert.True(t, combined.TotalIVA.Equal(a.TotalIVA.Add(b.TotalIVA)))
	assert.True(t, combined.Total.Equal(a.Total.Add(b.Total)))
	assert.True(t, combined.IVA10.Equal(a.IVA10.Add(b.IVA10)))
	assert.True(t, combined.IVA5.Equal(a.IVA5.Add(b.IVA5)))
}

func TestApplyTourismRegimeZeroIsNoop(t *testing.T) {
	b := CalculateBreakdown([]Line{{LineTotal: dec("100"), Category: "10"}}, rate10, rate5)

	unchanged := ApplyTourismRegime(b, decimal.Zero)

	assert.True(t, unchanged.IVA10.Equal(b.IVA10))
	assert.True(t, unchanged.Total.Equal(b.Total))
	assert.True(t, unchanged.TourismDiscount.IsZero())
}

func TestApplyTourismRegimeFullExemption(t *testing.T) {
	lines := []Line{
		{LineTotal: dec("100"), Category: "10"},
		{LineTotal: dec("200"), Category: "5"},
	}
	b := CalculateBreakdown(lines, rate10, rate5)

	exempt := ApplyTourismRegime(b, decimal.NewFromInt(100))

	assert.True(t, exempt.IVA10.IsZero(), "iva 10 = %s", exempt.IVA10)
	assert.True(t, exempt.IVA5.IsZero(), "iva 5 = %s", exempt.IVA5)
	assert.True(t, exempt.TotalIVA.IsZero())
	assert.True(t, exempt.Total.Equal(exempt.Subtotal))
	assert.True(t, exempt.TourismDiscount.Equal(dec("20")))
}

func TestApplyTourismRegimePartial(t *testing.T) {
	b := CalculateBreakdown([]Line{{LineTotal: dec("1000"), Category: "10"}}, rate10, rate5)

	half := ApplyTourismRegime(b, decimal.NewFromInt(50))

	assert.True(t, half.IVA10.Equal(dec("50")), "iva 10 = %s", half.IVA10)
	assert.True(t, half.TotalIVA.Equal(dec("50")))
	assert.True(t, half.Total.Equal(dec("1050")))
	assert.True(t, half.TourismDiscount.Equal(dec("50")))
	// Taxable bases never move.
	assert.True(t, half.Gravado10.Equal(b.Gravado10))
	assert.True(t, half.Subtotal.Equal(b.Subtotal))
}
