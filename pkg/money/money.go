package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// UniversityOverheadRate is the share of total income retained by the university.
var UniversityOverheadRate = decimal.RequireFromString("0.30")

var hundred = decimal.NewFromInt(100)

// Parse converts user input into a decimal. Empty or malformed input is treated as zero.
func Parse(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Round2 rounds half away from zero to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Income computes gross income for a line: participants * unitPrice, plus GST on top.
// Negative inputs count as zero.
func Income(participants, unitPrice, gstPercent decimal.Decimal) decimal.Decimal {
	participants = nonNegative(participants)
	unitPrice = nonNegative(unitPrice)
	gstPercent = nonNegative(gstPercent)

	gross := participants.Mul(unitPrice)
	multiplier := decimal.NewFromInt(1).Add(gstPercent.Div(hundred))
	return Round2(gross.Mul(multiplier))
}

// Sum adds up one string-typed numeric field across items.
func Sum[T any](items []T, field func(T) string) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(Parse(field(item)))
	}
	return total
}

func Overhead(totalIncome decimal.Decimal) decimal.Decimal {
	return Round2(totalIncome.Mul(UniversityOverheadRate))
}

// NetBalance may be negative; callers use the sign for presentation only.
func NetBalance(totalIncome, overhead, totalExpenditure decimal.Decimal) decimal.Decimal {
	return totalIncome.Sub(overhead).Sub(totalExpenditure)
}

// Format renders an amount with exactly two decimals, as the portal displays it.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
