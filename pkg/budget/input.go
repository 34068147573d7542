package budget

import (
	"strings"

	"github.com/acadportal/eventportal/pkg/money"
	"github.com/shopspring/decimal"
)

var maxPercentage = decimal.NewFromInt(100)

// SanitizeInteger keeps only ASCII digits.
func SanitizeInteger(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SanitizeDecimal keeps digits and the first decimal point.
func SanitizeDecimal(value string) string {
	var b strings.Builder
	seenPoint := false
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenPoint:
			seenPoint = true
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SanitizePercentage behaves like SanitizeDecimal and caps the value at 100.
func SanitizePercentage(value string) string {
	cleaned := SanitizeDecimal(value)
	if cleaned == "" || cleaned == "." {
		return cleaned
	}
	if money.Parse(cleaned).GreaterThan(maxPercentage) {
		return "100"
	}
	return cleaned
}
