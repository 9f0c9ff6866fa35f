// Package money formats amounts for display.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultSymbol is the storefront currency (Indian rupee).
const DefaultSymbol = "₹"

// Format renders d with Indian digit grouping (12,34,567) and at most two
// fraction digits, dropping trailing zeros: 1234.50 -> ₹1,234.5.
func Format(d decimal.Decimal, symbol string) string {
	neg := d.IsNegative()
	s := d.Abs().Round(2).String()

	intPart, frac, _ := strings.Cut(s, ".")
	out := symbol + group(intPart)
	if frac != "" {
		out += "." + frac
	}
	if neg {
		return "-" + out
	}
	return out
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}
