// Package format renders amounts and percentages for exports and terminal output.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Currency returns an amount prefixed with a currency symbol and with thousands
// separators (e.g., "-SAR 1,234.56").
func Currency(symbol string, amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 {
		return "-" + symbol + " " + formatted
	}
	return symbol + " " + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	formatted := formatPositiveCurrency(math.Abs(amount))
	return sign + formatted
}

// PlainAmount returns the amount with two decimals and no separators (e.g., "-1234.56").
func PlainAmount(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}

// Percent returns a percentage with two decimals and a trailing percent sign (e.g., "12.50%").
func Percent(value float64) string {
	s := fmt.Sprintf("%.2f%%", value)
	if s == "-0.00%" {
		return "0.00%"
	}
	return s
}

func formatPositiveCurrency(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
