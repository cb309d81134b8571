package cli

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatCurrency formats an amount with two decimals, thousands separators
// and the given currency symbol. Halves round away from zero on the decimal
// value of the float, so 2504.995 shows as 2,505.00.
func FormatCurrency(symbol string, amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	negative := d.IsNegative()
	if negative {
		d = d.Neg()
	}

	str := d.StringFixed(2)
	intPart, decPart, _ := strings.Cut(str, ".")

	result := symbol + groupThousands(intPart) + "." + decPart
	if negative {
		result = "-" + result
	}
	return result
}

// groupThousands inserts a comma every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatGain formats a gain with sign.
func FormatGain(symbol string, gain float64) string {
	formatted := FormatCurrency(symbol, gain)
	if decimal.NewFromFloat(gain).Round(2).IsPositive() {
		return "+" + formatted
	}
	return formatted
}

// FormatPrice formats a unit price without a currency symbol.
func FormatPrice(price float64) string {
	return decimal.NewFromFloat(price).Round(2).StringFixed(2)
}

// FormatDateTime formats a datetime in local time.
func FormatDateTime(t time.Time) string {
	return t.Local().Format("02-Jan-2006 15:04:05")
}

// TruncateString truncates a string to max length with ellipsis.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
