package cli

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var groupedPattern = regexp.MustCompile(`^\d{1,3}(,\d{3})*$`)

// parseCurrency reverses FormatCurrency for a "$" symbol.
func parseCurrency(s string) float64 {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.Replace(s, "$", "", 1)
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// Property: For any amount, FormatCurrency produces a grouped, two-decimal
// string that parses back to the amount rounded to cents.
func TestProperty_CurrencyFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("FormatCurrency produces grouped two-decimal format", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatCurrency("$", amount)

			body := formatted
			if strings.HasPrefix(body, "-") {
				body = body[1:]
			}
			if !strings.HasPrefix(body, "$") {
				t.Logf("Expected $ prefix for %f, got %s", amount, formatted)
				return false
			}
			body = strings.TrimPrefix(body, "$")

			intPart, decPart, ok := strings.Cut(body, ".")
			if !ok || len(decPart) != 2 {
				t.Logf("Expected 2 decimal places for %f, got %s", amount, formatted)
				return false
			}
			if !groupedPattern.MatchString(intPart) {
				t.Logf("Invalid grouping for %f: %s", amount, formatted)
				return false
			}
			return true
		},
		gen.Float64Range(-1e12, 1e12),
	))

	properties.Property("FormatCurrency preserves value", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatCurrency("$", amount)
			want, _ := decimal.NewFromFloat(amount).Round(2).Float64()
			diff := math.Abs(parseCurrency(formatted) - want)
			if diff > 1e-6 {
				t.Logf("Value not preserved: original=%f, formatted=%s", amount, formatted)
				return false
			}
			return true
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.Property("TruncateString never exceeds the limit", prop.ForAll(
		func(s string, maxLen int) bool {
			out := TruncateString(s, maxLen)
			if utf8.RuneCountInString(s) <= maxLen {
				return out == s
			}
			return utf8.RuneCountInString(out) == maxLen
		},
		gen.AnyString(),
		gen.IntRange(0, 40),
	))

	properties.TestingRun(t)
}

func TestCurrencyFormatExamples(t *testing.T) {
	tests := []struct {
		amount   float64
		expected string
	}{
		{0, "$0.00"},
		{9.99, "$9.99"},
		{2990.01, "$2,990.01"},
		{2504.995, "$2,505.00"},
		{5009.99, "$5,009.99"},
		{1234567.891, "$1,234,567.89"},
		{-9.99, "-$9.99"},
		{-0.001, "$0.00"},
		{100000, "$100,000.00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatCurrency("$", tt.amount), "amount %v", tt.amount)
	}
}

func TestFormatGainExamples(t *testing.T) {
	assert.Equal(t, "+$990.01", FormatGain("$", 990.01))
	assert.Equal(t, "-$9.99", FormatGain("$", -9.99))
	assert.Equal(t, "$0.00", FormatGain("$", 0.001))
	assert.Equal(t, "€45.00", FormatCurrency("€", 45))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "50.00", FormatPrice(50))
	assert.Equal(t, "60.01", FormatPrice(60.01))
}
