package pricerange

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: for prices expressed in whole cents, every range form agrees with
// a direct comparison of the cent amounts.
func TestProperty_RangeAgreesWithComparison(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	cents := gen.IntRange(0, 100000)
	toPrice := func(c int) float64 { return float64(c) / 100 }
	toExpr := func(c int) string { return fmt.Sprintf("%d.%02d", c/100, c%100) }

	properties.Property("P- and -P and P1-P2 follow numeric order", prop.ForAll(
		func(a, b, p int) bool {
			price := toPrice(p)
			if Parse(toExpr(a)+"-").Matches(price) != (p >= a) {
				return false
			}
			if Parse("-"+toExpr(a)).Matches(price) != (p <= a) {
				return false
			}
			return Parse(toExpr(a)+"-"+toExpr(b)).Matches(price) == (p >= a && p <= b)
		},
		cents, cents, cents,
	))

	properties.Property("exact form matches only the same price", prop.ForAll(
		func(a, p int) bool {
			return Parse(toExpr(a)).Matches(toPrice(p)) == (a == p)
		},
		cents, cents,
	))

	properties.TestingRun(t)
}
