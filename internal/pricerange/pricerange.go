// Package pricerange parses price filter expressions such as "10", "10-",
// "-10" and "5-10.50" and tests prices against them.
package pricerange

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const number = `(\d+(?:\.\d{1,2})?)`

var (
	exactPattern   = regexp.MustCompile(`^` + number + `$`)
	atLeastPattern = regexp.MustCompile(`^` + number + `-$`)
	atMostPattern  = regexp.MustCompile(`^-` + number + `$`)
	betweenPattern = regexp.MustCompile(`^` + number + `-` + number + `$`)
)

type mode int

const (
	matchAny mode = iota
	matchNone
	matchExact
	matchAtLeast
	matchAtMost
	matchBetween
)

// Range is a parsed price filter. The zero value matches every price.
type Range struct {
	mode mode
	lo   float64
	hi   float64
	expr string
}

// Any returns a range that matches every price.
func Any() Range {
	return Range{mode: matchAny}
}

// Parse parses expr. Blank input matches any price; input outside the
// grammar yields a range that matches nothing. Parse never fails.
func Parse(expr string) Range {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Any()
	}

	r := Range{mode: matchNone, expr: expr}
	switch {
	case exactPattern.MatchString(expr):
		m := exactPattern.FindStringSubmatch(expr)
		r.mode, r.lo = matchExact, mustFloat(m[1])
	case atLeastPattern.MatchString(expr):
		m := atLeastPattern.FindStringSubmatch(expr)
		r.mode, r.lo = matchAtLeast, mustFloat(m[1])
	case atMostPattern.MatchString(expr):
		m := atMostPattern.FindStringSubmatch(expr)
		r.mode, r.hi = matchAtMost, mustFloat(m[1])
	case betweenPattern.MatchString(expr):
		m := betweenPattern.FindStringSubmatch(expr)
		r.mode, r.lo, r.hi = matchBetween, mustFloat(m[1]), mustFloat(m[2])
	}
	return r
}

// mustFloat parses text already matched by the number pattern. Only an
// absurdly long digit run can fail, and that is treated as infinite.
func mustFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// Matches reports whether price satisfies the range. Exact ranges compare with
// ==, so "10" matches 10.00 and not 10.01.
func (r Range) Matches(price float64) bool {
	switch r.mode {
	case matchAny:
		return true
	case matchExact:
		return price == r.lo
	case matchAtLeast:
		return price >= r.lo
	case matchAtMost:
		return price <= r.hi
	case matchBetween:
		return price >= r.lo && price <= r.hi
	default:
		return false
	}
}

// Valid reports whether the expression was understood. Blank input is valid.
func (r Range) Valid() bool {
	return r.mode != matchNone
}

func (r Range) String() string {
	switch r.mode {
	case matchAny:
		return "any"
	case matchExact:
		return fmt.Sprintf("= %g", r.lo)
	case matchAtLeast:
		return fmt.Sprintf(">= %g", r.lo)
	case matchAtMost:
		return fmt.Sprintf("<= %g", r.hi)
	case matchBetween:
		return fmt.Sprintf("%g..%g", r.lo, r.hi)
	default:
		return fmt.Sprintf("none (%q)", r.expr)
	}
}
