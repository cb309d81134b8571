package portfolio

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"

	apperrors "eportfolio/internal/errors"
)

var nameWords = []string{"growth", "fund", "bank", "global", "equity", "income", "tech"}

type trade struct {
	Symbol   int
	Words    []int
	Quantity int
	Cents    int
	Sell     bool
	Stock    bool
}

func genTrade() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 5),
		gen.SliceOfN(2, gen.IntRange(0, len(nameWords)-1)),
		gen.IntRange(1, 50),
		gen.IntRange(1, 20000),
		gen.Bool(),
		gen.Bool(),
	).Map(func(v []interface{}) trade {
		return trade{
			Symbol:   v[0].(int),
			Words:    v[1].([]int),
			Quantity: v[2].(int),
			Cents:    v[3].(int),
			Sell:     v[4].(bool),
			Stock:    v[5].(bool),
		}
	})
}

// replay applies trades, skipping those the portfolio rejects.
func replay(p *Portfolio, trades []trade) {
	for _, tr := range trades {
		symbol := fmt.Sprintf("S%d", tr.Symbol)
		price := float64(tr.Cents) / 100
		if tr.Sell {
			_, _ = p.Sell(symbol, tr.Quantity, price)
			continue
		}
		words := make([]string, len(tr.Words))
		for i, w := range tr.Words {
			words[i] = nameWords[w]
		}
		kind := "mutualfund"
		if tr.Stock {
			kind = "stock"
		}
		_ = p.Buy(kind, symbol, strings.Join(words, " "), tr.Quantity, price)
	}
}

// Property: saving and reloading reproduces every holding exactly.
func TestProperty_SaveLoadRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)
	dir := t.TempDir()

	properties.Property("load(save(p)) equals p", prop.ForAll(
		func(trades []trade) bool {
			p := New(zerolog.Nop())
			replay(p, trades)

			path := filepath.Join(dir, "roundtrip.txt")
			if err := p.SaveFile(path); err != nil {
				return false
			}
			loaded := New(zerolog.Nop())
			if err := loaded.LoadFile(path); err != nil {
				return false
			}

			want, got := p.List(), loaded.List()
			if len(want) != len(got) {
				return false
			}
			for i := range want {
				if want[i] != got[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genTrade()),
	))

	properties.TestingRun(t)
}

// Property: any name Buy accepts survives a save and reload unchanged.
func TestProperty_AcceptedNamesRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)
	dir := t.TempDir()

	properties.Property("names are rejected or round-trip", prop.ForAll(
		func(name string) bool {
			p := New(zerolog.Nop())
			if err := p.Buy("stock", "AAA", name, 1, 1); err != nil {
				return apperrors.Is(err, apperrors.ErrInputValidation)
			}

			path := filepath.Join(dir, "names.txt")
			if err := p.SaveFile(path); err != nil {
				return false
			}
			loaded := New(zerolog.Nop())
			if err := loaded.LoadFile(path); err != nil {
				return false
			}
			got, err := loaded.Get("AAA")
			return err == nil && got == p.List()[0]
		},
		gen.OneGenOf(
			gen.AnyString(),
			gen.AlphaString().Map(func(s string) string { return s + "\n" + s + " = \"x\"" }),
			gen.AlphaString().Map(func(s string) string { return "\"" + s + "=\"" }),
		),
	))

	properties.TestingRun(t)
}

// Property: keyword search through the index agrees with scanning every name.
func TestProperty_KeywordSearchMatchesScan(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("search equals linear scan", prop.ForAll(
		func(trades []trade, query []int) bool {
			p := New(zerolog.Nop())
			replay(p, trades)

			tokens := make([]string, len(query))
			for i, q := range query {
				tokens[i] = nameWords[q]
			}

			var want []string
			for s := range p.All() {
				fields := strings.Fields(strings.ToLower(s.Name))
				all := true
				for _, tok := range tokens {
					found := false
					for _, f := range fields {
						if f == tok {
							found = true
							break
						}
					}
					if !found {
						all = false
						break
					}
				}
				if all {
					want = append(want, s.Symbol)
				}
			}

			got := symbols(p.Search("", strings.Join(tokens, " "), ""))
			return fmt.Sprint(want) == fmt.Sprint(got)
		},
		gen.SliceOf(genTrade()),
		gen.SliceOfN(2, gen.IntRange(0, len(nameWords)-1)),
	))

	properties.TestingRun(t)
}

// Property: total gain always equals the sum of per-holding gains.
func TestProperty_TotalGainIsSum(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("TotalGain sums List gains", prop.ForAll(
		func(trades []trade) bool {
			p := New(zerolog.Nop())
			replay(p, trades)

			var sum float64
			for _, s := range p.List() {
				sum += s.Gain
			}
			diff := sum - p.TotalGain()
			return diff < 1e-6 && diff > -1e-6
		},
		gen.SliceOf(genTrade()),
	))

	properties.TestingRun(t)
}
