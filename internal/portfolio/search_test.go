package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchFixture(t *testing.T) *Portfolio {
	t.Helper()
	p := newTestPortfolio(t)
	require.NoError(t, p.Buy("mutualfund", "ABCFX", "Growth Fund", 200, 10))
	require.NoError(t, p.Buy("mutualfund", "IBFX", "International Bank Fund", 100, 45))
	require.NoError(t, p.Buy("stock", "IBM", "International Business Machines", 100, 50))
	require.NoError(t, p.Buy("stock", "AAPL", "Apple Inc", 10, 60.01))
	return p
}

func TestSearch(t *testing.T) {
	p := searchFixture(t)

	tests := []struct {
		name     string
		symbol   string
		keywords string
		rng      string
		want     []string
	}{
		{"no filters", "", "", "", []string{"ABCFX", "IBFX", "IBM", "AAPL"}},
		{"single keyword", "", "fund", "", []string{"ABCFX", "IBFX"}},
		{"all keywords required", "", "growth fund", "", []string{"ABCFX"}},
		{"keywords ignore case", "", "  INTERNATIONAL  ", "", []string{"IBFX", "IBM"}},
		{"unknown keyword", "", "fund bonds", "", nil},
		{"symbol ignores case", "ibm", "", "", []string{"IBM"}},
		{"symbol and keyword disagree", "IBM", "fund", "", nil},
		{"range between", "", "", "40-60", []string{"IBFX", "IBM"}},
		{"range exact", "", "", "50", []string{"IBM"}},
		{"range at least", "", "", "50-", []string{"IBM", "AAPL"}},
		{"range at most", "", "", "-45", []string{"ABCFX", "IBFX"}},
		{"malformed range", "", "", "cheap", nil},
		{"all filters", "IBFX", "bank", "45", []string{"IBFX"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, symbols(p.Search(tt.symbol, tt.keywords, tt.rng)))
		})
	}
}

func TestSearchIsRestartableAndLazy(t *testing.T) {
	p := searchFixture(t)
	funds := p.Search("", "fund", "")

	assert.Equal(t, []string{"ABCFX", "IBFX"}, symbols(funds))
	assert.Equal(t, []string{"ABCFX", "IBFX"}, symbols(funds))

	// The same sequence sees later changes.
	require.NoError(t, p.Buy("mutualfund", "XYZFX", "Value Fund", 5, 20))
	_, err := p.Sell("ABCFX", 200, 11)
	require.NoError(t, err)
	assert.Equal(t, []string{"IBFX", "XYZFX"}, symbols(funds))
}

func TestSearchStopsEarly(t *testing.T) {
	p := searchFixture(t)

	var first []string
	for s := range p.Search("", "", "") {
		first = append(first, s.Symbol)
		if len(first) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"ABCFX", "IBFX"}, first)
}

func TestSearchOnEmptyPortfolio(t *testing.T) {
	p := newTestPortfolio(t)
	assert.Empty(t, symbols(p.Search("", "", "")))
	assert.Empty(t, symbols(p.Search("", "fund", "1-")))
}

func TestSearchWhileSelling(t *testing.T) {
	p := searchFixture(t)

	var sold []string
	for s := range p.Search("", "fund", "") {
		_, err := p.Sell(s.Symbol, s.Quantity, s.Price)
		require.NoError(t, err)
		sold = append(sold, s.Symbol)
	}
	assert.Equal(t, []string{"ABCFX", "IBFX"}, sold)
	assert.Equal(t, []string{"IBM", "AAPL"}, symbols(p.All()))
	assert.Empty(t, symbols(p.Search("", "fund", "")))
}

func TestSearchSkipsHoldingSoldDuringIteration(t *testing.T) {
	p := searchFixture(t)

	var seen []string
	for s := range p.Search("", "international", "") {
		seen = append(seen, s.Symbol)
		if s.Symbol == "IBFX" {
			_, err := p.Sell("IBM", 100, 50)
			require.NoError(t, err)
		}
	}
	assert.Equal(t, []string{"IBFX"}, seen)
}
