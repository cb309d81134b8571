// Package portfolio provides the holding collection: an ordered list of
// holdings with a keyword index over their names, and the buy, sell, update,
// search and gain operations on it.
//
// A Portfolio is not safe for concurrent use; a single caller is expected to
// drive it sequentially. Every query returns holding.Snapshot values, so no
// caller can mutate a holding except through the Portfolio's own methods.
package portfolio

import (
	"fmt"
	"iter"
	"strings"

	"github.com/rs/zerolog"

	apperrors "eportfolio/internal/errors"
	"eportfolio/internal/holding"
	"eportfolio/internal/keyword"
	"eportfolio/internal/logging"
	"eportfolio/internal/pricerange"
)

// Portfolio owns the holdings and their keyword index.
type Portfolio struct {
	holdings []*holding.Holding
	index    *keyword.Index
	logger   zerolog.Logger
}

// New creates an empty portfolio.
func New(logger zerolog.Logger) *Portfolio {
	return &Portfolio{
		index:  keyword.NewIndex(),
		logger: logger,
	}
}

// Buy buys quantity units of symbol at price.
//
// If symbol is already held (compared case-insensitively) the purchase is
// added to that holding and the kind and name arguments are ignored: the
// existing holding's own kind decides the fee and its stored name is kept.
// Callers that need to detect a kind mismatch should check Get first.
//
// Otherwise a new holding of the given kind ("stock" in any case, anything
// else is a mutual fund) is appended and its name indexed.
func (p *Portfolio) Buy(kind, symbol, name string, quantity int, price float64) error {
	if err := holding.ValidateSymbol(symbol); err != nil {
		return err
	}
	name, err := holding.ValidateName(name)
	if err != nil {
		return err
	}
	if err := holding.ValidateQuantity(quantity); err != nil {
		return err
	}
	if err := holding.ValidatePrice(price); err != nil {
		return err
	}

	log := logging.WithSymbol(p.logger, symbol)

	if pos := p.find(symbol); pos >= 0 {
		h := p.holdings[pos]
		if requested := holding.ParseKind(kind); requested != h.Kind() {
			log.Debug().
				Str("requested", requested.String()).
				Str("held", h.Kind().String()).
				Msg("Kind mismatch on existing holding, keeping held kind")
		}
		before := h.BookValue()
		if err := h.Buy(quantity, price); err != nil {
			return err
		}
		logging.LogTrade(log, "BUY", h.Kind().String(), h.Symbol(), quantity, price, h.BookValue()-before)
		return nil
	}

	h, err := holding.New(holding.ParseKind(kind), symbol, name, quantity, price)
	if err != nil {
		return err
	}
	p.insert(h)
	logging.LogTrade(log, "BUY", h.Kind().String(), h.Symbol(), quantity, price, h.BookValue())
	return nil
}

// Sell sells quantity units of symbol at price and returns the proceeds net
// of fees. A holding sold down to zero is removed.
func (p *Portfolio) Sell(symbol string, quantity int, price float64) (float64, error) {
	if err := holding.ValidateSymbol(symbol); err != nil {
		return 0, err
	}
	if err := holding.ValidateQuantity(quantity); err != nil {
		return 0, err
	}
	if err := holding.ValidatePrice(price); err != nil {
		return 0, err
	}

	pos := p.find(symbol)
	if pos < 0 {
		return 0, fmt.Errorf("selling %s: %w", symbol, apperrors.ErrHoldingNotFound)
	}

	h := p.holdings[pos]
	proceeds, err := h.Sell(quantity, price)
	if err != nil {
		return 0, err
	}

	log := logging.WithSymbol(p.logger, h.Symbol())
	logging.LogTrade(log, "SELL", h.Kind().String(), h.Symbol(), quantity, price, proceeds)

	if h.Quantity() == 0 {
		p.removeAt(pos)
		log.Debug().Int("position", pos).Msg("Holding sold out and removed")
	}
	return proceeds, nil
}

// UpdatePrice sets the market price of a single holding.
func (p *Portfolio) UpdatePrice(symbol string, price float64) error {
	pos := p.find(symbol)
	if pos < 0 {
		return fmt.Errorf("updating %s: %w", symbol, apperrors.ErrHoldingNotFound)
	}
	return p.updateAt(pos, price)
}

func (p *Portfolio) updateAt(pos int, price float64) error {
	h := p.holdings[pos]
	old := h.Price()
	if err := h.UpdatePrice(price); err != nil {
		return err
	}
	logging.LogPriceUpdate(p.logger, h.Symbol(), old, price)
	return nil
}

// TotalGain sums the gain of every holding.
func (p *Portfolio) TotalGain() float64 {
	var total float64
	for _, h := range p.holdings {
		total += h.Gain()
	}
	return total
}

// List returns snapshots of all holdings in collection order.
func (p *Portfolio) List() []holding.Snapshot {
	out := make([]holding.Snapshot, len(p.holdings))
	for i, h := range p.holdings {
		out[i] = h.Snapshot()
	}
	return out
}

// All iterates over snapshots of every holding in collection order.
func (p *Portfolio) All() iter.Seq[holding.Snapshot] {
	return func(yield func(holding.Snapshot) bool) {
		for _, h := range p.holdings {
			if !yield(h.Snapshot()) {
				return
			}
		}
	}
}

// Get returns a snapshot of the holding for symbol.
func (p *Portfolio) Get(symbol string) (holding.Snapshot, error) {
	pos := p.find(symbol)
	if pos < 0 {
		return holding.Snapshot{}, fmt.Errorf("%s: %w", symbol, apperrors.ErrHoldingNotFound)
	}
	return p.holdings[pos].Snapshot(), nil
}

// Len returns the number of holdings.
func (p *Portfolio) Len() int {
	return len(p.holdings)
}

// Search returns the holdings matching all three filters:
//   - symbol: empty matches any, otherwise case-insensitive equality;
//   - keywords: whitespace-separated words that must all appear in the name
//     (case-insensitive); blank matches any;
//   - priceRange: a pricerange expression; blank matches any, malformed
//     matches nothing.
//
// The sequence is lazy and restartable: each iteration evaluates the filters
// against the portfolio's state at that moment. The loop body may buy, sell
// or update; a holding sold out before it is reached is skipped.
func (p *Portfolio) Search(symbol, keywords, priceRange string) iter.Seq[holding.Snapshot] {
	return func(yield func(holding.Snapshot) bool) {
		symbol := strings.TrimSpace(symbol)
		tokens := keyword.Tokenize(keywords)
		rng := pricerange.Parse(priceRange)

		positions := p.candidates(tokens)
		held := make([]*holding.Holding, len(positions))
		for i, pos := range positions {
			held[i] = p.holdings[pos]
		}

		for _, h := range held {
			if h.Quantity() == 0 {
				continue
			}
			if symbol != "" && !strings.EqualFold(h.Symbol(), symbol) {
				continue
			}
			if !rng.Matches(h.Price()) {
				continue
			}
			if !yield(h.Snapshot()) {
				return
			}
		}
	}
}

// candidates returns the positions whose names contain every token, or all
// positions when there are no tokens.
func (p *Portfolio) candidates(tokens []string) []int {
	if len(tokens) == 0 {
		all := make([]int, len(p.holdings))
		for i := range all {
			all[i] = i
		}
		return all
	}
	return p.index.Query(tokens)
}

func (p *Portfolio) find(symbol string) int {
	for i, h := range p.holdings {
		if strings.EqualFold(h.Symbol(), symbol) {
			return i
		}
	}
	return -1
}

func (p *Portfolio) insert(h *holding.Holding) {
	p.holdings = append(p.holdings, h)
	p.index.Add(h.Name(), len(p.holdings)-1)
}

func (p *Portfolio) removeAt(pos int) {
	copy(p.holdings[pos:], p.holdings[pos+1:])
	p.holdings[len(p.holdings)-1] = nil
	p.holdings = p.holdings[:len(p.holdings)-1]
	p.index.RemoveAt(pos)
}
