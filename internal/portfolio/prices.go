package portfolio

import (
	"fmt"

	"eportfolio/internal/holding"
	"eportfolio/internal/logging"
)

// PriceSource supplies a fresh market price for one holding. Implementations
// may block, e.g. while waiting for user input.
type PriceSource interface {
	Quote(kind holding.Kind, symbol string) (float64, error)
}

// PriceSourceFunc adapts a function to PriceSource.
type PriceSourceFunc func(kind holding.Kind, symbol string) (float64, error)

// Quote calls f.
func (f PriceSourceFunc) Quote(kind holding.Kind, symbol string) (float64, error) {
	return f(kind, symbol)
}

// UpdateAllPrices asks src for a new price for each holding, one at a time
// in collection order, and applies it. The first error from src, or the first
// invalid price, stops the pass; holdings already visited keep their new
// prices.
func (p *Portfolio) UpdateAllPrices(src PriceSource) error {
	log := logging.WithOperation(p.logger, "update_all")
	for pos := 0; pos < len(p.holdings); pos++ {
		h := p.holdings[pos]
		price, err := src.Quote(h.Kind(), h.Symbol())
		if err != nil {
			log.Warn().Err(err).Int("updated", pos).Msg("Price refresh stopped")
			return fmt.Errorf("quoting %s: %w", h.Symbol(), err)
		}
		if err := p.updateAt(pos, price); err != nil {
			log.Warn().Err(err).Int("updated", pos).Msg("Price refresh stopped")
			return fmt.Errorf("updating %s: %w", h.Symbol(), err)
		}
	}
	log.Debug().Int("updated", len(p.holdings)).Msg("Price refresh finished")
	return nil
}
