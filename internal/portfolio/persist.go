package portfolio

import (
	"fmt"

	"eportfolio/internal/codec"
	apperrors "eportfolio/internal/errors"
	"eportfolio/internal/holding"
)

// LoadFile appends the holdings stored at path. A missing file leaves the
// portfolio unchanged and is not an error.
//
// Loading stops at the first unreadable line, malformed number, invalid
// record or repeated symbol. Holdings restored before that point are kept and
// the error is returned.
func (p *Portfolio) LoadFile(path string) error {
	records, readErr := codec.ReadFile(path)

	loaded, err := p.restore(records)
	log := p.logger.With().Str("file", path).Int("loaded", loaded).Logger()
	if err == nil {
		err = readErr
	}
	if err != nil {
		log.Warn().Err(err).Msg("Portfolio partially loaded")
		return err
	}

	log.Debug().Msg("Portfolio loaded")
	return nil
}

// restore adds records in order and reports how many were added.
func (p *Portfolio) restore(records []codec.Record) (int, error) {
	for i, rec := range records {
		if p.find(rec.Symbol) >= 0 {
			return i, fmt.Errorf("record %d: %s: %w", i+1, rec.Symbol, apperrors.ErrDuplicateHolding)
		}
		h, err := holding.Restore(holding.ParseKind(rec.Type), rec.Symbol, rec.Name, rec.Quantity, rec.Price, rec.BookValue)
		if err != nil {
			return i, fmt.Errorf("record %d: %w", i+1, err)
		}
		p.insert(h)
	}
	return len(records), nil
}

// SaveFile overwrites path with every holding in collection order.
func (p *Portfolio) SaveFile(path string) error {
	if err := codec.WriteFile(path, p.Records()); err != nil {
		return err
	}
	p.logger.Debug().Str("file", path).Int("holdings", len(p.holdings)).Msg("Portfolio saved")
	return nil
}

// Records returns the portfolio in its persisted form.
func (p *Portfolio) Records() []codec.Record {
	records := make([]codec.Record, len(p.holdings))
	for i, h := range p.holdings {
		records[i] = codec.Record{
			Type:      h.Kind().String(),
			Symbol:    h.Symbol(),
			Name:      h.Name(),
			Quantity:  h.Quantity(),
			Price:     h.Price(),
			BookValue: h.BookValue(),
		}
	}
	return records
}
