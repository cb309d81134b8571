// Package holding provides the per-instrument value model: quantity, price,
// cost basis and the fee rules of each instrument kind.
package holding

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"

	apperrors "eportfolio/internal/errors"
)

// Kind identifies the instrument variant of a holding.
type Kind int

const (
	Stock Kind = iota
	MutualFund
)

// Fee constants.
const (
	Commission    = 9.99  // charged on every stock buy and sell
	RedemptionFee = 45.00 // charged on every mutual fund sell
)

type feeSchedule struct {
	buy  float64 // added to book value
	sell float64 // subtracted from proceeds
}

var fees = map[Kind]feeSchedule{
	Stock:      {buy: Commission, sell: Commission},
	MutualFund: {buy: 0, sell: RedemptionFee},
}

// ParseKind maps "stock" (any case) to Stock and everything else to MutualFund.
func ParseKind(s string) Kind {
	if strings.EqualFold(strings.TrimSpace(s), "stock") {
		return Stock
	}
	return MutualFund
}

// String returns the persisted type literal.
func (k Kind) String() string {
	if k == Stock {
		return "stock"
	}
	return "mutualfund"
}

// Label returns the display name of the kind.
func (k Kind) Label() string {
	if k == Stock {
		return "Stock"
	}
	return "Mutual Fund"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// BuyFee returns the fee added to book value on a buy.
func (k Kind) BuyFee() float64 {
	return fees[k].buy
}

// SellFee returns the fee subtracted from sale proceeds.
func (k Kind) SellFee() float64 {
	return fees[k].sell
}

var symbolPattern = regexp.MustCompile(`^[A-Z0-9]+$`)

// ValidateSymbol checks that symbol is uppercase alphanumeric.
func ValidateSymbol(symbol string) error {
	if !symbolPattern.MatchString(symbol) {
		return apperrors.NewValidationError("symbol", symbol, "symbols must be uppercase alphanumeric")
	}
	return nil
}

// ValidateName returns the trimmed name, or an error if nothing is left or
// the name contains a line break or other control character. Names are
// stored one per line.
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", apperrors.NewValidationError("name", name, "name cannot be empty")
	}
	if strings.ContainsFunc(trimmed, unicode.IsControl) {
		return "", apperrors.NewValidationError("name", name, "name cannot contain control characters")
	}
	return trimmed, nil
}

// ValidateQuantity checks that qty is positive.
func ValidateQuantity(qty int) error {
	if qty <= 0 {
		return apperrors.NewValidationError("quantity", qty, "quantity must be greater than zero")
	}
	return nil
}

// ValidatePrice checks that price is a positive finite number.
func ValidatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return apperrors.NewValidationError("price", price, "price must be greater than zero")
	}
	return nil
}

// Holding is one tracked instrument.
type Holding struct {
	kind      Kind
	symbol    string
	name      string
	quantity  int
	price     float64
	bookValue float64
}

// New creates a holding from a first purchase. The initial book value is
// quantity*price plus the kind's buy fee.
func New(kind Kind, symbol, name string, quantity int, price float64) (*Holding, error) {
	h, err := newValidated(kind, symbol, name, quantity, price)
	if err != nil {
		return nil, err
	}
	h.bookValue = float64(quantity)*price + kind.BuyFee()
	return h, nil
}

// Restore rebuilds a holding whose book value is already known, e.g. when
// loading a saved portfolio.
func Restore(kind Kind, symbol, name string, quantity int, price, bookValue float64) (*Holding, error) {
	h, err := newValidated(kind, symbol, name, quantity, price)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(bookValue) || math.IsInf(bookValue, 0) || bookValue < 0 {
		return nil, apperrors.NewValidationError("bookValue", bookValue, "book value must be a non-negative number")
	}
	h.bookValue = bookValue
	return h, nil
}

func newValidated(kind Kind, symbol, name string, quantity int, price float64) (*Holding, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	trimmed, err := ValidateName(name)
	if err != nil {
		return nil, err
	}
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	if err := ValidatePrice(price); err != nil {
		return nil, err
	}
	return &Holding{
		kind:     kind,
		symbol:   symbol,
		name:     trimmed,
		quantity: quantity,
		price:    price,
	}, nil
}

func (h *Holding) Kind() Kind { return h.kind }

func (h *Holding) Symbol() string { return h.symbol }

func (h *Holding) Name() string { return h.name }

func (h *Holding) Quantity() int { return h.quantity }

func (h *Holding) Price() float64 { return h.price }

func (h *Holding) BookValue() float64 { return h.bookValue }

// Buy adds quantity at price. The current market price is left unchanged.
func (h *Holding) Buy(quantity int, price float64) error {
	if err := ValidateQuantity(quantity); err != nil {
		return err
	}
	if err := ValidatePrice(price); err != nil {
		return err
	}
	if quantity > math.MaxInt-h.quantity {
		return apperrors.NewValidationError("quantity", quantity, "total quantity is too large")
	}
	h.quantity += quantity
	h.bookValue += float64(quantity)*price + h.kind.BuyFee()
	return nil
}

// Sell removes quantity at price and returns the proceeds net of the sell fee.
// Book value is reduced by the average cost per unit held before the sale.
func (h *Holding) Sell(quantity int, price float64) (float64, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return 0, err
	}
	if err := ValidatePrice(price); err != nil {
		return 0, err
	}
	if quantity > h.quantity {
		return 0, fmt.Errorf("selling %d units of %s, holding %d: %w",
			quantity, h.symbol, h.quantity, apperrors.ErrInsufficientQuantity)
	}

	proceeds := float64(quantity)*price - h.kind.SellFee()
	costPerUnit := h.bookValue / float64(h.quantity)
	h.bookValue -= costPerUnit * float64(quantity)
	h.quantity -= quantity
	return proceeds, nil
}

// UpdatePrice replaces the current market price.
func (h *Holding) UpdatePrice(price float64) error {
	if err := ValidatePrice(price); err != nil {
		return err
	}
	h.price = price
	return nil
}

// Gain returns market value minus book value.
func (h *Holding) Gain() float64 {
	return float64(h.quantity)*h.price - h.bookValue
}

// Equal reports whether both holdings have the same symbol and name.
func (h *Holding) Equal(other *Holding) bool {
	if h == nil || other == nil {
		return h == other
	}
	return h.symbol == other.symbol && h.name == other.name
}

// Snapshot returns an immutable copy of the holding's current state.
func (h *Holding) Snapshot() Snapshot {
	return Snapshot{
		Kind:      h.kind,
		Symbol:    h.symbol,
		Name:      h.name,
		Quantity:  h.quantity,
		Price:     h.price,
		BookValue: h.bookValue,
		Gain:      h.Gain(),
	}
}

// Snapshot is a read-only view of a holding.
type Snapshot struct {
	Kind      Kind    `json:"type"`
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	BookValue float64 `json:"book_value"`
	Gain      float64 `json:"gain"`
}

// Equal reports whether both snapshots have the same symbol and name.
func (s Snapshot) Equal(other Snapshot) bool {
	return s.Symbol == other.Symbol && s.Name == other.Name
}

// String returns the one-line display form used by search results.
func (s Snapshot) String() string {
	return fmt.Sprintf("%s [Symbol: %s, Name: %s, Quantity: %d, Price: %.2f, Book Value: %.2f]",
		s.Kind.Label(), s.Symbol, s.Name, s.Quantity, s.Price, s.BookValue)
}
