package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction is one journalled change to the portfolio. Amount is the book
// value added by a buy, the net proceeds of a sell and zero for a price
// update.
type Transaction struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Side      Side      `json:"side"`
	Kind      Kind      `json:"type"`
	Symbol    string    `json:"symbol"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	Amount    float64   `json:"amount"`
}

// NewTransaction stamps a transaction with a fresh ID and the current time.
func NewTransaction(side Side, kind Kind, symbol string, quantity int, price, amount float64) *Transaction {
	return &Transaction{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Side:      side,
		Kind:      kind,
		Symbol:    symbol,
		Quantity:  quantity,
		Price:     price,
		Amount:    amount,
	}
}
