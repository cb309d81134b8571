// Package store provides the transaction journal interface and its SQLite
// implementation.
package store

import (
	"context"
	"time"

	"eportfolio/internal/models"
)

// Journal records portfolio transactions for later review. It is an audit
// trail only; the holdings file remains the source of truth.
type Journal interface {
	// Transactions
	LogTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error)

	// Saves of the holdings file
	GetLastSave(ctx context.Context, path string) (time.Time, error)
	SetLastSave(ctx context.Context, path string, t time.Time) error

	// Lifecycle
	Close() error
}

// TransactionFilter represents filters for querying transactions.
type TransactionFilter struct {
	Symbol    string
	Side      models.Side
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}
