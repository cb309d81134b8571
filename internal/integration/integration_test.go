// Package integration provides end-to-end tests across the portfolio,
// its file format and the transaction journal.
package integration

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "eportfolio/internal/errors"
	"eportfolio/internal/holding"
	"eportfolio/internal/models"
	"eportfolio/internal/portfolio"
	"eportfolio/internal/store"
	"eportfolio/pkg/utils"
)

// TestEndToEndWorkflow drives a session the way the CLI does: trade, journal
// each change, save, then reload into a fresh portfolio.
func TestEndToEndWorkflow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dir := t.TempDir()
	file := filepath.Join(dir, "portfolio.txt")

	journal, err := store.NewSQLiteStore(filepath.Join(dir, "journal.db"))
	require.NoError(t, err)
	defer journal.Close()

	p := portfolio.New(zerolog.Nop())

	require.NoError(t, p.Buy("stock", "IBM", "International Business Machines", 100, 50))
	require.NoError(t, journal.LogTransaction(ctx, models.NewTransaction(models.SideBuy, models.KindStock, "IBM", 100, 50, 5009.99)))

	require.NoError(t, p.Buy("mutualfund", "ABCFX", "Growth Fund", 200, 10))
	require.NoError(t, journal.LogTransaction(ctx, models.NewTransaction(models.SideBuy, models.KindMutualFund, "ABCFX", 200, 10, 2000)))

	proceeds, err := p.Sell("IBM", 50, 60)
	require.NoError(t, err)
	assert.InDelta(t, 2990.01, proceeds, 1e-9)
	require.NoError(t, journal.LogTransaction(ctx, models.NewTransaction(models.SideSell, models.KindStock, "IBM", 50, 60, proceeds)))

	require.NoError(t, p.SaveFile(file))
	savedAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, journal.SetLastSave(ctx, file, savedAt))

	reloaded := portfolio.New(zerolog.Nop())
	require.NoError(t, reloaded.LoadFile(file))

	assert.Equal(t, p.List(), reloaded.List())
	assert.InDelta(t, p.TotalGain(), reloaded.TotalGain(), 1e-9)

	var found []string
	for s := range reloaded.Search("", "growth", "") {
		found = append(found, s.Symbol)
	}
	assert.Equal(t, []string{"ABCFX"}, found)

	txs, err := journal.GetTransactions(ctx, store.TransactionFilter{Symbol: "IBM"})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, models.SideSell, txs[0].Side)

	last, err := journal.GetLastSave(ctx, file)
	require.NoError(t, err)
	assert.True(t, savedAt.Equal(last))
}

// TestPriceRefreshSurvivesReload checks that a full price refresh is what a
// later session sees.
func TestPriceRefreshSurvivesReload(t *testing.T) {
	file := filepath.Join(t.TempDir(), "portfolio.txt")

	p := portfolio.New(zerolog.Nop())
	require.NoError(t, p.Buy("stock", "AAPL", "Apple Inc", 10, 100))
	require.NoError(t, p.Buy("mutualfund", "IBFX", "International Bank Fund", 40, 25))

	quotes := map[string]float64{"AAPL": 120, "IBFX": 30}
	err := p.UpdateAllPrices(portfolio.PriceSourceFunc(func(_ holding.Kind, symbol string) (float64, error) {
		return quotes[symbol], nil
	}))
	require.NoError(t, err)
	require.NoError(t, p.SaveFile(file))

	reloaded := portfolio.New(zerolog.Nop())
	require.NoError(t, reloaded.LoadFile(file))

	aapl, err := reloaded.Get("AAPL")
	require.NoError(t, err)
	assert.Equal(t, 120.0, aapl.Price)
	assert.InDelta(t, 1200-1009.99-9.99, aapl.Gain, 1e-9)

	ibfx, err := reloaded.Get("IBFX")
	require.NoError(t, err)
	assert.InDelta(t, 1200-1000-45, ibfx.Gain, 1e-9)
}

// TestJournalRetryOnReopen checks that a journal whose first open fails with a
// database error is opened on the next attempt.
func TestJournalRetryOnReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	attempts := 0
	cfg := utils.DefaultRetryConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.Retryable = func(err error) bool { return apperrors.Is(err, apperrors.ErrDatabaseError) }

	j, err := utils.RetryWithResult(ctx, cfg, func() (*store.SQLiteStore, error) {
		attempts++
		if attempts == 1 {
			return nil, fmt.Errorf("opening journal: %w", apperrors.ErrDatabaseError)
		}
		return store.NewSQLiteStore(path)
	})
	require.NoError(t, err)
	defer j.Close()

	assert.Equal(t, 2, attempts)
	require.NoError(t, j.LogTransaction(ctx, models.NewTransaction(models.SideUpdate, models.KindStock, "IBM", 0, 55, 0)))
}

// TestConcurrentJournalWrites checks that the journal serialises writers.
func TestConcurrentJournalWrites(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	journal, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer journal.Close()

	symbols := []string{"IBM", "AAPL", "MSFT", "ABCFX", "IBFX"}
	const perSymbol = 10

	var wg sync.WaitGroup
	errs := make(chan error, len(symbols)*perSymbol)

	for _, symbol := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			for i := 0; i < perSymbol; i++ {
				tx := models.NewTransaction(models.SideBuy, models.KindStock, sym, i+1, 10, float64(i+1)*10+9.99)
				if err := journal.LogTransaction(ctx, tx); err != nil {
					errs <- err
				}
			}
		}(symbol)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("log transaction: %v", err)
	}

	all, err := journal.GetTransactions(ctx, store.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, len(symbols)*perSymbol)

	for _, symbol := range symbols {
		txs, err := journal.GetTransactions(ctx, store.TransactionFilter{Symbol: symbol})
		require.NoError(t, err)
		assert.Len(t, txs, perSymbol, symbol)
	}
}
