package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "eportfolio/internal/errors"
	"eportfolio/internal/models"
)

// SQLiteStore implements Journal using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	mu        sync.RWMutex
	saveTimes map[string]time.Time
}

// NewSQLiteStore opens (creating if needed) the journal database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w: %w", apperrors.ErrDatabaseError, err)
	}

	// One process per command; a single connection is enough.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{
		db:        db,
		saveTimes: make(map[string]time.Time),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w: %w", apperrors.ErrDatabaseError, err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Executed buys, sells and price updates
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		side TEXT NOT NULL,
		kind TEXT NOT NULL,
		symbol TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		price REAL NOT NULL,
		amount REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Last successful save per holdings file
	CREATE TABLE IF NOT EXISTS save_status (
		path TEXT PRIMARY KEY,
		last_save DATETIME NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_symbol ON transactions(symbol);
	CREATE INDEX IF NOT EXISTS idx_transactions_timestamp ON transactions(timestamp);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Transaction Methods
// ============================================================================

// LogTransaction saves a transaction to the database.
func (s *SQLiteStore) LogTransaction(ctx context.Context, tx *models.Transaction) error {
	if !tx.Side.Valid() {
		return apperrors.NewValidationError("side", tx.Side, "unknown transaction side")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, timestamp, side, kind, symbol, quantity, price, amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, tx.ID, tx.Timestamp, string(tx.Side), string(tx.Kind), tx.Symbol, tx.Quantity, tx.Price, tx.Amount)
	if err != nil {
		return fmt.Errorf("failed to log transaction: %w: %w", apperrors.ErrDatabaseError, err)
	}
	return nil
}

// GetTransactions retrieves transactions, newest first.
func (s *SQLiteStore) GetTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error) {
	query := "SELECT id, timestamp, side, kind, symbol, quantity, price, amount FROM transactions WHERE 1=1"
	args := []interface{}{}

	if filter.Symbol != "" {
		query += " AND symbol = ? COLLATE NOCASE"
		args = append(args, filter.Symbol)
	}
	if filter.Side != "" {
		query += " AND side = ?"
		args = append(args, string(filter.Side))
	}
	if !filter.StartDate.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, filter.EndDate)
	}

	query += " ORDER BY timestamp DESC, rowid DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w: %w", apperrors.ErrDatabaseError, err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var side, kind string
		if err := rows.Scan(&t.ID, &t.Timestamp, &side, &kind, &t.Symbol, &t.Quantity, &t.Price, &t.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Side = models.Side(side)
		t.Kind = models.Kind(kind)
		txs = append(txs, t)
	}

	return txs, rows.Err()
}

// ============================================================================
// Save Status Methods
// ============================================================================

// GetLastSave returns when path was last saved, or the zero time if never.
func (s *SQLiteStore) GetLastSave(ctx context.Context, path string) (time.Time, error) {
	s.mu.RLock()
	if t, ok := s.saveTimes[path]; ok {
		s.mu.RUnlock()
		return t, nil
	}
	s.mu.RUnlock()

	var lastSave time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT last_save FROM save_status WHERE path = ?
	`, path).Scan(&lastSave)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last save: %w: %w", apperrors.ErrDatabaseError, err)
	}

	s.mu.Lock()
	s.saveTimes[path] = lastSave
	s.mu.Unlock()

	return lastSave, nil
}

// SetLastSave records that path was saved at t.
func (s *SQLiteStore) SetLastSave(ctx context.Context, path string, t time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO save_status (path, last_save, updated_at)
		VALUES (?, ?, ?)
	`, path, t, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set last save: %w: %w", apperrors.ErrDatabaseError, err)
	}

	s.mu.Lock()
	s.saveTimes[path] = t
	s.mu.Unlock()

	return nil
}
