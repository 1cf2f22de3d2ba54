// Package sqlitestore provides SQLite-based persistence for wallet accounts.
package sqlitestore

import (
	"crypto/ed25519"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bpowers/algorand-mcp/internal/logging"
	"github.com/bpowers/algorand-mcp/wallet"
)

// SQLiteStore implements wallet.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite-based store at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Each connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	logging.Component("wallet").Debug("opened wallet store", "path", dbPath)
	return store, nil
}

// initSchema creates the necessary tables if they don't exist.
func (s *SQLiteStore) initSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    name        TEXT PRIMARY KEY,
    address     TEXT NOT NULL,
    secret_key  BLOB NOT NULL,
    created_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_accounts_address ON accounts(address);
`
	_, err := s.db.Exec(schema)
	return err
}

// AddAccount implements wallet.Store.
func (s *SQLiteStore) AddAccount(acct wallet.Account) error {
	if err := acct.Validate(); err != nil {
		return err
	}
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = time.Now().UTC()
	}

	result, err := s.db.Exec(
		`INSERT OR IGNORE INTO accounts (name, address, secret_key, created_at) VALUES (?, ?, ?, ?)`,
		acct.Name, acct.Address, []byte(acct.SecretKey), acct.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", wallet.ErrExists, acct.Name)
	}
	return nil
}

// GetAccount implements wallet.Store.
func (s *SQLiteStore) GetAccount(name string) (wallet.Account, error) {
	var a wallet.Account
	var sk []byte
	err := s.db.QueryRow(
		`SELECT name, address, secret_key, created_at FROM accounts WHERE name = ?`,
		name,
	).Scan(&a.Name, &a.Address, &sk, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return wallet.Account{}, fmt.Errorf("%w: %s", wallet.ErrNotFound, name)
		}
		return wallet.Account{}, fmt.Errorf("query account: %w", err)
	}
	a.SecretKey = ed25519.PrivateKey(sk)
	return a, nil
}

// ListAccounts implements wallet.Store.
func (s *SQLiteStore) ListAccounts() ([]wallet.Account, error) {
	rows, err := s.db.Query(`SELECT name, address, secret_key, created_at FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []wallet.Account
	for rows.Next() {
		var a wallet.Account
		var sk []byte
		if err := rows.Scan(&a.Name, &a.Address, &sk, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.SecretKey = ed25519.PrivateKey(sk)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// RemoveAccount implements wallet.Store.
func (s *SQLiteStore) RemoveAccount(name string) error {
	result, err := s.db.Exec(`DELETE FROM accounts WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", wallet.ErrNotFound, name)
	}
	return nil
}

// Close implements wallet.Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
