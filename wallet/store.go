// Package wallet provides storage interfaces for named signing accounts.
package wallet

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when no account has the requested name.
	ErrNotFound = errors.New("account not found")
	// ErrExists is returned when adding an account under a taken name.
	ErrExists = errors.New("account already exists")
)

// Account is a named key pair held by the wallet.
type Account struct {
	Name      string             `json:"name"`
	Address   string             `json:"address"`
	SecretKey ed25519.PrivateKey `json:"-"`
	CreatedAt time.Time          `json:"createdAt"`
}

// Store defines the interface for persisting wallet accounts.
type Store interface {
	// AddAccount inserts a new account. Names are unique.
	AddAccount(acct Account) error

	// GetAccount retrieves an account by name.
	GetAccount(name string) (Account, error)

	// ListAccounts returns every account ordered by name.
	ListAccounts() ([]Account, error)

	// RemoveAccount deletes an account by name.
	RemoveAccount(name string) error

	// Close closes the store and releases resources.
	Close() error
}

// Validate checks the fields every store requires.
func (a Account) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("account name is required")
	}
	if a.Address == "" {
		return fmt.Errorf("account %q: address is required", a.Name)
	}
	if len(a.SecretKey) != ed25519.PrivateKeySize {
		return fmt.Errorf("account %q: secret key must be %d bytes, got %d", a.Name, ed25519.PrivateKeySize, len(a.SecretKey))
	}
	return nil
}

// MemoryStore provides an in-memory implementation of Store.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]Account
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]Account),
	}
}

// AddAccount implements Store.
func (m *MemoryStore) AddAccount(acct Account) error {
	if err := acct.Validate(); err != nil {
		return err
	}
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[acct.Name]; ok {
		return fmt.Errorf("%w: %s", ErrExists, acct.Name)
	}
	acct.SecretKey = append(ed25519.PrivateKey(nil), acct.SecretKey...)
	m.accounts[acct.Name] = acct
	return nil
}

// GetAccount implements Store.
func (m *MemoryStore) GetAccount(name string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.accounts[name]
	if !ok {
		return Account{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return acct, nil
}

// ListAccounts implements Store.
func (m *MemoryStore) ListAccounts() ([]Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]Account, 0, len(m.accounts))
	for _, acct := range m.accounts {
		result = append(result, acct)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// RemoveAccount implements Store.
func (m *MemoryStore) RemoveAccount(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(m.accounts, name)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}
