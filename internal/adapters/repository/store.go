// Package repository persists the preferred-currency cell and caches
// computed reports.
package repository

import (
	"context"
	"strings"
	"sync"
)

// Store holds the process-wide preferred currency.
type Store interface {
	// PreferredCurrency returns the stored code, or ErrNotFound when none
	// has been set.
	PreferredCurrency(ctx context.Context) (string, error)
	// SetPreferredCurrency replaces the stored code.
	SetPreferredCurrency(ctx context.Context, code string) error
	Close() error
}

// InMemoryStore is a Store backed by a single mutex-guarded cell.
type InMemoryStore struct {
	mu   sync.RWMutex
	code string
}

// NewInMemoryStore returns an empty store.
func NewInMemoryStore() *InMemoryStore { return &InMemoryStore{} }

// PreferredCurrency implements Store.
func (s *InMemoryStore) PreferredCurrency(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.code == "" {
		return "", ErrNotFound
	}
	return s.code, nil
}

// SetPreferredCurrency implements Store.
func (s *InMemoryStore) SetPreferredCurrency(ctx context.Context, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrInvalidValue
	}
	s.mu.Lock()
	s.code = code
	s.mu.Unlock()
	return nil
}

// Close implements Store.
func (s *InMemoryStore) Close() error { return nil }
