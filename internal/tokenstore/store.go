// Package tokenstore implements C1: an in-memory, append-only mint -> TokenInfo
// map shared by every session. Ported from services/hashmap_token_store.rs.
package tokenstore

import (
	"errors"
	"sync"

	"github.com/adred-codev/soltrace/internal/domain"
)

// ErrAlreadyExists is returned by Add when the mint is already present. Callers
// treat this as benign (best-effort inserts race harmlessly).
var ErrAlreadyExists = errors.New("token already exists")

// ErrNotFound is returned by Get when the mint has never been added.
var ErrNotFound = errors.New("token not found")

// Store is a concurrency-safe, single-writer/many-reader token metadata cache.
// No entry is ever evicted during process lifetime.
type Store struct {
	mu     sync.RWMutex
	tokens map[string]domain.TokenInfo
}

// New returns an empty Store.
func New() *Store {
	return &Store{tokens: make(map[string]domain.TokenInfo)}
}

// Add inserts a TokenInfo, failing with ErrAlreadyExists if the mint is present.
func (s *Store) Add(token domain.TokenInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[token.ID]; ok {
		return ErrAlreadyExists
	}
	s.tokens[token.ID] = token
	return nil
}

// Get returns the TokenInfo for a mint, or ErrNotFound.
func (s *Store) Get(mint string) (domain.TokenInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.tokens[mint]
	if !ok {
		return domain.TokenInfo{}, ErrNotFound
	}
	return info, nil
}

// Has reports whether a mint has metadata already cached.
func (s *Store) Has(mint string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tokens[mint]
	return ok
}
