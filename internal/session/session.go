// Package session holds the mapping from opaque session tokens to
// authenticated identities. The store lives for the lifetime of the process
// and never persists; the cookie max-age bounds how long a browser keeps a
// token alive.
package session

import "sync"

// Identity is the authenticated identity cached against a session token.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"` // "admin" or "user"
}

// IsAdmin returns true if the identity has the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == "admin"
}

// Store resolves, records, and revokes session tokens. Implementations must
// be safe for concurrent use.
type Store interface {
	Get(token string) (Identity, bool)
	Put(token string, id Identity)
	Delete(token string)
	Len() int
}

// MemoryStore is the in-process Store implementation.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Identity
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Identity)}
}

// Get returns the identity for token, if present.
func (s *MemoryStore) Get(token string) (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.sessions[token]
	return id, ok
}

// Put records the identity under token, replacing any previous entry.
func (s *MemoryStore) Put(token string, id Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = id
}

// Delete revokes token. Deleting an unknown token is a no-op.
func (s *MemoryStore) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Len returns the number of active sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
