// Package session keeps each authenticated user's derived vault key in memory,
// keyed by an opaque session id. Keys are never written to durable storage and
// are zeroed when a session ends or expires.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/crypto"
)

var ErrSessionNotFound = errors.New("session not found or expired")

type entry struct {
	userID    int64
	key       []byte
	expiresAt time.Time
}

// Store is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
}

// NewStore returns a Store whose sessions live for ttl after creation.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// TTL returns the lifetime given to new sessions.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create stores a copy of key for userID and returns the new session id.
func (s *Store) Create(userID int64, key []byte) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating session id: %w", err)
	}
	id := base64.RawURLEncoding.EncodeToString(raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &entry{
		userID:    userID,
		key:       append([]byte(nil), key...),
		expiresAt: s.now().Add(s.ttl),
	}
	return id, nil
}

// Valid reports whether id names a live session owned by userID.
func (s *Store) Valid(id string, userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.lookup(id, userID)
	return ok
}

// WithKey lends the session key to fn. fn gets a private copy that is zeroed
// when fn returns, so the key cannot outlive the call.
func (s *Store) WithKey(id string, userID int64, fn func(key []byte) error) error {
	s.mu.Lock()
	e, ok := s.lookup(id, userID)
	if !ok {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	key := append([]byte(nil), e.key...)
	s.mu.Unlock()

	defer crypto.Wipe(key)
	return fn(key)
}

// Delete ends a session and zeroes its key. Unknown ids are ignored.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(id)
}

// DeleteUser ends every session belonging to userID.
func (s *Store) DeleteUser(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, e := range s.sessions {
		if e.userID == userID {
			s.remove(id)
			n++
		}
	}
	return n
}

// PurgeExpired drops every expired session and returns how many were removed.
func (s *Store) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for id, e := range s.sessions {
		if !now.Before(e.expiresAt) {
			s.remove(id)
			n++
		}
	}
	return n
}

// Len returns the number of stored sessions, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run purges expired sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.PurgeExpired(); n > 0 {
				slog.Info("purged expired sessions", "count", n)
			}
		}
	}
}

// lookup must be called with mu held. Expired sessions are removed on sight.
func (s *Store) lookup(id string, userID int64) (*entry, bool) {
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if !s.now().Before(e.expiresAt) {
		s.remove(id)
		return nil, false
	}
	if e.userID != userID {
		return nil, false
	}
	return e, true
}

// remove must be called with mu held.
func (s *Store) remove(id string) {
	if e, ok := s.sessions[id]; ok {
		crypto.Wipe(e.key)
		delete(s.sessions, id)
	}
}
