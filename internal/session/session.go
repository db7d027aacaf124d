// Package session holds the admin bearer token. A Session is passed to every
// component that makes protected calls; Load, Set and Clear are its only
// mutators. Tokens are never checked for expiry or refreshed.
package session

import (
	"fmt"
	"sync"
)

// Session is the active admin credential plus its persistence.
type Session struct {
	store Store
	mu    sync.RWMutex
	token string
}

// New returns an inactive Session backed by store.
func New(store Store) *Session {
	return &Session{store: store}
}

// Load activates the persisted token, if any. It is called once at startup.
func (s *Session) Load() (string, bool, error) {
	token, err := s.store.Read()
	if err != nil {
		return "", false, fmt.Errorf("load session: %w", err)
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return token, token != "", nil
}

// Set activates and persists token. The token stays active for this
// process even when persisting it fails.
func (s *Session) Set(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	if err := s.store.Write(token); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear removes the persisted token and deactivates the session. The session
// is deactivated even when removing the file fails.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	if err := s.store.Remove(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Token returns the active token or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Active reports whether a token is held.
func (s *Session) Active() bool {
	return s.Token() != ""
}
