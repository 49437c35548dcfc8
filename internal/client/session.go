// Package client is a small HTTP client for the authentication API. It
// keeps the auth_token cookie in a local file between invocations.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// DefaultSessionFile is where the session cookie is kept when no path is given.
const DefaultSessionFile = "session.json"

// Session is the persisted form of the auth_token cookie.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Valid reports whether the session holds a token that has not expired yet.
func (s Session) Valid(now time.Time) bool {
	if s.Token == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

// SessionStore reads and writes a Session as JSON on disk.
type SessionStore struct {
	Path string
	mu   sync.Mutex
}

// NewSessionStore returns a store backed by path, or DefaultSessionFile when empty.
func NewSessionStore(path string) *SessionStore {
	if path == "" {
		path = DefaultSessionFile
	}
	return &SessionStore{Path: path}
}

// Load returns the stored session. A missing file yields an empty session.
func (s *SessionStore) Load() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, nil
		}
		return Session{}, fmt.Errorf("open session file: %w", err)
	}
	defer f.Close()

	var sess Session
	if err := json.NewDecoder(f).Decode(&sess); err != nil {
		return Session{}, fmt.Errorf("decode session file: %w", err)
	}
	return sess, nil
}

// Save replaces the stored session. The file is readable by the owner only.
func (s *SessionStore) Save(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Clear removes the stored session. Clearing an absent session is a no-op.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
