package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Tokens is an access/refresh token pair.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenStore persists tokens between runs.
type TokenStore interface {
	Load() (Tokens, error)
	Save(Tokens) error
	Clear() error
}

// MemoryTokenStore keeps tokens for the life of the process.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens Tokens
}

func (m *MemoryTokenStore) Load() (Tokens, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens, nil
}

func (m *MemoryTokenStore) Save(t Tokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = t
	return nil
}

func (m *MemoryTokenStore) Clear() error {
	return m.Save(Tokens{})
}

// FileTokenStore keeps tokens in a JSON file readable only by the owner.
type FileTokenStore struct {
	Path string
}

func (f FileTokenStore) Load() (Tokens, error) {
	var t Tokens
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return t, fmt.Errorf("reading token file: %w", err)
	}
	if err := json.Unmarshal(data, &t); err != nil {
		return Tokens{}, fmt.Errorf("parsing token file %s: %w", f.Path, err)
	}
	return t, nil
}

func (f FileTokenStore) Save(t Tokens) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("creating token dir: %w", err)
	}
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.Path, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

func (f FileTokenStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

// Session owns the current token pair. Writes go through to the TokenStore
// so the session survives restarts.
type Session struct {
	mu     sync.RWMutex
	store  TokenStore
	tokens Tokens
}

// NewSession returns an empty session backed by store, or by memory when
// store is nil. Call Hydrate to pick up persisted tokens.
func NewSession(store TokenStore) *Session {
	if store == nil {
		store = &MemoryTokenStore{}
	}
	return &Session{store: store}
}

// Hydrate loads tokens from the store.
func (s *Session) Hydrate() error {
	t, err := s.store.Load()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.tokens = t
	s.mu.Unlock()
	return nil
}

func (s *Session) Tokens() Tokens {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens
}

func (s *Session) AccessToken() string  { return s.Tokens().AccessToken }
func (s *Session) RefreshToken() string { return s.Tokens().RefreshToken }

// Authenticated reports whether an access token is held.
func (s *Session) Authenticated() bool { return s.AccessToken() != "" }

// SetTokens replaces the pair in memory and in the store.
func (s *Session) SetTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = Tokens{AccessToken: access, RefreshToken: refresh}
	return s.store.Save(s.tokens)
}

// Clear forgets the pair in memory and in the store.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = Tokens{}
	return s.store.Clear()
}
