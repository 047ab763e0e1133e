package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/tidwall/jsonc"

	"github.com/GriffinCanCode/modxel/internal/domain/element"
)

// Keys of the persisted settings
const (
	KeyServerAddress = "server_address"
	KeyServerSession = "server_session"
	KeyServerToken   = "server_token"
	KeySyntax        = "syntax"
)

// ServerSession is the typed view of the connection settings
type ServerSession struct {
	BaseURL       string
	SessionCookie string
	AuthToken     string
}

// Authenticated reports whether a token is present
func (s ServerSession) Authenticated() bool {
	return s.AuthToken != ""
}

// Store is a durable key/value map backed by a JSON-with-comments file
type Store struct {
	path   string
	mu     sync.RWMutex
	values map[string]any
}

// Open loads the settings file at path. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{
		path:   path,
		values: make(map[string]any),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
	}

	if len(data) == 0 {
		return s, nil
	}

	if err := sonic.Unmarshal(jsonc.ToJSON(data), &s.values); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	return s, nil
}

// NewMemory returns a store that is never written to disk
func NewMemory() *Store {
	return &Store{values: make(map[string]any)}
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// Get returns the raw value stored under key
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// String returns the value under key when it is a string, else ""
func (s *Store) String(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

// Set stores value under key
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Erase removes key
func (s *Store) Erase(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Persist writes the settings to disk before returning
func (s *Store) Persist() error {
	if s.path == "" {
		return nil
	}

	s.mu.RLock()
	data, err := sonic.ConfigStd.MarshalIndent(s.values, "", "\t")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*")
	if err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}

// Session returns the current connection settings
func (s *Store) Session() ServerSession {
	return ServerSession{
		BaseURL:       s.String(KeyServerAddress),
		SessionCookie: s.String(KeyServerSession),
		AuthToken:     s.String(KeyServerToken),
	}
}

// Syntax returns the syntax selector configured for class, or ""
func (s *Store) Syntax(class element.Class) string {
	v, _ := s.Get(KeySyntax)
	selectors, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	selector, _ := selectors[class.String()].(string)
	return selector
}
