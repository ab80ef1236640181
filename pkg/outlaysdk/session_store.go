package outlaysdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Session is an authenticated identity: the bearer token plus the user
// record it was issued for. The two always commit together.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SessionStore persists the current session. Commit replaces the stored
// session atomically: either both token and user land, or neither does.
// Commit(nil) clears the store (logout).
type SessionStore interface {
	Current() *Session
	Commit(session *Session) error
}

// MemorySessionStore keeps the session in process memory. Useful for
// tests and short-lived tools.
type MemorySessionStore struct {
	mu      sync.RWMutex
	current *Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (s *MemorySessionStore) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

func (s *MemorySessionStore) Commit(session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session == nil {
		s.current = nil
		return nil
	}
	cp := *session
	s.current = &cp
	return nil
}

// FileSessionStore persists the session as a JSON file with `token` and
// `user` keys. Writes go through a temp file and rename so a crash can
// never leave a half-written session behind.
type FileSessionStore struct {
	path string

	mu      sync.RWMutex
	current *Session
}

// NewFileSessionStore opens (or initialises) a file-backed store. A
// missing file is not an error; it means no session.
func NewFileSessionStore(path string) (*FileSessionStore, error) {
	s := &FileSessionStore{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	if sess.Token != "" {
		s.current = &sess
	}
	return s, nil
}

func (s *FileSessionStore) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

func (s *FileSessionStore) Commit(session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session == nil {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to clear session file: %w", err)
		}
		s.current = nil
		return nil
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close session file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set session file mode: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to commit session file: %w", err)
	}

	cp := *session
	s.current = &cp
	return nil
}
