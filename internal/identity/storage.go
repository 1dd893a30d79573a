// internal/identity/storage.go
package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// State is the client identity persisted across runs: the session id that
// groups cart items and, when logged in, the bearer credential.
type State struct {
	SessionID string `json:"session_id"`
	AuthToken string `json:"auth_token,omitempty"`
}

// Storage persists identity state across process restarts
type Storage interface {
	Load() (State, error)
	Save(state State) error
}

// FileStorage persists identity state as a JSON file, the durable
// local-storage analog for a CLI or desktop client.
type FileStorage struct {
	path string
}

// NewFileStorage creates file-backed identity storage at the given path
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Load reads persisted identity state; a missing file is an empty state
func (s *FileStorage) Load() (State, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("failed to read identity state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("failed to parse identity state: %w", err)
	}
	return state, nil
}

// Save writes identity state, creating the parent directory if needed
func (s *FileStorage) Save(state State) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode identity state: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write identity state: %w", err)
	}
	return nil
}

// MemoryStorage keeps identity state in memory only. Used in tests and as
// the degraded mode when file storage is unavailable.
type MemoryStorage struct {
	mu    sync.Mutex
	state State
}

// NewMemoryStorage creates in-memory identity storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Load returns the current in-memory state
func (s *MemoryStorage) Load() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, nil
}

// Save replaces the in-memory state
func (s *MemoryStorage) Save(state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	return nil
}
