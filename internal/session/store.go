// File: internal/session/store.go
package session

import (
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/riku-sakamoto/manabo-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store persists one serialized session state to a single file artifact.
// Absence of the file is not an error by itself; callers treat it as the
// credential-fallback trigger.
type Store struct {
	path   string
	logger *zap.Logger
}

var _ schemas.SessionStore = (*Store)(nil)

// NewStore creates a session store backed by the given file path.
func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.Named("session_store"),
	}
}

// Exists reports whether a persisted session state is present.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}

// Load reads the persisted session state.
func (s *Store) Load() (*schemas.SessionState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session state %s: %w", s.path, err)
	}
	var state schemas.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse session state %s: %w", s.path, err)
	}
	s.logger.Debug("Session state loaded.", zap.String("path", s.path), zap.Int("cookies", len(state.Cookies)))
	return &state, nil
}

// Save writes the session state atomically (write-then-rename) so a crash
// never leaves a truncated artifact behind.
func (s *Store) Save(state *schemas.SessionState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize session state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create state directory %s: %w", dir, err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace session state %s: %w", s.path, err)
	}

	s.logger.Info("Session state saved.", zap.String("path", s.path))
	return nil
}

// Clear removes the persisted session state. Removing a state that does not
// exist is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session state %s: %w", s.path, err)
	}
	return nil
}
