// Package file keeps the preference document in a JSON file.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
	"github.com/MrSnakeDoc/mrunner/internal/logger"
	"github.com/MrSnakeDoc/mrunner/internal/store"
	"github.com/mitchellh/go-homedir"
)

// FileName is the preference document inside the config directory.
const FileName = "preferences.json"

// BackupSuffix is appended to a document that could not be decoded before
// it is replaced.
const BackupSuffix = ".bak"

// Store reads and writes dir/preferences.json. Writes go through a temp
// file and a rename so a crash never leaves half a document behind.
type Store struct {
	mu     sync.Mutex
	path   string
	logger logger.Logger
}

// New creates a store for the config directory dir. A leading ~ is expanded.
func New(dir string, log logger.Logger) (*Store, error) {
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config dir %q: %w", dir, err)
	}
	return &Store{
		path:   filepath.Join(expanded, FileName),
		logger: log.Named("prefs-file"),
	}, nil
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// LoadShortcuts returns the shortcut member, or nil, nil when the file or
// the member does not exist.
func (s *Store) LoadShortcuts(ctx context.Context) (*domain.ShortcutConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}
	return store.DecodeShortcuts(data)
}

// SaveShortcuts rewrites the shortcut member and keeps the rest.
func (s *Store) SaveShortcuts(ctx context.Context, cfg domain.ShortcutConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.readForWrite()
	if err != nil {
		return err
	}
	out, err := store.MergeShortcuts(data, cfg)
	if err != nil {
		return err
	}
	return s.write(out)
}

// Preferences returns the whole document. A missing file is the zero value.
func (s *Store) Preferences(ctx context.Context) (*domain.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}
	return store.DecodePreferences(data)
}

// SavePreferences writes the folder and setup members of prefs.
func (s *Store) SavePreferences(ctx context.Context, prefs domain.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.readForWrite()
	if err != nil {
		return err
	}
	out, err := store.MergePreferences(data, prefs)
	if err != nil {
		return err
	}
	return s.write(out)
}

func (s *Store) read() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	return data, nil
}

// readForWrite returns the document to merge into. A document that does not
// decode is kept next to the original as FileName+BackupSuffix and replaced
// by an empty one.
func (s *Store) readForWrite() ([]byte, error) {
	data, err := s.read()
	if err != nil {
		return nil, err
	}
	if cerr := store.Check(data); cerr != nil {
		backup := s.path + BackupSuffix
		s.logger.Warn("preferences document is malformed, starting from an empty one",
			logger.String("path", s.path),
			logger.String("backup", backup),
			logger.Error(cerr))
		if err := os.WriteFile(backup, data, 0o644); err != nil {
			s.logger.Warn("failed to back up malformed preferences", logger.Error(err))
		}
		return nil, nil
	}
	return data, nil
}

func (s *Store) write(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+FileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close preferences: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace preferences: %w", err)
	}
	return nil
}
