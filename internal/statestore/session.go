package statestore

import (
	"errors"
	"fmt"
	"log/slog"
)

// SessionStore keeps the list of notes that were open at last snapshot.
type SessionStore struct {
	path   string
	logger *slog.Logger
}

// NewSessionStore returns a store backed by the document at path.
func NewSessionStore(path string, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{path: path, logger: logger}
}

// Load returns the saved paths. A missing or malformed document yields an
// empty list and no error.
func (s *SessionStore) Load() ([]string, error) {
	var paths []string
	if err := readJSON(s.path, &paths); err != nil {
		if errors.Is(err, errMalformed) {
			s.logger.Warn("statestore: session document unreadable, using empty",
				slog.String("error", err.Error()))
			return nil, nil
		}
		return nil, fmt.Errorf("statestore: read session: %w", err)
	}
	return paths, nil
}

// Save overwrites the document with paths.
func (s *SessionStore) Save(paths []string) error {
	if paths == nil {
		paths = []string{}
	}
	if err := writeJSON(s.path, paths); err != nil {
		return fmt.Errorf("statestore: write session: %w", err)
	}
	return nil
}
