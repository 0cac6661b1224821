// Package statestore persists window geometry and the last open-note set
// as small JSON documents.
package statestore

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/stickies/internal/models"
)

// Document file names inside the state directory.
const (
	GeometryFile = "note-window-state.json"
	SessionFile  = "last-session.json"
)

// GeometryStore keeps one shared document mapping canonical note paths to
// window bounds. Every mutation is a full read-modify-write; callers are
// expected to serialize writes.
type GeometryStore struct {
	path   string
	logger *slog.Logger
}

// NewGeometryStore returns a store backed by the document at path.
func NewGeometryStore(path string, logger *slog.Logger) *GeometryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &GeometryStore{path: path, logger: logger}
}

// load returns the current document. Absent or malformed documents
// yield an empty map.
func (s *GeometryStore) load() (map[string]models.Bounds, error) {
	doc := map[string]models.Bounds{}
	if err := readJSON(s.path, &doc); err != nil {
		if errors.Is(err, errMalformed) {
			s.logger.Warn("statestore: geometry document unreadable, using empty",
				slog.String("error", err.Error()))
			return map[string]models.Bounds{}, nil
		}
		return nil, fmt.Errorf("statestore: read geometry: %w", err)
	}
	if doc == nil {
		doc = map[string]models.Bounds{}
	}
	return doc, nil
}

// Lookup returns the bounds saved for notePath.
func (s *GeometryStore) Lookup(notePath string) (models.Bounds, bool, error) {
	doc, err := s.load()
	if err != nil {
		return models.Bounds{}, false, err
	}
	b, ok := doc[notePath]
	return b, ok, nil
}

// Save records bounds for notePath.
func (s *GeometryStore) Save(notePath string, b models.Bounds) error {
	doc, err := s.load()
	if err != nil {
		return err
	}
	doc[notePath] = b
	if err := writeJSON(s.path, doc); err != nil {
		return fmt.Errorf("statestore: write geometry: %w", err)
	}
	return nil
}

// Delete removes the record for notePath. Removing an absent record
// does not rewrite the document.
func (s *GeometryStore) Delete(notePath string) error {
	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc[notePath]; !ok {
		return nil
	}
	delete(doc, notePath)
	if err := writeJSON(s.path, doc); err != nil {
		return fmt.Errorf("statestore: write geometry: %w", err)
	}
	return nil
}
