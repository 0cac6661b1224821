package statestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/starford/stickies/internal/storage"
)

// errMalformed marks a document that exists but does not decode.
var errMalformed = errors.New("malformed document")

// readJSON decodes path into v. A missing file leaves v untouched and
// returns nil; an empty or undecodable file returns errMalformed.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("%s: empty file: %w", path, errMalformed)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %v: %w", path, err, errMalformed)
	}
	return nil
}

// writeJSON replaces the document at path with v, indented by two spaces.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: encode: %w", path, err)
	}
	return storage.WriteFileAtomic(path, append(data, '\n'))
}
