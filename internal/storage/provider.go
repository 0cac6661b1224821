// Package storage defines the notes-directory file-system abstraction.
package storage

import "time"

// Entry is one note file found by List.
type Entry struct {
	Name    string    // file name relative to the notes directory
	Path    string    // absolute path
	Content []byte    // raw bytes
	ModTime time.Time // last modification time
}

// Provider is the interface for note file operations. Names are relative
// to the notes directory root.
type Provider interface {
	// Root returns the absolute notes directory.
	Root() string
	// List returns every .md file directly inside the root (non-recursive).
	List() ([]Entry, error)
	// Read returns the raw bytes of the file.
	Read(name string) ([]byte, error)
	// Write atomically replaces the file content.
	Write(name string, content []byte) error
	// Create writes a new file and fails with apperr.ErrAlreadyExists if it exists.
	Create(name string, content []byte) error
	// Delete removes the file. A missing file is not an error.
	Delete(name string) error
	// Stat returns the modification time, or an error wrapping os.ErrNotExist.
	Stat(name string) (time.Time, error)
}
