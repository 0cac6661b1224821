package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrAlreadyOpen   = errors.New("already open")
	ErrClosed        = errors.New("closed")
)
