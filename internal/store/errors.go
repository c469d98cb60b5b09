package store

import "errors"

// Sentinel errors returned by store operations. Callers match them with
// errors.Is; the HTTP surface maps each kind to a status code and the
// command interpreter flattens them to text at its outer boundary.
var (
	ErrNotFound        = errors.New("file not found")
	ErrNotADirectory   = errors.New("not a directory")
	ErrAlreadyExists   = errors.New("destination file already exists")
	ErrTooLarge        = errors.New("file exceeds size limit")
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")
	ErrPathEscape      = errors.New("path escapes uploads directory")
)
