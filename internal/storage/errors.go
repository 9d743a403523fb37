// Package storage holds the bookmark record types and the in-process
// backends: a mutex-guarded memory store and a file-backed store built on it.
package storage

import "errors"

// ErrNotFound is returned when no record matches the lookup.
var ErrNotFound = errors.New("not found")
