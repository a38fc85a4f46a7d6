// Package repository implements the data access layer over MySQL. Sentinel
// errors declared here are shared across repositories so handlers can map
// failure scenarios to HTTP statuses without string matching.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a referenced row does not exist. Handlers
// translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an operation cannot proceed because of
// existing state (duplicate identifier, full class, exhausted quota).
// Handlers translate it into HTTP 400 with the specific message.
var ErrConflict = errors.New("conflict")

// duplicateKey reports whether a MySQL error is a unique-index violation.
func duplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
