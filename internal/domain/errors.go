package domain

import "fmt"

// ErrNotFound is returned when a requested document, file or user does not exist.
var ErrNotFound = fmt.Errorf("not found")

// ErrConflict is returned when a unique constraint is violated.
var ErrConflict = fmt.Errorf("conflict")

// ErrInvalidDocument is returned when a stored record does not have the
// shape its collection requires.
var ErrInvalidDocument = fmt.Errorf("invalid document")
