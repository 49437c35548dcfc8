package repository

import "errors"

var (
	// ErrNotFound is returned when no record matches a lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a record with the same email already exists.
	ErrDuplicate = errors.New("record already exists")
)
