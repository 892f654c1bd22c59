package repository

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint (email, question text, or the (user, question)
	// attempt guard).
	ErrDuplicate = errors.New("duplicate")
)
