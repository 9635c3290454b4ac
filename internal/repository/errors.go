package repository

import "errors"

var (
	// ErrValidation reports a missing required field.
	ErrValidation = errors.New("validation error")
	// ErrConflict reports a duplicate unique key (username, task title).
	ErrConflict = errors.New("conflict")
	// ErrNotFound reports a missing id, or an empty task list.
	ErrNotFound = errors.New("not found")
)
