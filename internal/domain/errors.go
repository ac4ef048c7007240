package domain

import "errors"

// Error categories of the profile engine. Wrap with fmt.Errorf("...: %w")
// and check with errors.Is.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrStorage     = errors.New("resume storage failed")
	ErrPersistence = errors.New("persistence failed")
)
