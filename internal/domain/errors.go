package domain

import "errors"

// Error kinds recognized by the HTTP layer. Services wrap these with
// context via fmt.Errorf("...: %w", ...); handlers match with errors.Is
// and map each kind to a status code. Anything else is a 500.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("already exists")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)
