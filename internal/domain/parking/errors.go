package parking

import "errors"

// Error kinds surfaced to callers. Services wrap these with context via
// fmt.Errorf("%w: ..."); the HTTP layer maps them with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage failure")
)
