package library

import "errors"

// Domain error kinds. Callers branch with errors.Is; the dispatcher only
// forwards the text, so wrapped messages stay human-readable.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidState       = errors.New("invalid state")
	ErrUnavailable        = errors.New("no copies available")
	ErrValidation         = errors.New("invalid data")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
