package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken       = errors.New("INVALID_TOKEN")
	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
	ErrAccountInactive    = errors.New("ACCOUNT_INACTIVE")
	ErrImportInProgress   = errors.New("IMPORT_IN_PROGRESS")
	ErrTooManyRows        = errors.New("TOO_MANY_ROWS")
)
