package services

import "errors"

// Error taxonomy shared by every service. Controllers map these to HTTP
// statuses; wrap with fmt.Errorf("...: %w", Err...) to add detail.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrExternalService = errors.New("external service failure")
)
