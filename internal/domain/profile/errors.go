package profile

import "errors"

// Sentinel errors returned by store operations. Callers match with
// errors.Is to pick the right API status code.
var (
	ErrInvalidName   = errors.New("profile name is empty after normalization")
	ErrDuplicateName = errors.New("profile name already in use")
	ErrNotFound      = errors.New("profile not found")
)
