package errors

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid reputation request")
	ErrNotFound       = errors.New("contributor reputation not found")
)
