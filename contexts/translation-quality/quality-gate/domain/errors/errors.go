package errors

import "errors"

var (
	ErrInvalidQualityInput   = errors.New("invalid quality gate input")
	ErrQualityRecordNotFound = errors.New("quality record not found")
	ErrPairNotFound          = errors.New("validated pair not found")
	ErrSubmissionNotFound    = errors.New("submission not found")
	ErrSignalsNotFound       = errors.New("quality signals not found")
	ErrConflict              = errors.New("conflicting quality gate state")
)
