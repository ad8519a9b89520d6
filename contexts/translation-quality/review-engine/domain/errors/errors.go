package errors

import "errors"

var (
	ErrInvalidReviewInput      = errors.New("invalid review input")
	ErrInvalidRatingRange      = errors.New("quality rating must be between 1 and 5")
	ErrDuplicateReview         = errors.New("reviewer already reviewed this submission")
	ErrSelfReviewNotAllowed    = errors.New("reviewers cannot review their own submission")
	ErrSubmissionNotReviewable = errors.New("submission is not in a reviewable state")
	ErrReviewNotFound          = errors.New("review not found")
	ErrSubmissionNotFound      = errors.New("submission not found")
	ErrReputationNotFound      = errors.New("reputation record not found")
	ErrResubmissionNotAllowed  = errors.New("submission is not awaiting revision")
	ErrAggregationConflict     = errors.New("concurrent aggregate update detected")
	ErrInvariantViolation      = errors.New("stored aggregate diverged from review set")
	ErrConflict                = errors.New("review engine conflict")
)
