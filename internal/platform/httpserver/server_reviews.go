package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	reviewerrors "crowdlingo/contexts/translation-quality/review-engine/domain/errors"
	reviewhttp "crowdlingo/contexts/translation-quality/review-engine/transport/http"
)

func writeReviewError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, reviewhttp.ErrorResponse{Code: code, Message: message})
}

func writeReviewDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reviewerrors.ErrInvalidReviewInput),
		errors.Is(err, reviewerrors.ErrInvalidRatingRange):
		writeReviewError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, reviewerrors.ErrSubmissionNotFound),
		errors.Is(err, reviewerrors.ErrReviewNotFound),
		errors.Is(err, reviewerrors.ErrReputationNotFound):
		writeReviewError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, reviewerrors.ErrDuplicateReview):
		writeReviewError(w, http.StatusConflict, "duplicate_review", err.Error())
	case errors.Is(err, reviewerrors.ErrSelfReviewNotAllowed):
		writeReviewError(w, http.StatusForbidden, "self_review", err.Error())
	case errors.Is(err, reviewerrors.ErrSubmissionNotReviewable):
		writeReviewError(w, http.StatusConflict, "not_reviewable", err.Error())
	case errors.Is(err, reviewerrors.ErrResubmissionNotAllowed):
		writeReviewError(w, http.StatusConflict, "resubmission_not_allowed", err.Error())
	case errors.Is(err, reviewerrors.ErrAggregationConflict),
		errors.Is(err, reviewerrors.ErrConflict):
		writeReviewError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeReviewError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeReviewError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return userID, true
}

func (s *Server) handleRegisterSubmission(w http.ResponseWriter, r *http.Request) {
	submitterID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req reviewhttp.RegisterSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeReviewError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.reviews.Handler.RegisterSubmissionHandler(r.Context(), submitterID, req)
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	resp, err := s.reviews.Handler.GetSubmissionHandler(r.Context(), r.PathValue("submission_id"))
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResubmitSubmission(w http.ResponseWriter, r *http.Request) {
	submitterID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req reviewhttp.ResubmitSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeReviewError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.reviews.Handler.ResubmitSubmissionHandler(r.Context(), r.PathValue("submission_id"), submitterID, req)
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetConsensus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.reviews.Handler.GetConsensusHandler(r.Context(), r.PathValue("submission_id"))
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmissionReviews(w http.ResponseWriter, r *http.Request) {
	resp, err := s.reviews.Handler.SubmissionReviewsHandler(r.Context(), r.PathValue("submission_id"))
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req reviewhttp.SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeReviewError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.reviews.Handler.SubmitReviewHandler(r.Context(), reviewerID, req)
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req reviewhttp.UpdateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeReviewError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.reviews.Handler.UpdateReviewHandler(r.Context(), r.PathValue("submission_id"), reviewerID, req)
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReviewerReviews(w http.ResponseWriter, r *http.Request) {
	resp, err := s.reviews.Handler.ReviewerReviewsHandler(r.Context(), r.PathValue("reviewer_id"))
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReviewerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.reviews.Queries.GetReviewerStats(r.Context(), r.PathValue("reviewer_id"))
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reviewer_id":        stats.ReviewerID,
		"total_reviews":      stats.TotalReviews,
		"accepts":            stats.Accepts,
		"rejects":            stats.Rejects,
		"suggested_edits":    stats.SuggestedEdits,
		"agreement_votes":    stats.AgreementVotes,
		"disagreement_votes": stats.DisagreementVotes,
	})
}
