package httpserver

import (
	"errors"
	"net/http"
	"strings"

	reputationerrors "crowdlingo/contexts/translation-quality/reputation-service/domain/errors"
	reputationhttp "crowdlingo/contexts/translation-quality/reputation-service/transport/http"
)

func writeReputationError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, reputationhttp.ErrorResponse{Code: code, Message: message})
}

func writeReputationDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reputationerrors.ErrInvalidRequest):
		writeReputationError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, reputationerrors.ErrNotFound):
		writeReputationError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writeReputationError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleGetContributorProfile(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.PathValue("user_id"))
	if userID == "" {
		writeReputationError(w, http.StatusBadRequest, "invalid_request", "user_id is required")
		return
	}
	resp, err := s.reputation.Handler.GetContributorProfileHandler(r.Context(), userID)
	if err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReputationLeaderboard(w http.ResponseWriter, r *http.Request) {
	req := reputationhttp.LeaderboardRequest{
		Rank:   r.URL.Query().Get("rank"),
		Limit:  r.URL.Query().Get("limit"),
		Offset: r.URL.Query().Get("offset"),
	}
	resp, err := s.reputation.Handler.GetLeaderboardHandler(
		r.Context(),
		req,
		strings.TrimSpace(r.Header.Get("X-User-Id")),
	)
	if err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
