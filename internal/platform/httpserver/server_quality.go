package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	httpadapter "crowdlingo/contexts/translation-quality/quality-gate/adapters/http"
	qualityerrors "crowdlingo/contexts/translation-quality/quality-gate/domain/errors"
	qualityhttp "crowdlingo/contexts/translation-quality/quality-gate/transport/http"
)

func writeQualityError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, qualityhttp.ErrorResponse{Code: code, Message: message})
}

func writeQualityDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, qualityerrors.ErrInvalidQualityInput):
		writeQualityError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, qualityerrors.ErrSubmissionNotFound),
		errors.Is(err, qualityerrors.ErrQualityRecordNotFound),
		errors.Is(err, qualityerrors.ErrPairNotFound),
		errors.Is(err, qualityerrors.ErrSignalsNotFound):
		writeQualityError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, qualityerrors.ErrConflict):
		writeQualityError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeQualityError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleRecordSignals(w http.ResponseWriter, r *http.Request) {
	var req qualityhttp.RecordSignalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeQualityError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.ContributorID) == "" {
		req.ContributorID = strings.TrimSpace(r.Header.Get("X-User-Id"))
	}
	if err := s.quality.Handler.RecordSignalsHandler(r.Context(), r.PathValue("submission_id"), req); err != nil {
		writeQualityDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEvaluateQuality(w http.ResponseWriter, r *http.Request) {
	resp, err := s.quality.Handler.EvaluateQualityHandler(r.Context(), r.PathValue("submission_id"))
	if err != nil {
		writeQualityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetQualityRecord(w http.ResponseWriter, r *http.Request) {
	resp, err := s.quality.Handler.GetQualityRecordHandler(r.Context(), r.PathValue("submission_id"))
	if err != nil {
		writeQualityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPair(w http.ResponseWriter, r *http.Request) {
	resp, err := s.quality.Handler.GetPairHandler(r.Context(), r.PathValue("pair_id"))
	if err != nil {
		writeQualityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListPairs(w http.ResponseWriter, r *http.Request) {
	query, ok := decodePairListQuery(w, r)
	if !ok {
		return
	}
	resp, err := s.quality.Handler.ListPairsHandler(r.Context(), query)
	if err != nil {
		writeQualityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExportBatch(w http.ResponseWriter, r *http.Request) {
	query, ok := decodePairListQuery(w, r)
	if !ok {
		return
	}
	resp, err := s.quality.Handler.ExportBatchHandler(r.Context(), query)
	if err != nil {
		writeQualityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCorpusStats(w http.ResponseWriter, r *http.Request) {
	resp, err := s.quality.Handler.GetCorpusStatsHandler(r.Context())
	if err != nil {
		writeQualityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodePairListQuery(w http.ResponseWriter, r *http.Request) (httpadapter.PairListQuery, bool) {
	values := r.URL.Query()
	query := httpadapter.PairListQuery{
		SourceLanguage: values.Get("source_language"),
		TargetLanguage: values.Get("target_language"),
		Domain:         values.Get("domain"),
		OnlyExportable: values.Get("exportable") == "true",
	}
	if limitRaw := values.Get("limit"); limitRaw != "" {
		limit, err := strconv.Atoi(limitRaw)
		if err != nil || limit < 0 {
			writeQualityError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return httpadapter.PairListQuery{}, false
		}
		query.Limit = limit
	}
	return query, true
}
