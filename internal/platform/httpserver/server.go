package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	qualitygate "crowdlingo/contexts/translation-quality/quality-gate"
	reputationservice "crowdlingo/contexts/translation-quality/reputation-service"
	reviewengine "crowdlingo/contexts/translation-quality/review-engine"
	_ "crowdlingo/internal/platform/httpserver/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	reviews    reviewengine.Module
	quality    qualitygate.Module
	reputation reputationservice.Module
}

func New(
	reviews reviewengine.Module,
	quality qualitygate.Module,
	reputation reputationservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		reviews:    reviews,
		quality:    quality,
		reputation: reputation,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/submissions", s.handleRegisterSubmission)
	s.mux.HandleFunc("GET /v1/submissions/{submission_id}", s.handleGetSubmission)
	s.mux.HandleFunc("POST /v1/submissions/{submission_id}/resubmit", s.handleResubmitSubmission)
	s.mux.HandleFunc("GET /v1/submissions/{submission_id}/consensus", s.handleGetConsensus)
	s.mux.HandleFunc("GET /v1/submissions/{submission_id}/reviews", s.handleSubmissionReviews)
	s.mux.HandleFunc("POST /v1/reviews", s.handleSubmitReview)
	s.mux.HandleFunc("PUT /v1/submissions/{submission_id}/review", s.handleUpdateReview)
	s.mux.HandleFunc("GET /v1/reviewers/{reviewer_id}/reviews", s.handleReviewerReviews)
	s.mux.HandleFunc("GET /v1/reviewers/{reviewer_id}/stats", s.handleReviewerStats)

	s.mux.HandleFunc("PUT /v1/quality/submissions/{submission_id}/signals", s.handleRecordSignals)
	s.mux.HandleFunc("POST /v1/quality/submissions/{submission_id}/evaluate", s.handleEvaluateQuality)
	s.mux.HandleFunc("GET /v1/quality/submissions/{submission_id}", s.handleGetQualityRecord)
	s.mux.HandleFunc("GET /v1/quality/pairs", s.handleListPairs)
	s.mux.HandleFunc("GET /v1/quality/pairs/{pair_id}", s.handleGetPair)
	s.mux.HandleFunc("POST /v1/quality/exports", s.handleExportBatch)
	s.mux.HandleFunc("GET /v1/quality/corpus/stats", s.handleCorpusStats)

	s.mux.HandleFunc("GET /v1/reputation/users/{user_id}", s.handleGetContributorProfile)
	s.mux.HandleFunc("GET /v1/reputation/leaderboard", s.handleReputationLeaderboard)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
