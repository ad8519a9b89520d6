package httpserver

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	qualitygate "crowdlingo/contexts/translation-quality/quality-gate"
	reputationservice "crowdlingo/contexts/translation-quality/reputation-service"
	reviewengine "crowdlingo/contexts/translation-quality/review-engine"
)

func newTestServer() *Server {
	return New(
		reviewengine.NewInMemoryModule(nil, slog.Default()),
		qualitygate.NewInMemoryModule(slog.Default()),
		reputationservice.NewInMemoryModule(slog.Default()),
		slog.Default(),
		":0",
	)
}

func registerTestSubmission(t *testing.T, server *Server, submitterID string) string {
	t.Helper()
	body := []byte(`{"submission_id":"sub_http_1","source_text":"The clinic opens at dawn.","target_text":"Kliniki hufunguliwa alfajiri.","source_language":"en","target_language":"sw","domain":"healthcare"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/submissions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", submitterID)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	submissionID, ok := payload["submission_id"].(string)
	if !ok || submissionID == "" {
		t.Fatalf("expected submission_id, got %#v", payload["submission_id"])
	}
	return submissionID
}

func TestRegisterSubmissionRequiresUser(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"submission_id":"sub_http_2","source_text":"hello","target_text":"habari","source_language":"en","target_language":"sw"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/submissions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestRegisterSubmissionReturnsCreatedSubmission(t *testing.T) {
	server := newTestServer()
	submissionID := registerTestSubmission(t, server, "user_submitter")

	req := httptest.NewRequest(http.MethodGet, "/v1/submissions/"+submissionID, nil)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	if payload["submitter_id"] != "user_submitter" {
		t.Fatalf("expected submitter user_submitter, got %#v", payload["submitter_id"])
	}
	if payload["status"] != "submitted" {
		t.Fatalf("expected submitted status, got %#v", payload["status"])
	}
}

func TestSubmitReviewRequiresUser(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"submission_id":"sub-1","action":"accept","quality_rating":4}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/reviews", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSubmitReviewForbidsSelfReview(t *testing.T) {
	server := newTestServer()
	submissionID := registerTestSubmission(t, server, "user_submitter")

	body := []byte(`{"submission_id":"` + submissionID + `","action":"accept","quality_rating":5}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/reviews", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "user_submitter")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSubmitReviewRejectsDuplicateReviewer(t *testing.T) {
	server := newTestServer()
	submissionID := registerTestSubmission(t, server, "user_submitter")

	body := []byte(`{"submission_id":"` + submissionID + `","action":"accept","quality_rating":4}`)
	first := httptest.NewRequest(http.MethodPost, "/v1/reviews", bytes.NewReader(body))
	first.Header.Set("Content-Type", "application/json")
	first.Header.Set("X-User-Id", "user_reviewer")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, first)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	second := httptest.NewRequest(http.MethodPost, "/v1/reviews", bytes.NewReader(body))
	second.Header.Set("Content-Type", "application/json")
	second.Header.Set("X-User-Id", "user_reviewer")
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, second)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSubmitReviewRejectsInvalidAction(t *testing.T) {
	server := newTestServer()
	submissionID := registerTestSubmission(t, server, "user_submitter")

	body := []byte(`{"submission_id":"` + submissionID + `","action":"veto"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/reviews", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "user_reviewer")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGetConsensusForUnknownSubmission(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/submissions/sub_missing/consensus", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestReviewerStatsReflectSubmittedReviews(t *testing.T) {
	server := newTestServer()
	submissionID := registerTestSubmission(t, server, "user_submitter")

	body := []byte(`{"submission_id":"` + submissionID + `","action":"reject","feedback":"meaning inverted"}`)
	review := httptest.NewRequest(http.MethodPost, "/v1/reviews", bytes.NewReader(body))
	review.Header.Set("Content-Type", "application/json")
	review.Header.Set("X-User-Id", "user_reviewer")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, review)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	stats := httptest.NewRequest(http.MethodGet, "/v1/reviewers/user_reviewer/stats", nil)
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, stats)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	if payload["total_reviews"] != float64(1) {
		t.Fatalf("expected 1 total review, got %#v", payload["total_reviews"])
	}
	if payload["rejects"] != float64(1) {
		t.Fatalf("expected 1 reject, got %#v", payload["rejects"])
	}
}
