package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestContributorProfileReturnsSeededUser(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/reputation/users/user_linguist", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	if payload["user_id"] != "user_linguist" {
		t.Fatalf("expected user_linguist, got %#v", payload["user_id"])
	}
	if payload["rank"] != "grandmaster" {
		t.Fatalf("expected grandmaster rank, got %#v", payload["rank"])
	}
}

func TestContributorProfileForUnknownUser(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/reputation/users/user_ghost", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestLeaderboardRejectsInvalidRank(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/reputation/leaderboard?rank=diamond", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestLeaderboardRejectsInvalidLimit(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/reputation/leaderboard?limit=many", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestLeaderboardReturnsRankedEntries(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/reputation/leaderboard?limit=2", nil)
	req.Header.Set("X-User-Id", "user_reviewer")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	entries, ok := payload["leaderboard"].([]any)
	if !ok {
		t.Fatalf("expected leaderboard array, got %#v", payload["leaderboard"])
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	top, ok := entries[0].(map[string]any)
	if !ok {
		t.Fatalf("expected entry object, got %#v", entries[0])
	}
	if top["user_id"] != "user_linguist" {
		t.Fatalf("expected user_linguist on top, got %#v", top["user_id"])
	}
	if top["position"] != float64(1) {
		t.Fatalf("expected position 1, got %#v", top["position"])
	}
	if payload["your_position"] != float64(3) {
		t.Fatalf("expected viewer position 3, got %#v", payload["your_position"])
	}
}
