package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/profsage/profsage/engine/domain"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubQuery implements queryService for handler tests.
type stubQuery struct {
	chatReply string
	chatErr   error
	recs      []domain.ProfessorPayload
	recErr    error
	report    domain.TrendReport
	trendErr  error
}

func (s *stubQuery) Chat(context.Context, string) (string, error) { return s.chatReply, s.chatErr }
func (s *stubQuery) Recommend(context.Context, string) ([]domain.ProfessorPayload, error) {
	return s.recs, s.recErr
}
func (s *stubQuery) Trends(context.Context, string) (domain.TrendReport, error) {
	return s.report, s.trendErr
}

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	handleHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Fatalf("status field = %q", resp["status"])
	}
}

func TestChat_Success(t *testing.T) {
	svc := &stubQuery{chatReply: "Professor Hopper is a great pick for algorithms!"}
	handler := handleChat(svc, nil, discard())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat",
		bytes.NewBufferString(`{"message":"who is good at algorithms"}`))
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q", ct)
	}
	if rec.Body.String() != svc.chatReply {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestChat_NoMatchesIs404(t *testing.T) {
	svc := &stubQuery{chatErr: domain.ErrNotFound}
	handler := handleChat(svc, nil, discard())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(`{"message":"hi"}`)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No matching professor found") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestChat_InternalErrorIs500(t *testing.T) {
	svc := &stubQuery{chatErr: errors.New("qdrant exploded")}
	handler := handleChat(svc, nil, discard())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(`{"message":"hi"}`)))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "qdrant") {
		t.Fatalf("internal detail leaked: %q", rec.Body.String())
	}
}

func TestChat_BadRequests(t *testing.T) {
	handler := handleChat(&stubQuery{}, nil, discard())

	for _, body := range []string{"not json", `{"message":""}`} {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(body)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestSubmitLink_AcknowledgesImmediately(t *testing.T) {
	var submitted string
	handler := handleSubmitLink(func(_ context.Context, url string) error {
		submitted = url
		return nil
	}, discard())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submit-link",
		bytes.NewBufferString(`{"url":"https://www.ratemyprofessors.com/professor/1886810"}`))
	handler(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	if submitted != "https://www.ratemyprofessors.com/professor/1886810" {
		t.Fatalf("submitted = %q", submitted)
	}
	if !strings.Contains(rec.Body.String(), "Link processing started") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestSubmitLink_RejectsBadURL(t *testing.T) {
	handler := handleSubmitLink(func(context.Context, string) error {
		t.Fatal("submit should not run for an invalid url")
		return nil
	}, discard())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/submit-link", bytes.NewBufferString(`{"url":"not a url"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRecommendations_EmptyStoreIs404(t *testing.T) {
	svc := &stubQuery{recErr: domain.ErrNotFound}
	handler := handleRecommendations(svc, discard())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/recommendations?criteria=easy+calculus", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No recommendations found") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestRecommendations_Success(t *testing.T) {
	svc := &stubQuery{recs: []domain.ProfessorPayload{{Name: "Grace Hopper", Rating: "4.7"}}}
	handler := handleRecommendations(svc, discard())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/recommendations?criteria=compilers", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Recommendations []domain.ProfessorPayload `json:"recommendations"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Recommendations) != 1 || resp.Recommendations[0].Name != "Grace Hopper" {
		t.Fatalf("recommendations = %+v", resp.Recommendations)
	}
}

func TestRecommendations_MissingCriteria(t *testing.T) {
	handler := handleRecommendations(&stubQuery{}, discard())
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/recommendations", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTrends_UnknownProfessorIs404(t *testing.T) {
	svc := &stubQuery{trendErr: domain.ErrNotFound}
	handler := handleTrends(svc, discard())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/trends?professor_name=Nobody", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Professor not found") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestTrends_Success(t *testing.T) {
	svc := &stubQuery{report: domain.TrendReport{
		Name:           "Grace Hopper",
		RatingTrend:    domain.TrendImproving,
		SentimentTrend: domain.SentimentPositive,
	}}
	handler := handleTrends(svc, discard())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/trends?professor_name=Grace+Hopper", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp domain.TrendReport
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RatingTrend != "Improving" || resp.SentimentTrend != "Positive" {
		t.Fatalf("report = %+v", resp)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := loadConfig()
	if cfg.Port != "8080" {
		t.Errorf("port = %s, want 8080", cfg.Port)
	}
	if cfg.Collection != "professors" {
		t.Errorf("collection = %s, want professors", cfg.Collection)
	}
	if cfg.GroqModel != "llama3-8b-8192" {
		t.Errorf("model = %s", cfg.GroqModel)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{QdrantURL: "localhost:6334", GroqAPIKey: "gsk_test"}
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate = %v, want nil", err)
	}
	if err := (Config{GroqAPIKey: "gsk_test"}).validate(); err == nil {
		t.Fatal("missing QDRANT_URL should be fatal")
	}
	if err := (Config{QdrantURL: "localhost:6334"}).validate(); err == nil {
		t.Fatal("missing GROQ_API_KEY should be fatal")
	}
}
