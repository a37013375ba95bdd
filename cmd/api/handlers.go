package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/profsage/profsage/engine/domain"
	"github.com/profsage/profsage/engine/history"
)

// queryService is the slice of the query pipeline the handlers need.
type queryService interface {
	Chat(ctx context.Context, message string) (string, error)
	Recommend(ctx context.Context, criteria string) ([]domain.ProfessorPayload, error)
	Trends(ctx context.Context, name string) (domain.TrendReport, error)
}

// linkSubmitter queues one URL for background ingestion.
type linkSubmitter func(ctx context.Context, url string) error

const submitAck = "Link processing started. Data will be stored shortly."

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ChatRequest is the JSON body for POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
}

func handleChat(svc queryService, conversations *history.Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Message == "" {
			writeError(w, http.StatusBadRequest, "message is required")
			return
		}

		reply, err := svc.Chat(r.Context(), req.Message)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "No matching professor found")
				return
			}
			logger.Error("chat failed", "err", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(reply))

		conversations.AppendAsync(req.UserID, history.Entry{
			Message: req.Message,
			Reply:   reply,
			At:      time.Now().UTC(),
		})
	}
}

// LinkRequest is the JSON body for POST /submit-link.
type LinkRequest struct {
	URL string `json:"url"`
}

func handleSubmitLink(submit linkSubmitter, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LinkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := domain.ValidateURL(req.URL); err != nil {
			writeError(w, http.StatusBadRequest, "invalid url")
			return
		}

		// Acknowledged before ingestion runs; the task outcome is never
		// reported back to this caller.
		if err := submit(r.Context(), req.URL); err != nil {
			logger.Error("submit link failed", "url", req.URL, "err", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"message": submitAck})
	}
}

func handleRecommendations(svc queryService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		criteria := r.URL.Query().Get("criteria")
		if criteria == "" {
			writeError(w, http.StatusBadRequest, "criteria is required")
			return
		}

		recs, err := svc.Recommend(r.Context(), criteria)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "No recommendations found")
				return
			}
			logger.Error("recommendations failed", "err", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"recommendations": recs})
	}
}

func handleTrends(svc queryService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("professor_name")
		if name == "" {
			writeError(w, http.StatusBadRequest, "professor_name is required")
			return
		}

		report, err := svc.Trends(r.Context(), name)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Professor not found")
				return
			}
			logger.Error("trends failed", "name", name, "err", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
