// Package rag orchestrates the retrieval-augmented query pipeline: embed the
// input, search the professor collection, and (for chat) hand the retrieved
// payloads to the completion API.
package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/profsage/profsage/engine/domain"
	"github.com/profsage/profsage/engine/embed"
	"github.com/profsage/profsage/engine/semantic"
)

// Searcher abstracts vector similarity search.
type Searcher interface {
	SearchFiltered(ctx context.Context, embedding []float32, limit int, filters map[string]string) ([]semantic.SearchResult, error)
}

// Completer abstracts the chat-completion API.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Options configures the query pipeline.
type Options struct {
	ChatTopK      int
	RecommendTopK int
	SystemPrompt  string
	SearchTimeout time.Duration
}

// DefaultOptions returns the pipeline defaults.
func DefaultOptions() Options {
	return Options{
		ChatTopK:      5,
		RecommendTopK: 10,
		SystemPrompt:  systemPrompt,
		SearchTimeout: 5 * time.Second,
	}
}

const systemPrompt = "You are a helpful AI assistant for Rate My Professor."

const promptTemplate = "Based on the following professor information, provide a helpful response " +
	"to the user's query in Markdown format. Keep the conversation casual and friendly so the " +
	"user feels comfortable: '%s'\n\nProfessor Info: %s"

// Service runs the query pipeline.
type Service struct {
	embed    embed.Embedder
	search   Searcher
	complete Completer
	opts     Options
	logger   *slog.Logger
}

// New creates a Service.
func New(embedder embed.Embedder, search Searcher, complete Completer, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		embed:    embedder,
		search:   search,
		complete: complete,
		opts:     opts,
		logger:   logger,
	}
}

// Chat answers a user message conversationally. The retrieved payloads are
// compiled into the prompt and the (streamed) completion is fully drained
// before the reply is returned. Zero search hits yield domain.ErrNotFound.
func (s *Service) Chat(ctx context.Context, message string) (string, error) {
	results, err := s.retrieve(ctx, message, s.opts.ChatTopK, nil)
	if err != nil {
		return "", fmt.Errorf("rag: chat: %w", err)
	}
	if len(results) == 0 {
		return "", fmt.Errorf("rag: chat: %w", domain.ErrNotFound)
	}

	prompt := fmt.Sprintf(promptTemplate, message, compileInfo(results))
	reply, err := s.complete.Complete(ctx, s.opts.SystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("rag: chat completion: %w", err)
	}
	s.logger.Info("chat reply generated", "results", len(results), "reply_len", len(reply))
	return reply, nil
}

// Recommend returns the raw top-k payloads for free-form criteria. Zero hits
// yield domain.ErrNotFound.
func (s *Service) Recommend(ctx context.Context, criteria string) ([]domain.ProfessorPayload, error) {
	results, err := s.retrieve(ctx, criteria, s.opts.RecommendTopK, nil)
	if err != nil {
		return nil, fmt.Errorf("rag: recommend: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("rag: recommend: %w", domain.ErrNotFound)
	}

	payloads := make([]domain.ProfessorPayload, len(results))
	for i, r := range results {
		payloads[i] = r.Professor
	}
	return payloads, nil
}

// Trends looks a professor up by exact name and classifies the first match.
func (s *Service) Trends(ctx context.Context, name string) (domain.TrendReport, error) {
	results, err := s.retrieve(ctx, name, s.opts.RecommendTopK, map[string]string{"name": name})
	if err != nil {
		return domain.TrendReport{}, fmt.Errorf("rag: trends: %w", err)
	}
	if len(results) == 0 {
		return domain.TrendReport{}, fmt.Errorf("rag: trends %q: %w", name, domain.ErrNotFound)
	}
	return domain.Trends(results[0].Professor), nil
}

// retrieve embeds the text and searches the collection.
func (s *Service) retrieve(ctx context.Context, text string, limit int, filters map[string]string) ([]semantic.SearchResult, error) {
	vec, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.opts.SearchTimeout)
	defer cancel()
	return s.search.SearchFiltered(searchCtx, vec, limit, filters)
}

// compileInfo serializes retrieved payloads as one JSON document per line
// pair, matching what the prompt template expects.
func compileInfo(results []semantic.SearchResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		data, err := json.Marshal(r.Professor)
		if err != nil {
			parts[i] = r.Professor.Name
			continue
		}
		parts[i] = string(data)
	}
	return strings.Join(parts, "\n\n")
}
