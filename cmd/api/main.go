// Package main implements the profsage API server: the HTTP surface over the
// query pipeline, plus the submit-link entry point of the ingestion pipeline.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/profsage/profsage/engine/embed"
	"github.com/profsage/profsage/engine/history"
	"github.com/profsage/profsage/engine/ingest"
	"github.com/profsage/profsage/engine/rag"
	"github.com/profsage/profsage/engine/semantic"
	"github.com/profsage/profsage/pkg/groq"
	"github.com/profsage/profsage/pkg/metrics"
	"github.com/profsage/profsage/pkg/mid"
)

// Config holds all environment-based configuration.
type Config struct {
	Port          string
	QdrantURL     string
	QdrantAPIKey  string
	Collection    string
	GroqAPIKey    string
	GroqBaseURL   string
	GroqModel     string
	NATSURL       string
	MongoURL      string
	EmbedProvider string
	OllamaURL     string
	OllamaModel   string
	CORSOrigin    string
}

func loadConfig() Config {
	return Config{
		Port:          envOr("PORT", "8080"),
		QdrantURL:     os.Getenv("QDRANT_URL"),
		QdrantAPIKey:  os.Getenv("QDRANT_API_KEY"),
		Collection:    envOr("QDRANT_COLLECTION", "professors"),
		GroqAPIKey:    os.Getenv("GROQ_API_KEY"),
		GroqBaseURL:   envOr("GROQ_BASE_URL", groq.DefaultBaseURL),
		GroqModel:     envOr("GROQ_MODEL", "llama3-8b-8192"),
		NATSURL:       envOr("NATS_URL", nats.DefaultURL),
		MongoURL:      os.Getenv("MONGO_URL"),
		EmbedProvider: envOr("EMBED_PROVIDER", "null"),
		OllamaURL:     envOr("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:   envOr("OLLAMA_MODEL", "nomic-embed-text"),
		CORSOrigin:    envOr("CORS_ORIGIN", "*"),
	}
}

func (c Config) validate() error {
	if c.QdrantURL == "" {
		return errors.New("QDRANT_URL is required")
	}
	if c.GroqAPIKey == "" {
		return errors.New("GROQ_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func buildEmbedder(cfg Config) embed.Embedder {
	if cfg.EmbedProvider == "ollama" {
		return embed.NewOllama(cfg.OllamaURL, cfg.OllamaModel, embed.DefaultDimensions)
	}
	return embed.NewNull(embed.DefaultDimensions)
}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()
	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Connect to Qdrant and provision the collection ---
	vectorStore, err := semantic.New(cfg.QdrantURL, cfg.QdrantAPIKey, cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer vectorStore.Close()

	embedder := buildEmbedder(cfg)

	ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = vectorStore.EnsureCollection(ensureCtx, embedder.Dimensions())
	cancel()
	if err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}

	// --- Connect to NATS for link submission ---
	nc, err := nats.Connect(cfg.NATSURL, nats.Name("profsage-api"))
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Close()

	// --- Optional conversation store ---
	var conversations *history.Store
	if cfg.MongoURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		conversations, err = history.New(connectCtx, cfg.MongoURL, logger)
		cancel()
		if err != nil {
			return fmt.Errorf("mongo connect: %w", err)
		}
		defer conversations.Close(context.Background())
	}

	// --- Build the query pipeline ---
	completions := groq.New(cfg.GroqAPIKey, cfg.GroqBaseURL, groqOptions(cfg))
	ragSvc := rag.New(embedder, vectorStore, completions, rag.DefaultOptions(), logger)

	submit := func(ctx context.Context, url string) error {
		return ingest.Submit(ctx, nc, url)
	}

	// --- HTTP server ---
	reg := metrics.NewRegistry()
	requests := reg.Counter("http_requests_total", "Total HTTP requests served.")
	duration := reg.Histogram("http_request_duration_seconds", "HTTP request latency.", nil)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /chat", handleChat(ragSvc, conversations, logger))
	mux.HandleFunc("POST /submit-link", handleSubmitLink(submit, logger))
	mux.HandleFunc("GET /recommendations", handleRecommendations(ragSvc, logger))
	mux.HandleFunc("GET /trends", handleTrends(ragSvc, logger))
	mux.Handle("GET /metrics", reg.Handler())

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.Metrics(requests, duration),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("profsage-api"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port, "collection", cfg.Collection)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

func groqOptions(cfg Config) groq.Options {
	opts := groq.DefaultOptions()
	opts.Model = cfg.GroqModel
	return opts
}
