// Package main implements the profsage ingestion worker. It consumes
// submitted links from NATS and runs each one through the scrape-to-store
// pipeline.
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
	"github.com/profsage/profsage/engine/ingest"
	"github.com/profsage/profsage/engine/scraper"
	"github.com/profsage/profsage/engine/semantic"
	"github.com/profsage/profsage/engine/sentiment"
	"github.com/profsage/profsage/pkg/metrics"
	"github.com/profsage/profsage/pkg/resilience"
)

// Config holds all environment-based configuration.
type Config struct {
	QdrantURL     string
	QdrantAPIKey  string
	Collection    string
	NATSURL       string
	EmbedProvider string
	OllamaURL     string
	OllamaModel   string
	MetricsPort   string
}

func loadConfig() Config {
	return Config{
		QdrantURL:     os.Getenv("QDRANT_URL"),
		QdrantAPIKey:  os.Getenv("QDRANT_API_KEY"),
		Collection:    envOr("QDRANT_COLLECTION", "professors"),
		NATSURL:       envOr("NATS_URL", nats.DefaultURL),
		EmbedProvider: envOr("EMBED_PROVIDER", "null"),
		OllamaURL:     envOr("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:   envOr("OLLAMA_MODEL", "nomic-embed-text"),
		MetricsPort:   envOr("METRICS_PORT", "9090"),
	}
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
		logger.Error("worker exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	if cfg.QdrantURL == "" {
		return errors.New("QDRANT_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	nc, err := nats.Connect(cfg.NATSURL, nats.Name("profsage-ingest"))
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Close()

	reg := metrics.NewRegistry()
	deps := ingest.Deps{
		Scraper:  scraper.New(logger),
		Scorer:   sentiment.New(),
		Embedder: embedder,
		Store:    vectorStore,
		Breaker:  resilience.NewBreaker(resilience.BreakerOpts{}),
		Logger:   logger,
		Success:  reg.Counter("ingest_success_total", "Professor records stored."),
		Failure:  reg.Counter("ingest_failure_total", "Ingestion tasks dropped after failure."),
	}

	sub, err := ingest.Run(nc, deps)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", ingest.Subject, err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	// Observability sidecar endpoint.
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", reg.Handler())
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	srv := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("ingest worker started", "subject", ingest.Subject, "metrics_port", cfg.MetricsPort)
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
