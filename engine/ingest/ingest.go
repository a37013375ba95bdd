// Package ingest turns one submitted URL into one stored professor record:
// fetch the page, parse the profile, score its reviews, embed the name, and
// upsert into the vector store.
//
// Tasks arrive over core NATS, so delivery is fire and forget: a failed task
// is logged and dropped, never retried, and the submitter is never told.
// Two concurrent submissions of the same URL produce two records with
// distinct ids; deduplication is out of scope.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/profsage/profsage/engine/domain"
	"github.com/profsage/profsage/engine/embed"
	"github.com/profsage/profsage/engine/sentiment"
	"github.com/profsage/profsage/pkg/fn"
	"github.com/profsage/profsage/pkg/metrics"
	"github.com/profsage/profsage/pkg/natsutil"
	"github.com/profsage/profsage/pkg/resilience"
)

// Subject is the NATS subject for submitted links.
const Subject = "ingest.profile"

// taskTimeout bounds one pipeline run, fetch through upsert.
const taskTimeout = 60 * time.Second

// Task is one submitted link awaiting ingestion.
type Task struct {
	URL         string    `json:"url"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Scraper fetches and parses a review page.
type Scraper interface {
	Scrape(ctx context.Context, url string) (domain.ScrapedProfile, error)
}

// Scorer computes a compound sentiment score for one review text.
type Scorer interface {
	Score(text string) float64
}

// Upserter stores a professor record keyed by its id.
type Upserter interface {
	Upsert(ctx context.Context, rec domain.ProfessorRecord) error
}

// Deps holds the pipeline's collaborators. Success and Failure counters and
// the Breaker are optional.
type Deps struct {
	Scraper  Scraper
	Scorer   Scorer
	Embedder embed.Embedder
	Store    Upserter
	Breaker  *resilience.Breaker
	Logger   *slog.Logger
	Success  *metrics.Counter
	Failure  *metrics.Counter
}

// scoredProfile is a scraped profile with its aggregated review sentiment.
type scoredProfile struct {
	domain.ScrapedProfile
	avgSentiment float64
}

// NewPipeline composes the stages Fetched → Parsed → Embedded → Stored.
// The fetch stage aborts the whole run on network failure, so nothing is
// stored for an unreachable page. When a Breaker is set it guards the fetch,
// failing queued tasks fast while the upstream site is down.
func NewPipeline(d Deps) fn.Stage[Task, domain.ProfessorRecord] {
	fetch := fn.Traced("ingest.fetch", fn.Stage[Task, domain.ScrapedProfile](
		func(ctx context.Context, t Task) fn.Result[domain.ScrapedProfile] {
			return fn.FromPair(d.Scraper.Scrape(ctx, t.URL))
		}))
	if d.Breaker != nil {
		fetch = resilience.BreakerStage(d.Breaker, fetch)
	}

	score := fn.Traced("ingest.score", fn.Stage[domain.ScrapedProfile, scoredProfile](
		func(_ context.Context, p domain.ScrapedProfile) fn.Result[scoredProfile] {
			scores := make([]float64, len(p.Reviews))
			for i, review := range p.Reviews {
				scores[i] = d.Scorer.Score(review)
			}
			return fn.Ok(scoredProfile{ScrapedProfile: p, avgSentiment: sentiment.Average(scores)})
		}))

	compose := fn.Traced("ingest.embed", fn.Stage[scoredProfile, domain.ProfessorRecord](
		func(ctx context.Context, p scoredProfile) fn.Result[domain.ProfessorRecord] {
			vec, err := d.Embedder.Embed(ctx, p.Name)
			if err != nil {
				return fn.Errf[domain.ProfessorRecord]("embed %q: %w", p.Name, err)
			}
			return fn.Ok(domain.ProfessorRecord{
				ID:        uuid.NewString(),
				Embedding: vec,
				Professor: domain.ProfessorPayload{
					Name:         p.Name,
					Rating:       p.Rating,
					Reviews:      p.Reviews,
					AvgSentiment: p.avgSentiment,
					SourceURL:    p.URL,
					ScrapedAt:    p.ScrapedAt.Format(time.RFC3339),
				},
			})
		}))

	store := fn.Traced("ingest.store", fn.Stage[domain.ProfessorRecord, domain.ProfessorRecord](
		func(ctx context.Context, rec domain.ProfessorRecord) fn.Result[domain.ProfessorRecord] {
			if err := d.Store.Upsert(ctx, rec); err != nil {
				return fn.Err[domain.ProfessorRecord](fmt.Errorf("store %s: %w", rec.ID, err))
			}
			return fn.Ok(rec)
		}))

	return fn.Then(fn.Then(fn.Then(fetch, score), compose), store)
}

// Submit publishes one link to the ingestion subject. The caller gets an
// error only when the publish itself fails; ingestion outcomes are invisible
// to the submitter.
func Submit(ctx context.Context, nc *nats.Conn, url string) error {
	return natsutil.Publish(ctx, nc, Subject, Task{URL: url, SubmittedAt: time.Now().UTC()})
}

// Run subscribes to the ingestion subject and processes each task once.
func Run(nc *nats.Conn, d Deps) (*nats.Subscription, error) {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	pipeline := NewPipeline(d)

	return natsutil.Subscribe(nc, Subject, func(ctx context.Context, task Task) {
		ctx, cancel := context.WithTimeout(ctx, taskTimeout)
		defer cancel()

		rec, err := pipeline(ctx, task).Unwrap()
		if err != nil {
			log.Error("ingest: task failed", "url", task.URL, "err", err)
			if d.Failure != nil {
				d.Failure.Inc()
			}
			return
		}
		log.Info("ingest: stored professor",
			"id", rec.ID,
			"name", rec.Professor.Name,
			"reviews", len(rec.Professor.Reviews),
		)
		if d.Success != nil {
			d.Success.Inc()
		}
	})
}
