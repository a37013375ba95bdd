// Package scraper fetches professor review pages and extracts structured
// fields from their markup.
//
// Extraction is selector-based and brittle by design: the page's CSS-module
// class names carry generated suffixes, so selectors match on the stable
// prefix. A selector that matches nothing degrades to a default value;
// only the network fetch itself can fail a scrape.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/profsage/profsage/engine/domain"
)

const (
	fetchTimeout = 10 * time.Second
	userAgent    = "profsage-scraper/1.0 (professor review data collection)"
)

// Review page selectors, matched on stable class-name prefixes.
const (
	selFirstName = `div[class*="NameTitle__Name-"]`
	selLastName  = `div[class*="NameTitle__LastNameWrapper-"]`
	selRating    = `div[class*="RatingValue__Numerator-"]`
	selReviews   = `div[class*="Comments__StyledComments-"]`
)

// Scraper fetches and parses review pages. Fetches are rate limited to stay
// polite toward the review site.
type Scraper struct {
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a Scraper.
func New(logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{
		client:  &http.Client{Timeout: fetchTimeout},
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
		logger:  logger,
	}
}

// Scrape fetches url and extracts the professor profile. Network failures
// (connection error, timeout, non-2xx status) return an error wrapping
// domain.ErrFetchFailed; missing markup never fails, it only yields default
// field values.
func (s *Scraper) Scrape(ctx context.Context, url string) (domain.ScrapedProfile, error) {
	var zero domain.ScrapedProfile

	if err := s.limiter.Wait(ctx); err != nil {
		return zero, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return zero, fmt.Errorf("scraper: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return zero, fmt.Errorf("scraper: fetch %s: %w", url, fetchFailed(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return zero, fmt.Errorf("scraper: fetch %s: %w", url, fetchFailed(fmt.Errorf("status %d", resp.StatusCode)))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		// Parse trouble degrades to an empty profile rather than failing
		// the scrape; the record is still stored.
		s.logger.Warn("scraper: parse degraded", "url", url, "err", err)
		return defaultProfile(url), nil
	}

	return extractProfile(doc, url), nil
}

// extractProfile pulls the named fields out of a parsed page.
func extractProfile(doc *goquery.Document, url string) domain.ScrapedProfile {
	first := strings.TrimSpace(doc.Find(selFirstName).First().Text())
	last := strings.TrimSpace(doc.Find(selLastName).First().Text())
	name := strings.TrimSpace(first + " " + last)

	rating := strings.TrimSpace(doc.Find(selRating).First().Text())
	if rating == "" {
		rating = domain.RatingUnknown
	}

	var reviews []string
	doc.Find(selReviews).Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			reviews = append(reviews, text)
		}
	})

	return domain.ScrapedProfile{
		Name:      name,
		Rating:    rating,
		Reviews:   reviews,
		URL:       url,
		ScrapedAt: time.Now().UTC(),
	}
}

func defaultProfile(url string) domain.ScrapedProfile {
	return domain.ScrapedProfile{
		Rating:    domain.RatingUnknown,
		URL:       url,
		ScrapedAt: time.Now().UTC(),
	}
}

func fetchFailed(cause error) error {
	return fmt.Errorf("%w: %v", domain.ErrFetchFailed, cause)
}
