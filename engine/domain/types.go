// Package domain defines the core types and error taxonomy shared by the
// ingestion and query pipelines.
package domain

import "time"

// ScrapedProfile is the raw output of the page scraper. Missing markup
// degrades to zero values ("N/A" rating, empty name/reviews); it never
// fails the scrape.
type ScrapedProfile struct {
	Name      string    `json:"name"`
	Rating    string    `json:"rating"`
	Reviews   []string  `json:"reviews"`
	URL       string    `json:"url"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// ProfessorPayload is the persisted view of a professor, stored as the
// point payload in the vector collection and returned verbatim by search.
type ProfessorPayload struct {
	Name         string   `json:"name"`
	Rating       string   `json:"rating"`
	Reviews      []string `json:"reviews"`
	AvgSentiment float64  `json:"avg_sentiment"`
	SourceURL    string   `json:"source_url,omitempty"`
	ScrapedAt    string   `json:"scraped_at,omitempty"`
}

// ProfessorRecord is one complete stored entry: a payload plus its point id
// and name embedding. Created once per successfully scraped URL, never
// mutated afterwards.
type ProfessorRecord struct {
	ID        string
	Professor ProfessorPayload
	Embedding []float32
}

// TrendReport classifies a professor's stored rating and sentiment.
type TrendReport struct {
	Name           string `json:"name"`
	RatingTrend    string `json:"rating_trend"`
	SentimentTrend string `json:"sentiment_trend"`
}

// RatingUnknown is the sentinel stored when the rating element is missing.
const RatingUnknown = "N/A"
