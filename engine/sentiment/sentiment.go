// Package sentiment scores free-text reviews with the VADER lexicon model.
package sentiment

import "github.com/jonreiter/govader"

// Analyzer computes compound sentiment scores in [-1, 1]. It holds the
// VADER lexicon, so construct once and share.
type Analyzer struct {
	sia *govader.SentimentIntensityAnalyzer
}

// New creates an Analyzer with the default VADER lexicon.
func New() *Analyzer {
	return &Analyzer{sia: govader.NewSentimentIntensityAnalyzer()}
}

// Score returns the compound polarity of text. Empty input scores 0.
func (a *Analyzer) Score(text string) float64 {
	if text == "" {
		return 0
	}
	return a.sia.PolarityScores(text).Compound
}

// Average returns the arithmetic mean of scores, or 0 for an empty slice.
// The ingestion pipeline aggregates per-review scores with this.
func Average(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}
