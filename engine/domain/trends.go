package domain

import (
	"strconv"
	"strings"
)

// Rating trend labels.
const (
	TrendImproving = "Improving"
	TrendStable    = "Stable"
	TrendDeclining = "Declining"
)

// Sentiment trend labels.
const (
	SentimentPositive = "Positive"
	SentimentNeutral  = "Neutral"
	SentimentNegative = "Negative"
)

// ClassifyRating buckets a raw rating string. Ratings are stored as scraped
// text, so "N/A" and other non-numeric values are possible; those classify
// as Stable rather than failing the lookup.
func ClassifyRating(raw string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return TrendStable
	}
	switch {
	case v > 4.0:
		return TrendImproving
	case v > 3.0:
		return TrendStable
	default:
		return TrendDeclining
	}
}

// ClassifySentiment buckets an average compound sentiment score.
func ClassifySentiment(avg float64) string {
	switch {
	case avg > 0.5:
		return SentimentPositive
	case avg > 0:
		return SentimentNeutral
	default:
		return SentimentNegative
	}
}

// Trends builds the trend report for a stored payload.
func Trends(p ProfessorPayload) TrendReport {
	return TrendReport{
		Name:           p.Name,
		RatingTrend:    ClassifyRating(p.Rating),
		SentimentTrend: ClassifySentiment(p.AvgSentiment),
	}
}
