package semantic

import (
	"reflect"
	"testing"

	"github.com/profsage/profsage/engine/domain"
)

func TestPayloadRoundTrip(t *testing.T) {
	p := domain.ProfessorPayload{
		Name:         "Grace Hopper",
		Rating:       "4.7",
		Reviews:      []string{"Brilliant lecturer.", "Tough but fair exams."},
		AvgSentiment: 0.58,
		SourceURL:    "https://www.ratemyprofessors.com/professor/12345",
		ScrapedAt:    "2026-08-31T10:00:00Z",
	}

	got := professorFromValues(payloadValues(p))
	if !reflect.DeepEqual(got, p) {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, p)
	}
}

func TestPayloadRoundTrip_Defaults(t *testing.T) {
	p := domain.ProfessorPayload{Name: "", Rating: domain.RatingUnknown}
	got := professorFromValues(payloadValues(p))
	if got.Rating != domain.RatingUnknown {
		t.Fatalf("rating = %q, want N/A", got.Rating)
	}
	if got.AvgSentiment != 0 {
		t.Fatalf("avg_sentiment = %v, want 0", got.AvgSentiment)
	}
	if len(got.Reviews) != 0 {
		t.Fatalf("reviews = %v, want empty", got.Reviews)
	}
}

func TestProfessorFromValues_IgnoresUnknownKeys(t *testing.T) {
	vals := payloadValues(domain.ProfessorPayload{Name: "X"})
	vals["legacy_field"] = strValue("whatever")
	got := professorFromValues(vals)
	if got.Name != "X" {
		t.Fatalf("name = %q, want X", got.Name)
	}
}
