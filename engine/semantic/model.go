package semantic

import (
	pb "github.com/qdrant/go-client/qdrant"

	"github.com/profsage/profsage/engine/domain"
)

// SearchResult is a single similarity hit with its stored payload.
type SearchResult struct {
	ID        string                  `json:"id"`
	Score     float32                 `json:"score"`
	Professor domain.ProfessorPayload `json:"professor"`
}

// payloadValues converts a professor payload into Qdrant point payload values.
func payloadValues(p domain.ProfessorPayload) map[string]*pb.Value {
	reviews := make([]*pb.Value, len(p.Reviews))
	for i, r := range p.Reviews {
		reviews[i] = strValue(r)
	}
	vals := map[string]*pb.Value{
		"name":          strValue(p.Name),
		"rating":        strValue(p.Rating),
		"reviews":       {Kind: &pb.Value_ListValue{ListValue: &pb.ListValue{Values: reviews}}},
		"avg_sentiment": {Kind: &pb.Value_DoubleValue{DoubleValue: p.AvgSentiment}},
	}
	if p.SourceURL != "" {
		vals["source_url"] = strValue(p.SourceURL)
	}
	if p.ScrapedAt != "" {
		vals["scraped_at"] = strValue(p.ScrapedAt)
	}
	return vals
}

// professorFromValues is the inverse of payloadValues. Unknown keys are
// ignored; missing keys leave zero values.
func professorFromValues(vals map[string]*pb.Value) domain.ProfessorPayload {
	var p domain.ProfessorPayload
	for k, val := range vals {
		switch k {
		case "name":
			p.Name = val.GetStringValue()
		case "rating":
			p.Rating = val.GetStringValue()
		case "avg_sentiment":
			p.AvgSentiment = val.GetDoubleValue()
		case "source_url":
			p.SourceURL = val.GetStringValue()
		case "scraped_at":
			p.ScrapedAt = val.GetStringValue()
		case "reviews":
			for _, rv := range val.GetListValue().GetValues() {
				p.Reviews = append(p.Reviews, rv.GetStringValue())
			}
		}
	}
	return p
}

func strValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}
