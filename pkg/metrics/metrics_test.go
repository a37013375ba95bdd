package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCounter(t *testing.T) {
	reg := NewRegistry()
	c := reg.Counter("chat_requests_total", "Total chat requests.")
	c.Inc()
	c.Add(2)
	if c.Value() != 3 {
		t.Fatalf("Value = %d, want 3", c.Value())
	}

	// Same name returns the same counter.
	if reg.Counter("chat_requests_total", "") != c {
		t.Fatal("re-registering returned a different counter")
	}
}

func TestHistogram(t *testing.T) {
	reg := NewRegistry()
	h := reg.Histogram("request_duration_seconds", "Request latency.", []float64{0.1, 1, 10})
	h.Observe(0.05)
	h.Observe(0.5)
	h.Observe(100)
	if h.Count() != 3 {
		t.Fatalf("Count = %d, want 3", h.Count())
	}
}

func TestRender(t *testing.T) {
	reg := NewRegistry()
	reg.Counter("ingest_success_total", "Stored records.").Add(5)
	reg.Histogram("lat", "Latency.", []float64{1}).Observe(0.5)

	out := reg.Render()
	for _, want := range []string{
		"# TYPE ingest_success_total counter",
		"ingest_success_total 5",
		"# TYPE lat histogram",
		`lat_bucket{le="1"} 1`,
		`lat_bucket{le="+Inf"} 1`,
		"lat_count 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}

func TestHandler(t *testing.T) {
	reg := NewRegistry()
	reg.Counter("x_total", "X.").Inc()

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "x_total 1") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}
