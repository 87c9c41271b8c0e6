package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// counterValues returns every sample of the named counter keyed by its
// joined label values.
func counterValues(t *testing.T, reg *prometheus.Registry, name string) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		values := make(map[string]float64, len(mf.GetMetric()))
		for _, m := range mf.GetMetric() {
			parts := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				parts = append(parts, lp.GetValue())
			}
			values[strings.Join(parts, ",")] = m.GetCounter().GetValue()
		}
		return values
	}
	t.Fatalf("metric %s not found", name)
	return nil
}

func TestRecordSuggestionCountsEmptyResults(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSuggestion(4)
	c.RecordSuggestion(0)

	if got := counterValues(t, reg, "closet_suggestions_total")[""]; got != 2 {
		t.Errorf("suggestions_total = %v, want 2", got)
	}
	if got := counterValues(t, reg, "closet_suggestions_empty_total")[""]; got != 1 {
		t.Errorf("suggestions_empty_total = %v, want 1", got)
	}
}

func TestRecordWearAddsGarments(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordWear(3)
	c.RecordWear(2)

	if got := counterValues(t, reg, "closet_outfits_worn_total")[""]; got != 2 {
		t.Errorf("outfits_worn_total = %v, want 2", got)
	}
	if got := counterValues(t, reg, "closet_garment_wears_total")[""]; got != 5 {
		t.Errorf("garment_wears_total = %v, want 5", got)
	}
}

func TestRecordStoreFailureLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordStoreFailure("list_garments", "read")
	c.RecordStoreFailure("list_garments", "read")
	c.RecordStoreFailure("wear_outfit", "write")

	values := counterValues(t, reg, "closet_store_failures_total")
	if len(values) != 2 {
		t.Fatalf("expected 2 label sets, got %d", len(values))
	}
	if got := values["read,list_garments"]; got != 2 {
		t.Errorf("list_garments read failures = %v, want 2", got)
	}
	if got := values["write,wear_outfit"]; got != 1 {
		t.Errorf("wear_outfit write failures = %v, want 1", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordHTTPRequest(http.MethodGet, "/api/garments", http.StatusOK, 20*time.Millisecond)
	c.RecordStaleRead("list_garments")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, _ := io.ReadAll(resp.Body)
	for _, name := range []string{"closet_http_requests_total", "closet_http_request_duration_seconds", "closet_stale_reads_total"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("response should contain %s", name)
		}
	}
}
