package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveRequestDuration("GET /api/psalms/{$}", 200, 15*time.Millisecond)
	pr.IncCacheResult(CacheMiss)
	pr.IncCacheResult(CacheHit)
	pr.IncCacheResult(CacheHit)
	pr.IncAuthRejected()
	pr.ObserveIngestDuration(2 * time.Second)
	pr.IncIngestResult(ResultSuccess)
	pr.SetCorpusSize(150, 412)
	pr.SetAuditViolations(0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.InDelta(t, 2, sample(t, mfs, "psalter_cache_lookups_total", "hit"), 0)
	require.InDelta(t, 1, sample(t, mfs, "psalter_cache_lookups_total", "miss"), 0)
	require.InDelta(t, 150, sample(t, mfs, "psalter_corpus_documents", ""), 0)
	require.InDelta(t, 412, sample(t, mfs, "psalter_corpus_sections", ""), 0)
}

// sample returns the counter or gauge value of the named family, selecting the
// metric whose first label value equals label when label is set.
func sample(t *testing.T, mfs []*dto.MetricFamily, name, label string) float64 {
	t.Helper()
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if label != "" && (len(m.GetLabel()) == 0 || m.GetLabel()[0].GetValue() != label) {
				continue
			}
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s{%s} not found", name, label)
	return 0
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncCacheResult(CacheHit)
	pr.SetCorpusSize(1, 1)
}

func TestHTTPHandlerServesRegistry(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).SetCorpusSize(3, 7)

	srv := httptest.NewServer(HTTPHandler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), "psalter_corpus_sections 7"), string(body))
}
