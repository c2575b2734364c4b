package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "psalter"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	requestDuration *prom.HistogramVec
	cacheResults    *prom.CounterVec
	authRejected    prom.Counter
	ingestDuration  prom.Histogram
	ingestResults   *prom.CounterVec
	corpusDocuments prom.Gauge
	corpusSections  prom.Gauge
	auditViolations prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		requestDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of API requests by route and status",
			Buckets:   prom.DefBuckets,
		}, []string{"route", "status"}),
		cacheResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "List cache lookups by result",
		}, []string{"result"}),
		authRejected: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "auth_rejections_total",
			Help:      "Requests rejected for a missing or unknown API key",
		}),
		ingestDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Duration of corpus ingestion runs",
			Buckets:   prom.DefBuckets,
		}),
		ingestResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_runs_total",
			Help:      "Ingestion runs by outcome",
		}, []string{"result"}),
		corpusDocuments: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_documents",
			Help:      "Psalms stored at the last audit",
		}),
		corpusSections: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_sections",
			Help:      "Stanzas stored at the last audit",
		}),
		auditViolations: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_audit_violations",
			Help:      "Invariant violations found by the last audit",
		}),
	}
	reg.MustRegister(pr.requestDuration, pr.cacheResults, pr.authRejected, pr.ingestDuration,
		pr.ingestResults, pr.corpusDocuments, pr.corpusSections, pr.auditViolations)
	return pr
}

func (p *PrometheusRecorder) ObserveRequestDuration(route string, status int, d time.Duration) {
	if p == nil {
		return
	}
	p.requestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCacheResult(result CacheResult) {
	if p == nil {
		return
	}
	p.cacheResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncAuthRejected() {
	if p == nil {
		return
	}
	p.authRejected.Inc()
}

func (p *PrometheusRecorder) ObserveIngestDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.ingestDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncIngestResult(result ResultLabel) {
	if p == nil {
		return
	}
	p.ingestResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) SetCorpusSize(documents, sections int) {
	if p == nil {
		return
	}
	p.corpusDocuments.Set(float64(documents))
	p.corpusSections.Set(float64(sections))
}

func (p *PrometheusRecorder) SetAuditViolations(n int) {
	if p == nil {
		return
	}
	p.auditViolations.Set(float64(n))
}
