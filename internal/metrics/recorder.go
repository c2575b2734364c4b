package metrics

import "time"

// ResultLabel enumerates ingestion outcomes for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFatal   ResultLabel = "fatal"
)

// CacheResult enumerates list cache lookup outcomes.
type CacheResult string

const (
	CacheHit   CacheResult = "hit"
	CacheMiss  CacheResult = "miss"
	CacheError CacheResult = "error"
)

// Recorder defines observability hooks. NoopRecorder is the default.
type Recorder interface {
	ObserveRequestDuration(route string, status int, d time.Duration)
	IncCacheResult(result CacheResult)
	IncAuthRejected()
	ObserveIngestDuration(d time.Duration)
	IncIngestResult(result ResultLabel)
	SetCorpusSize(documents, sections int)
	SetAuditViolations(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRequestDuration(string, int, time.Duration) {}
func (NoopRecorder) IncCacheResult(CacheResult)                        {}
func (NoopRecorder) IncAuthRejected()                                  {}
func (NoopRecorder) ObserveIngestDuration(time.Duration)               {}
func (NoopRecorder) IncIngestResult(ResultLabel)                       {}
func (NoopRecorder) SetCorpusSize(int, int)                            {}
func (NoopRecorder) SetAuditViolations(int)                            {}
