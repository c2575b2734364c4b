// Package metrics provides observability hooks for the psalter read path,
// ingestion runs and corpus audits.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics can be switched off without nil checks:
//
//	engine := catalog.NewService(repo, store, ttl).WithRecorder(metrics.NoopRecorder{})
//
// When metrics are enabled the serve command swaps in a PrometheusRecorder
// bound to a registry that HTTPHandler exposes.
package metrics
