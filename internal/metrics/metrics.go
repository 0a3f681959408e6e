// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from an extraction run.
//
// Callers build a Recorder around a Backend and pass it to the pipeline; a
// nil or zero Recorder falls back to a no-op backend, so metrics are always
// safe to call even when no real backend is configured. Concrete metric
// systems (Prometheus Pushgateway, DogStatsD) live in subpackages.
package metrics

import "time"

// Metric names emitted by Recorder.
const (
	StepTotal           = "extract_step_total"
	StepDurationSeconds = "extract_step_duration_seconds"
	RecordsTotal        = "extract_records_total"
	OutputBytesTotal    = "extract_output_bytes_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) IncCounter(string, float64, Labels)       {}
func (Nop) ObserveHistogram(string, float64, Labels) {}
func (Nop) Flush() error                             { return nil }

// Recorder labels every metric with the run's job name.
type Recorder struct {
	backend Backend
	job     string
}

// NewRecorder returns a Recorder for job. A nil backend records nothing.
func NewRecorder(b Backend, job string) *Recorder {
	if b == nil {
		b = Nop{}
	}
	return &Recorder{backend: b, job: job}
}

func (r *Recorder) be() Backend {
	if r == nil || r.backend == nil {
		return Nop{}
	}
	return r.backend
}

func (r *Recorder) jobName() string {
	if r == nil {
		return ""
	}
	return r.job
}

// Flush delegates to the backend.
func (r *Recorder) Flush() error { return r.be().Flush() }

// RecordStep measures latency + success/failure of one pipeline step
// (load_keys, filter_customer, write_invoice, ...).
func (r *Recorder) RecordStep(step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"job":    r.jobName(),
		"step":   step,
		"status": status,
	}
	r.be().IncCounter(StepTotal, 1, lbls)
	r.be().ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRows counts rows of the given kind ("keys", "customer",
// "invoice", "invoice_item", "stored_<schema>").
func (r *Recorder) RecordRows(kind string, delta int64) {
	if delta <= 0 {
		return
	}
	r.be().IncCounter(RecordsTotal, float64(delta), Labels{
		"job":  r.jobName(),
		"kind": kind,
	})
}

// RecordOutputBytes counts bytes written for one output schema.
func (r *Recorder) RecordOutputBytes(kind string, n int) {
	if n <= 0 {
		return
	}
	r.be().IncCounter(OutputBytesTotal, float64(n), Labels{
		"job":  r.jobName(),
		"kind": kind,
	})
}
