// Package datadog implements a DogStatsD backend for the metrics package.
//
// Step durations are sent as distributions so percentiles are computed by the
// agent across every run of a job; counters are sent as counts. Labels become
// sorted "key:value" tags and labels with an empty value are left out.
package datadog

import (
	"fmt"
	"sort"

	"csvextract/internal/metrics"

	"github.com/DataDog/datadog-go/v5/statsd"
)

// Config holds Datadog backend configuration.
type Config struct {
	// Addr is the DogStatsD address, e.g. "127.0.0.1:8125" or "unix:///path/to/socket".
	Addr string

	// Namespace is an optional prefix added to all metric names, e.g. "csvextract.".
	Namespace string

	// GlobalTags are tags applied to all metrics emitted by this backend,
	// e.g. []string{"env:prod","service:extract"}.
	GlobalTags []string
}

// Backend is a Datadog implementation of metrics.Backend.
type Backend struct {
	client *statsd.Client
}

// NewBackend constructs a Datadog metrics backend from the given configuration.
//
// The Addr field is required; when empty, NewBackend returns an error.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("datadog: Addr is required")
	}

	opts := []statsd.Option{statsd.WithoutTelemetry(), statsd.WithoutClientSideAggregation()}
	if cfg.Namespace != "" {
		opts = append(opts, statsd.WithNamespace(cfg.Namespace))
	}
	if len(cfg.GlobalTags) > 0 {
		opts = append(opts, statsd.WithTags(cfg.GlobalTags))
	}

	c, err := statsd.New(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("datadog: create client: %w", err)
	}
	return &Backend{client: c}, nil
}

// IncCounter implements metrics.Backend.IncCounter using a Datadog Count metric.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	// DogStatsD Count expects an int64; fractional deltas are truncated.
	_ = b.client.Count(name, int64(delta), labelsToTags(labels), 1)
}

// ObserveHistogram records value as a distribution. An extraction is a short
// batch run, often a single sample per step, so agent-side histograms would
// only ever see one point per host.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	_ = b.client.Distribution(name, value, labelsToTags(labels), 1)
}

// Flush sends buffered metrics and closes the client. The Recorder flushes
// once at the end of a run; later calls are no-ops.
func (b *Backend) Flush() error {
	if b.client == nil {
		return nil
	}
	c := b.client
	b.client = nil
	if err := c.Flush(); err != nil {
		_ = c.Close()
		return fmt.Errorf("datadog: flush: %w", err)
	}
	if err := c.Close(); err != nil {
		return fmt.Errorf("datadog: close: %w", err)
	}
	return nil
}

// labelsToTags converts labels into sorted "key:value" tags, skipping empty values.
func labelsToTags(lbls metrics.Labels) []string {
	if len(lbls) == 0 {
		return nil
	}
	out := make([]string, 0, len(lbls))
	for k, v := range lbls {
		if v == "" {
			continue
		}
		out = append(out, k+":"+v)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
