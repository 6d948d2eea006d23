// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package obsmetrics exposes the counters the engines increment for gap
// retries, not-ready back-offs, checksum mismatches, and duplicate-sequence
// detections, grounded on the exporter package's use of
// prometheus/client_golang: that package hand-rolls a prometheus.Collector
// because it samples live OS state on every scrape; these counters have no
// such external state to resample, so they're plain CounterVecs registered
// once at construction, which is the same library's more common entry
// point.
package obsmetrics

import "github.com/prometheus/client_golang/prometheus"

// Collector holds every counter the core increments, labeled by node, op,
// and buffer so a multi-node deployment can tell its counters apart on one
// /metrics endpoint.
type Collector struct {
	GapRetries         *prometheus.CounterVec
	NotReadyBackoffs   *prometheus.CounterVec
	ChecksumMismatches *prometheus.CounterVec
	DuplicateSequences *prometheus.CounterVec
}

const namespace = "iqtransport"

// New constructs a Collector and registers it with reg. Passing a fresh
// prometheus.NewRegistry() keeps tests isolated from the default registry.
func New(reg prometheus.Registerer) *Collector {
	labels := []string{"node_id", "op", "buffer"}
	c := &Collector{
		GapRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gap_retries_total",
			Help:      "Number of minimal sub-requests issued to fill a detected packet gap.",
		}, labels),
		NotReadyBackoffs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "not_ready_backoffs_total",
			Help:      "Number of times an operation slept and retried after a node-not-ready response.",
		}, labels),
		ChecksumMismatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checksum_mismatches_total",
			Help:      "Number of write responses whose checksum did not match, triggering slow-mode fallback.",
		}, labels),
		DuplicateSequences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_sequences_total",
			Help:      "Number of reads whose sample_iq_id matched the previous read of the same buffer.",
		}, labels),
	}
	if reg != nil {
		reg.MustRegister(c.GapRetries, c.NotReadyBackoffs, c.ChecksumMismatches, c.DuplicateSequences)
	}
	return c
}

// Noop returns a Collector registered against a private registry, for
// callers (and tests) that don't want to wire up a /metrics endpoint.
func Noop() *Collector {
	return New(prometheus.NewRegistry())
}
