// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iqtransport

import (
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sdrtestbed/iqtransport/internal/obslog"
	"github.com/sdrtestbed/iqtransport/internal/obsmetrics"
	"github.com/sdrtestbed/iqtransport/seqtrack"
)

// Context replaces the original's process-wide globals (Design Notes,
// spec.md §9): the two rolling 8-bit IDs, the pacing/chunk overrides, the
// warning-suppression flag, and the per-node sequence-number trackers all
// live here instead. Construct one per logical connection to the testbed;
// tests instantiate independent Contexts rather than sharing state.
type Context struct {
	mu sync.Mutex

	readIQID  uint8
	writeIQID uint8

	writeWaitTimeOverride *time.Duration
	readMaxRequestSize    int
	suppressWarnings      bool

	severity  Severity
	seqByNode map[string]*seqtrack.Table

	log     *obslog.Logger
	metrics *obsmetrics.Collector
}

// NewContext builds a Context, initialized explicitly rather than on first
// use (Design Notes, spec.md §9).
func NewContext(opts ...Option) *Context {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Context{
		severity:  o.DefaultSeverity,
		seqByNode: make(map[string]*seqtrack.Table),
		log:       o.Logger,
		metrics:   o.Metrics,
	}
}

// nextCallID mints a correlation id for one Read/Write call so its retries
// and back-offs can be grepped together in the log.
func (c *Context) nextCallID() string {
	return xid.New().String()
}

// nextReadIQID returns the next rolling read_iq_id, incrementing modulo 256.
func (c *Context) nextReadIQID() uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readIQID++
	return c.readIQID
}

// nextWriteIQID returns the next rolling write_iq_id, incrementing modulo 256.
func (c *Context) nextWriteIQID() uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeIQID++
	return c.writeIQID
}

// tableFor returns the sequence-number tracker for nodeID, creating one on
// first reference (Lifecycle: "created at node attach", spec.md §3).
func (c *Context) tableFor(nodeID string) *seqtrack.Table {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.seqByNode[nodeID]
	if !ok {
		t = &seqtrack.Table{}
		c.seqByNode[nodeID] = t
	}
	return t
}

// SetWriteWaitTime overrides the C3 inter-packet pacing estimate for Write
// operations on this Context. Passing a zero duration clears the override
// and restores the hardware-version table lookup.
func (c *Context) SetWriteWaitTime(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d == 0 {
		c.writeWaitTimeOverride = nil
		return
	}
	c.writeWaitTimeOverride = &d
}

// writeWaitOverride returns the configured override, or nil if none is set.
func (c *Context) writeWaitOverride() *time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeWaitTimeOverride
}

// SetReadMaxRequestSize overrides the dispatcher's large-Read chunk-size
// threshold (spec.md §4.5: "the user may override the chunk size"). A value
// of zero restores the default 80%-of-receive-buffer heuristic.
func (c *Context) SetReadMaxRequestSize(bytes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readMaxRequestSize = bytes
}

func (c *Context) readMaxRequestSizeOverride() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readMaxRequestSize
}

// SuppressIQWarnings silences the once-per-operation warnings emitted for
// not-ready back-offs, fast-mode checksum downgrades, and duplicate-sequence
// reads under SeverityWarning. Fatal errors are never suppressed.
func (c *Context) SuppressIQWarnings() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.suppressWarnings = true
}

func (c *Context) warningsSuppressed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.suppressWarnings
}

func (c *Context) warnf(format string, args ...any) {
	if c.warningsSuppressed() {
		return
	}
	c.log.Warnf(format, args...)
}

// engineLogger adapts a Context's logger and suppression flag to the narrow
// Logger interface readengine and writeengine depend on, so
// SuppressIQWarnings silences engine-level warnings (not-ready back-offs,
// checksum-fallback, duplicate-sequence) the same way it silences anything
// else logged through the Context.
type engineLogger struct {
	c   *Context
	log *obslog.Logger
}

func (l engineLogger) Warnf(format string, args ...any) {
	if l.c.warningsSuppressed() {
		return
	}
	l.log.Warnf(format, args...)
}

func (c *Context) engineLog(keyvals ...any) engineLogger {
	return engineLogger{c: c, log: c.log.With(keyvals...)}
}

// engineMetrics binds a Context's Collector to one operation's (node, op,
// buffer) labels, satisfying both readengine.Metrics and writeengine.Metrics
// (Go interface satisfaction is structural, so one adapter covers both).
type engineMetrics struct {
	c                  *obsmetrics.Collector
	nodeID, op, buffer string
}

func (m engineMetrics) IncGapRetry() {
	m.c.GapRetries.WithLabelValues(m.nodeID, m.op, m.buffer).Inc()
}

func (m engineMetrics) IncNotReadyBackoff() {
	m.c.NotReadyBackoffs.WithLabelValues(m.nodeID, m.op, m.buffer).Inc()
}

func (m engineMetrics) IncChecksumMismatch() {
	m.c.ChecksumMismatches.WithLabelValues(m.nodeID, m.op, m.buffer).Inc()
}

func (m engineMetrics) IncDuplicateSequence() {
	m.c.DuplicateSequences.WithLabelValues(m.nodeID, m.op, m.buffer).Inc()
}

func (c *Context) engineMetrics(nodeID string, op Op, buffer BufferID) engineMetrics {
	return engineMetrics{c: c.metrics, nodeID: nodeID, op: op.String(), buffer: buffer.String()}
}
