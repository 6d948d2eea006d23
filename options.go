// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iqtransport

import (
	"github.com/sirupsen/logrus"

	"github.com/sdrtestbed/iqtransport/internal/obslog"
	"github.com/sdrtestbed/iqtransport/internal/obsmetrics"
)

// Options configures a Context at construction time. Unlike the pacing and
// chunk-size knobs (SetWriteWaitTime, SetReadMaxRequestSize,
// SuppressIQWarnings), which spec.md's external interface names as runtime
// methods on Context, Options covers what must be fixed up front: the
// logger, the metrics collector, and the default duplicate-sequence
// severity.
type Options struct {
	Logger          *obslog.Logger
	Metrics         *obsmetrics.Collector
	DefaultSeverity Severity
}

var defaultOptions = Options{
	Logger:          obslog.New(logrus.StandardLogger()),
	Metrics:         obsmetrics.Noop(),
	DefaultSeverity: SeverityWarning,
}

// Option mutates Options; see WithLogger, WithMetrics, WithDefaultSeverity.
type Option func(*Options)

// WithLogger overrides the structured logger used to report retries,
// back-offs, and warnings.
func WithLogger(l *obslog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithMetrics overrides the counters collector. Pass a Collector built from
// a real prometheus.Registerer to expose it on a /metrics endpoint.
func WithMetrics(m *obsmetrics.Collector) Option {
	return func(o *Options) { o.Metrics = m }
}

// WithDefaultSeverity sets the duplicate-sequence severity used by Read
// calls that don't specify one explicitly.
func WithDefaultSeverity(s Severity) Option {
	return func(o *Options) { o.DefaultSeverity = s }
}
