// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package obslog provides the structured logger used by the engines and
// dispatcher to report retries, back-offs, and warnings, grounded on
// cmd/get's use of logrus for a small CLI tool: one shared logger, field
// values attached per call rather than a global prefix string.
package obslog

import "github.com/sirupsen/logrus"

// Logger is a thin wrapper around a logrus.Entry, carrying the fields every
// log line in this module needs: which node, which operation, which buffer,
// which call. It exists so engines depend on a narrow interface rather than
// logrus directly, and so tests can swap in a discard logger.
type Logger struct {
	entry *logrus.Entry
}

// New builds a Logger writing to the given logrus.Logger (callers pass
// logrus.StandardLogger() to match package-level logrus output, or a private
// instance to silence logs in tests).
func New(base *logrus.Logger) *Logger {
	if base == nil {
		base = logrus.StandardLogger()
	}
	return &Logger{entry: logrus.NewEntry(base)}
}

// Discard returns a Logger whose output goes nowhere, for use in tests that
// don't want log noise.
func Discard() *Logger {
	l := logrus.New()
	l.SetOutput(discardWriter{})
	return New(l)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// With returns a copy of the logger with additional fields attached. Callers
// typically derive one per call: log := base.With("node_id", id, "call_id",
// xid.New().String()).
func (l *Logger) With(keyvals ...any) *Logger {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		fields[key] = keyvals[i+1]
	}
	return &Logger{entry: l.entry.WithFields(fields)}
}

func (l *Logger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }
