// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package seqtrack tracks the rolling 8-bit sample_iq_id last seen per
// (operation, buffer) so the dispatcher can detect a re-read of the same
// captured waveform, per spec.md §3.
package seqtrack

// opIndex mirrors the two tracked operations, matching the original
// source's 8-slot layout (4 buffers x {read_iq, read_rssi}).
type opIndex uint8

const (
	opReadIQ opIndex = iota
	opReadRSSI
)

// Severity selects how a duplicate-sequence-number (re-read of the same
// captured waveform) condition is surfaced to the caller. Defined here,
// rather than in the root package, so readengine can depend on it without
// importing the root package that in turn depends on readengine.
type Severity uint8

const (
	SeverityIgnore Severity = iota
	SeverityWarning
	SeverityError
)

// Table is a per-node sequence-number tracker: an 8-bit last-seen id for
// each (operation, buffer) pair. The zero value is ready to use -- every
// slot starts unset, so the first read of any buffer is never treated as a
// duplicate.
type Table struct {
	seen [2][4]uint8
	set  [2][4]bool
}

// Check compares sampleIQID against the last-seen id for (op, buffer).
// dup is true iff a previous successful read recorded the same id. Check
// does not itself update the table -- call Update after the read succeeds,
// per spec.md §3 ("updated at successful completion of a read, compared on
// the next read").
func (t *Table) Check(op Op, buf BufferID, sampleIQID uint8) (dup bool) {
	oi, bi, ok := indices(op, buf)
	if !ok {
		return false
	}
	return t.set[oi][bi] && t.seen[oi][bi] == sampleIQID
}

// CheckAndUpdate implements the Completion step from spec.md §4.5: compare
// sampleIQID against the last-seen id for (op, buffer), then unconditionally
// overwrite the tracked id with sampleIQID ("updated at successful
// completion of a read", spec.md §3).
func (t *Table) CheckAndUpdate(op Op, buf BufferID, sampleIQID uint8) (dup bool) {
	dup = t.Check(op, buf, sampleIQID)
	t.Update(op, buf, sampleIQID)
	return dup
}

// Update records sampleIQID as the last-seen id for (op, buffer).
func (t *Table) Update(op Op, buf BufferID, sampleIQID uint8) {
	oi, bi, ok := indices(op, buf)
	if !ok {
		return
	}
	t.seen[oi][bi] = sampleIQID
	t.set[oi][bi] = true
}

// Op distinguishes Read IQ from Read RSSI for sequence tracking purposes
// (Write IQ has no duplicate-waveform concept: it always produces new
// content on the node).
type Op uint8

const (
	OpReadIQ   Op = Op(opReadIQ)
	OpReadRSSI Op = Op(opReadRSSI)
)

// BufferID mirrors the four named buffers (A-D): A=0x1, B=0x2, C=0x4, D=0x8.
type BufferID uint16

const (
	BufferA BufferID = 0x1
	BufferB BufferID = 0x2
	BufferC BufferID = 0x4
	BufferD BufferID = 0x8
)

func indices(op Op, buf BufferID) (oi, bi int, ok bool) {
	switch buf {
	case BufferA:
		bi = 0
	case BufferB:
		bi = 1
	case BufferC:
		bi = 2
	case BufferD:
		bi = 3
	default:
		return 0, 0, false
	}
	switch op {
	case OpReadIQ:
		oi = 0
	case OpReadRSSI:
		oi = 1
	default:
		return 0, 0, false
	}
	return oi, bi, true
}
