// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iqtransport

import (
	"github.com/sdrtestbed/iqtransport/seqtrack"
)

// Op distinguishes the two reliable operations the core drives.
type Op uint8

const (
	OpReadIQ Op = iota
	OpReadRSSI
	OpWriteIQ
)

func (o Op) String() string {
	switch o {
	case OpReadIQ:
		return "read_iq"
	case OpReadRSSI:
		return "read_rssi"
	case OpWriteIQ:
		return "write_iq"
	default:
		return "unknown"
	}
}

// BufferID identifies one of the four named on-node memory regions.
type BufferID uint16

const (
	BufferA BufferID = 0x1
	BufferB BufferID = 0x2
	BufferC BufferID = 0x4
	BufferD BufferID = 0x8
)

// Index returns 0-3 for A-D, used to index fixed-size per-buffer arrays.
// ok is false for a non-singular or unrecognized id.
func (b BufferID) Index() (idx int, ok bool) {
	switch b {
	case BufferA:
		return 0, true
	case BufferB:
		return 1, true
	case BufferC:
		return 2, true
	case BufferD:
		return 3, true
	default:
		return 0, false
	}
}

func (b BufferID) String() string {
	switch b {
	case BufferA:
		return "A"
	case BufferB:
		return "B"
	case BufferC:
		return "C"
	case BufferD:
		return "D"
	default:
		return "?"
	}
}

// Severity selects how a duplicate-sequence-number (re-read of the same
// captured waveform) condition is surfaced to the caller. Defined in package
// seqtrack so the read engine can depend on it without a cycle back to this
// package; aliased here for the public API spec.md §6 describes.
type Severity = seqtrack.Severity

const (
	SeverityIgnore  = seqtrack.SeverityIgnore
	SeverityWarning = seqtrack.SeverityWarning
	SeverityError   = seqtrack.SeverityError
)
