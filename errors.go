// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iqtransport

import (
	"fmt"

	"github.com/sdrtestbed/iqtransport/protoerr"
)

// Fatal protocol errors unwind the whole operation; the caller must restart
// at the operation level. They are never the result of a process abort --
// see SPEC_FULL.md Design Notes on replacing fatal-on-error-via-abort with
// result values. They are defined in package protoerr so readengine and
// writeengine can return them without importing this package.
var (
	// ErrNodeContinuousTX means the node reported SAMPLE_IQ_ERROR /
	// IQ_ERROR: it is stuck transmitting and cannot serve the request.
	ErrNodeContinuousTX = protoerr.ErrNodeContinuousTX

	// ErrRetriesExhausted means a gap retry (Read) or ack retry (Write)
	// exceeded MaxRetry without making progress.
	ErrRetriesExhausted = protoerr.ErrRetriesExhausted

	// ErrNotReadyRetriesExhausted means the node reported not-ready more
	// than NotReadyMaxRetry times in a row.
	ErrNotReadyRetriesExhausted = protoerr.ErrNotReadyRetriesExhausted

	// ErrChecksumMismatch means a Write IQ operation's node-reported
	// checksum disagreed with the locally computed one while already in
	// slow mode (every packet acked) -- there is no further fallback.
	ErrChecksumMismatch = protoerr.ErrChecksumMismatch

	// ErrSizeMismatch means the number of bytes a send actually transferred
	// disagreed with the packet's declared length.
	ErrSizeMismatch = protoerr.ErrSizeMismatch

	// ErrDuplicateWaveform means a Read operation's sample_iq_id matched the
	// id already recorded for this node/operation/buffer -- the node has
	// not captured a new waveform since the last read of this buffer. Only
	// surfaced as an error under SeverityError; see Severity.
	ErrDuplicateWaveform = protoerr.ErrDuplicateWaveform
)

// ArgError reports an invalid caller-supplied argument: an invalid data-type
// code, a non-singular buffer id where exactly one is required, an
// input-array shape mismatch, or a zero-length recv request.
type ArgError struct {
	Arg    string
	Reason string
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("iqtransport: invalid argument %s: %s", e.Arg, e.Reason)
}

func newArgError(arg, reason string) error {
	return &ArgError{Arg: arg, Reason: reason}
}
