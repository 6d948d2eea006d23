// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package protoerr holds the fatal-protocol sentinel errors shared by
// readengine, writeengine, and the root package, so the engines don't need
// to import the root package (which imports them) to report a node error in
// terms callers can errors.Is against.
package protoerr

import "errors"

var (
	// ErrNodeContinuousTX means the node reported SAMPLE_IQ_ERROR: it is
	// stuck transmitting and cannot serve the request.
	ErrNodeContinuousTX = errors.New("iqtransport: node reported continuous TX, cannot serve request")

	// ErrRetriesExhausted means a gap retry (Read) or ack retry (Write)
	// exceeded MaxRetry without making progress.
	ErrRetriesExhausted = errors.New("iqtransport: exceeded maximum retries without a response")

	// ErrNotReadyRetriesExhausted means the node reported not-ready more
	// than NotReadyMaxRetry times in a row.
	ErrNotReadyRetriesExhausted = errors.New("iqtransport: exceeded maximum retries waiting for node to become ready")

	// ErrChecksumMismatch means a Write IQ operation's node-reported
	// checksum disagreed with the locally computed one while already in
	// slow mode (every packet acked) -- there is no further fallback.
	ErrChecksumMismatch = errors.New("iqtransport: checksum mismatch persisted in slow write mode")

	// ErrSizeMismatch means the number of bytes a send actually transferred
	// disagreed with the packet's declared length.
	ErrSizeMismatch = errors.New("iqtransport: sent packet size does not match declared packet length")

	// ErrDuplicateWaveform means a Read operation's sample_iq_id matched the
	// id already recorded for this node/operation/buffer.
	ErrDuplicateWaveform = errors.New("iqtransport: re-read of same captured waveform")
)
