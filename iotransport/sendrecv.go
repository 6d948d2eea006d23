// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package iotransport implements the reliable send/recv primitive (spec.md
// §4.4, component C5): a full-payload send with a partial-write retry loop
// and pacing, and a non-blocking recv that returns zero bytes on no-data
// rather than blocking the caller.
//
// This is grounded directly on the teacher's internal.go retry-loop design
// (framer.readOnce/writeOnce): a bounded retry around a non-blocking
// primitive that treats sockpool.ErrWouldBlock as "no progress this
// iteration, try again" rather than a failure.
package iotransport

import (
	"errors"
	"fmt"
	"time"

	"github.com/sdrtestbed/iqtransport/sockpool"
)

// MinSendSize and SleepTime implement the partial-write pacing rule from
// spec.md §4.4: "if a send returns fewer than MIN_SEND_SIZE bytes, sleep
// SLEEP_TIME before the next attempt".
const (
	MinSendSize = 1000
	SleepTime   = 10 * time.Millisecond
)

// Send transmits the whole payload to peerIP:port, looping over partial
// sends until every byte has been transferred. A send that returns fewer
// than MinSendSize bytes is followed by a SleepTime pause before retrying,
// matching the node's expectation that the host not overrun its receive
// window. sockpool.ErrWouldBlock makes no progress this iteration and is
// retried without being treated as an error. Any other error is fatal and
// unwinds immediately.
func Send(h sockpool.Handle, payload []byte, peerIP string, port int) error {
	off := 0
	for off < len(payload) {
		n, err := h.Send(payload[off:], peerIP, port)
		if err != nil {
			if errors.Is(err, sockpool.ErrWouldBlock) {
				continue
			}
			return fmt.Errorf("iotransport: send: %w", err)
		}
		off += n
		if n < MinSendSize && off < len(payload) {
			time.Sleep(SleepTime)
		}
	}
	return nil
}

// Recv performs one non-blocking receive of up to maxLen bytes. It returns
// (nil, nil) when no datagram is currently available -- the caller is
// responsible for its own timing/retry loop, per spec.md §4.4 ("The caller
// is responsible for timing loops"). Any socket error other than
// ErrWouldBlock is fatal.
func Recv(h sockpool.Handle, maxLen int) ([]byte, error) {
	b, err := h.Recv(maxLen)
	if err != nil {
		if errors.Is(err, sockpool.ErrWouldBlock) {
			return nil, nil
		}
		return nil, fmt.Errorf("iotransport: recv: %w", err)
	}
	return b, nil
}
