// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sockpool implements the socket handle pool external interface
// named in spec.md §6: a fixed-capacity table of non-blocking UDP
// endpoints, each with a per-handle receive buffer. The core (this module)
// consumes the Handle interface; Pool is the concrete implementation over
// real UDP sockets, and simnode.Node (package internal/simnode) implements
// the same interface purely in memory for tests.
//
// Non-blocking semantics are expressed with code.hybscloud.com/iox's
// ErrWouldBlock/ErrMore sentinels, the same control-flow errors the
// teacher's framing layer re-exports, so Handle.Recv composes directly with
// the iotransport package's reliable send/recv primitive without a
// translation layer.
package sockpool

import (
	"time"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock means no datagram is available right now; it is not a
// failure. Callers (package iotransport) treat it as "received zero bytes".
var ErrWouldBlock = iox.ErrWouldBlock

// Handle is one entry in the socket pool: allocate/close lifecycle,
// timeout and buffer-size knobs, and the non-blocking send/recv primitives
// spec.md §6 names as the handle-pool API.
type Handle interface {
	// Send transmits the whole payload to peerIP:port in one underlying
	// datagram send, returning the number of bytes the OS accepted.
	Send(payload []byte, peerIP string, port int) (int, error)

	// Recv performs one non-blocking receive of up to maxBytes. It returns
	// (nil, ErrWouldBlock) when no datagram is currently available, never
	// blocking the caller.
	Recv(maxBytes int) ([]byte, error)

	SetTimeout(d time.Duration)

	SetSendBufSize(bytes int) error
	SendBufSize() (int, error)

	SetRecvBufSize(bytes int) error
	RecvBufSize() (int, error)

	Close() error
}
