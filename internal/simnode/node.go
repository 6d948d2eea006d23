// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package simnode is a deterministic in-memory node double implementing
// sockpool.Handle: no real sockets, no goroutines, no sleeps, so the
// engine-level timeouts and retries the read/write engines drive can be
// exercised by tests in microseconds rather than wall-clock waits, per
// spec.md §8's six end-to-end scenarios.
package simnode

import (
	"sync"
	"time"

	"github.com/sdrtestbed/iqtransport/sockpool"
)

// Node queues outbound packets produced by Handler in response to each Send,
// and dequeues them on Recv.
type Node struct {
	mu     sync.Mutex
	outbox [][]byte

	// Handler is invoked once per Send with a copy of the request payload; it
	// returns zero or more response packets to enqueue (zero simulates a
	// dropped request -- e.g. a not-ready node that simply never answers).
	Handler func(request []byte) [][]byte
}

// New builds a Node with the given request handler.
func New(handler func(request []byte) [][]byte) *Node {
	return &Node{Handler: handler}
}

// Send feeds payload to the handler and enqueues whatever it returns.
func (n *Node) Send(payload []byte, peerIP string, port int) (int, error) {
	req := make([]byte, len(payload))
	copy(req, payload)

	var responses [][]byte
	if n.Handler != nil {
		responses = n.Handler(req)
	}

	n.mu.Lock()
	n.outbox = append(n.outbox, responses...)
	n.mu.Unlock()

	return len(payload), nil
}

// Recv pops the next queued response packet, or ErrWouldBlock if none is
// queued.
func (n *Node) Recv(maxBytes int) ([]byte, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.outbox) == 0 {
		return nil, sockpool.ErrWouldBlock
	}
	resp := n.outbox[0]
	n.outbox = n.outbox[1:]
	return resp, nil
}

func (n *Node) SetTimeout(d time.Duration)         {}
func (n *Node) SetSendBufSize(bytes int) error     { return nil }
func (n *Node) SendBufSize() (int, error)          { return 65535, nil }
func (n *Node) SetRecvBufSize(bytes int) error     { return nil }
func (n *Node) RecvBufSize() (int, error)          { return 65535, nil }
func (n *Node) Close() error                       { return nil }
