// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sockpool

import (
	"fmt"
	"net"
	"sync"
)

// MaxSockets is the fixed capacity of a Pool, per spec.md §6.
const MaxSockets = 65

// Pool is a fixed-capacity table of UDP-backed handles, mirroring the
// spec's "fixed capacity table of non-blocking UDP endpoints" (spec.md
// §2 C4). Index 0 is never issued by Allocate so that a zero handle index
// can be treated as "unset" by callers that store it in a plain int field.
type Pool struct {
	mu      sync.Mutex
	handles [MaxSockets]Handle
}

// NewPool returns an empty pool. Since index 0 is never issued, it holds at
// most MaxSockets-1 handles (indices 1 through MaxSockets-1).
func NewPool() *Pool { return &Pool{} }

// Allocate dials a local UDP socket (bound to an ephemeral port on the
// given local address, may be "" for any) and returns its handle index.
func (p *Pool) Allocate(localAddr string) (int, error) {
	conn, err := net.ListenUDP("udp", mustResolve(localAddr))
	if err != nil {
		return 0, fmt.Errorf("sockpool: allocate: %w", err)
	}
	return p.adopt(newUDPHandle(conn))
}

// Adopt installs an already-constructed Handle (e.g. a test double) into the
// first free slot, returning its handle index.
func (p *Pool) Adopt(h Handle) (int, error) { return p.adopt(h) }

// adopt installs an already-constructed Handle (used directly by tests and
// by Allocate) into the first free slot.
func (p *Pool) adopt(h Handle) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := 1; i < MaxSockets; i++ {
		if p.handles[i] == nil {
			p.handles[i] = h
			return i, nil
		}
	}
	return 0, fmt.Errorf("sockpool: pool exhausted (max %d sockets)", MaxSockets)
}

// Handle returns the Handle at idx, or nil if idx is out of range or unset.
func (p *Pool) Handle(idx int) Handle {
	if idx <= 0 || idx >= MaxSockets {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handles[idx]
}

// Close closes and frees the handle at idx.
func (p *Pool) Close(idx int) error {
	p.mu.Lock()
	h := p.handles[idx]
	p.handles[idx] = nil
	p.mu.Unlock()
	if h == nil {
		return nil
	}
	return h.Close()
}

// CloseAll tears down every allocated handle, mirroring the spec's
// process-exit lifecycle note (spec.md §5: "torn down at process exit,
// which closes all handles").
func (p *Pool) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.handles {
		if p.handles[i] != nil {
			_ = p.handles[i].Close()
			p.handles[i] = nil
		}
	}
}

func mustResolve(addr string) *net.UDPAddr {
	if addr == "" {
		return &net.UDPAddr{}
	}
	a, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return &net.UDPAddr{}
	}
	return a
}
