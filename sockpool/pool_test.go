package sockpool_test

import (
	"testing"
	"time"

	"github.com/sdrtestbed/iqtransport/sockpool"
)

// fakeHandle is a minimal in-memory Handle used to exercise Pool bookkeeping
// without opening real sockets.
type fakeHandle struct{ closed bool }

func (f *fakeHandle) Send(payload []byte, peerIP string, port int) (int, error) {
	return len(payload), nil
}
func (f *fakeHandle) Recv(maxBytes int) ([]byte, error)   { return nil, sockpool.ErrWouldBlock }
func (f *fakeHandle) SetTimeout(d time.Duration)          {}
func (f *fakeHandle) SetSendBufSize(bytes int) error      { return nil }
func (f *fakeHandle) SendBufSize() (int, error)           { return 0, nil }
func (f *fakeHandle) SetRecvBufSize(bytes int) error      { return nil }
func (f *fakeHandle) RecvBufSize() (int, error)           { return 0, nil }
func (f *fakeHandle) Close() error                        { f.closed = true; return nil }

func TestPool_AdoptAndHandle(t *testing.T) {
	p := sockpool.NewPool()
	h := &fakeHandle{}
	idx, err := p.Adopt(h)
	if err != nil {
		t.Fatal(err)
	}
	if idx <= 0 {
		t.Fatalf("got index %d, want > 0", idx)
	}
	if p.Handle(idx) != h {
		t.Fatal("Handle(idx) did not return the adopted handle")
	}
}

func TestPool_CloseFreesSlot(t *testing.T) {
	p := sockpool.NewPool()
	h := &fakeHandle{}
	idx, _ := p.Adopt(h)
	if err := p.Close(idx); err != nil {
		t.Fatal(err)
	}
	if !h.closed {
		t.Fatal("Close did not close the underlying handle")
	}
	if p.Handle(idx) != nil {
		t.Fatal("Handle(idx) should be nil after Close")
	}
}

func TestPool_ExhaustsAtMaxSockets(t *testing.T) {
	p := sockpool.NewPool()
	var last error
	for i := 0; i < sockpool.MaxSockets; i++ {
		_, last = p.Adopt(&fakeHandle{})
	}
	if last == nil {
		t.Fatal("expected pool exhaustion error")
	}
}

func TestPool_HandleOutOfRange(t *testing.T) {
	p := sockpool.NewPool()
	if p.Handle(0) != nil || p.Handle(-1) != nil || p.Handle(sockpool.MaxSockets) != nil {
		t.Fatal("expected nil for out-of-range indices")
	}
}
