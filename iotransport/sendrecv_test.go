package iotransport_test

import (
	"errors"
	"testing"
	"time"

	"github.com/sdrtestbed/iqtransport/iotransport"
	"github.com/sdrtestbed/iqtransport/sockpool"
)

type partialSendHandle struct {
	recvs   [][]byte
	recvIdx int
}

func (h *partialSendHandle) Send(payload []byte, peerIP string, port int) (int, error) {
	return len(payload), nil
}

func (h *partialSendHandle) Recv(maxBytes int) ([]byte, error) {
	if h.recvIdx >= len(h.recvs) {
		return nil, sockpool.ErrWouldBlock
	}
	b := h.recvs[h.recvIdx]
	h.recvIdx++
	if b == nil {
		return nil, sockpool.ErrWouldBlock
	}
	return b, nil
}

func (h *partialSendHandle) SetTimeout(d time.Duration)     {}
func (h *partialSendHandle) SetSendBufSize(bytes int) error { return nil }
func (h *partialSendHandle) SendBufSize() (int, error)      { return 0, nil }
func (h *partialSendHandle) SetRecvBufSize(bytes int) error { return nil }
func (h *partialSendHandle) RecvBufSize() (int, error)      { return 0, nil }
func (h *partialSendHandle) Close() error                   { return nil }

func TestSend_FullPayload(t *testing.T) {
	h := &partialSendHandle{}
	payload := make([]byte, 2048)
	if err := iotransport.Send(h, payload, "127.0.0.1", 9000); err != nil {
		t.Fatal(err)
	}
}

type erroringHandle struct{ partialSendHandle }

var errBoom = errors.New("boom")

func (h *erroringHandle) Send(payload []byte, peerIP string, port int) (int, error) {
	return 0, errBoom
}

func TestSend_FatalOnOtherError(t *testing.T) {
	h := &erroringHandle{}
	err := iotransport.Send(h, []byte("x"), "127.0.0.1", 9000)
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestRecv_EmptyOnWouldBlock(t *testing.T) {
	h := &partialSendHandle{}
	b, err := iotransport.Recv(h, 1500)
	if err != nil {
		t.Fatal(err)
	}
	if b != nil {
		t.Fatalf("got %v, want nil", b)
	}
}

func TestRecv_ReturnsData(t *testing.T) {
	h := &partialSendHandle{recvs: [][]byte{[]byte("hello")}}
	b, err := iotransport.Recv(h, 1500)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "hello" {
		t.Fatalf("got %q", b)
	}
}
