// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sockpool

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/higebu/netfd"
	"golang.org/x/sys/unix"
)

// udpHandle is a Handle backed by a real *net.UDPConn. Non-blocking Recv is
// emulated the idiomatic Go way: an immediate read deadline turns a would-
// otherwise-block Read into a timeout error, which Recv translates to
// ErrWouldBlock rather than surfacing net's deadline-exceeded error type to
// callers.
type udpHandle struct {
	conn    *net.UDPConn
	timeout time.Duration
}

func newUDPHandle(conn *net.UDPConn) *udpHandle {
	return &udpHandle{conn: conn, timeout: 0}
}

func (h *udpHandle) Send(payload []byte, peerIP string, port int) (int, error) {
	addr := &net.UDPAddr{IP: net.ParseIP(peerIP), Port: port}
	return h.conn.WriteToUDP(payload, addr)
}

func (h *udpHandle) Recv(maxBytes int) ([]byte, error) {
	// Non-blocking: an immediate deadline means Read returns at once,
	// either with data already queued or a timeout if none is.
	if err := h.conn.SetReadDeadline(time.Now()); err != nil {
		return nil, fmt.Errorf("sockpool: set read deadline: %w", err)
	}
	buf := make([]byte, maxBytes)
	n, _, err := h.conn.ReadFromUDP(buf)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil, ErrWouldBlock
		}
		return nil, fmt.Errorf("sockpool: recv: %w", err)
	}
	return buf[:n], nil
}

func (h *udpHandle) SetTimeout(d time.Duration) { h.timeout = d }

func (h *udpHandle) SetSendBufSize(bytes int) error {
	if err := h.conn.SetWriteBuffer(bytes); err == nil {
		return nil
	}
	// If net.UDPConn.SetWriteBuffer reports an error, fall back to setting
	// SO_SNDBUF directly on the raw fd. A size the OS clamps without
	// reporting an error does not trigger the fallback.
	return setSockBufOpt(h.conn, unix.SO_SNDBUF, bytes)
}

func (h *udpHandle) SendBufSize() (int, error) {
	return getSockBufOpt(h.conn, unix.SO_SNDBUF)
}

func (h *udpHandle) SetRecvBufSize(bytes int) error {
	if err := h.conn.SetReadBuffer(bytes); err == nil {
		return nil
	}
	return setSockBufOpt(h.conn, unix.SO_RCVBUF, bytes)
}

func (h *udpHandle) RecvBufSize() (int, error) {
	return getSockBufOpt(h.conn, unix.SO_RCVBUF)
}

func (h *udpHandle) Close() error { return h.conn.Close() }

// setSockBufOpt recovers the raw file descriptor via netfd.GetFdFromConn and
// sets a socket buffer-size option directly, bypassing the half-of-value
// clamping net.UDPConn.Set{Read,Write}Buffer apply on Linux.
func setSockBufOpt(conn *net.UDPConn, opt, bytes int) error {
	fd := netfd.GetFdFromConn(conn)
	if fd < 0 {
		return fmt.Errorf("sockpool: could not recover raw fd for socket option %d", opt)
	}
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, opt, bytes)
}

func getSockBufOpt(conn *net.UDPConn, opt int) (int, error) {
	fd := netfd.GetFdFromConn(conn)
	if fd < 0 {
		return 0, fmt.Errorf("sockpool: could not recover raw fd for socket option %d", opt)
	}
	return unix.GetsockoptInt(fd, unix.SOL_SOCKET, opt)
}
