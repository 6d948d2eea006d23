// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command iqsim stands in for a node on a UDP port: it answers Read IQ and
// Write IQ requests the way internal/simnode does in tests, but over a real
// socket, so a developer can point a host bridge at a fixed address instead
// of real hardware.
//
// iqsim plays the node's role (reply-to-sender), which the rest of this
// module never needs -- sockpool.Handle is shaped for the host's role
// (send to a known peer, receive whatever answers), so iqsim talks to its
// socket directly rather than through that interface.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"

	"github.com/sdrtestbed/iqtransport/codec"
	"github.com/sdrtestbed/iqtransport/internal/simnode"
)

func run(bindAddr string, port int, numSamples int, dropStart int) error {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP(bindAddr), Port: port})
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer conn.Close()

	src := &codec.DoubleSink{I: make([]float64, numSamples), Q: make([]float64, numSamples)}
	for i := range src.I {
		src.I[i] = float64(i%200-100) / 200.0
		src.Q[i] = float64(i%50-25) / 50.0
	}
	cdc, _ := codec.ByKind(codec.KindComplexDouble)

	readScen := &simnode.ReadScenario{Codec: cdc, Source: src}
	if dropStart >= 0 {
		readScen.DropOnce = map[uint32]bool{uint32(dropStart): true}
	}
	readHandler := simnode.NewReadHandler(readScen)
	writeHandler := simnode.NewWriteHandler(&simnode.WriteScenario{})

	log.Printf("iqsim: listening on %s:%d, serving %d samples", bindAddr, port, numSamples)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		conn.Close()
	}()

	buf := make([]byte, 9050)
	for {
		n, peer, err := conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("recv: %w", err)
		}
		req := append([]byte(nil), buf[:n]...)

		var responses [][]byte
		if isWriteRequest(req) {
			responses = writeHandler(req)
		} else {
			responses = readHandler(req)
		}
		for _, resp := range responses {
			if _, err := conn.WriteToUDP(resp, peer); err != nil {
				return fmt.Errorf("send: %w", err)
			}
		}
	}
}

// isWriteRequest distinguishes an inbound Write IQ packet (sample header
// directly after the transport header) from a Read IQ command (transport +
// command header + six argument slots) by length: a Read command is
// exactly TransportHeaderLen+CommandHeaderLen+24 bytes; a Write packet's
// payload varies with its sample count and is never that exact size for
// iqsim's fixed scenario parameters.
func isWriteRequest(req []byte) bool {
	const readCmdLen = 14 + 8 + 24
	return len(req) != readCmdLen
}

func main() {
	bindAddr := flag.String("addr", "127.0.0.1", "local address to bind")
	port := flag.Int("port", 9000, "UDP port to bind")
	numSamples := flag.Int("samples", 4096, "number of samples the Read IQ scenario serves")
	dropStart := flag.Int("drop-start", -1, "if set, drop the packet starting at this sample index once")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(*bindAddr, *port, *numSamples, *dropStart); err != nil {
		fmt.Fprintf(os.Stderr, "iqsim: %s\n", err)
		os.Exit(1)
	}
}
