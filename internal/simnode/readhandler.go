// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package simnode

import (
	"github.com/sdrtestbed/iqtransport/codec"
	"github.com/sdrtestbed/iqtransport/wire"
)

const (
	argsOffset        = wire.TransportHeaderLen + wire.CommandHeaderLen
	responseHeaderLen = wire.TransportHeaderLen + wire.SampleHeaderLen
)

// ReadScenario configures a Read IQ/RSSI node handler: the source data a
// request is served from, and the failure injections the six end-to-end
// scenarios in spec.md §8 require.
type ReadScenario struct {
	Codec  codec.Codec
	Source codec.Sink // backing samples, indexed by absolute sample index
	RSSI   bool

	// DropOnce lists packet start-sample values to omit from the response
	// exactly once (simulates a single lost packet; subsequent requests for
	// the same start succeed).
	DropOnce map[uint32]bool

	// NotReadyOnce, if true, answers the very first request with a single
	// NODE_NOT_READY transport-flag response and nothing else.
	NotReadyOnce bool

	notReadySent bool
	dropped      map[uint32]bool
}

// NewReadHandler builds a Node.Handler implementing s.
func NewReadHandler(s *ReadScenario) func([]byte) [][]byte {
	if s.dropped == nil {
		s.dropped = make(map[uint32]bool, len(s.DropOnce))
		for k, v := range s.DropOnce {
			s.dropped[k] = v
		}
	}
	return func(req []byte) [][]byte {
		if len(req) < argsOffset+24 {
			return nil
		}
		args := req[argsOffset:]
		bufferID := uint16(wire.Arg(args, 0))
		start := wire.Arg(args, 1)
		numSamples := wire.Arg(args, 2)
		maxSamplesPerPkt := wire.Arg(args, 3) / 4
		numPkts := wire.Arg(args, 4)
		sampleIQID := uint8(wire.Arg(args, 5))

		if s.NotReadyOnce && !s.notReadySent {
			s.notReadySent = true
			b := make([]byte, wire.TransportHeaderLen)
			th := wire.TransportHeader{Flags: wire.FlagNodeNotReady}
			th.Encode(b)
			return [][]byte{b}
		}

		var out [][]byte
		offset, remaining := start, numSamples
		for i := uint32(0); i < numPkts && remaining > 0; i++ {
			count := maxSamplesPerPkt
			if remaining < count {
				count = remaining
			}
			if s.dropped[offset] {
				delete(s.dropped, offset)
				offset += count
				remaining -= count
				continue
			}

			pkt := make([]byte, responseHeaderLen+int(count)*4)
			th := wire.TransportHeader{}
			th.Encode(pkt[0:wire.TransportHeaderLen])
			sh := wire.SampleHeader{
				BufferID:   bufferID,
				SampleIQID: sampleIQID,
				Start:      offset,
				NumSamples: count,
			}
			sh.Encode(pkt[wire.TransportHeaderLen:responseHeaderLen])
			if s.RSSI {
				encodeRSSIFrom(pkt[responseHeaderLen:], s.Source, int(offset), int(count))
			} else {
				s.Codec.EncodeIQFrom(pkt[responseHeaderLen:], s.Source, int(offset), int(count))
			}
			out = append(out, pkt)

			offset += count
			remaining -= count
		}
		return out
	}
}

// encodeRSSIFrom packs 10-bit RSSI pairs from a *codec.DoubleSink's I slice
// (two real values per wire word, the inverse of codec's DecodeRSSIInto)
// purely for simulator use; production code never encodes RSSI since only
// the node produces RSSI responses.
func encodeRSSIFrom(payload []byte, src codec.Sink, startIdx, numSamples int) {
	ds, ok := src.(*codec.DoubleSink)
	if !ok {
		return
	}
	for k := 0; k < numSamples; k++ {
		a := uint16(ds.I[2*(startIdx+k)]) & 0x3FF
		b := uint16(ds.I[2*(startIdx+k)+1]) & 0x3FF
		word := uint32(a)<<16 | uint32(b)
		payload[k*4] = byte(word >> 24)
		payload[k*4+1] = byte(word >> 16)
		payload[k*4+2] = byte(word >> 8)
		payload[k*4+3] = byte(word)
	}
}
