// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package codec

// RawSink holds raw 32-bit words passed through opaquely -- no scaling, no
// I/Q split. For a Read RSSI with the raw data type it holds the real-valued
// output, where each wire word yields two 10-bit unsigned entries (spec.md §3).
type RawSink struct {
	V []uint32
}

func (s *RawSink) Kind() Kind { return KindRaw }
func (s *RawSink) Len() int   { return len(s.V) }

type rawCodec struct{}

func (rawCodec) Kind() Kind       { return KindRaw }
func (rawCodec) ElementSize() int { return 4 }
func (rawCodec) NewSink(n int) Sink {
	return &RawSink{V: make([]uint32, n)}
}

func (rawCodec) DecodeIQInto(sink Sink, sinkOffset int, payload []byte, numSamples int) {
	rs := sink.(*RawSink)
	for k := 0; k < numSamples; k++ {
		rs.V[sinkOffset+k] = wireWord(payload[k*4 : k*4+4])
	}
}

func (rawCodec) DecodeRSSIInto(sink Sink, sinkOffset int, payload []byte, numSamples int) {
	rs := sink.(*RawSink)
	for k := 0; k < numSamples; k++ {
		word := wireWord(payload[k*4 : k*4+4])
		a, b := DecodeRSSIWord(word)
		rs.V[2*(sinkOffset+k)] = uint32(a)
		rs.V[2*(sinkOffset+k)+1] = uint32(b)
	}
}

// EncodeIQFrom passes raw words through unchanged. The Fletcher
// reinforcement XOR still uses the high/low 16-bit halves of the last word,
// matching the node's own treatment of the wire word as an opaque I/Q pair.
func (rawCodec) EncodeIQFrom(payload []byte, src Sink, srcOffset int, numSamples int) (lastI, lastQ int16) {
	rs := src.(*RawSink)
	for k := 0; k < numSamples; k++ {
		word := rs.V[srcOffset+k]
		putWireWord(payload[k*4:k*4+4], word)
		lastI, lastQ = SplitWireWord(word)
	}
	return lastI, lastQ
}
