// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package codec converts between the four host-side sample representations
// (complex double, complex single, complex int16, raw uint32) and the
// 32-bit big-endian packed wire sample format, plus the 10-bit RSSI unpack.
//
// Each representation is a concrete Codec value rather than a type switch
// inside the engines' hot loops: an engine selects one Codec (and the
// matching Sink) once per operation and decodes/encodes whole packets
// through it, per spec.md §9 Design Notes ("Avoid large switch ladders
// inside hot loops by monomorphizing per-type").
package codec

import "encoding/binary"

// Kind is the wire data-type code carried in the host API, per spec.md §6.
type Kind uint8

const (
	KindComplexDouble Kind = 0
	KindComplexSingle Kind = 1
	KindComplexInt16  Kind = 2
	KindRaw           Kind = 3
)

func (k Kind) String() string {
	switch k {
	case KindComplexDouble:
		return "complex128"
	case KindComplexSingle:
		return "complex64"
	case KindComplexInt16:
		return "int16complex"
	case KindRaw:
		return "raw32"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the four recognized wire data-type codes.
func (k Kind) Valid() bool { return k <= KindRaw }

// Sink is the output array a Read operation decodes into. Concrete
// implementations (DoubleSink, SingleSink, Int16Sink, RawSink) wrap a typed
// Go slice so that, once an engine has picked the Codec for an operation, no
// further per-sample type switching is needed: each Codec implementation
// asserts its own concrete Sink type once per packet, not once per sample.
type Sink interface {
	Kind() Kind
	Len() int
}

// Codec is the capability set every sample representation implements,
// operating on a whole packet's worth of samples at a time.
type Codec interface {
	Kind() Kind

	// ElementSize is the wire byte size of one sample (always 4: one
	// 32-bit word), kept as a capability rather than a constant so engines
	// that iterate wire offsets don't need a type switch of their own.
	ElementSize() int

	// NewSink allocates a Sink of length n for this Codec's representation.
	NewSink(n int) Sink

	// DecodeIQInto unpacks numSamples consecutive 32-bit big-endian wire
	// words from payload into sink starting at sinkOffset.
	DecodeIQInto(sink Sink, sinkOffset int, payload []byte, numSamples int)

	// DecodeRSSIInto unpacks numSamples consecutive 32-bit big-endian wire
	// words from payload, each yielding two 10-bit RSSI values, into sink
	// (this Codec's own Sink type; for the complex sinks only the I slice is
	// written) starting at 2*sinkOffset.
	DecodeRSSIInto(sink Sink, sinkOffset int, payload []byte, numSamples int)

	// EncodeIQFrom packs numSamples consecutive samples from src starting
	// at srcOffset into payload as big-endian wire words, returning the
	// Fix_16_15 (I, Q) halves of the last sample packed -- the write engine
	// feeds their XOR into the Fletcher-32 reinforcement per spec.md §4.2.
	EncodeIQFrom(payload []byte, src Sink, srcOffset int, numSamples int) (lastI, lastQ int16)
}

// ByKind returns the Codec implementing the given wire data-type code, or
// (nil, false) if k is not one of the four recognized codes.
func ByKind(k Kind) (Codec, bool) {
	switch k {
	case KindComplexDouble:
		return doubleCodec{}, true
	case KindComplexSingle:
		return singleCodec{}, true
	case KindComplexInt16:
		return int16Codec{}, true
	case KindRaw:
		return rawCodec{}, true
	default:
		return nil, false
	}
}

// SaturateToFix16_15 implements the saturating double/float -> Fix_16_15
// contract from spec.md §4.1:
//
//	tmp = round_toward_zero(x * 32768)
//	if x >= +1.0 -> 0x7FFF
//	if x < -1.0  -> 0x8000
//	else         -> (int16) tmp
func SaturateToFix16_15(x float64) int16 {
	if x >= 1.0 {
		return 0x7FFF
	}
	if x < -1.0 {
		return -0x8000
	}
	return int16(int32(x * 32768))
}

// Fix16_15ToDouble recovers a value in [-1, +0.999969...] from a Fix_16_15.
func Fix16_15ToDouble(v int16) float64 {
	return float64(v) / 32768.0
}

// EncodeWireWord packs a Fix_16_15 (i, q) pair into the on-wire 32-bit word:
// high 16 bits = I, low 16 bits = Q.
func EncodeWireWord(i, q int16) uint32 {
	return uint32(uint16(i))<<16 | uint32(uint16(q))
}

// SplitWireWord unpacks the on-wire 32-bit word into its I/Q Fix_16_15 halves.
func SplitWireWord(word uint32) (i, q int16) {
	return int16(word >> 16), int16(word)
}

// DecodeRSSIWord unpacks a wire sample into the two packed 10-bit RSSI
// values: out[0] = (word>>16)&0x3FF, out[1] = word&0x3FF.
func DecodeRSSIWord(word uint32) (a, b uint16) {
	return uint16((word >> 16) & 0x3FF), uint16(word & 0x3FF)
}

func putWireWord(b []byte, word uint32)  { binary.BigEndian.PutUint32(b, word) }
func wireWord(b []byte) uint32           { return binary.BigEndian.Uint32(b) }
