// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package codec

// Int16Sink holds decoded complex-int16 samples. Unlike the floating-point
// representations, int16 samples pass through the wire Fix_16_15 value
// directly with no scaling.
type Int16Sink struct {
	I, Q []int16
}

func (s *Int16Sink) Kind() Kind { return KindComplexInt16 }
func (s *Int16Sink) Len() int   { return len(s.I) }

type int16Codec struct{}

func (int16Codec) Kind() Kind       { return KindComplexInt16 }
func (int16Codec) ElementSize() int { return 4 }
func (int16Codec) NewSink(n int) Sink {
	return &Int16Sink{I: make([]int16, n), Q: make([]int16, n)}
}

func (int16Codec) DecodeIQInto(sink Sink, sinkOffset int, payload []byte, numSamples int) {
	is := sink.(*Int16Sink)
	for k := 0; k < numSamples; k++ {
		word := wireWord(payload[k*4 : k*4+4])
		i, q := SplitWireWord(word)
		is.I[sinkOffset+k] = i
		is.Q[sinkOffset+k] = q
	}
}

func (int16Codec) DecodeRSSIInto(sink Sink, sinkOffset int, payload []byte, numSamples int) {
	is := sink.(*Int16Sink)
	for k := 0; k < numSamples; k++ {
		word := wireWord(payload[k*4 : k*4+4])
		a, b := DecodeRSSIWord(word)
		is.I[2*(sinkOffset+k)] = int16(a)
		is.I[2*(sinkOffset+k)+1] = int16(b)
	}
}

func (int16Codec) EncodeIQFrom(payload []byte, src Sink, srcOffset int, numSamples int) (lastI, lastQ int16) {
	is := src.(*Int16Sink)
	for k := 0; k < numSamples; k++ {
		i := is.I[srcOffset+k]
		var q int16
		if is.Q != nil {
			q = is.Q[srcOffset+k]
		}
		putWireWord(payload[k*4:k*4+4], EncodeWireWord(i, q))
		lastI, lastQ = i, q
	}
	return lastI, lastQ
}
