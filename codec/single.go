// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package codec

// SingleSink holds decoded complex-single (float32) samples in [-1, +1].
type SingleSink struct {
	I, Q []float32
}

func (s *SingleSink) Kind() Kind { return KindComplexSingle }
func (s *SingleSink) Len() int   { return len(s.I) }

type singleCodec struct{}

func (singleCodec) Kind() Kind       { return KindComplexSingle }
func (singleCodec) ElementSize() int { return 4 }
func (singleCodec) NewSink(n int) Sink {
	return &SingleSink{I: make([]float32, n), Q: make([]float32, n)}
}

func (singleCodec) DecodeIQInto(sink Sink, sinkOffset int, payload []byte, numSamples int) {
	ss := sink.(*SingleSink)
	for k := 0; k < numSamples; k++ {
		word := wireWord(payload[k*4 : k*4+4])
		i, q := SplitWireWord(word)
		ss.I[sinkOffset+k] = float32(Fix16_15ToDouble(i))
		ss.Q[sinkOffset+k] = float32(Fix16_15ToDouble(q))
	}
}

func (singleCodec) DecodeRSSIInto(sink Sink, sinkOffset int, payload []byte, numSamples int) {
	ss := sink.(*SingleSink)
	for k := 0; k < numSamples; k++ {
		word := wireWord(payload[k*4 : k*4+4])
		a, b := DecodeRSSIWord(word)
		ss.I[2*(sinkOffset+k)] = float32(a)
		ss.I[2*(sinkOffset+k)+1] = float32(b)
	}
}

func (singleCodec) EncodeIQFrom(payload []byte, src Sink, srcOffset int, numSamples int) (lastI, lastQ int16) {
	ss := src.(*SingleSink)
	for k := 0; k < numSamples; k++ {
		i := SaturateToFix16_15(float64(ss.I[srcOffset+k]))
		var q int16
		if ss.Q != nil {
			q = SaturateToFix16_15(float64(ss.Q[srcOffset+k]))
		}
		putWireWord(payload[k*4:k*4+4], EncodeWireWord(i, q))
		lastI, lastQ = i, q
	}
	return lastI, lastQ
}
