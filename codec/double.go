// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package codec

// DoubleSink holds decoded complex-double samples in [-1, +1].
type DoubleSink struct {
	I, Q []float64
}

func (s *DoubleSink) Kind() Kind { return KindComplexDouble }
func (s *DoubleSink) Len() int   { return len(s.I) }

type doubleCodec struct{}

func (doubleCodec) Kind() Kind        { return KindComplexDouble }
func (doubleCodec) ElementSize() int  { return 4 }
func (doubleCodec) NewSink(n int) Sink {
	return &DoubleSink{I: make([]float64, n), Q: make([]float64, n)}
}

func (doubleCodec) DecodeIQInto(sink Sink, sinkOffset int, payload []byte, numSamples int) {
	ds := sink.(*DoubleSink)
	for k := 0; k < numSamples; k++ {
		word := wireWord(payload[k*4 : k*4+4])
		i, q := SplitWireWord(word)
		ds.I[sinkOffset+k] = Fix16_15ToDouble(i)
		ds.Q[sinkOffset+k] = Fix16_15ToDouble(q)
	}
}

func (doubleCodec) DecodeRSSIInto(sink Sink, sinkOffset int, payload []byte, numSamples int) {
	ds := sink.(*DoubleSink)
	for k := 0; k < numSamples; k++ {
		word := wireWord(payload[k*4 : k*4+4])
		a, b := DecodeRSSIWord(word)
		ds.I[2*(sinkOffset+k)] = float64(a)
		ds.I[2*(sinkOffset+k)+1] = float64(b)
	}
}

func (doubleCodec) EncodeIQFrom(payload []byte, src Sink, srcOffset int, numSamples int) (lastI, lastQ int16) {
	ds := src.(*DoubleSink)
	for k := 0; k < numSamples; k++ {
		i := SaturateToFix16_15(ds.I[srcOffset+k])
		var q int16
		if ds.Q != nil {
			q = SaturateToFix16_15(ds.Q[srcOffset+k])
		}
		putWireWord(payload[k*4:k*4+4], EncodeWireWord(i, q))
		lastI, lastQ = i, q
	}
	return lastI, lastQ
}
