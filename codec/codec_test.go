package codec_test

import (
	"encoding/binary"
	"math"
	"testing"
	"testing/quick"

	"github.com/sdrtestbed/iqtransport/codec"
)

func TestSaturateToFix16_15_Boundaries(t *testing.T) {
	cases := []struct {
		x    float64
		want int16
	}{
		{1.0, 0x7FFF},
		{1.5, 0x7FFF},
		{math.Inf(1), 0x7FFF},
		{-1.0, -0x8000},
		{-2.0, -0x8000},
		{math.Inf(-1), -0x8000},
		{0, 0},
	}
	for _, c := range cases {
		got := codec.SaturateToFix16_15(c.x)
		if got != c.want {
			t.Errorf("SaturateToFix16_15(%v) = %#x, want %#x", c.x, uint16(got), uint16(c.want))
		}
	}
}

// For any double x > +1.0, encode(x) = 0x7FFF; for any x < -1.0, encode(x) = 0x8000.
func TestSaturateToFix16_15_Property(t *testing.T) {
	f := func(x float64) bool {
		if math.IsNaN(x) {
			return true
		}
		got := codec.SaturateToFix16_15(x)
		switch {
		case x >= 1.0:
			return got == 0x7FFF
		case x < -1.0:
			return got == -0x8000
		default:
			want := int16(int32(x * 32768))
			return got == want
		}
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 10000}); err != nil {
		t.Error(err)
	}
}

// For any integer in [-32768, 32767], decode->encode is identity when the
// decoder is the double path and the encoder saturates at +1.0.
func TestRoundTrip_Int16ThroughDouble(t *testing.T) {
	for v := -32768; v <= 32767; v += 37 {
		d := codec.Fix16_15ToDouble(int16(v))
		back := codec.SaturateToFix16_15(d)
		if int(back) != v {
			t.Fatalf("round trip mismatch for %d: got %d via %v", v, back, d)
		}
	}
}

// At +1.0 the encoded value is exactly 0x7FFF and decoded back is +32767/32768.
func TestEncodeDecode_PlusOne(t *testing.T) {
	enc := codec.SaturateToFix16_15(1.0)
	if enc != 0x7FFF {
		t.Fatalf("encode(1.0) = %#x, want 0x7FFF", uint16(enc))
	}
	dec := codec.Fix16_15ToDouble(enc)
	want := 32767.0 / 32768.0
	if dec != want {
		t.Fatalf("decode(0x7FFF) = %v, want %v", dec, want)
	}
}

func TestDecodeRSSIWord(t *testing.T) {
	word := uint32(0x03FF0155)
	a, b := codec.DecodeRSSIWord(word)
	if a != 0x3FF || b != 0x155 {
		t.Fatalf("got a=%#x b=%#x", a, b)
	}
}

func TestWireWordRoundTrip(t *testing.T) {
	f := func(i, q int16) bool {
		word := codec.EncodeWireWord(i, q)
		gi, gq := codec.SplitWireWord(word)
		return gi == i && gq == q
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestDoubleCodec_DecodeIQInto(t *testing.T) {
	c, ok := codec.ByKind(codec.KindComplexDouble)
	if !ok {
		t.Fatal("expected double codec")
	}
	sink := c.NewSink(4).(*codec.DoubleSink)
	payload := make([]byte, 16)
	word := codec.EncodeWireWord(0x7FFF, -0x8000)
	binary.BigEndian.PutUint32(payload[0:4], word)
	c.DecodeIQInto(sink, 0, payload[0:4], 1)
	if sink.I[0] <= 0.999 || sink.I[0] >= 1.0 {
		t.Fatalf("I = %v, want near +1", sink.I[0])
	}
	if sink.Q[0] != -1.0 {
		t.Fatalf("Q = %v, want -1.0", sink.Q[0])
	}
}

func TestRawCodec_PassThrough(t *testing.T) {
	c, _ := codec.ByKind(codec.KindRaw)
	sink := c.NewSink(2).(*codec.RawSink)
	src := &codec.RawSink{V: []uint32{0xDEADBEEF, 0x12345678}}
	payload := make([]byte, 8)
	c.EncodeIQFrom(payload, src, 0, 2)
	c.DecodeIQInto(sink, 0, payload, 2)
	if sink.V[0] != 0xDEADBEEF || sink.V[1] != 0x12345678 {
		t.Fatalf("got %#x %#x", sink.V[0], sink.V[1])
	}
}
