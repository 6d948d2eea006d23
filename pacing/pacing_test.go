package pacing_test

import (
	"testing"
	"time"

	"github.com/sdrtestbed/iqtransport/pacing"
)

func TestWriteWaitTime_UserOverrideWins(t *testing.T) {
	override := 7 * time.Microsecond
	got := pacing.WriteWaitTime(pacing.HWVersion2, 0xF, 100, &override, nil)
	if got != override {
		t.Fatalf("got %v, want override %v", got, override)
	}
}

func TestWriteWaitTime_HWVersion2(t *testing.T) {
	// 80 + 80*popcount(mask)
	cases := []struct {
		mask uint32
		want time.Duration
	}{
		{0x0, 80 * time.Microsecond},
		{0x1, 160 * time.Microsecond},
		{0xF, (80 + 80*4) * time.Microsecond},
	}
	for _, c := range cases {
		got := pacing.WriteWaitTime(pacing.HWVersion2, c.mask, 100, nil, nil)
		if got != c.want {
			t.Errorf("mask %#x: got %v, want %v", c.mask, got, c.want)
		}
	}
}

func TestWriteWaitTime_HWVersion3(t *testing.T) {
	if got := pacing.WriteWaitTime(pacing.HWVersion3, 0xF, 1024, nil, nil); got != 50*time.Microsecond {
		t.Errorf("got %v, want 50us", got)
	}
	if got := pacing.WriteWaitTime(pacing.HWVersion3, 0x3, 1024, nil, nil); got != 40*time.Microsecond {
		t.Errorf("got %v, want 40us", got)
	}
	if got := pacing.WriteWaitTime(pacing.HWVersion3, 0xF, 4096, nil, nil); got != 0 {
		t.Errorf("got %v, want 0", got)
	}
}

func TestWriteWaitTime_UnknownVersionDiagnostic(t *testing.T) {
	called := false
	got := pacing.WriteWaitTime(99, 0, 100, nil, func(hw pacing.HardwareVersion) {
		called = true
		if hw != 99 {
			t.Errorf("got hw %v, want 99", hw)
		}
	})
	if got != 0 {
		t.Errorf("got %v, want 0", got)
	}
	if !called {
		t.Error("unknownVersion callback was not invoked")
	}
}

func TestNodeBusyWaitTime(t *testing.T) {
	s := pacing.BusyStatus{
		TxStatus: 1, TxReadPtr: 0, TxLen: 1600,
		RxStatus: 1, RxWritePtr: 800, RxLen: 1600,
	}
	// tx_wait = 1600/160 = 10us, rx_wait = (1600-800)/160 = 5us -> max = 10us
	if got := pacing.NodeBusyWaitTime(s); got != 10*time.Microsecond {
		t.Fatalf("got %v, want 10us", got)
	}
}

func TestNodeBusyWaitTime_BothIdle(t *testing.T) {
	if got := pacing.NodeBusyWaitTime(pacing.BusyStatus{}); got != 0 {
		t.Fatalf("got %v, want 0", got)
	}
}
