package iqtransport_test

import (
	"errors"
	"testing"

	iqtransport "github.com/sdrtestbed/iqtransport"
	"github.com/sdrtestbed/iqtransport/codec"
	"github.com/sdrtestbed/iqtransport/internal/simnode"
	"github.com/sdrtestbed/iqtransport/pacing"
	"github.com/sdrtestbed/iqtransport/protoerr"
	"github.com/sdrtestbed/iqtransport/readengine"
	"github.com/sdrtestbed/iqtransport/seqtrack"
	"github.com/sdrtestbed/iqtransport/wire"
)

// readCmdTemplate builds a minimal transport+command header prefix with
// room for the six 32-bit argument slots the read engine stamps in before
// sending, per spec.md §4.5.
func readCmdTemplate() []byte {
	return make([]byte, wire.TransportHeaderLen+wire.CommandHeaderLen+24)
}

func sourceWaveform(n int) *codec.DoubleSink {
	src := &codec.DoubleSink{I: make([]float64, n), Q: make([]float64, n)}
	for i := range src.I {
		src.I[i] = float64(i%200-100) / 200.0
		src.Q[i] = float64(i%50-25) / 50.0
	}
	return src
}

// Scenario 1: happy-path Read IQ.
func TestE2E_HappyPathReadIQ(t *testing.T) {
	src := sourceWaveform(1024)
	cdc, _ := codec.ByKind(codec.KindComplexDouble)
	scen := &simnode.ReadScenario{Codec: cdc, Source: src}
	node := simnode.New(simnode.NewReadHandler(scen))

	c := iqtransport.NewContext()
	res, err := c.Read(iqtransport.ReadParams{
		Handle:           node,
		NodeID:           "node-1",
		PeerIP:           "127.0.0.1",
		Port:             9000,
		CmdTemplate:      readCmdTemplate(),
		MaxPktLen:        9050,
		NumSamples:       1024,
		StartSample:      0,
		Buffers:          []iqtransport.BufferID{iqtransport.BufferA},
		MaxSamplesPerPkt: 256,
		DataType:         codec.KindComplexDouble,
		HWVersion:        pacing.HWVersion3,
		IdleSpinLimit:    4,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.CmdsUsed != 1 {
		t.Fatalf("CmdsUsed = %d, want 1", res.CmdsUsed)
	}
	got := res.Sinks[0].(*codec.DoubleSink)
	for i := range src.I {
		if codec.SaturateToFix16_15(got.I[i]) != codec.SaturateToFix16_15(src.I[i]) {
			t.Fatalf("sample %d: I mismatch got %v want %v", i, got.I[i], src.I[i])
		}
		if codec.SaturateToFix16_15(got.Q[i]) != codec.SaturateToFix16_15(src.Q[i]) {
			t.Fatalf("sample %d: Q mismatch got %v want %v", i, got.Q[i], src.Q[i])
		}
	}
}

// Scenario 2: one lost packet, gap retry.
func TestE2E_ReadIQ_OneLostPacket_GapRetry(t *testing.T) {
	src := sourceWaveform(1024)
	cdc, _ := codec.ByKind(codec.KindComplexDouble)
	scen := &simnode.ReadScenario{
		Codec:    cdc,
		Source:   src,
		DropOnce: map[uint32]bool{512: true},
	}
	node := simnode.New(simnode.NewReadHandler(scen))

	c := iqtransport.NewContext()
	res, err := c.Read(iqtransport.ReadParams{
		Handle:           node,
		NodeID:           "node-1",
		PeerIP:           "127.0.0.1",
		Port:             9000,
		CmdTemplate:      readCmdTemplate(),
		MaxPktLen:        9050,
		NumSamples:       1024,
		StartSample:      0,
		Buffers:          []iqtransport.BufferID{iqtransport.BufferA},
		MaxSamplesPerPkt: 256,
		DataType:         codec.KindComplexDouble,
		HWVersion:        pacing.HWVersion3,
		IdleSpinLimit:    4,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.CmdsUsed != 2 {
		t.Fatalf("CmdsUsed = %d, want 2", res.CmdsUsed)
	}
	got := res.Sinks[0].(*codec.DoubleSink)
	for i := range src.I {
		if codec.SaturateToFix16_15(got.I[i]) != codec.SaturateToFix16_15(src.I[i]) {
			t.Fatalf("sample %d: I mismatch after gap retry", i)
		}
	}
}

// Scenario 3: node-not-ready on Read.
func TestE2E_ReadIQ_NodeNotReady(t *testing.T) {
	src := sourceWaveform(1024)
	cdc, _ := codec.ByKind(codec.KindComplexDouble)
	scen := &simnode.ReadScenario{Codec: cdc, Source: src, NotReadyOnce: true}
	node := simnode.New(simnode.NewReadHandler(scen))

	c := iqtransport.NewContext()
	res, err := c.Read(iqtransport.ReadParams{
		Handle:           node,
		NodeID:           "node-1",
		PeerIP:           "127.0.0.1",
		Port:             9000,
		CmdTemplate:      readCmdTemplate(),
		MaxPktLen:        9050,
		NumSamples:       1024,
		StartSample:      0,
		Buffers:          []iqtransport.BufferID{iqtransport.BufferA},
		MaxSamplesPerPkt: 256,
		DataType:         codec.KindComplexDouble,
		HWVersion:        pacing.HWVersion3,
		IdleSpinLimit:    4,
	})
	if err != nil {
		t.Fatal(err)
	}
	got := res.Sinks[0].(*codec.DoubleSink)
	for i := range src.I {
		if codec.SaturateToFix16_15(got.I[i]) != codec.SaturateToFix16_15(src.I[i]) {
			t.Fatalf("sample %d: I mismatch after not-ready retry", i)
		}
	}
}

// Scenario 4: Write IQ fast-path success.
func TestE2E_WriteIQ_FastPath(t *testing.T) {
	writeCmdTemplate := make([]byte, wire.TransportHeaderLen)
	src := sourceWaveform(1024)
	scen := &simnode.WriteScenario{}
	node := simnode.New(simnode.NewWriteHandler(scen))

	c := iqtransport.NewContext()
	res, err := c.Write(iqtransport.WriteParams{
		Handle:           node,
		PeerIP:           "127.0.0.1",
		Port:             9000,
		CmdTemplate:      writeCmdTemplate,
		MaxPktLen:        9050,
		NumSamples:       1024,
		StartSample:      0,
		Buffers:          []iqtransport.BufferID{iqtransport.BufferA},
		MaxSamplesPerPkt: 256,
		HWVersion:        pacing.HWVersion3,
		CheckChecksum:    true,
		DataType:         codec.KindComplexDouble,
		Src:              src,
		IdleSpinLimit:    4,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.CmdsUsed != 4 {
		t.Fatalf("CmdsUsed = %d, want 4", res.CmdsUsed)
	}
	if len(res.Checksums) != 1 {
		t.Fatalf("len(Checksums) = %d, want 1", len(res.Checksums))
	}
}

// Scenario 5: Write IQ fast-to-slow downgrade.
func TestE2E_WriteIQ_FastToSlowDowngrade(t *testing.T) {
	writeCmdTemplate := make([]byte, wire.TransportHeaderLen)
	src := sourceWaveform(1024)
	scen := &simnode.WriteScenario{MismatchOnce: true}
	node := simnode.New(simnode.NewWriteHandler(scen))

	c := iqtransport.NewContext()
	res, err := c.Write(iqtransport.WriteParams{
		Handle:           node,
		PeerIP:           "127.0.0.1",
		Port:             9000,
		CmdTemplate:      writeCmdTemplate,
		MaxPktLen:        9050,
		NumSamples:       1024,
		StartSample:      0,
		Buffers:          []iqtransport.BufferID{iqtransport.BufferA},
		MaxSamplesPerPkt: 256,
		HWVersion:        pacing.HWVersion3,
		CheckChecksum:    true,
		DataType:         codec.KindComplexDouble,
		Src:              src,
		IdleSpinLimit:    4,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.CmdsUsed != 8 {
		t.Fatalf("CmdsUsed = %d, want 8 (4 dropped fast attempt + 4 slow-mode retransmit)", res.CmdsUsed)
	}
}

// Scenario 6: re-read duplicate-sequence detection. Exercised directly
// against readengine so both calls can carry the identical node-side
// sample_iq_id the scenario calls for -- the root dispatcher always mints a
// fresh one per call, so it cannot express "same id twice" on its own.
func TestE2E_ReadIQ_DuplicateSequence(t *testing.T) {
	newNode := func() (*simnode.Node, *codec.DoubleSink) {
		src := sourceWaveform(256)
		cdc, _ := codec.ByKind(codec.KindComplexDouble)
		scen := &simnode.ReadScenario{Codec: cdc, Source: src}
		return simnode.New(simnode.NewReadHandler(scen)), src
	}

	doRead := func(node *simnode.Node, table *seqtrack.Table, severity seqtrack.Severity) (readengine.Result, error) {
		cdc, _ := codec.ByKind(codec.KindComplexDouble)
		sink := cdc.NewSink(256)
		return readengine.Read(readengine.Params{
			Handle:           node,
			PeerIP:           "127.0.0.1",
			Port:             9000,
			CmdTemplate:      readCmdTemplate(),
			MaxPktLen:        9050,
			NumSamples:       256,
			StartSample:      0,
			Buffer:           uint16(iqtransport.BufferA),
			MaxSamplesPerPkt: 256,
			SampleIQID:       42,
			HWVersion:        pacing.HWVersion3,
			Codec:            cdc,
			Sink:             sink,
			SeqTable:         table,
			SeqOp:            seqtrack.OpReadIQ,
			SeqBuffer:        seqtrack.BufferA,
			Severity:         severity,
			IdleSpinLimit:    4,
		})
	}

	t.Run("error severity fails on second read", func(t *testing.T) {
		table := &seqtrack.Table{}
		node1, _ := newNode()
		if _, err := doRead(node1, table, seqtrack.SeverityError); err != nil {
			t.Fatalf("first read: %v", err)
		}
		node2, _ := newNode()
		_, err := doRead(node2, table, seqtrack.SeverityError)
		if !errors.Is(err, protoerr.ErrDuplicateWaveform) {
			t.Fatalf("second read error = %v, want ErrDuplicateWaveform", err)
		}
	})

	t.Run("warning severity succeeds on second read", func(t *testing.T) {
		table := &seqtrack.Table{}
		node1, _ := newNode()
		if _, err := doRead(node1, table, seqtrack.SeverityWarning); err != nil {
			t.Fatalf("first read: %v", err)
		}
		node2, _ := newNode()
		res, err := doRead(node2, table, seqtrack.SeverityWarning)
		if err != nil {
			t.Fatalf("second read: %v", err)
		}
		if !res.DuplicateWaveform {
			t.Fatal("expected DuplicateWaveform to be reported on the second read")
		}
	})
}
