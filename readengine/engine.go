// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package readengine drives one Read IQ / Read RSSI operation end to end
// (component C6, spec.md §4.5): request fan-out, per-packet tracking, gap
// detection, a minimal-retry sub-request, not-ready back-off, decode into a
// typed sink, and the per-(buffer,op) sequence-number check.
package readengine

import (
	"fmt"
	"time"

	"github.com/sdrtestbed/iqtransport/codec"
	"github.com/sdrtestbed/iqtransport/iotransport"
	"github.com/sdrtestbed/iqtransport/pacing"
	"github.com/sdrtestbed/iqtransport/protoerr"
	"github.com/sdrtestbed/iqtransport/seqtrack"
	"github.com/sdrtestbed/iqtransport/sockpool"
	"github.com/sdrtestbed/iqtransport/wire"
)

// Protocol constants from spec.md §6, kept local so this package carries no
// dependency on the root package.
const (
	NotReadyWaitTime = 100 * time.Millisecond
	NotReadyMaxRetry = 50
	MaxRetry         = 50
	TimeoutSpins     = 1e7
)

// argsOffset is where the six 32-bit argument slots begin in a command
// template: immediately after the transport and command headers.
const argsOffset = wire.TransportHeaderLen + wire.CommandHeaderLen

// responseHeaderLen is the transport + sample header prefix on every
// response packet, ahead of the sample payload.
const responseHeaderLen = wire.TransportHeaderLen + wire.SampleHeaderLen

// Logger is the narrow logging capability the engine needs.
type Logger interface {
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any) {}

// Metrics is the narrow counters capability the engine needs: gap retries,
// not-ready back-offs, and duplicate-sequence detections.
type Metrics interface {
	IncGapRetry()
	IncNotReadyBackoff()
	IncDuplicateSequence()
}

type nopMetrics struct{}

func (nopMetrics) IncGapRetry() {}
func (nopMetrics) IncNotReadyBackoff() {}
func (nopMetrics) IncDuplicateSequence() {}

// Params bundles one Read IQ / Read RSSI call's arguments, per spec.md
// §4.5/§6.
type Params struct {
	Handle      sockpool.Handle
	PeerIP      string
	Port        int
	CmdTemplate []byte // transport + command headers, args overwritten in a private copy
	MaxPktLen   int

	NumSamples       uint32
	StartSample      uint32
	InitialOffset    uint32 // sink offset base; resolves the Open Question in spec.md §9
	Buffer           uint16
	RSSI             bool
	MaxSamplesPerPkt uint32
	SampleIQID       uint8
	HWVersion        pacing.HardwareVersion

	Codec codec.Codec
	Sink  codec.Sink

	SeqTable  *seqtrack.Table
	SeqOp     seqtrack.Op
	SeqBuffer seqtrack.BufferID
	Severity  seqtrack.Severity

	Log     Logger
	Metrics Metrics

	// IdleSpinLimit overrides TimeoutSpins; zero means use the default.
	// Tests against internal/simnode set this low so a deliberately dropped
	// packet resolves in microseconds rather than 10^7 idle recv calls.
	IdleSpinLimit int
}

// Result reports what a Read call accomplished.
type Result struct {
	Count            uint32
	CmdsUsed         int
	SampleIQID       uint8
	DuplicateWaveform bool
}

func numPktsFor(numSamples, maxSamplesPerPkt uint32) uint32 {
	if maxSamplesPerPkt == 0 {
		return 0
	}
	n := numSamples / maxSamplesPerPkt
	if numSamples%maxSamplesPerPkt != 0 {
		n++
	}
	return n
}

func buildRequest(template []byte, bufferID uint16, start, numSamples, bytesPerPkt, numPkts uint32, sampleIQID uint8) []byte {
	buf := make([]byte, len(template))
	copy(buf, template)
	args := buf[argsOffset:]
	wire.SetArg(args, 0, uint32(bufferID))
	wire.SetArg(args, 1, start)
	wire.SetArg(args, 2, numSamples)
	wire.SetArg(args, 3, bytesPerPkt)
	wire.SetArg(args, 4, numPkts)
	wire.SetArg(args, 5, uint32(sampleIQID))
	return buf
}

// Read drives the state machine from spec.md §4.5: SEND_REQ -> AWAIT_PKT ->
// (gap retry | not-ready back-off)* -> DONE.
func Read(p Params) (Result, error) {
	if p.Log == nil {
		p.Log = nopLogger{}
	}
	if p.Metrics == nil {
		p.Metrics = nopMetrics{}
	}
	idleLimit := p.IdleSpinLimit
	if idleLimit == 0 {
		idleLimit = TimeoutSpins
	}

	totalNumPkts := numPktsFor(p.NumSamples, p.MaxSamplesPerPkt)
	expectedSumStarts := ExpectedSumStarts(totalNumPkts, p.StartSample, p.MaxSamplesPerPkt)

	var tracker Tracker
	seen := make(map[uint32]bool, totalNumPkts)

	cmdsUsed := 0
	notReadyRetries := 0
	gapRetries := 0
	warnedNotReady := false
	var lastSampleIQID uint8

	send := func(start, count, numPkts uint32) error {
		buf := buildRequest(p.CmdTemplate, p.Buffer, start, count, p.MaxSamplesPerPkt*4, numPkts, p.SampleIQID)
		cmdsUsed++
		return iotransport.Send(p.Handle, buf, p.PeerIP, p.Port)
	}

	reqStart, reqCount, reqNumPkts := p.StartSample, p.NumSamples, totalNumPkts
	if err := send(reqStart, reqCount, reqNumPkts); err != nil {
		return Result{}, err
	}

	for {
		idle := 0
		complete := false
		for {
			resp, err := iotransport.Recv(p.Handle, p.MaxPktLen)
			if err != nil {
				return Result{}, err
			}
			if resp == nil {
				idle++
				if idle >= idleLimit {
					break // timeout: fall through to gap detection
				}
				continue
			}
			idle = 0

			if len(resp) < wire.TransportHeaderLen {
				continue
			}
			th := wire.DecodeTransportHeader(resp)
			if th.NodeNotReady() {
				notReadyRetries++
				p.Metrics.IncNotReadyBackoff()
				if notReadyRetries > NotReadyMaxRetry {
					return Result{}, protoerr.ErrNotReadyRetriesExhausted
				}
				if !warnedNotReady {
					p.Log.Warnf("readengine: node not ready, backing off %s", NotReadyWaitTime)
					warnedNotReady = true
				}
				time.Sleep(NotReadyWaitTime)
				if err := send(reqStart, reqCount, reqNumPkts); err != nil {
					return Result{}, err
				}
				continue
			}

			if len(resp) < responseHeaderLen {
				continue
			}
			sh := wire.DecodeSampleHeader(resp[wire.TransportHeaderLen:])
			payload := resp[responseHeaderLen:]

			if sh.IQError() {
				return Result{}, protoerr.ErrNodeContinuousTX
			}
			if sh.IQNotReady() {
				if len(payload) < wire.BusyStatusLen {
					continue
				}
				busy := wire.DecodeBusyStatus(payload)
				wait := pacing.NodeBusyWaitTime(pacing.BusyStatus{
					TxStatus: busy.TxStatus, TxReadPtr: busy.TxReadPtr, TxLen: busy.TxLen,
					RxStatus: busy.RxStatus, RxWritePtr: busy.RxWritePtr, RxLen: busy.RxLen,
				})
				notReadyRetries++
				p.Metrics.IncNotReadyBackoff()
				if notReadyRetries > NotReadyMaxRetry {
					return Result{}, protoerr.ErrNotReadyRetriesExhausted
				}
				if !warnedNotReady {
					p.Log.Warnf("readengine: node reported busy, backing off %s", wait)
					warnedNotReady = true
				}
				time.Sleep(wait + 100*time.Microsecond)
				if err := send(reqStart, reqCount, reqNumPkts); err != nil {
					return Result{}, err
				}
				continue
			}

			notReadyRetries = 0
			count := sh.NumSamples
			if !seen[sh.Start] {
				sinkOffset := int(sh.Start - p.InitialOffset)
				if p.RSSI {
					p.Codec.DecodeRSSIInto(p.Sink, sinkOffset, payload, int(count))
				} else {
					p.Codec.DecodeIQInto(p.Sink, sinkOffset, payload, int(count))
				}
				tracker.Record(sh.Start, count)
				seen[sh.Start] = true
			}
			lastSampleIQID = sh.SampleIQID

			if tracker.SumCounts() == p.NumSamples && tracker.SumStarts() == expectedSumStarts {
				complete = true
				break
			}
		}

		if complete {
			break
		}

		gapStart, _, ok := tracker.FirstGap(totalNumPkts, p.StartSample, p.MaxSamplesPerPkt)
		if !ok {
			return Result{}, protoerr.ErrRetriesExhausted
		}
		gapRetries++
		p.Metrics.IncGapRetry()
		if gapRetries > MaxRetry {
			return Result{}, protoerr.ErrRetriesExhausted
		}
		remaining := p.NumSamples - (gapStart - p.StartSample)
		reqStart, reqCount = gapStart, remaining
		reqNumPkts = numPktsFor(remaining, p.MaxSamplesPerPkt)
		if err := send(reqStart, reqCount, reqNumPkts); err != nil {
			return Result{}, err
		}
	}

	dup := false
	if p.SeqTable != nil {
		dup = p.SeqTable.CheckAndUpdate(p.SeqOp, p.SeqBuffer, lastSampleIQID)
		if dup {
			p.Metrics.IncDuplicateSequence()
			switch p.Severity {
			case seqtrack.SeverityWarning:
				p.Log.Warnf("readengine: re-read of same captured waveform on buffer %v", p.SeqBuffer)
			case seqtrack.SeverityError:
				return Result{}, fmt.Errorf("readengine: %w (buffer %v)", protoerr.ErrDuplicateWaveform, p.SeqBuffer)
			}
		}
	}

	return Result{
		Count:             tracker.SumCounts(),
		CmdsUsed:          cmdsUsed,
		SampleIQID:        lastSampleIQID,
		DuplicateWaveform: dup,
	}, nil
}
