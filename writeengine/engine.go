// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package writeengine drives one Write IQ operation end to end (component
// C7, spec.md §4.6): slicing, header/flag sequencing, checksum accumulation,
// fast/slow mode switching, response processing, pacing, and not-ready
// restart.
package writeengine

import (
	"errors"
	"time"

	"github.com/sdrtestbed/iqtransport/checksum"
	"github.com/sdrtestbed/iqtransport/codec"
	"github.com/sdrtestbed/iqtransport/iotransport"
	"github.com/sdrtestbed/iqtransport/pacing"
	"github.com/sdrtestbed/iqtransport/protoerr"
	"github.com/sdrtestbed/iqtransport/sockpool"
	"github.com/sdrtestbed/iqtransport/wire"
)

// MaxRetry and TimeoutSpins mirror spec.md §6; kept local so this package
// carries no dependency on the root package.
const (
	MaxRetry     = 50
	TimeoutSpins = 1e7
)

const packetHeaderLen = wire.TransportHeaderLen + wire.SampleHeaderLen

// Logger is the narrow logging capability the engine needs.
type Logger interface {
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any) {}

// Metrics is the narrow counters capability the engine needs: not-ready
// back-offs and fast-mode checksum mismatches.
type Metrics interface {
	IncNotReadyBackoff()
	IncChecksumMismatch()
}

type nopMetrics struct{}

func (nopMetrics) IncNotReadyBackoff() {}
func (nopMetrics) IncChecksumMismatch() {}

// errAckTimeout signals that no ack arrived within the idle-spin budget for
// the current packet; the caller resends that same packet rather than
// aborting, per spec.md §4.6's "share the read engine's spin-counter
// discipline" retry bookkeeping.
var errAckTimeout = errors.New("writeengine: ack timeout")

// Params bundles one Write IQ call's arguments, per spec.md §4.6/§6.
type Params struct {
	Handle      sockpool.Handle
	PeerIP      string
	Port        int
	CmdTemplate []byte // transport header template: dest_id/src_id/pkt_type preset
	MaxPktLen   int

	NumSamples       uint32
	StartSample      uint32
	Buffer           uint16
	MaxSamplesPerPkt uint32
	HWVersion        pacing.HardwareVersion
	CheckChecksum    bool
	SampleIQID       uint8

	Codec codec.Codec
	Src   codec.Sink

	WriteWaitOverride *time.Duration

	Log           Logger
	Metrics       Metrics
	IdleSpinLimit int
}

// Result reports what a Write call accomplished.
type Result struct {
	SamplesWritten uint32
	CmdsUsed       int
	Checksum       uint32
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

type ackResult struct {
	hasChecksum bool
	checksum    uint32
	busy        *pacing.BusyStatus
}

// awaitAck waits for a Write acknowledgement whose echoed sample_iq_id
// matches expectedID, discarding responses for other operations. It returns
// errAckTimeout if idleLimit idle recvs pass with no matching response.
func awaitAck(p Params, idleLimit int, expectedID uint8) (ackResult, error) {
	idle := 0
	for {
		resp, err := iotransport.Recv(p.Handle, p.MaxPktLen)
		if err != nil {
			return ackResult{}, err
		}
		if resp == nil {
			idle++
			if idle >= idleLimit {
				return ackResult{}, errAckTimeout
			}
			continue
		}
		idle = 0

		if len(resp) < packetHeaderLen+8 {
			continue
		}
		sh := wire.DecodeSampleHeader(resp[wire.TransportHeaderLen:])
		payload := resp[packetHeaderLen:]

		status, sampleIQID := wire.DecodeWriteResponse(payload)
		if uint8(sampleIQID) != expectedID {
			continue
		}
		if sh.IQError() {
			return ackResult{}, protoerr.ErrNodeContinuousTX
		}
		if sh.IQNotReady() {
			if len(payload) < 8+wire.BusyStatusLen {
				continue
			}
			b := wire.DecodeBusyStatus(payload[8:])
			bs := pacing.BusyStatus{
				TxStatus: b.TxStatus, TxReadPtr: b.TxReadPtr, TxLen: b.TxLen,
				RxStatus: b.RxStatus, RxWritePtr: b.RxWritePtr, RxLen: b.RxLen,
			}
			return ackResult{busy: &bs}, nil
		}
		if status == wire.StatusSuccess {
			if len(payload) < 12 {
				continue
			}
			return ackResult{hasChecksum: true, checksum: wire.DecodeWriteChecksum(payload[8:12])}, nil
		}
		return ackResult{}, nil
	}
}

// Write drives the per-packet loop from spec.md §4.6, restarting the whole
// operation on a not-ready back-off or a fast-mode checksum mismatch.
func Write(p Params) (Result, error) {
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

	baseHeader := wire.TransportHeader{}
	if len(p.CmdTemplate) >= wire.TransportHeaderLen {
		baseHeader = wire.DecodeTransportHeader(p.CmdTemplate)
	}

	slowMode := false
	warnedChecksumFallback := false
	warnedNotReady := false
	notReadyRetries := 0
	cmdsUsed := 0

restartLoop:
	for {
		var fletcher checksum.State
		offset := p.StartSample
		timeoutRetries := 0
		var finalChecksum uint32
		var seq uint16

		for i := uint32(0); i < totalNumPkts; {
			count := p.MaxSamplesPerPkt
			if remaining := p.NumSamples - (offset - p.StartSample); remaining < count {
				count = remaining
			}
			packetLen := packetHeaderLen + int(4*count)
			packet := make([]byte, packetLen)

			needsAck := slowMode || (i == totalNumPkts-1 && p.CheckChecksum)

			th := baseHeader
			th.SeqNum = seq
			th.Flags = 0
			if needsAck {
				th.Flags |= wire.FlagRobust
			}
			th.Length = uint16(packetLen)
			th.Encode(packet[0:wire.TransportHeaderLen])
			seq++

			var shFlags uint8
			if i == 0 {
				shFlags |= wire.SampleFlagChksumReset
			}
			if i == totalNumPkts-1 {
				shFlags |= wire.SampleFlagLastWrite
			}
			sh := wire.SampleHeader{
				BufferID:   p.Buffer,
				Flags:      shFlags,
				SampleIQID: p.SampleIQID,
				Start:      offset,
				NumSamples: count,
			}
			sh.Encode(packet[wire.TransportHeaderLen:packetHeaderLen])

			lastI, lastQ := p.Codec.EncodeIQFrom(packet[packetHeaderLen:], p.Src, int(offset-p.StartSample), int(count))

			cmdsUsed++
			if err := iotransport.Send(p.Handle, packet, p.PeerIP, p.Port); err != nil {
				return Result{}, err
			}
			finalChecksum = fletcher.UpdatePacket(offset, i == 0, lastI, lastQ)

			if needsAck {
				ack, err := awaitAck(p, idleLimit, p.SampleIQID)
				if err != nil {
					if errors.Is(err, errAckTimeout) {
						timeoutRetries++
						if timeoutRetries > MaxRetry {
							return Result{}, protoerr.ErrRetriesExhausted
						}
						continue
					}
					return Result{}, err
				}
				timeoutRetries = 0

				if ack.busy != nil {
					wait := pacing.NodeBusyWaitTime(*ack.busy)
					notReadyRetries++
					p.Metrics.IncNotReadyBackoff()
					if notReadyRetries > MaxRetry {
						return Result{}, protoerr.ErrNotReadyRetriesExhausted
					}
					if !warnedNotReady {
						p.Log.Warnf("writeengine: node reported busy, restarting write after %s", wait)
						warnedNotReady = true
					}
					time.Sleep(wait + 100*time.Microsecond)
					continue restartLoop
				}

				if ack.hasChecksum && ack.checksum != finalChecksum {
					p.Metrics.IncChecksumMismatch()
					if slowMode {
						return Result{}, protoerr.ErrChecksumMismatch
					}
					slowMode = true
					if !warnedChecksumFallback {
						p.Log.Warnf("writeengine: checksum mismatch, falling back to per-packet acks")
						warnedChecksumFallback = true
					}
					continue restartLoop
				}
			} else {
				_, _ = iotransport.Recv(p.Handle, p.MaxPktLen)
			}

			wait := pacing.WriteWaitTime(p.HWVersion, uint32(p.Buffer), int(p.MaxSamplesPerPkt), p.WriteWaitOverride, func(hw pacing.HardwareVersion) {
				p.Log.Warnf("writeengine: unknown hardware version %d, using zero pacing", hw)
			})
			time.Sleep(wait)

			offset += count
			i++
		}

		return Result{
			SamplesWritten: p.NumSamples,
			CmdsUsed:       cmdsUsed,
			Checksum:       finalChecksum,
		}, nil
	}
}
