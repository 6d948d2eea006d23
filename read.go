// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iqtransport

import (
	"fmt"

	"github.com/sdrtestbed/iqtransport/codec"
	"github.com/sdrtestbed/iqtransport/pacing"
	"github.com/sdrtestbed/iqtransport/readengine"
	"github.com/sdrtestbed/iqtransport/seqtrack"
	"github.com/sdrtestbed/iqtransport/sockpool"
)

// ReadParams bundles one Read IQ / Read RSSI call's arguments, per spec.md §6.
type ReadParams struct {
	Handle      sockpool.Handle
	NodeID      string
	PeerIP      string
	Port        int
	CmdTemplate []byte
	MaxPktLen   int

	// RxBufferSize drives the large-request chunking heuristic (spec.md
	// §4.5: "if num_samples·4 > 0.8·handle.rx_buffer_size"). Zero disables
	// it -- the whole request is issued as a single operation -- unless
	// SetReadMaxRequestSize has set a chunk-size override on the Context.
	RxBufferSize int

	NumSamples       uint32
	StartSample      uint32
	Buffers          []BufferID
	RSSI             bool
	MaxSamplesPerPkt uint32
	DataType         codec.Kind
	HWVersion        pacing.HardwareVersion

	// Severity overrides the Context's default duplicate-sequence severity
	// for this call only. Nil uses the Context default.
	Severity *Severity

	IdleSpinLimit int
}

// ReadResult holds one decoded Sink per requested buffer, in the same order
// as ReadParams.Buffers -- the Go-idiomatic rendering of spec.md §4.7's
// "multi-buffer results as a single contiguous array" (strided per buffer
// here instead of packed into one flat array, since Go slices of typed
// Sinks need no stride arithmetic at the call site).
type ReadResult struct {
	Sinks    []codec.Sink
	CmdsUsed int
}

type readChunk struct {
	start, count uint32
}

func chunkRead(numSamples, start, maxSamplesPerPkt uint32, rxBufferSize, override int) []readChunk {
	threshold := readChunkThreshold(rxBufferSize, override)
	if threshold <= 0 || int(numSamples)*4 <= threshold || maxSamplesPerPkt == 0 {
		return []readChunk{{start: start, count: numSamples}}
	}

	pktsPerChunk := uint32(threshold) / 4 / maxSamplesPerPkt
	if pktsPerChunk == 0 {
		pktsPerChunk = 1
	}
	chunkSamples := pktsPerChunk * maxSamplesPerPkt

	var chunks []readChunk
	remaining, cur := numSamples, start
	for remaining > 0 {
		count := chunkSamples
		if remaining < count {
			count = remaining
		}
		chunks = append(chunks, readChunk{start: cur, count: count})
		cur += count
		remaining -= count
	}
	return chunks
}

func readChunkThreshold(rxBufferSize, override int) int {
	if override > 0 {
		return override
	}
	if rxBufferSize <= 0 {
		return 0
	}
	return int(0.8 * float64(rxBufferSize))
}

func sinkLenFor(rssi bool, numSamples uint32) int {
	if rssi {
		return int(numSamples) * 2
	}
	return int(numSamples)
}

// Read drives one Read IQ / Read RSSI request, iterating over every
// requested buffer (each as an independent engine operation, spec.md §4.7),
// chunking large requests, and updating the per-(buffer,op) sequence-number
// tracker.
func (c *Context) Read(p ReadParams) (ReadResult, error) {
	if !p.DataType.Valid() {
		return ReadResult{}, newArgError("DataType", "unrecognized data-type code")
	}
	if len(p.Buffers) == 0 {
		return ReadResult{}, newArgError("Buffers", "at least one buffer id is required")
	}
	if p.NumSamples == 0 {
		return ReadResult{}, newArgError("NumSamples", "zero-length read request")
	}
	for _, b := range p.Buffers {
		if _, ok := b.Index(); !ok {
			return ReadResult{}, newArgError("Buffers", fmt.Sprintf("non-singular or unrecognized buffer id %v", b))
		}
	}

	cdc, ok := codec.ByKind(p.DataType)
	if !ok {
		return ReadResult{}, newArgError("DataType", "unrecognized data-type code")
	}

	severity := c.severity
	if p.Severity != nil {
		severity = *p.Severity
	}
	op := OpReadIQ
	seqOp := seqtrack.OpReadIQ
	if p.RSSI {
		op = OpReadRSSI
		seqOp = seqtrack.OpReadRSSI
	}
	chunkOverride := c.readMaxRequestSizeOverride()

	result := ReadResult{Sinks: make([]codec.Sink, len(p.Buffers))}
	for bi, buf := range p.Buffers {
		sink := cdc.NewSink(sinkLenFor(p.RSSI, p.NumSamples))
		log := c.engineLog("node_id", p.NodeID, "op", seqOp, "buffer", buf, "call_id", c.nextCallID())
		metrics := c.engineMetrics(p.NodeID, op, buf)

		chunks := chunkRead(p.NumSamples, p.StartSample, p.MaxSamplesPerPkt, p.RxBufferSize, chunkOverride)
		for _, ch := range chunks {
			res, err := readengine.Read(readengine.Params{
				Handle:           p.Handle,
				PeerIP:           p.PeerIP,
				Port:             p.Port,
				CmdTemplate:      p.CmdTemplate,
				MaxPktLen:        p.MaxPktLen,
				NumSamples:       ch.count,
				StartSample:      ch.start,
				InitialOffset:    p.StartSample,
				Buffer:           uint16(buf),
				RSSI:             p.RSSI,
				MaxSamplesPerPkt: p.MaxSamplesPerPkt,
				SampleIQID:       c.nextReadIQID(),
				HWVersion:        p.HWVersion,
				Codec:            cdc,
				Sink:             sink,
				SeqTable:         c.tableFor(p.NodeID),
				SeqOp:            seqOp,
				SeqBuffer:        seqtrack.BufferID(buf),
				Severity:         severity,
				Log:              log,
				Metrics:          metrics,
				IdleSpinLimit:    p.IdleSpinLimit,
			})
			if err != nil {
				return ReadResult{}, err
			}
			result.CmdsUsed += res.CmdsUsed
		}
		result.Sinks[bi] = sink
	}
	return result, nil
}
