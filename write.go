// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iqtransport

import (
	"github.com/sdrtestbed/iqtransport/codec"
	"github.com/sdrtestbed/iqtransport/pacing"
	"github.com/sdrtestbed/iqtransport/sockpool"
	"github.com/sdrtestbed/iqtransport/writeengine"
)

// WriteParams bundles one Write IQ call's arguments, per spec.md §6.
type WriteParams struct {
	Handle      sockpool.Handle
	PeerIP      string
	Port        int
	CmdTemplate []byte
	MaxPktLen   int

	NumSamples       uint32
	StartSample      uint32
	Buffers          []BufferID
	MaxSamplesPerPkt uint32
	HWVersion        pacing.HardwareVersion
	CheckChecksum    bool
	DataType         codec.Kind
	Src              codec.Sink

	IdleSpinLimit int
}

// WriteResult reports the outcome of a multi-buffer Write, one checksum per
// requested buffer in the same order as WriteParams.Buffers.
type WriteResult struct {
	CmdsUsed  int
	Checksums []uint32
}

// Write drives one Write IQ request, iterating over every requested buffer
// as an independent engine operation sharing the input Src (spec.md §4.7).
func (c *Context) Write(p WriteParams) (WriteResult, error) {
	if !p.DataType.Valid() {
		return WriteResult{}, newArgError("DataType", "unrecognized data-type code")
	}
	if len(p.Buffers) == 0 {
		return WriteResult{}, newArgError("Buffers", "at least one buffer id is required")
	}
	if p.NumSamples == 0 {
		return WriteResult{}, newArgError("NumSamples", "zero-length write request")
	}
	for _, b := range p.Buffers {
		if _, ok := b.Index(); !ok {
			return WriteResult{}, newArgError("Buffers", "non-singular or unrecognized buffer id")
		}
	}
	if p.Src == nil || p.Src.Kind() != p.DataType {
		return WriteResult{}, newArgError("Src", "input array representation does not match DataType")
	}
	if p.Src.Len() < int(p.StartSample+p.NumSamples) {
		return WriteResult{}, newArgError("Src", "input array shorter than start_sample+num_samples")
	}

	cdc, ok := codec.ByKind(p.DataType)
	if !ok {
		return WriteResult{}, newArgError("DataType", "unrecognized data-type code")
	}

	result := WriteResult{Checksums: make([]uint32, len(p.Buffers))}
	for bi, buf := range p.Buffers {
		log := c.engineLog("node_id", "", "op", OpWriteIQ, "buffer", buf, "call_id", c.nextCallID())
		metrics := c.engineMetrics("", OpWriteIQ, buf)
		wr, err := writeengine.Write(writeengine.Params{
			Handle:            p.Handle,
			PeerIP:            p.PeerIP,
			Port:              p.Port,
			CmdTemplate:       p.CmdTemplate,
			MaxPktLen:         p.MaxPktLen,
			NumSamples:        p.NumSamples,
			StartSample:       p.StartSample,
			Buffer:            uint16(buf),
			MaxSamplesPerPkt:  p.MaxSamplesPerPkt,
			HWVersion:         p.HWVersion,
			CheckChecksum:     p.CheckChecksum,
			SampleIQID:        c.nextWriteIQID(),
			Codec:             cdc,
			Src:               p.Src,
			WriteWaitOverride: c.writeWaitOverride(),
			Log:               log,
			Metrics:           metrics,
			IdleSpinLimit:     p.IdleSpinLimit,
		})
		if err != nil {
			return WriteResult{}, err
		}
		result.CmdsUsed += wr.CmdsUsed
		result.Checksums[bi] = wr.Checksum
	}
	return result, nil
}
