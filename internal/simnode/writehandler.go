// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package simnode

import (
	"encoding/binary"

	"github.com/sdrtestbed/iqtransport/checksum"
	"github.com/sdrtestbed/iqtransport/wire"
)

// WriteScenario configures a Write IQ node handler: the failure injections
// the six end-to-end scenarios in spec.md §8 require.
type WriteScenario struct {
	// MismatchOnce, if true, reports a wrong checksum on the very first
	// acked packet (forcing a fast-mode-to-slow-mode downgrade), then
	// reports correctly for the remainder of the (restarted) operation.
	MismatchOnce bool

	// NotReadyOnce, if true, answers the very first acked packet with
	// SAMPLE_IQ_NOT_READY and a zeroed busy status, then proceeds normally
	// on restart.
	NotReadyOnce bool

	mismatchSent bool
	notReadySent bool
	fletcher     checksum.State
	firstPacket  bool
}

// NewWriteHandler builds a Node.Handler implementing s. Only packets that
// request an ack (ROBUST flag set) produce a response, mirroring the real
// node's fast-mode behavior of staying silent on unacked packets.
func NewWriteHandler(s *WriteScenario) func([]byte) [][]byte {
	s.firstPacket = true
	return func(req []byte) [][]byte {
		if len(req) < packetHeaderLen {
			return nil
		}
		th := wire.DecodeTransportHeader(req)
		sh := wire.DecodeSampleHeader(req[wire.TransportHeaderLen:])
		payload := req[packetHeaderLen:]

		if sh.ChksumReset() {
			s.fletcher = checksum.State{}
			s.firstPacket = true
		}
		lastI, lastQ := lastIQWord(payload)
		sum := s.fletcher.UpdatePacket(sh.Start, s.firstPacket, lastI, lastQ)
		s.firstPacket = false

		if th.Flags&wire.FlagRobust == 0 {
			return nil
		}

		if s.NotReadyOnce && !s.notReadySent {
			s.notReadySent = true
			return [][]byte{encodeNotReadyAck(sh.SampleIQID)}
		}

		reported := sum
		if s.MismatchOnce && !s.mismatchSent {
			s.mismatchSent = true
			reported = sum ^ 0xFFFFFFFF
		}
		return [][]byte{encodeSuccessAck(sh.SampleIQID, reported)}
	}
}

func lastIQWord(payload []byte) (i, q int16) {
	if len(payload) < 4 {
		return 0, 0
	}
	word := binary.BigEndian.Uint32(payload[len(payload)-4:])
	return int16(word >> 16), int16(word)
}

// packetHeaderLen is the transport + sample header prefix of every Write
// packet and Write acknowledgement.
const packetHeaderLen = wire.TransportHeaderLen + wire.SampleHeaderLen

const ackPayloadLen = packetHeaderLen + 12

func encodeSuccessAck(sampleIQID uint8, sum uint32) []byte {
	b := make([]byte, ackPayloadLen)
	th := wire.TransportHeader{}
	th.Encode(b[0:wire.TransportHeaderLen])
	sh := wire.SampleHeader{SampleIQID: sampleIQID}
	sh.Encode(b[wire.TransportHeaderLen:packetHeaderLen])
	payload := b[packetHeaderLen:]
	binary.BigEndian.PutUint32(payload[0:4], wire.StatusSuccess)
	binary.BigEndian.PutUint32(payload[4:8], uint32(sampleIQID))
	binary.BigEndian.PutUint32(payload[8:12], sum)
	return b
}

func encodeNotReadyAck(sampleIQID uint8) []byte {
	b := make([]byte, packetHeaderLen+8+wire.BusyStatusLen)
	th := wire.TransportHeader{}
	th.Encode(b[0:wire.TransportHeaderLen])
	sh := wire.SampleHeader{SampleIQID: sampleIQID, Flags: wire.SampleFlagIQNotReady}
	sh.Encode(b[wire.TransportHeaderLen:packetHeaderLen])
	payload := b[packetHeaderLen:]
	binary.BigEndian.PutUint32(payload[0:4], wire.StatusError)
	binary.BigEndian.PutUint32(payload[4:8], uint32(sampleIQID))
	busy := wire.BusyStatus{}
	busy.Encode(payload[8 : 8+wire.BusyStatusLen])
	return b
}
