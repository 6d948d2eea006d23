// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wire defines the fixed-size, big-endian protocol headers carried
// by every packet exchanged with a node: the transport header (present on
// every packet), the command header (present on command packets), and the
// sample header (present on Read/Write IQ and RSSI packets).
//
// All multi-byte fields are big-endian on the wire. The transport header
// carries two bytes of leading padding so the fixed 20-byte header prefix
// lands on a 4-byte boundary for the node.
package wire

import "encoding/binary"

// Transport flag bits.
const (
	FlagRobust        uint16 = 0x0001
	FlagNodeNotReady   uint16 = 0x8000
)

// Sample header flag bits.
const (
	SampleFlagIQError     uint8 = 0x01
	SampleFlagIQNotReady  uint8 = 0x02
	SampleFlagChksumReset uint8 = 0x10
	SampleFlagLastWrite   uint8 = 0x20
)

// Response status codes.
const (
	StatusSuccess uint32 = 0x00000000
	StatusError   uint32 = 0xFFFFFFFF
)

// TransportHeaderLen is sizeof(wl_transport_header): padding(2) + dest_id(2)
// + src_id(2) + reserved(1) + pkt_type(1) + length(2) + seq_num(2) +
// flags(2) = 14 bytes.
const TransportHeaderLen = 14

// CommandHeaderLen is sizeof(wl_command_header): command_id(4) + length(2)
// + num_args(2) = 8 bytes.
const CommandHeaderLen = 8

// SampleHeaderLen is sizeof(wl_sample_header): buffer_id(2) + flags(1) +
// sample_iq_id(1) + start(4) + num_samples(4) = 12 bytes.
const SampleHeaderLen = 12

// TransportHeader is the outermost per-packet header.
type TransportHeader struct {
	DestID   uint16
	SrcID    uint16
	Reserved uint8
	PktType  uint8
	Length   uint16
	SeqNum   uint16
	Flags    uint16
}

// Encode writes the big-endian wire representation of h into b, which must
// be at least TransportHeaderLen bytes. The leading 2 bytes of padding are
// zeroed.
func (h TransportHeader) Encode(b []byte) {
	_ = b[TransportHeaderLen-1]
	binary.BigEndian.PutUint16(b[0:2], 0) // padding
	binary.BigEndian.PutUint16(b[2:4], h.DestID)
	binary.BigEndian.PutUint16(b[4:6], h.SrcID)
	b[6] = h.Reserved
	b[7] = h.PktType
	binary.BigEndian.PutUint16(b[8:10], h.Length)
	binary.BigEndian.PutUint16(b[10:12], h.SeqNum)
	binary.BigEndian.PutUint16(b[12:14], h.Flags)
}

// DecodeTransportHeader parses a TransportHeader from b, which must be at
// least TransportHeaderLen bytes.
func DecodeTransportHeader(b []byte) TransportHeader {
	_ = b[TransportHeaderLen-1]
	return TransportHeader{
		DestID:   binary.BigEndian.Uint16(b[2:4]),
		SrcID:    binary.BigEndian.Uint16(b[4:6]),
		Reserved: b[6],
		PktType:  b[7],
		Length:   binary.BigEndian.Uint16(b[8:10]),
		SeqNum:   binary.BigEndian.Uint16(b[10:12]),
		Flags:    binary.BigEndian.Uint16(b[12:14]),
	}
}

// NodeNotReady reports whether the transport-level back-pressure flag is set.
func (h TransportHeader) NodeNotReady() bool { return h.Flags&FlagNodeNotReady != 0 }

// Robust reports whether the ROBUST (ack requested) flag is set.
func (h TransportHeader) Robust() bool { return h.Flags&FlagRobust != 0 }

// CommandHeader follows the transport header on command packets.
type CommandHeader struct {
	CommandID uint32
	Length    uint16
	NumArgs   uint16
}

func (h CommandHeader) Encode(b []byte) {
	_ = b[CommandHeaderLen-1]
	binary.BigEndian.PutUint32(b[0:4], h.CommandID)
	binary.BigEndian.PutUint16(b[4:6], h.Length)
	binary.BigEndian.PutUint16(b[6:8], h.NumArgs)
}

func DecodeCommandHeader(b []byte) CommandHeader {
	_ = b[CommandHeaderLen-1]
	return CommandHeader{
		CommandID: binary.BigEndian.Uint32(b[0:4]),
		Length:    binary.BigEndian.Uint16(b[4:6]),
		NumArgs:   binary.BigEndian.Uint16(b[6:8]),
	}
}

// SampleHeader follows the transport header on Read/Write IQ and RSSI
// response and data packets.
type SampleHeader struct {
	BufferID    uint16
	Flags       uint8
	SampleIQID  uint8
	Start       uint32
	NumSamples  uint32
}

func (h SampleHeader) Encode(b []byte) {
	_ = b[SampleHeaderLen-1]
	binary.BigEndian.PutUint16(b[0:2], h.BufferID)
	b[2] = h.Flags
	b[3] = h.SampleIQID
	binary.BigEndian.PutUint32(b[4:8], h.Start)
	binary.BigEndian.PutUint32(b[8:12], h.NumSamples)
}

func DecodeSampleHeader(b []byte) SampleHeader {
	_ = b[SampleHeaderLen-1]
	return SampleHeader{
		BufferID:   binary.BigEndian.Uint16(b[0:2]),
		Flags:      b[2],
		SampleIQID: b[3],
		Start:      binary.BigEndian.Uint32(b[4:8]),
		NumSamples: binary.BigEndian.Uint32(b[8:12]),
	}
}

func (h SampleHeader) IQError() bool     { return h.Flags&SampleFlagIQError != 0 }
func (h SampleHeader) IQNotReady() bool  { return h.Flags&SampleFlagIQNotReady != 0 }
func (h SampleHeader) ChksumReset() bool { return h.Flags&SampleFlagChksumReset != 0 }
func (h SampleHeader) LastWrite() bool   { return h.Flags&SampleFlagLastWrite != 0 }

// BusyStatus is the 6-tuple (tx_status, tx_read_ptr, tx_len, rx_status,
// rx_write_ptr, rx_len) a node reports when it answers not-ready, used by
// package pacing to estimate the remaining back-off.
type BusyStatus struct {
	TxStatus  uint32
	TxReadPtr uint32
	TxLen     uint32
	RxStatus  uint32
	RxWritePtr uint32
	RxLen     uint32
}

// BusyStatusLen is the encoded size of the 6-tuple: six 32-bit words.
const BusyStatusLen = 24

func DecodeBusyStatus(b []byte) BusyStatus {
	_ = b[BusyStatusLen-1]
	return BusyStatus{
		TxStatus:   binary.BigEndian.Uint32(b[0:4]),
		TxReadPtr:  binary.BigEndian.Uint32(b[4:8]),
		TxLen:      binary.BigEndian.Uint32(b[8:12]),
		RxStatus:   binary.BigEndian.Uint32(b[12:16]),
		RxWritePtr: binary.BigEndian.Uint32(b[16:20]),
		RxLen:      binary.BigEndian.Uint32(b[20:24]),
	}
}

func (s BusyStatus) Encode(b []byte) {
	_ = b[BusyStatusLen-1]
	binary.BigEndian.PutUint32(b[0:4], s.TxStatus)
	binary.BigEndian.PutUint32(b[4:8], s.TxReadPtr)
	binary.BigEndian.PutUint32(b[8:12], s.TxLen)
	binary.BigEndian.PutUint32(b[12:16], s.RxStatus)
	binary.BigEndian.PutUint32(b[16:20], s.RxWritePtr)
	binary.BigEndian.PutUint32(b[20:24], s.RxLen)
}

// WriteResponse is the payload of a Write IQ acknowledgement: status(4),
// sample_iq_id(4), then either checksum(4) when status==StatusSuccess, or a
// BusyStatus when the sample header flags report SAMPLE_IQ_NOT_READY.
type WriteResponse struct {
	Status     uint32
	SampleIQID uint32
	Checksum   uint32
	Busy       BusyStatus
}

// DecodeWriteResponse parses the fixed-status-and-id prefix; callers decide
// whether to additionally decode a checksum or a BusyStatus from the
// remaining bytes based on the sample header flags that accompanied this
// packet.
func DecodeWriteResponse(b []byte) (status uint32, sampleIQID uint32) {
	_ = b[7]
	return binary.BigEndian.Uint32(b[0:4]), binary.BigEndian.Uint32(b[4:8])
}

// DecodeWriteChecksum parses the trailing checksum word of a successful
// Write acknowledgement, immediately following the status/sample_iq_id pair
// decoded by DecodeWriteResponse.
func DecodeWriteChecksum(b []byte) uint32 {
	_ = b[3]
	return binary.BigEndian.Uint32(b[0:4])
}

// SetArg overwrites one of the five/six 32-bit big-endian argument slots the
// Read/Write engines stamp into a command template before sending, per
// spec.md §4.5/§4.6 ("the engine overwrites N 32-bit argument slots in
// big-endian").
func SetArg(args []byte, slot int, value uint32) {
	binary.BigEndian.PutUint32(args[slot*4:slot*4+4], value)
}

// Arg reads back one of the 32-bit big-endian argument slots.
func Arg(args []byte, slot int) uint32 {
	return binary.BigEndian.Uint32(args[slot*4 : slot*4+4])
}
