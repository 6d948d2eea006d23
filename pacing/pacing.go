// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pacing computes the inter-packet pacing delay for Write
// operations and the node-busy back-off for both Read and Write, per
// spec.md §4.3.
package pacing

import (
	"math/bits"
	"time"
)

// HardwareVersion identifies the node's HW revision, which determines the
// Write IQ inter-packet pacing table.
type HardwareVersion uint32

const (
	HWVersion2 HardwareVersion = 2
	HWVersion3 HardwareVersion = 3
)

// BusyStatus mirrors wire.BusyStatus without importing package wire, so
// pacing stays a leaf dependency with no knowledge of the wire format.
type BusyStatus struct {
	TxStatus, TxReadPtr, TxLen    uint32
	RxStatus, RxWritePtr, RxLen   uint32
}

// WriteWaitTime returns the inter-packet pacing delay for a Write IQ
// operation, per spec.md §4.3. If userOverride is non-nil, it is returned
// unconditionally. unknownVersion is called (if non-nil) when hwVer is
// neither HWVersion2 nor HWVersion3, so the caller can emit the
// "Unknown hardware version" diagnostic the spec calls for.
func WriteWaitTime(hwVer HardwareVersion, bufferMask uint32, maxSamplesPerPkt int, userOverride *time.Duration, unknownVersion func(hw HardwareVersion)) time.Duration {
	if userOverride != nil {
		return *userOverride
	}
	switch hwVer {
	case HWVersion2:
		return time.Duration(80+80*bits.OnesCount32(bufferMask)) * time.Microsecond
	case HWVersion3:
		if maxSamplesPerPkt < 2048 {
			if bufferMask == 0xF {
				return 50 * time.Microsecond
			}
			return 40 * time.Microsecond
		}
		return 0
	default:
		if unknownVersion != nil {
			unknownVersion(hwVer)
		}
		return 0
	}
}

// NodeBusyWaitTime computes the back-off implied by a node-busy status
// 6-tuple, per spec.md §4.3: 160 bytes/µs at 40 Msps x 4 bytes/sample.
func NodeBusyWaitTime(s BusyStatus) time.Duration {
	var txWait, rxWait uint32
	if s.TxStatus != 0 {
		txWait = (s.TxLen - s.TxReadPtr) / 160
	}
	if s.RxStatus != 0 {
		rxWait = (s.RxLen - s.RxWritePtr) / 160
	}
	wait := txWait
	if rxWait > wait {
		wait = rxWait
	}
	return time.Duration(wait) * time.Microsecond
}
