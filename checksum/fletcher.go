// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package checksum implements the Fletcher-32 checksum with the
// domain-specific reinforcement the write engine needs to distinguish an
// all-zeros sample block from an all-ones one, per spec.md §4.2.
package checksum

// State is a Fletcher-32 accumulator. The zero value is ready to use with
// Update(..., true) to reset it. Unlike the original C source (spec.md §9
// Design Notes: "static checksum accumulators inside the update function"),
// State is an explicit value threaded through the write engine rather than
// hidden function-local statics, so independent Write operations never
// share accumulator state.
type State struct {
	sum1, sum2 uint32
}

// Update feeds one 16-bit datum into the accumulator. If reset is true, the
// accumulator is cleared before the update (used on the first packet of a
// Write operation).
func (s *State) Update(data uint16, reset bool) uint32 {
	if reset {
		s.sum1, s.sum2 = 0, 0
	}
	s.sum1 = (s.sum1 + uint32(data)) % 0xFFFF
	s.sum2 = (s.sum2 + s.sum1) % 0xFFFF
	return s.Value()
}

// Value returns the combined 32-bit checksum without updating the state.
func (s *State) Value() uint32 {
	return s.sum2<<16 | s.sum1
}

// Reset clears the accumulator without feeding any data.
func (s *State) Reset() {
	s.sum1, s.sum2 = 0, 0
}

// UpdatePacket applies the per-Write-packet reinforcement recipe from
// spec.md §4.2: feed (a) the packet's starting sample index masked to 16
// bits, with reset iff this is the first packet of the operation, then (b)
// the XOR of the I and Q Fix_16_15 halves of the last sample in the packet,
// with no reset. It returns the checksum value after both updates.
func (s *State) UpdatePacket(startSample uint32, firstPacket bool, lastI, lastQ int16) uint32 {
	s.Update(uint16(startSample&0xFFFF), firstPacket)
	return s.Update(uint16(lastI)^uint16(lastQ), false)
}
