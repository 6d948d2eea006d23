// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package iqtransport implements a reliable, chunked request/response
// protocol over UDP for reading and writing large blocks of baseband IQ
// samples (and RSSI samples) from hardware nodes in a software-defined
// radio testbed.
//
// A host issues logical operations -- "read N samples from buffer B
// starting at offset S" or "write a sample array to buffer B" -- and the
// package executes them over a lossy, fragmented, order-sensitive UDP
// channel against a node whose receive window and processing speed are
// limited. The package does not open sockets itself: callers supply a
// sockpool.Handle (or use sockpool.Pool to manage a fixed table of real UDP
// sockets) and a Context drives one Read or Write operation at a time
// against it.
//
// Wire format: a 32-bit big-endian packed sample format with a small family
// of fixed headers (transport / command / sample), described in package
// wire. Four host-side sample representations are supported: complex
// double, complex single, complex int16, and raw uint32 pass-through,
// implemented in package codec.
//
// Glossary:
//   - IQ sample: a complex baseband sample; I and Q are the in-phase and
//     quadrature components, each a Fix_16_15 on the wire.
//   - RSSI sample: a 10-bit unsigned power estimate; two RSSI samples are
//     packed per on-wire 32-bit word.
//   - Fix_16_15: 16-bit signed fixed-point with 15 fractional bits,
//     representing values in [-1, +1).
//   - Buffer: a named on-node memory region (A/B/C/D) associated with one
//     RF chain.
//   - sample_iq_id: 8-bit rolling identifier distinguishing successive Read
//     IQ / Write IQ operations against the same buffer.
//   - Fast / slow mode (Write): fast = only the last packet is ack'd; slow =
//     every packet is ack'd.
//   - Node-not-ready: a transport-flag or sample-header-flag signal that the
//     node cannot yet serve the request; host must back off and retry.
package iqtransport
