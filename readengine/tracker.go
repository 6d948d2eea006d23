// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package readengine

// entry records one accepted response packet's (start_sample, num_samples).
type entry struct {
	start uint32
	count uint32
}

// Tracker is the per-in-flight-Read packet tracker from spec.md §3: an
// ordered sequence of (start_sample, num_samples) pairs, one entry per
// response packet received.
type Tracker struct {
	entries []entry
}

// Record appends one accepted packet to the tracker.
func (t *Tracker) Record(start, count uint32) {
	t.entries = append(t.entries, entry{start: start, count: count})
}

// Len returns the number of packets recorded so far.
func (t *Tracker) Len() int { return len(t.entries) }

// SumCounts returns the sum of num_samples across every recorded entry.
func (t *Tracker) SumCounts() uint32 {
	var sum uint32
	for _, e := range t.entries {
		sum += e.count
	}
	return sum
}

// SumStarts returns the sum of start_sample across every recorded entry.
func (t *Tracker) SumStarts() uint32 {
	var sum uint32
	for _, e := range t.entries {
		sum += e.start
	}
	return sum
}

// ExpectedSumStarts computes the arithmetic-progression identity from
// spec.md §3: num_pkts·start + max_samples·num_pkts·(num_pkts−1)/2, the
// expected sum of start_sample over a full, gap-free response.
func ExpectedSumStarts(numPkts, start, maxSamplesPerPkt uint32) uint32 {
	if numPkts == 0 {
		return 0
	}
	return numPkts*start + maxSamplesPerPkt*numPkts*(numPkts-1)/2
}

// FirstGap scans the arithmetic progression start, start+max, start+2·max,
// ... (numPkts terms) for the first term not present in the tracker. ok is
// false if every term is present. entriesAtOrAfter is the number of tracker
// entries whose start is >= the gap, which spec.md §4.5 specifies as exactly
// the number of packets to discount from the received-count on retry.
func (t *Tracker) FirstGap(numPkts, start, maxSamplesPerPkt uint32) (gapStart uint32, entriesAtOrAfter int, ok bool) {
	seen := make(map[uint32]bool, len(t.entries))
	for _, e := range t.entries {
		seen[e.start] = true
	}
	for i := uint32(0); i < numPkts; i++ {
		s := start + i*maxSamplesPerPkt
		if seen[s] {
			continue
		}
		count := 0
		for _, e := range t.entries {
			if e.start >= s {
				count++
			}
		}
		return s, count, true
	}
	return 0, 0, false
}
