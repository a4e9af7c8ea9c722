package vkusage

import "sort"

// busyTicks computes the GPU busy time covered by a set of timestamp
// intervals, as the union of their [start,end] spans. A plain sum would
// double-count overlapping submissions; a plain max-min span would count the
// idle gaps between them.
//
// Raw timestamps wrap at 1<<validBits, so the intervals are first unwrapped
// onto one continuous axis: the largest circular gap between the sorted start
// points is taken as the wrap boundary, and the start just after that gap
// becomes the origin. If the unwrapped intervals still span more than a full
// counter period the unwrap is unreliable and the simple max-end minus
// min-start span is returned instead.
func busyTicks(starts, ends []uint64, mask uint64) uint64 {
	n := len(starts)
	if n == 0 || len(ends) != n {
		return 0
	}
	if n == 1 {
		return (ends[0] - starts[0]) & mask
	}

	durations := make([]uint64, n)
	for i := range starts {
		durations[i] = (ends[i] - starts[i]) & mask
	}

	sorted := make([]uint64, n)
	for i, s := range starts {
		sorted[i] = s & mask
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	// Largest circular gap between consecutive starts; the wrap-around gap
	// from the last start back to the first is included via masked
	// subtraction.
	origin := sorted[0]
	var maxGap uint64
	for i := 0; i < n; i++ {
		next := sorted[(i+1)%n]
		gap := (next - sorted[i]) & mask
		if gap >= maxGap {
			maxGap = gap
			origin = next
		}
	}

	type span struct{ start, end uint64 }
	spans := make([]span, n)
	degenerate := false
	for i := range starts {
		u := (starts[i] - origin) & mask
		spans[i] = span{start: u, end: u + durations[i]}
		if mask != ^uint64(0) && spans[i].end > mask+1 {
			degenerate = true
		}
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	if degenerate {
		// Near-total wrap; the union would be nonsense. Report the overall
		// span instead.
		total := spans[len(spans)-1].end - spans[0].start
		for _, s := range spans {
			if s.end-spans[0].start > total {
				total = s.end - spans[0].start
			}
		}
		if mask != ^uint64(0) && total > mask+1 {
			total = mask + 1
		}
		return total
	}

	// Sweep-merge overlapping spans and sum the merged lengths.
	var busy uint64
	curStart, curEnd := spans[0].start, spans[0].end
	for _, s := range spans[1:] {
		if s.start > curEnd {
			busy += curEnd - curStart
			curStart, curEnd = s.start, s.end
			continue
		}
		if s.end > curEnd {
			curEnd = s.end
		}
	}
	busy += curEnd - curStart
	return busy
}
