package arena

import "sort"

const (
	// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
	defaultRangeCapacity = 64

	// PageSize is the flush granularity for file-backed arenas.
	PageSize = 4096
)

// Range is a dirty byte range, as offsets from the arena base.
type Range struct {
	Off int
	Len int
}

// tracker accumulates dirty ranges of a file-backed arena.
type tracker struct {
	ranges []Range
}

func newTracker() *tracker {
	return &tracker{ranges: make([]Range, 0, defaultRangeCapacity)}
}

// Add records a dirty range. Ranges are page-aligned and merged only when
// flushed, so Add stays a slice append.
func (t *tracker) Add(off, length int) {
	if length <= 0 {
		return
	}
	t.ranges = append(t.ranges, Range{Off: off, Len: length})
}

// Reset clears all tracked ranges.
func (t *tracker) Reset() {
	t.ranges = t.ranges[:0]
}

// coalesce page-aligns all ranges (clamped to limit), sorts them, and merges
// overlapping or adjacent ranges.
func (t *tracker) coalesce(limit int) []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		start := (r.Off / PageSize) * PageSize
		end := r.Off + r.Len
		if end%PageSize != 0 {
			end = (end/PageSize + 1) * PageSize
		}
		if end > limit {
			end = limit
		}
		aligned[i] = Range{Off: start, Len: end - start}
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]
	for _, next := range aligned[1:] {
		if next.Off <= current.Off+current.Len {
			if end := next.Off + next.Len; end > current.Off+current.Len {
				current.Len = end - current.Off
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}
