package alloc

import (
	"fmt"
	"sort"
)

type span struct {
	off, end uint32
	order    int
}

// Check validates the free lists: every node lies in the tracked region, is
// aligned to its block size, carries the free tag and its list's order, no
// list is cyclic, and no two free blocks overlap.
func (b *Buddy) Check() error {
	if b.top < 0 {
		return ErrNotInitialized
	}
	tracked := uint32(b.cfg.BlockSize(b.top))
	var spans []span

	for order, head := range b.free {
		if order > b.top {
			if head != noBlock {
				return fmt.Errorf("%w: order %d above top order %d is non-empty", ErrCorrupt, order, b.top)
			}
			continue
		}
		size := uint32(b.cfg.BlockSize(order))
		limit := int(tracked / size)
		n := 0
		for off := head; off != noBlock; off = b.header(off).next() {
			if n++; n > limit {
				return fmt.Errorf("%w: order %d list longer than %d (cycle?)", ErrCorrupt, order, limit)
			}
			if off >= tracked || tracked-off < size {
				return fmt.Errorf("%w: order %d block %#x outside tracked region", ErrCorrupt, order, off)
			}
			if off%size != 0 {
				return fmt.Errorf("%w: order %d block %#x misaligned", ErrCorrupt, order, off)
			}
			h := b.header(off)
			if h.tag() != tagFree {
				return fmt.Errorf("%w: order %d block %#x tag %#x", ErrCorrupt, order, off, h.tag())
			}
			if h.order() != order {
				return fmt.Errorf("%w: block %#x on list %d records order %d", ErrCorrupt, off, order, h.order())
			}
			spans = append(spans, span{off: off, end: off + size, order: order})
		}
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].off < spans[j].off })
	for i := 1; i < len(spans); i++ {
		if spans[i].off < spans[i-1].end {
			return fmt.Errorf("%w: block %#x (order %d) overlaps %#x (order %d)",
				ErrCorrupt, spans[i].off, spans[i].order, spans[i-1].off, spans[i-1].order)
		}
	}
	return nil
}
