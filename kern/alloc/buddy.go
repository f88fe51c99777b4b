package alloc

import (
	"fmt"

	"github.com/joshuapare/tinykern/internal/logger"
	"github.com/joshuapare/tinykern/kern/arena"
)

// Null is the handle value that never refers to an allocation.
const Null arena.Addr = 0

// Buddy is a binary buddy allocator over a single arena.
//
// NOT thread-safe. See the package documentation.
type Buddy struct {
	mem  *arena.Arena
	cfg  Config
	top  int      // order of the single block tracked at Init; -1 before Init
	free []uint32 // free list heads by order, arena offsets

	stats counters
}

type counters struct {
	allocs   uint64
	frees    uint64
	failed   uint64
	splits   uint64
	merges   uint64
	live     int
	liveSize int
}

// New binds a Buddy to mem and initializes it.
func New(mem *arena.Arena, cfg Config) (*Buddy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Buddy{mem: mem, cfg: cfg, top: -1}
	if err := b.Init(); err != nil {
		return nil, err
	}
	return b, nil
}

// Init (re)builds the free lists so the arena holds a single free block of
// the largest order that fits. Any outstanding handles become invalid.
// Calling Init twice in a row yields the same state as calling it once.
func (b *Buddy) Init() error {
	if b.mem == nil {
		return ErrNotInitialized
	}
	size := b.mem.Size()
	if size < b.cfg.MinSize {
		return fmt.Errorf("%w: arena %d bytes, min block %d", ErrArenaTooSmall, size, b.cfg.MinSize)
	}

	top := 0
	for top < b.cfg.MaxOrder && b.cfg.BlockSize(top+1) <= size {
		top++
	}

	b.top = top
	b.free = make([]uint32, b.cfg.MaxOrder+1)
	for i := range b.free {
		b.free[i] = noBlock
	}
	b.stats = counters{}
	b.push(0, top)

	logger.Debug("alloc: init",
		"base", fmt.Sprintf("%#x", uint32(b.mem.Base())),
		"size", size,
		"top_order", top,
		"untracked", size-b.cfg.BlockSize(top))
	return nil
}

// Config returns the block geometry.
func (b *Buddy) Config() Config { return b.cfg }

// Arena returns the arena the allocator carves.
func (b *Buddy) Arena() *arena.Arena { return b.mem }

// Allocate returns a handle to at least size usable bytes.
//
// Errors wrap kerr.ErrInvalidArgument for size <= 0 and kerr.ErrExhausted
// when no block can satisfy the request.
func (b *Buddy) Allocate(size int) (arena.Addr, error) {
	if b.top < 0 {
		return Null, ErrNotInitialized
	}
	if size <= 0 {
		b.stats.failed++
		return Null, ErrZeroSize
	}
	if size > b.cfg.BlockSize(b.cfg.MaxOrder)-HeaderSize {
		b.stats.failed++
		return Null, fmt.Errorf("%w: %d bytes exceeds order %d", ErrTooLarge, size, b.cfg.MaxOrder)
	}
	order := b.cfg.OrderFor(size + HeaderSize)
	if order > b.cfg.MaxOrder {
		b.stats.failed++
		return Null, fmt.Errorf("%w: %d bytes needs order %d, max %d", ErrTooLarge, size, order, b.cfg.MaxOrder)
	}

	off, ok := b.take(order)
	if !ok {
		b.stats.failed++
		logger.Debug("alloc: exhausted", "size", size, "order", order)
		return Null, fmt.Errorf("%w: %d bytes (order %d)", ErrExhausted, size, order)
	}

	b.header(off).stamp(noBlock, order, tagUsed)
	b.stats.allocs++
	b.stats.live++
	b.stats.liveSize += b.cfg.BlockSize(order)
	return b.mem.AddrOf(int(off) + HeaderSize), nil
}

// take removes a block of exactly order from the free lists, splitting a
// larger block when the list for order is empty.
func (b *Buddy) take(order int) (uint32, bool) {
	if order > b.top {
		return 0, false
	}
	if off, ok := b.pop(order); ok {
		return off, true
	}
	parent, ok := b.take(order + 1)
	if !ok {
		return 0, false
	}
	upper := parent + uint32(b.cfg.BlockSize(order))
	b.push(upper, order)
	b.stats.splits++
	logger.Debug("alloc: split", "offset", parent, "order", order+1)
	return parent, true
}

// Release returns the block behind h to the free lists, merging it with its
// buddy for as long as the buddy is free at the same order.
//
// The null handle and handles that do not refer to a live allocation are
// ignored. Releasing a handle twice is therefore harmless, but releasing an
// address that Allocate never returned is undefined.
func (b *Buddy) Release(h arena.Addr) {
	off, order, ok := b.resolve(h)
	if !ok {
		return
	}
	b.stats.frees++
	b.stats.live--
	b.stats.liveSize -= b.cfg.BlockSize(order)

	for order < b.top {
		buddy := off ^ uint32(b.cfg.BlockSize(order))
		bh := b.header(buddy)
		if bh.tag() != tagFree || bh.order() != order {
			break
		}
		if !b.unlink(buddy, order) {
			break
		}
		off = min(off, buddy)
		order++
		b.stats.merges++
		logger.Debug("alloc: merge", "offset", off, "order", order)
	}
	b.push(off, order)
}

// Reallocate resizes the allocation behind h.
//
// A null h behaves like Allocate. A zero size releases h and returns Null.
// When the block already holds size bytes the same handle is returned;
// otherwise the contents are moved to a new block and h is released. If the
// new allocation fails h is left intact.
func (b *Buddy) Reallocate(h arena.Addr, size int) (arena.Addr, error) {
	if h == Null {
		return b.Allocate(size)
	}
	if size == 0 {
		b.Release(h)
		return Null, nil
	}
	if size < 0 {
		return Null, ErrZeroSize
	}
	_, order, ok := b.resolve(h)
	if !ok {
		return Null, fmt.Errorf("%w: %#x", ErrBadHandle, uint32(h))
	}
	capacity := b.cfg.BlockSize(order) - HeaderSize
	if capacity >= size {
		return h, nil
	}

	nh, err := b.Allocate(size)
	if err != nil {
		return Null, err
	}
	b.mem.Copy(nh, h, min(capacity, size))
	b.Release(h)
	return nh, nil
}

// Capacity returns the usable bytes behind h, or 0 for an invalid handle.
func (b *Buddy) Capacity(h arena.Addr) int {
	_, order, ok := b.resolve(h)
	if !ok {
		return 0
	}
	return b.cfg.BlockSize(order) - HeaderSize
}

// Bytes returns the usable storage behind h, or nil for an invalid handle.
// The slice aliases arena memory.
func (b *Buddy) Bytes(h arena.Addr) []byte {
	n := b.Capacity(h)
	if n == 0 {
		return nil
	}
	return b.mem.Slice(h, n)
}

// resolve maps a handle to its block offset and order, rejecting anything
// that is not the start of a live allocation.
func (b *Buddy) resolve(h arena.Addr) (uint32, int, bool) {
	if b.top < 0 || h == Null {
		return 0, 0, false
	}
	pos, ok := b.mem.Offset(h)
	if !ok || pos < HeaderSize {
		return 0, 0, false
	}
	off := uint32(pos - HeaderSize)
	if off%uint32(b.cfg.MinSize) != 0 || int(off) >= b.cfg.BlockSize(b.top) {
		return 0, 0, false
	}
	hdr := b.header(off)
	order := hdr.order()
	if hdr.tag() != tagUsed || order > b.top || off%uint32(b.cfg.BlockSize(order)) != 0 {
		return 0, 0, false
	}
	return off, order, true
}

func (b *Buddy) push(off uint32, order int) {
	b.header(off).stamp(b.free[order], order, tagFree)
	b.free[order] = off
}

func (b *Buddy) pop(order int) (uint32, bool) {
	off := b.free[order]
	if off == noBlock {
		return 0, false
	}
	b.free[order] = b.header(off).next()
	return off, true
}

// unlink removes off from the free list for order. Lists are singly linked,
// so this walks the chain.
func (b *Buddy) unlink(off uint32, order int) bool {
	if b.free[order] == off {
		b.free[order] = b.header(off).next()
		return true
	}
	prev := b.free[order]
	for prev != noBlock {
		ph := b.header(prev)
		next := ph.next()
		if next == off {
			ph.setNext(b.header(off).next())
			return true
		}
		prev = next
	}
	return false
}
