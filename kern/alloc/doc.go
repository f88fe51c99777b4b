// Package alloc provides the kernel's physical memory allocator: a binary
// buddy system over a single fixed arena.
//
// # Overview
//
// The arena is carved into power-of-two blocks. A block of order k is
// MinSize << k bytes and always starts at an arena offset that is a multiple
// of its own size. That alignment is what makes the buddy of a block cheap to
// find:
//
//	buddy offset = block offset XOR (MinSize << order)
//
// Blocks are only ever split exactly in half, so the invariant holds for every
// block the allocator hands out or tracks.
//
// # Free lists
//
// One singly linked free list per order (0..MaxOrder) chains the free blocks
// of that order. The links are intrusive: each block starts with a 12-byte
// header overlaid on the arena bytes,
//
//	[0:4]  next   arena offset of the next free block (0xFFFFFFFF = none)
//	[4:8]  order  block order
//	[8]    tag    free / used marker
//	[9:12] padding
//
// The header stays in place while a block is allocated; the handle returned to
// the caller is the address just past it, so Release can recover the order
// without a side table. Usable capacity is therefore (MinSize << order) - 12.
//
// # Usage Example
//
//	mem, _ := arena.New(0x200000, 1<<20)
//	heap, err := alloc.New(mem, alloc.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//
//	h, err := heap.Allocate(100)
//	if err != nil {
//	    return err // errors.Is(err, kerr.ErrExhausted) when out of blocks
//	}
//	copy(heap.Bytes(h), payload)
//	heap.Release(h)
//
// # Truncation
//
// Init tracks a single top block of the largest order P such that
// MinSize << P fits the arena (capped at MaxOrder). Arena bytes past that block
// are never handed out; Stats reports them as UntrackedBytes.
//
// # Thread Safety
//
// A Buddy is not thread-safe and performs no locking. The caller must
// guarantee a single mutator at a time (the kernel disables interrupts around
// allocator calls).
package alloc
