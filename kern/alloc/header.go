package alloc

import "github.com/joshuapare/tinykern/kern/arena"

const (
	// HeaderSize is the size of the block header embedded at the start of
	// every block.
	HeaderSize = 12

	// noBlock terminates a free list chain.
	noBlock = ^uint32(0)

	hdrNext  = 0
	hdrOrder = 4
	hdrTag   = 8
)

// tag values distinguish free-list nodes from live allocations.
const (
	tagFree uint8 = 0xF7
	tagUsed uint8 = 0xA5
)

// header is a view of the untyped arena bytes at a block offset. It only
// interprets the storage; the bytes belong to the free list or the caller
// depending on the tag.
type header struct {
	mem *arena.Arena
	at  arena.Addr
}

func (b *Buddy) header(off uint32) header {
	return header{mem: b.mem, at: b.mem.AddrOf(int(off))}
}

func (h header) next() uint32 { return h.mem.U32(h.at + hdrNext) }
func (h header) order() int   { return int(h.mem.U32(h.at + hdrOrder)) }
func (h header) tag() uint8   { return h.mem.U8(h.at + hdrTag) }

func (h header) setNext(v uint32) { h.mem.PutU32(h.at+hdrNext, v) }

// stamp rewrites the whole header.
func (h header) stamp(next uint32, order int, tag uint8) {
	h.mem.PutU32(h.at+hdrNext, next)
	h.mem.PutU32(h.at+hdrOrder, uint32(order))
	h.mem.PutU8(h.at+hdrTag, tag)
}
