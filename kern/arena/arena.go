// Package arena models the fixed physical byte range handed to the kernel at
// boot. An Arena is the allocatable universe for the buddy allocator and the
// block store for the filesystem; it never grows or shrinks once created.
//
// Addresses are 32-bit physical addresses. Every accessor bounds-checks its
// range against [Base, Base+Size) and fails softly (zero value or false)
// rather than panicking.
package arena

import (
	"context"
	"math"

	"github.com/joshuapare/tinykern/internal/buf"
	"github.com/joshuapare/tinykern/internal/mmfile"
)

// Addr is a physical address inside an arena.
type Addr uint32

// Backing describes what memory an Arena sits on.
type Backing uint8

const (
	// BackingHeap is a plain Go byte slice.
	BackingHeap Backing = iota
	// BackingAnon is an anonymous memory mapping.
	BackingAnon
	// BackingFile is a shared mapping of a file; writes persist after Sync.
	BackingFile
)

func (b Backing) String() string {
	switch b {
	case BackingHeap:
		return "heap"
	case BackingAnon:
		return "anon"
	case BackingFile:
		return "file"
	default:
		return "unknown"
	}
}

// Arena is a contiguous byte range [Base, Base+Size).
//
// NOT thread-safe. The kernel serialises mutation externally.
type Arena struct {
	base    Addr
	data    []byte
	backing Backing
	release func() error
	dirty   *tracker
	closed  bool
}

// New returns a heap-backed arena of size zeroed bytes starting at base.
func New(base Addr, size int) (*Arena, error) {
	if err := checkRange(base, size); err != nil {
		return nil, err
	}
	return &Arena{base: base, data: make([]byte, size), backing: BackingHeap}, nil
}

// MapAnon returns an arena backed by an anonymous memory mapping.
func MapAnon(base Addr, size int) (*Arena, error) {
	if err := checkRange(base, size); err != nil {
		return nil, err
	}
	data, release, err := mmfile.Anon(size)
	if err != nil {
		return nil, err
	}
	return &Arena{base: base, data: data, backing: BackingAnon, release: release}, nil
}

// Map returns an arena backed by the file at path. The file is created or
// grown as needed and existing contents are preserved, so a file-backed arena
// survives across boots.
func Map(path string, base Addr, size int) (*Arena, error) {
	if err := checkRange(base, size); err != nil {
		return nil, err
	}
	data, release, err := mmfile.Map(path, size)
	if err != nil {
		return nil, err
	}
	return &Arena{
		base:    base,
		data:    data,
		backing: BackingFile,
		release: release,
		dirty:   newTracker(),
	}, nil
}

func checkRange(base Addr, size int) error {
	if size <= 0 {
		return ErrBadSize
	}
	if uint64(base)+uint64(size) > math.MaxUint32 {
		return ErrAddressSpace
	}
	return nil
}

// Base returns the first address of the arena.
func (a *Arena) Base() Addr { return a.base }

// Size returns the arena length in bytes.
func (a *Arena) Size() int { return len(a.data) }

// End returns the first address past the arena.
func (a *Arena) End() Addr { return a.base + Addr(len(a.data)) }

// Backing reports what memory the arena sits on.
func (a *Arena) Backing() Backing { return a.backing }

// Contains reports whether [addr, addr+n) lies inside the arena.
func (a *Arena) Contains(addr Addr, n int) bool {
	if addr < a.base {
		return false
	}
	return buf.InRange(len(a.data), int(addr-a.base), n)
}

// Offset translates addr into an offset from Base.
func (a *Arena) Offset(addr Addr) (int, bool) {
	if !a.Contains(addr, 0) {
		return 0, false
	}
	return int(addr - a.base), true
}

// AddrOf translates an offset from Base into an address.
func (a *Arena) AddrOf(off int) Addr {
	return a.base + Addr(off)
}

// Slice exposes [addr, addr+n) as untyped storage. It returns nil when the
// range is outside the arena. Writes through the slice are not tracked; call
// Touch afterwards when the arena is file-backed.
func (a *Arena) Slice(addr Addr, n int) []byte {
	off, ok := a.Offset(addr)
	if !ok {
		return nil
	}
	b, ok := buf.Slice(a.data, off, n)
	if !ok {
		return nil
	}
	return b
}

// Touch records [addr, addr+n) as modified.
func (a *Arena) Touch(addr Addr, n int) {
	if a.dirty == nil || !a.Contains(addr, n) {
		return
	}
	a.dirty.Add(int(addr-a.base), n)
}

// U8 reads the byte at addr.
func (a *Arena) U8(addr Addr) uint8 {
	if b := a.Slice(addr, 1); b != nil {
		return b[0]
	}
	return 0
}

// PutU8 writes v at addr.
func (a *Arena) PutU8(addr Addr, v uint8) bool {
	b := a.Slice(addr, 1)
	if b == nil {
		return false
	}
	b[0] = v
	a.Touch(addr, 1)
	return true
}

// U32 reads the little-endian word at addr.
func (a *Arena) U32(addr Addr) uint32 {
	return buf.U32LE(a.Slice(addr, 4))
}

// PutU32 writes v as a little-endian word at addr.
func (a *Arena) PutU32(addr Addr, v uint32) bool {
	if !buf.PutU32LE(a.Slice(addr, 4), v) {
		return false
	}
	a.Touch(addr, 4)
	return true
}

// Read copies bytes starting at addr into p and returns the count copied.
func (a *Arena) Read(addr Addr, p []byte) int {
	off, ok := a.Offset(addr)
	if !ok {
		return 0
	}
	return copy(p, a.data[off:])
}

// Write copies p into the arena at addr and returns the count copied. Bytes
// that would fall past the end of the arena are dropped.
func (a *Arena) Write(addr Addr, p []byte) int {
	off, ok := a.Offset(addr)
	if !ok {
		return 0
	}
	n := copy(a.data[off:], p)
	a.Touch(addr, n)
	return n
}

// Zero clears [addr, addr+n).
func (a *Arena) Zero(addr Addr, n int) bool {
	b := a.Slice(addr, n)
	if b == nil {
		return false
	}
	clear(b)
	a.Touch(addr, n)
	return true
}

// Copy moves n bytes from src to dst. Overlapping ranges are handled.
func (a *Arena) Copy(dst, src Addr, n int) bool {
	d, s := a.Slice(dst, n), a.Slice(src, n)
	if d == nil || s == nil {
		return false
	}
	copy(d, s)
	a.Touch(dst, n)
	return true
}

// Dirty returns the coalesced, page-aligned ranges written since the last Sync.
func (a *Arena) Dirty() []Range {
	if a.dirty == nil {
		return nil
	}
	return a.dirty.coalesce(len(a.data))
}

// Sync flushes modified pages of a file-backed arena to its file. It is a
// no-op for heap and anonymous arenas.
//
// The context can be used to cancel the flush. If cancelled midway, some
// ranges may have been flushed while others have not.
func (a *Arena) Sync(ctx context.Context) error {
	if a.closed {
		return ErrClosed
	}
	if a.dirty == nil || len(a.dirty.ranges) == 0 {
		return nil
	}
	for _, r := range a.dirty.coalesce(len(a.data)) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := mmfile.Flush(a.data, r.Off, r.Len); err != nil {
			return err
		}
	}
	a.dirty.Reset()
	return nil
}

// Close releases the backing memory. The arena must not be used afterwards.
func (a *Arena) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	if a.release == nil {
		return nil
	}
	err := a.release()
	a.data = nil
	return err
}
