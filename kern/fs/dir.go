package fs

import (
	"bytes"

	"github.com/joshuapare/tinykern/kern/arena"
)

// Directory table layout, little endian:
//
//	[0:4]  total blocks
//	[4:8]  free blocks
//	[8:]   MaxFiles entries of MaxName+12 bytes:
//	         name (NUL padded) | size u32 | start block u32 | used u8 | pad
const (
	tableHeader = 8
	entryFixed  = 12

	tabTotal = 0
	tabFree  = 4
)

// dir is a view of a directory table held in arena memory.
type dir struct {
	mem  *arena.Arena
	base arena.Addr
	cfg  Config
}

type entry struct {
	d  dir
	at arena.Addr
}

func (d dir) total() int     { return int(d.mem.U32(d.base + tabTotal)) }
func (d dir) free() int      { return int(d.mem.U32(d.base + tabFree)) }
func (d dir) setTotal(n int) { d.mem.PutU32(d.base+tabTotal, uint32(n)) }
func (d dir) setFree(n int)  { d.mem.PutU32(d.base+tabFree, uint32(n)) }
func (d dir) bytes() []byte  { return d.mem.Slice(d.base, d.cfg.tableSize()) }
func (d dir) entry(i int) entry {
	return entry{d: d, at: d.base + arena.Addr(tableHeader+i*d.cfg.entrySize())}
}

func (d dir) format(totalBlocks int) {
	d.mem.Zero(d.base, d.cfg.tableSize())
	d.setTotal(totalBlocks)
	d.setFree(totalBlocks)
}

// lookup returns the slot holding name.
func (d dir) lookup(name string) (int, bool) {
	for i := range d.cfg.MaxFiles {
		e := d.entry(i)
		if e.used() && e.name() == name {
			return i, true
		}
	}
	return 0, false
}

func (d dir) freeSlot() (int, bool) {
	for i := range d.cfg.MaxFiles {
		if !d.entry(i).used() {
			return i, true
		}
	}
	return 0, false
}

func (e entry) nameBytes() []byte { return e.d.mem.Slice(e.at, e.d.cfg.MaxName) }

func (e entry) name() string {
	b := e.nameBytes()
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func (e entry) field(off int) arena.Addr { return e.at + arena.Addr(e.d.cfg.MaxName+off) }

func (e entry) size() int  { return int(e.d.mem.U32(e.field(0))) }
func (e entry) start() int { return int(e.d.mem.U32(e.field(4))) }
func (e entry) used() bool { return e.d.mem.U8(e.field(8)) != 0 }

func (e entry) blocks() int { return e.d.cfg.blocksFor(e.size()) }

func (e entry) set(name string, size, start int) {
	e.d.mem.Zero(e.at, e.d.cfg.entrySize())
	e.d.mem.Write(e.at, []byte(name))
	e.d.mem.PutU32(e.field(0), uint32(size))
	e.d.mem.PutU32(e.field(4), uint32(start))
	e.d.mem.PutU8(e.field(8), 1)
}

func (e entry) clear() { e.d.mem.Zero(e.at, e.d.cfg.entrySize()) }
