package fs

import (
	"hash/crc32"

	"github.com/joshuapare/tinykern/kern/arena"
)

// Superblock layout at offset 0 of the data arena, little endian:
//
//	[0:4]   magic "TKFS"
//	[4:8]   version
//	[8:12]  block size
//	[12:16] max files
//	[16:20] max name
//	[20:24] metadata blocks
//	[24:28] table length
//	[28:32] CRC-32 (IEEE) of the table copy that follows
const (
	superMagic   uint32 = 0x53464B54
	superVersion uint32 = 1
	superSize           = 32
)

// writeSuper stores the superblock and a copy of the directory table at the
// start of data.
func writeSuper(data *arena.Arena, cfg Config, table []byte) {
	base := data.Base()
	words := []uint32{
		superMagic,
		superVersion,
		uint32(cfg.BlockSize),
		uint32(cfg.MaxFiles),
		uint32(cfg.MaxName),
		uint32(cfg.metaBlocks()),
		uint32(len(table)),
		crc32.ChecksumIEEE(table),
	}
	for i, w := range words {
		data.PutU32(base+arena.Addr(4*i), w)
	}
	data.Write(base+superSize, table)
}

// readSuper returns the persisted table when data holds a superblock that
// matches cfg and whose table checksum verifies.
func readSuper(data *arena.Arena, cfg Config) ([]byte, bool) {
	base := data.Base()
	w := func(i int) uint32 { return data.U32(base + arena.Addr(4*i)) }
	if w(0) != superMagic || w(1) != superVersion {
		return nil, false
	}
	if w(2) != uint32(cfg.BlockSize) || w(3) != uint32(cfg.MaxFiles) ||
		w(4) != uint32(cfg.MaxName) || w(5) != uint32(cfg.metaBlocks()) ||
		w(6) != uint32(cfg.tableSize()) {
		return nil, false
	}
	table := data.Slice(base+superSize, cfg.tableSize())
	if table == nil || crc32.ChecksumIEEE(table) != w(7) {
		return nil, false
	}
	return table, true
}
