// Package fs is a flat filesystem of contiguously allocated files.
//
// The directory table lives in a block obtained from the kernel allocator.
// File contents live in a separate data arena divided into fixed-size
// blocks; every file occupies one contiguous run of blocks found first-fit.
// The first blocks of the data arena hold a superblock and a copy of the
// directory table, written by Sync, so a file-backed data arena can be
// mounted again on the next boot.
//
// An FS is not thread-safe.
package fs

import (
	"context"
	"fmt"

	"github.com/joshuapare/tinykern/internal/logger"
	"github.com/joshuapare/tinykern/kern/arena"
)

// Allocator supplies the directory table. *alloc.Buddy satisfies it.
type Allocator interface {
	Allocate(size int) (arena.Addr, error)
	Release(h arena.Addr)
	Arena() *arena.Arena
}

// FileInfo describes one file.
type FileInfo struct {
	Name       string `json:"name"`
	Size       int    `json:"size"`
	StartBlock int    `json:"start_block"`
	Blocks     int    `json:"blocks"`
}

// Stats describes block and slot usage.
type Stats struct {
	BlockSize   int `json:"block_size"`
	MetaBlocks  int `json:"meta_blocks"`
	TotalBlocks int `json:"total_blocks"`
	FreeBlocks  int `json:"free_blocks"`
	Files       int `json:"files"`
	MaxFiles    int `json:"max_files"`
}

// FS is a mounted filesystem.
type FS struct {
	heap      Allocator
	data      *arena.Arena
	cfg       Config
	table     arena.Addr
	dir       dir
	meta      int
	formatted bool
	mounted   bool
}

// Mount allocates the directory table from heap and binds it to data. A
// valid superblock in data is loaded; anything else is formatted fresh.
func Mount(heap Allocator, data *arena.Arena, cfg Config) (*FS, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	meta := cfg.metaBlocks()
	total := data.Size()/cfg.BlockSize - meta
	if total < 0 {
		return nil, fmt.Errorf("%w: %d bytes, need %d metadata blocks of %d",
			ErrArenaTooSmall, data.Size(), meta, cfg.BlockSize)
	}

	table, err := heap.Allocate(cfg.tableSize())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoMemory, err)
	}

	f := &FS{
		heap:    heap,
		data:    data,
		cfg:     cfg,
		table:   table,
		dir:     dir{mem: heap.Arena(), base: table, cfg: cfg},
		meta:    meta,
		mounted: true,
	}

	if saved, ok := readSuper(data, cfg); ok {
		heap.Arena().Write(table, saved)
		logger.Debug("fs: mounted existing", "files", len(f.List()), "free_blocks", f.dir.free())
	} else {
		f.dir.format(total)
		writeSuper(data, cfg, f.dir.bytes())
		f.formatted = true
		logger.Debug("fs: formatted", "blocks", total, "block_size", cfg.BlockSize)
	}
	return f, nil
}

// Formatted reports whether Mount created a fresh filesystem.
func (f *FS) Formatted() bool { return f.formatted }

// Config returns the geometry.
func (f *FS) Config() Config { return f.cfg }

// Create adds an empty file of size bytes, reserving a contiguous run of
// blocks for it. A zero size reserves nothing.
func (f *FS) Create(name string, size int) error {
	if !f.mounted {
		return ErrNotMounted
	}
	if err := f.checkName(name); err != nil {
		return err
	}
	if size < 0 {
		return fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	if _, ok := f.dir.lookup(name); ok {
		return fmt.Errorf("%w: %s", ErrExists, name)
	}
	slot, ok := f.dir.freeSlot()
	if !ok {
		return fmt.Errorf("%w: %d files", ErrNoSlot, f.cfg.MaxFiles)
	}

	need := f.cfg.blocksFor(size)
	if need > f.dir.free() {
		return fmt.Errorf("%w: %s needs %d blocks, %d free", ErrNoSpace, name, need, f.dir.free())
	}
	start, ok := f.findRun(need)
	if !ok {
		return fmt.Errorf("%w: %s needs %d contiguous blocks", ErrNoSpace, name, need)
	}

	f.dir.entry(slot).set(name, size, start)
	f.dir.setFree(f.dir.free() - need)
	f.data.Zero(f.blockAddr(start), need*f.cfg.BlockSize)
	logger.Debug("fs: create", "name", name, "size", size, "start", start, "blocks", need)
	return nil
}

// Delete removes name and returns its blocks to the free pool.
func (f *FS) Delete(name string) error {
	if !f.mounted {
		return ErrNotMounted
	}
	slot, ok := f.dir.lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	e := f.dir.entry(slot)
	f.dir.setFree(f.dir.free() + e.blocks())
	e.clear()
	logger.Debug("fs: delete", "name", name)
	return nil
}

// Stat describes name.
func (f *FS) Stat(name string) (FileInfo, error) {
	if !f.mounted {
		return FileInfo{}, ErrNotMounted
	}
	slot, ok := f.dir.lookup(name)
	if !ok {
		return FileInfo{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return f.info(slot), nil
}

// Read copies up to len(p) bytes from the start of name into p.
func (f *FS) Read(name string, p []byte) (int, error) {
	fi, err := f.Stat(name)
	if err != nil {
		return 0, err
	}
	n := min(len(p), fi.Size)
	return f.data.Read(f.blockAddr(fi.StartBlock), p[:n]), nil
}

// ReadAll returns the whole contents of name.
func (f *FS) ReadAll(name string) ([]byte, error) {
	fi, err := f.Stat(name)
	if err != nil {
		return nil, err
	}
	p := make([]byte, fi.Size)
	f.data.Read(f.blockAddr(fi.StartBlock), p)
	return p, nil
}

// Write stores p at the start of name. Files never grow: bytes past the
// file size are dropped and the count actually written is returned.
func (f *FS) Write(name string, p []byte) (int, error) {
	fi, err := f.Stat(name)
	if err != nil {
		return 0, err
	}
	n := min(len(p), fi.Size)
	return f.data.Write(f.blockAddr(fi.StartBlock), p[:n]), nil
}

// List returns every file in directory order.
func (f *FS) List() []FileInfo {
	if !f.mounted {
		return nil
	}
	var out []FileInfo
	for i := range f.cfg.MaxFiles {
		if f.dir.entry(i).used() {
			out = append(out, f.info(i))
		}
	}
	return out
}

// Stats returns block and slot usage.
func (f *FS) Stats() Stats {
	st := Stats{BlockSize: f.cfg.BlockSize, MetaBlocks: f.meta, MaxFiles: f.cfg.MaxFiles}
	if !f.mounted {
		return st
	}
	st.TotalBlocks = f.dir.total()
	st.FreeBlocks = f.dir.free()
	st.Files = len(f.List())
	return st
}

// Sync writes the directory table into the data arena's metadata blocks and
// flushes the data arena.
func (f *FS) Sync(ctx context.Context) error {
	if !f.mounted {
		return ErrNotMounted
	}
	writeSuper(f.data, f.cfg, f.dir.bytes())
	if err := f.data.Sync(ctx); err != nil {
		return fmt.Errorf("fs: sync: %w", err)
	}
	return nil
}

// Unmount syncs and releases the directory table. The data arena stays
// open; it belongs to the caller.
func (f *FS) Unmount(ctx context.Context) error {
	if !f.mounted {
		return nil
	}
	err := f.Sync(ctx)
	f.heap.Release(f.table)
	f.mounted = false
	return err
}

func (f *FS) info(slot int) FileInfo {
	e := f.dir.entry(slot)
	return FileInfo{Name: e.name(), Size: e.size(), StartBlock: e.start(), Blocks: e.blocks()}
}

func (f *FS) checkName(name string) error {
	switch {
	case name == "":
		return ErrEmptyName
	case len(name) >= f.cfg.MaxName:
		return fmt.Errorf("%w: %d bytes, max %d", ErrNameTooLong, len(name), f.cfg.MaxName-1)
	}
	for i := 0; i < len(name); i++ {
		if name[i] == 0 {
			return ErrBadName
		}
	}
	return nil
}

// findRun returns the first block of the lowest run of need free blocks.
func (f *FS) findRun(need int) (int, bool) {
	if need == 0 {
		return 0, true
	}
	total := f.dir.total()
	used := make([]bool, total)
	for i := range f.cfg.MaxFiles {
		e := f.dir.entry(i)
		if !e.used() {
			continue
		}
		for b := e.start(); b < e.start()+e.blocks() && b < total; b++ {
			used[b] = true
		}
	}

	run := 0
	for b := range total {
		if used[b] {
			run = 0
			continue
		}
		if run++; run == need {
			return b - need + 1, true
		}
	}
	return 0, false
}

func (f *FS) blockAddr(block int) arena.Addr {
	return f.data.AddrOf((f.meta + block) * f.cfg.BlockSize)
}
