package alloc

// Stats is a point-in-time snapshot of allocator state.
type Stats struct {
	MinSize  int `json:"min_size"`
	MaxOrder int `json:"max_order"`
	TopOrder int `json:"top_order"`

	TrackedBytes   int `json:"tracked_bytes"`
	UntrackedBytes int `json:"untracked_bytes"`
	FreeBytes      int `json:"free_bytes"`
	LiveBytes      int `json:"live_bytes"`

	// FreeBlocks[k] is the length of the free list for order k.
	FreeBlocks []int `json:"free_blocks"`

	LiveAllocations int    `json:"live_allocations"`
	AllocCalls      uint64 `json:"alloc_calls"`
	FreeCalls       uint64 `json:"free_calls"`
	FailedAllocs    uint64 `json:"failed_allocs"`
	Splits          uint64 `json:"splits"`
	Merges          uint64 `json:"merges"`
}

// Stats walks the free lists and returns a snapshot.
func (b *Buddy) Stats() Stats {
	st := Stats{
		MinSize:         b.cfg.MinSize,
		MaxOrder:        b.cfg.MaxOrder,
		TopOrder:        b.top,
		FreeBlocks:      make([]int, b.cfg.MaxOrder+1),
		LiveAllocations: b.stats.live,
		LiveBytes:       b.stats.liveSize,
		AllocCalls:      b.stats.allocs,
		FreeCalls:       b.stats.frees,
		FailedAllocs:    b.stats.failed,
		Splits:          b.stats.splits,
		Merges:          b.stats.merges,
	}
	if b.top < 0 {
		return st
	}
	st.TrackedBytes = b.cfg.BlockSize(b.top)
	st.UntrackedBytes = b.mem.Size() - st.TrackedBytes

	for order := range b.free {
		b.walk(order, func(uint32) bool {
			st.FreeBlocks[order]++
			st.FreeBytes += b.cfg.BlockSize(order)
			return true
		})
	}
	return st
}

// FreeBytes returns the total size of all free-tracked blocks, headers
// included.
func (b *Buddy) FreeBytes() int {
	total := 0
	for order := range b.free {
		b.walk(order, func(uint32) bool {
			total += b.cfg.BlockSize(order)
			return true
		})
	}
	return total
}

// walk visits the free list for order until fn returns false. It stops after
// as many steps as the arena could hold blocks of that order, so a cyclic
// list cannot hang the caller.
func (b *Buddy) walk(order int, fn func(off uint32) bool) {
	if b.top < 0 || order > b.top {
		return
	}
	limit := b.cfg.BlockSize(b.top) / b.cfg.BlockSize(order)
	for off, n := b.free[order], 0; off != noBlock && n <= limit; n++ {
		if !fn(off) {
			return
		}
		off = b.header(off).next()
	}
}
