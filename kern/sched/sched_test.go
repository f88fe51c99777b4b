package sched

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/tinykern/internal/kerr"
	"github.com/joshuapare/tinykern/kern/alloc"
	"github.com/joshuapare/tinykern/kern/arena"
)

func newTestHeap(t *testing.T, size int) *alloc.Buddy {
	t.Helper()
	mem, err := arena.New(0x200000, size)
	require.NoError(t, err)
	heap, err := alloc.New(mem, alloc.DefaultConfig())
	require.NoError(t, err)
	return heap
}

func newTestScheduler(t *testing.T, cfg Config) (*Scheduler, *alloc.Buddy) {
	t.Helper()
	heap := newTestHeap(t, 1<<20)
	s, err := New(heap, cfg)
	require.NoError(t, err)
	return s, heap
}

func mustCreate(t *testing.T, s *Scheduler, entry uint32, prio int) uint32 {
	t.Helper()
	pid, err := s.Create(entry, prio)
	require.NoError(t, err)
	require.NotZero(t, pid)
	return pid
}

func Test_SelectNext_HighestPriorityFirst(t *testing.T) {
	s, _ := newTestScheduler(t, DefaultConfig())

	mustCreate(t, s, 0x1000, 0)
	mustCreate(t, s, 0x2000, 1)
	hi := mustCreate(t, s, 0x3000, 2)

	p, ok := s.SelectNext()
	require.True(t, ok)
	assert.Equal(t, hi, p.PID)
	assert.Equal(t, Running, p.State)

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, hi, cur.PID)
}

func Test_SelectNext_RoundRobinWithinLevel(t *testing.T) {
	s, _ := newTestScheduler(t, DefaultConfig())

	var pids []uint32
	for i := range 5 {
		pids = append(pids, mustCreate(t, s, uint32(0x1000*(i+1)), 1))
	}

	for round := range 3 {
		seen := map[uint32]bool{}
		var order []uint32
		for range pids {
			p, ok := s.SelectNext()
			require.True(t, ok)
			require.False(t, seen[p.PID], "round %d visited %d twice", round, p.PID)
			seen[p.PID] = true
			order = append(order, p.PID)
		}
		assert.Equal(t, pids, order, "round %d follows creation order", round)
	}
}

func Test_SelectNext_PriorityDominance(t *testing.T) {
	s, _ := newTestScheduler(t, DefaultConfig())

	lows := map[uint32]bool{}
	for range 3 {
		lows[mustCreate(t, s, 0x1000, 0)] = true
	}
	a := mustCreate(t, s, 0x2000, 3)
	b := mustCreate(t, s, 0x3000, 3)

	for range 10 {
		p, ok := s.SelectNext()
		require.True(t, ok)
		assert.False(t, lows[p.PID], "low priority process %d ran while priority 3 was ready", p.PID)
		assert.Contains(t, []uint32{a, b}, p.PID)
	}
	assert.Equal(t, 3, s.ReadyCount(0))
}

func Test_SelectNext_EmptyQueues(t *testing.T) {
	s, _ := newTestScheduler(t, DefaultConfig())

	_, ok := s.SelectNext()
	assert.False(t, ok, "no process to run")

	pid := mustCreate(t, s, 0x1000, 2)
	for range 3 {
		p, ok := s.SelectNext()
		require.True(t, ok)
		assert.Equal(t, pid, p.PID, "sole process keeps running")
		assert.Equal(t, Running, p.State)
	}
	assert.Equal(t, uint64(1), s.Stats().Switches)
}

func Test_Yield(t *testing.T) {
	s, _ := newTestScheduler(t, DefaultConfig())
	a := mustCreate(t, s, 0x1000, 1)
	b := mustCreate(t, s, 0x2000, 1)

	p, _ := s.Yield()
	assert.Equal(t, a, p.PID)
	p, _ = s.Yield()
	assert.Equal(t, b, p.PID)

	pa, err := s.Lookup(a)
	require.NoError(t, err)
	assert.Equal(t, Ready, pa.State)
	assert.Equal(t, []uint32{a}, s.ReadyPIDs(1))
}

func Test_Exit_CurrentPromotesNext(t *testing.T) {
	s, heap := newTestScheduler(t, DefaultConfig())
	free := heap.FreeBytes()

	a := mustCreate(t, s, 0x1000, 2)
	b := mustCreate(t, s, 0x2000, 1)

	p, _ := s.SelectNext()
	require.Equal(t, a, p.PID)

	s.Exit(a)
	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, b, cur.PID)
	assert.Equal(t, Running, cur.State)

	s.Exit(b)
	_, ok = s.Current()
	assert.False(t, ok, "cursor cleared with nothing ready")
	assert.Equal(t, free, heap.FreeBytes(), "stacks returned")
	assert.Empty(t, s.Processes())
}

func Test_Exit_ReadyProcessLeavesQueue(t *testing.T) {
	s, _ := newTestScheduler(t, DefaultConfig())
	a := mustCreate(t, s, 0x1000, 1)
	b := mustCreate(t, s, 0x2000, 1)
	c := mustCreate(t, s, 0x3000, 1)

	s.Exit(b)
	assert.Equal(t, []uint32{a, c}, s.ReadyPIDs(1))
	assert.Equal(t, 2, s.ReadyCount(1))

	s.Exit(c)
	assert.Equal(t, []uint32{a}, s.ReadyPIDs(1))
	d := mustCreate(t, s, 0x4000, 1)
	assert.Equal(t, []uint32{a, d}, s.ReadyPIDs(1), "tail is reset after removing it")

	_, err := s.Lookup(b)
	require.ErrorIs(t, err, ErrNoProcess)
	require.ErrorIs(t, err, kerr.ErrNotFound)
}

func Test_Exit_UnknownIsNoop(t *testing.T) {
	s, _ := newTestScheduler(t, DefaultConfig())
	a := mustCreate(t, s, 0x1000, 1)
	s.SelectNext()

	s.Exit(0)
	s.Exit(999)

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, a, cur.PID)
	assert.Equal(t, uint64(0), s.Stats().Exited)
}

func Test_Create_ClampsPriority(t *testing.T) {
	s, _ := newTestScheduler(t, DefaultConfig())

	hi := mustCreate(t, s, 0x1000, 99)
	lo := mustCreate(t, s, 0x2000, -4)

	p, err := s.Lookup(hi)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxPriority, p.Priority)
	p, err = s.Lookup(lo)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Priority)
}

func Test_Create_TableFull(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 2
	s, _ := newTestScheduler(t, cfg)

	a := mustCreate(t, s, 0x1000, 0)
	mustCreate(t, s, 0x2000, 0)

	_, err := s.Create(0x3000, 0)
	require.ErrorIs(t, err, ErrTableFull)
	require.ErrorIs(t, err, kerr.ErrExhausted)

	s.Exit(a)
	c := mustCreate(t, s, 0x3000, 0)
	assert.Greater(t, c, a, "pids are not reused")
}

func Test_Create_OutOfMemoryConsumesNoSlot(t *testing.T) {
	heap := newTestHeap(t, 4096)
	s, err := New(heap, DefaultConfig())
	require.NoError(t, err)

	_, err = s.Create(0x1000, 1)
	require.ErrorIs(t, err, ErrNoStack)
	require.ErrorIs(t, err, kerr.ErrExhausted)
	assert.Empty(t, s.Processes())
	assert.Zero(t, s.Stats().Live)
	assert.Zero(t, s.ReadyCount(1))
}

func Test_Create_PIDWraparound(t *testing.T) {
	s, _ := newTestScheduler(t, DefaultConfig())

	one := mustCreate(t, s, 0x1000, 0)
	require.Equal(t, uint32(1), one)

	s.nextPID = math.MaxUint32
	last := mustCreate(t, s, 0x2000, 0)
	assert.Equal(t, uint32(math.MaxUint32), last)

	next := mustCreate(t, s, 0x3000, 0)
	assert.Equal(t, uint32(2), next, "skips 0 and the live pid 1")
}

func Test_BlockUnblock(t *testing.T) {
	s, _ := newTestScheduler(t, DefaultConfig())
	a := mustCreate(t, s, 0x1000, 2)
	b := mustCreate(t, s, 0x2000, 1)

	p, _ := s.SelectNext()
	require.Equal(t, a, p.PID)

	require.NoError(t, s.Block(a))
	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, b, cur.PID, "blocking current selects another")

	pa, _ := s.Lookup(a)
	assert.Equal(t, Blocked, pa.State)
	require.NoError(t, s.Block(a), "already blocked")

	p, _ = s.SelectNext()
	assert.Equal(t, b, p.PID, "blocked process is never selected")

	require.NoError(t, s.Unblock(a))
	assert.Equal(t, []uint32{a}, s.ReadyPIDs(2))
	p, _ = s.SelectNext()
	assert.Equal(t, a, p.PID)

	require.NoError(t, s.Unblock(a), "unblocking a running process is a no-op")
	require.ErrorIs(t, s.Block(42), ErrNoProcess)
	require.ErrorIs(t, s.Unblock(42), ErrNoProcess)
}

func Test_Block_ReadyProcess(t *testing.T) {
	s, _ := newTestScheduler(t, DefaultConfig())
	a := mustCreate(t, s, 0x1000, 1)
	b := mustCreate(t, s, 0x2000, 1)

	require.NoError(t, s.Block(a))
	assert.Equal(t, []uint32{b}, s.ReadyPIDs(1))
	assert.Equal(t, 1, s.Stats().Blocked)

	s.Exit(a)
	assert.Equal(t, 0, s.Stats().Blocked)
	assert.Equal(t, []uint32{b}, s.ReadyPIDs(1))
}

func Test_Block_AllBlockedLeavesNoCurrent(t *testing.T) {
	s, _ := newTestScheduler(t, DefaultConfig())
	a := mustCreate(t, s, 0x1000, 1)
	s.SelectNext()

	require.NoError(t, s.Block(a))
	_, ok := s.Current()
	assert.False(t, ok)

	require.NoError(t, s.Unblock(a))
	p, ok := s.SelectNext()
	require.True(t, ok)
	assert.Equal(t, a, p.PID)
}

func Test_Processes_Snapshot(t *testing.T) {
	s, _ := newTestScheduler(t, DefaultConfig())
	a := mustCreate(t, s, 0x1000, 1)
	b := mustCreate(t, s, 0x2000, 3)
	s.SelectNext()

	procs := s.Processes()
	require.Len(t, procs, 2)
	assert.Equal(t, a, procs[0].PID)
	assert.Equal(t, Ready, procs[0].State)
	assert.Equal(t, b, procs[1].PID)
	assert.Equal(t, Running, procs[1].State)

	procs[0].State = Blocked
	p, _ := s.Lookup(a)
	assert.Equal(t, Ready, p.State, "snapshot is a copy")

	st := s.Stats()
	assert.Equal(t, DefaultCapacity, st.Capacity)
	assert.Equal(t, 2, st.Live)
	assert.Equal(t, b, st.Current)
	assert.Equal(t, []int{0, 1, 0, 0}, st.Ready)
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	bad := []Config{
		{Capacity: 0, MaxPriority: 3, StackSize: 4096},
		{Capacity: 4, MaxPriority: -1, StackSize: 4096},
		{Capacity: 4, MaxPriority: 3, StackSize: 40},
		{Capacity: 4, MaxPriority: 3, StackSize: 4098},
	}
	for _, cfg := range bad {
		require.ErrorIs(t, cfg.Validate(), ErrBadConfig, "%+v", cfg)
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "blocked", Blocked.String())
	assert.Equal(t, "terminated", Terminated.String())
	assert.Equal(t, "unknown", State(9).String())
}
