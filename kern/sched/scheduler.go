package sched

import (
	"fmt"
	"sort"

	"github.com/joshuapare/tinykern/internal/logger"
	"github.com/joshuapare/tinykern/kern/arena"
)

// Allocator supplies process stacks. *alloc.Buddy satisfies it.
type Allocator interface {
	Allocate(size int) (arena.Addr, error)
	Release(h arena.Addr)
	Arena() *arena.Arena
}

// Scheduler owns the process table, the ready queues and the current
// process cursor.
type Scheduler struct {
	heap    Allocator
	cfg     Config
	slots   []slot
	queues  []readyQueue
	current int
	nextPID uint32

	created  uint64
	exited   uint64
	switches uint64
}

// New returns an empty scheduler drawing stacks from heap.
func New(heap Allocator, cfg Config) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Scheduler{
		heap:    heap,
		cfg:     cfg,
		slots:   make([]slot, cfg.Capacity),
		queues:  newQueues(cfg.MaxPriority + 1),
		current: none,
		nextPID: 1,
	}
	for i := range s.slots {
		s.slots[i].next = none
	}
	return s, nil
}

// Config returns the table geometry.
func (s *Scheduler) Config() Config { return s.cfg }

// Create allocates a stack, prepares a trap-return frame that enters entry
// with interrupts enabled, and queues the new process as Ready. priority is
// clamped into [0, MaxPriority].
//
// A failed stack allocation consumes no slot.
func (s *Scheduler) Create(entry uint32, priority int) (uint32, error) {
	priority = max(0, min(priority, s.cfg.MaxPriority))

	idx := s.freeSlot()
	if idx == none {
		return 0, fmt.Errorf("%w: %d slots", ErrTableFull, len(s.slots))
	}

	stack, err := s.heap.Allocate(s.cfg.StackSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNoStack, err)
	}

	p := &s.slots[idx]
	p.Process = Process{
		PID:       s.assignPID(),
		Priority:  priority,
		Entry:     entry,
		StackBase: stack,
		StackSize: s.cfg.StackSize,
	}
	p.SP = writeFrame(s.heap.Arena(), p.StackTop(), entry)
	p.FP = p.SP
	s.enqueue(idx)
	s.created++

	logger.Debug("sched: create",
		"pid", p.PID,
		"priority", priority,
		"entry", fmt.Sprintf("%#x", entry),
		"stack", fmt.Sprintf("%#x", uint32(stack)))
	return p.PID, nil
}

// Exit terminates pid, releasing its stack and recycling its slot. Unknown
// pids are ignored. If pid was current, a new process is selected.
func (s *Scheduler) Exit(pid uint32) {
	idx := s.find(pid)
	if idx == none {
		return
	}
	p := &s.slots[idx]
	if p.State == Ready {
		s.queues[p.Priority].remove(s.slots, idx)
	}
	wasCurrent := idx == s.current

	p.State = Terminated
	s.heap.Release(p.StackBase)
	*p = slot{next: none}
	s.exited++
	logger.Debug("sched: exit", "pid", pid, "current", wasCurrent)

	if wasCurrent {
		s.current = none
		s.SelectNext()
	}
}

// SelectNext demotes a Running current process to the tail of its ready
// queue, then promotes the head of the highest non-empty queue. With every
// queue empty the cursor is left alone.
func (s *Scheduler) SelectNext() (Process, bool) {
	if s.current != none && s.slots[s.current].State == Running {
		s.enqueue(s.current)
	}

	for prio := len(s.queues) - 1; prio >= 0; prio-- {
		idx, ok := s.queues[prio].pop(s.slots)
		if !ok {
			continue
		}
		if idx != s.current {
			s.switches++
		}
		s.current = idx
		s.slots[idx].State = Running
		logger.Debug("sched: select", "pid", s.slots[idx].PID, "priority", prio)
		return s.slots[idx].Process, true
	}
	return s.Current()
}

// Yield gives up the current process's turn. It is SelectNext.
func (s *Scheduler) Yield() (Process, bool) {
	return s.SelectNext()
}

// Current returns the process the cursor points at.
func (s *Scheduler) Current() (Process, bool) {
	if s.current == none {
		return Process{}, false
	}
	return s.slots[s.current].Process, true
}

// Block moves a Ready or Running process to Blocked. Blocking the current
// process clears the cursor and selects another. Blocking a Blocked process
// is a no-op.
func (s *Scheduler) Block(pid uint32) error {
	idx := s.find(pid)
	if idx == none {
		return fmt.Errorf("%w: %d", ErrNoProcess, pid)
	}
	p := &s.slots[idx]
	switch p.State {
	case Blocked:
		return nil
	case Ready:
		s.queues[p.Priority].remove(s.slots, idx)
	case Running:
	default:
		return fmt.Errorf("%w: block %d from %s", ErrBadState, pid, p.State)
	}
	p.State = Blocked
	logger.Debug("sched: block", "pid", pid)

	if idx == s.current {
		s.current = none
		s.SelectNext()
	}
	return nil
}

// Unblock moves a Blocked process back to the tail of its ready queue.
// Unblocking a process that is not Blocked is a no-op.
func (s *Scheduler) Unblock(pid uint32) error {
	idx := s.find(pid)
	if idx == none {
		return fmt.Errorf("%w: %d", ErrNoProcess, pid)
	}
	if s.slots[idx].State != Blocked {
		return nil
	}
	s.enqueue(idx)
	logger.Debug("sched: unblock", "pid", pid)
	return nil
}

// Lookup returns the record for pid.
func (s *Scheduler) Lookup(pid uint32) (Process, error) {
	idx := s.find(pid)
	if idx == none {
		return Process{}, fmt.Errorf("%w: %d", ErrNoProcess, pid)
	}
	return s.slots[idx].Process, nil
}

// Processes returns every live process ordered by pid.
func (s *Scheduler) Processes() []Process {
	var out []Process
	for i := range s.slots {
		if !s.slots[i].free() {
			out = append(out, s.slots[i].Process)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}

// ReadyCount returns the length of the ready queue for priority.
func (s *Scheduler) ReadyCount(priority int) int {
	if priority < 0 || priority >= len(s.queues) {
		return 0
	}
	return s.queues[priority].n
}

// ReadyPIDs returns the pids queued at priority, head first.
func (s *Scheduler) ReadyPIDs(priority int) []uint32 {
	if priority < 0 || priority >= len(s.queues) {
		return nil
	}
	var pids []uint32
	s.queues[priority].each(s.slots, func(i int) {
		pids = append(pids, s.slots[i].PID)
	})
	return pids
}

// Stats summarises the table.
type Stats struct {
	Capacity int    `json:"capacity"`
	Live     int    `json:"live"`
	Ready    []int  `json:"ready"`
	Blocked  int    `json:"blocked"`
	Current  uint32 `json:"current"`
	Created  uint64 `json:"created"`
	Exited   uint64 `json:"exited"`
	Switches uint64 `json:"switches"`
}

// Stats returns a snapshot of table occupancy and counters.
func (s *Scheduler) Stats() Stats {
	st := Stats{
		Capacity: len(s.slots),
		Ready:    make([]int, len(s.queues)),
		Created:  s.created,
		Exited:   s.exited,
		Switches: s.switches,
	}
	for i := range s.queues {
		st.Ready[i] = s.queues[i].n
	}
	for i := range s.slots {
		if s.slots[i].free() {
			continue
		}
		st.Live++
		if s.slots[i].State == Blocked {
			st.Blocked++
		}
	}
	if p, ok := s.Current(); ok {
		st.Current = p.PID
	}
	return st
}

func (s *Scheduler) enqueue(idx int) {
	p := &s.slots[idx]
	p.State = Ready
	s.queues[p.Priority].push(s.slots, idx)
}

func (s *Scheduler) freeSlot() int {
	for i := range s.slots {
		if s.slots[i].free() || s.slots[i].State == Terminated {
			return i
		}
	}
	return none
}

func (s *Scheduler) find(pid uint32) int {
	if pid == 0 {
		return none
	}
	for i := range s.slots {
		if s.slots[i].PID == pid {
			return i
		}
	}
	return none
}

// assignPID hands out increasing ids. After wrapping it skips 0 and ids that
// are still live.
func (s *Scheduler) assignPID() uint32 {
	for {
		pid := s.nextPID
		s.nextPID++
		if s.nextPID == 0 {
			s.nextPID = 1
		}
		if pid != 0 && s.find(pid) == none {
			return pid
		}
	}
}
