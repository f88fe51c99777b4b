package sched

import "github.com/joshuapare/tinykern/kern/arena"

// State is a process lifecycle state.
type State uint8

const (
	// Terminated is also the state of an unused slot.
	Terminated State = iota
	Ready
	Running
	Blocked
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Blocked:
		return "blocked"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Process is a snapshot of a process record.
type Process struct {
	PID      uint32 `json:"pid"`
	Priority int    `json:"priority"`
	State    State  `json:"state"`

	// Saved context for the trap-return path.
	SP    arena.Addr `json:"sp"`
	FP    arena.Addr `json:"fp"`
	Entry uint32     `json:"entry"`

	// Stack is an allocation handle owned by the process until exit.
	StackBase arena.Addr `json:"stack_base"`
	StackSize int        `json:"stack_size"`
}

// StackTop returns the first address past the process stack.
func (p Process) StackTop() arena.Addr {
	return p.StackBase + arena.Addr(p.StackSize)
}

// slot is one entry of the process table. next links the slot into a ready
// queue by table index; -1 ends the chain.
type slot struct {
	Process
	next int
}

func (s *slot) free() bool { return s.PID == 0 }
