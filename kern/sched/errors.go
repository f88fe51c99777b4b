package sched

import (
	"fmt"

	"github.com/joshuapare/tinykern/internal/kerr"
)

var (
	// ErrTableFull indicates that every process slot is in use.
	ErrTableFull = fmt.Errorf("sched: process table full: %w", kerr.ErrExhausted)

	// ErrNoStack indicates that the stack allocation for a new process
	// failed. The allocator's error is wrapped alongside it.
	ErrNoStack = fmt.Errorf("sched: cannot allocate process stack")

	// ErrNoProcess indicates an unknown process id.
	ErrNoProcess = fmt.Errorf("sched: no such process: %w", kerr.ErrNotFound)

	// ErrBadState indicates a transition the state machine does not allow.
	ErrBadState = fmt.Errorf("sched: invalid state transition: %w", kerr.ErrInvalidArgument)

	// ErrBadConfig indicates an unusable scheduler configuration.
	ErrBadConfig = fmt.Errorf("sched: invalid configuration: %w", kerr.ErrInvalidArgument)
)
