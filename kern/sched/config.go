package sched

import "fmt"

const (
	DefaultCapacity    = 64
	DefaultMaxPriority = 3
	DefaultStackSize   = 4096
)

// Config sizes the process table.
type Config struct {
	// Capacity is the number of process slots.
	Capacity int `json:"capacity" yaml:"capacity"`

	// MaxPriority is the highest priority level; levels run 0..MaxPriority.
	MaxPriority int `json:"max_priority" yaml:"max_priority"`

	// StackSize is the stack allocated for every process, in bytes.
	StackSize int `json:"stack_size" yaml:"stack_size"`
}

// DefaultConfig returns the default table geometry.
func DefaultConfig() Config {
	return Config{
		Capacity:    DefaultCapacity,
		MaxPriority: DefaultMaxPriority,
		StackSize:   DefaultStackSize,
	}
}

// Validate reports whether the configuration is usable.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity %d", ErrBadConfig, c.Capacity)
	}
	if c.MaxPriority < 0 {
		return fmt.Errorf("%w: max priority %d", ErrBadConfig, c.MaxPriority)
	}
	if c.StackSize < FrameSize || c.StackSize%4 != 0 {
		return fmt.Errorf("%w: stack size %d must be a multiple of 4 holding a %d-byte frame",
			ErrBadConfig, c.StackSize, FrameSize)
	}
	return nil
}
