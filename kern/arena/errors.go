package arena

import (
	"errors"
	"fmt"

	"github.com/joshuapare/tinykern/internal/kerr"
)

var (
	// ErrBadSize indicates a zero or negative arena size.
	ErrBadSize = fmt.Errorf("arena: size must be positive: %w", kerr.ErrInvalidArgument)

	// ErrAddressSpace indicates that [base, base+size) does not fit a 32-bit
	// physical address space.
	ErrAddressSpace = fmt.Errorf("arena: range exceeds 32-bit address space: %w", kerr.ErrInvalidArgument)

	// ErrClosed indicates use of an arena after Close.
	ErrClosed = errors.New("arena: closed")
)
