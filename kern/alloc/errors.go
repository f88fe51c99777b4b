package alloc

import (
	"fmt"

	"github.com/joshuapare/tinykern/internal/kerr"
)

var (
	// ErrZeroSize indicates a request for zero (or negative) bytes.
	ErrZeroSize = fmt.Errorf("alloc: zero-size request: %w", kerr.ErrInvalidArgument)

	// ErrTooLarge indicates that the request needs a block above MaxOrder.
	ErrTooLarge = fmt.Errorf("alloc: request exceeds largest block order: %w", kerr.ErrExhausted)

	// ErrExhausted indicates that no free block of sufficient order is available.
	ErrExhausted = fmt.Errorf("alloc: no free block of sufficient order: %w", kerr.ErrExhausted)

	// ErrNotInitialized indicates use of a Buddy before Init.
	ErrNotInitialized = fmt.Errorf("alloc: allocator not initialized: %w", kerr.ErrInvalidArgument)

	// ErrBadConfig indicates an invalid MinSize/MaxOrder combination.
	ErrBadConfig = fmt.Errorf("alloc: invalid configuration: %w", kerr.ErrInvalidArgument)

	// ErrArenaTooSmall indicates an arena smaller than a single MinSize block.
	ErrArenaTooSmall = fmt.Errorf("alloc: arena smaller than minimum block: %w", kerr.ErrInvalidArgument)

	// ErrBadHandle indicates a handle that does not refer to a live allocation.
	ErrBadHandle = fmt.Errorf("alloc: bad handle: %w", kerr.ErrNotFound)

	// ErrCorrupt is returned by Check when a free list violates an invariant.
	ErrCorrupt = fmt.Errorf("alloc: free list corrupt")
)
