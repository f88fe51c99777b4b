package fs

import (
	"fmt"

	"github.com/joshuapare/tinykern/internal/kerr"
)

var (
	ErrEmptyName   = fmt.Errorf("fs: empty file name: %w", kerr.ErrInvalidArgument)
	ErrNameTooLong = fmt.Errorf("fs: file name too long: %w", kerr.ErrInvalidArgument)
	ErrBadName     = fmt.Errorf("fs: file name contains NUL: %w", kerr.ErrInvalidArgument)
	ErrBadSize     = fmt.Errorf("fs: negative file size: %w", kerr.ErrInvalidArgument)
	ErrExists      = fmt.Errorf("fs: file exists: %w", kerr.ErrInvalidArgument)
	ErrNotFound    = fmt.Errorf("fs: file not found: %w", kerr.ErrNotFound)

	// ErrNoSlot indicates that the directory table is full.
	ErrNoSlot = fmt.Errorf("fs: directory full: %w", kerr.ErrExhausted)

	// ErrNoSpace indicates that no contiguous run of free blocks is long
	// enough.
	ErrNoSpace = fmt.Errorf("fs: no contiguous space: %w", kerr.ErrExhausted)

	// ErrNoMemory indicates that the directory table could not be allocated.
	// The allocator's error is wrapped alongside it.
	ErrNoMemory = fmt.Errorf("fs: cannot allocate directory table")

	ErrNotMounted    = fmt.Errorf("fs: not mounted: %w", kerr.ErrInvalidArgument)
	ErrBadConfig     = fmt.Errorf("fs: invalid configuration: %w", kerr.ErrInvalidArgument)
	ErrArenaTooSmall = fmt.Errorf("fs: data arena too small for metadata: %w", kerr.ErrInvalidArgument)
)
