package alloc

import (
	"fmt"
	"math/bits"
)

const (
	// DefaultMinSize is the order-0 block size in bytes.
	DefaultMinSize = 1 << 4

	// DefaultMaxOrder is the largest block order. With DefaultMinSize this
	// gives 1 MiB blocks, enough to track the default kernel arena whole.
	DefaultMaxOrder = 16

	// maxBlockShift caps MinSize << MaxOrder so block sizes fit 32-bit offsets.
	maxBlockShift = 31
)

// Config selects the block geometry of a Buddy.
type Config struct {
	// MinSize is the size of an order-0 block. Must be a power of two
	// larger than HeaderSize.
	MinSize int `json:"min_size" yaml:"min_size"`

	// MaxOrder is the largest order tracked by the free list table.
	MaxOrder int `json:"max_order" yaml:"max_order"`
}

// DefaultConfig returns the default block geometry.
func DefaultConfig() Config {
	return Config{MinSize: DefaultMinSize, MaxOrder: DefaultMaxOrder}
}

// Validate reports whether the geometry is usable.
func (c Config) Validate() error {
	if c.MinSize <= HeaderSize || c.MinSize&(c.MinSize-1) != 0 {
		return fmt.Errorf("%w: min size %d must be a power of two > %d", ErrBadConfig, c.MinSize, HeaderSize)
	}
	if c.MaxOrder < 0 {
		return fmt.Errorf("%w: negative max order %d", ErrBadConfig, c.MaxOrder)
	}
	if shift := bits.TrailingZeros(uint(c.MinSize)) + c.MaxOrder; shift > maxBlockShift {
		return fmt.Errorf("%w: largest block 2^%d exceeds 2^%d", ErrBadConfig, shift, maxBlockShift)
	}
	return nil
}

// BlockSize returns the size in bytes of a block of the given order.
func (c Config) BlockSize(order int) int {
	return c.MinSize << order
}

// OrderFor returns the smallest order whose block holds total bytes. The
// result may exceed MaxOrder; callers must check.
func (c Config) OrderFor(total int) int {
	if total <= c.MinSize {
		return 0
	}
	return bits.Len(uint(total-1)) - bits.TrailingZeros(uint(c.MinSize))
}
