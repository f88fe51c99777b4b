package fs

import "fmt"

const (
	DefaultBlockSize = 512
	DefaultMaxFiles  = 64
	DefaultMaxName   = 32
)

// Config is the on-disk geometry. MaxName counts the terminating NUL, so the
// longest usable name is MaxName-1 bytes.
type Config struct {
	BlockSize int `json:"block_size" yaml:"block_size"`
	MaxFiles  int `json:"max_files" yaml:"max_files"`
	MaxName   int `json:"max_name" yaml:"max_name"`
}

// DefaultConfig returns the default geometry.
func DefaultConfig() Config {
	return Config{
		BlockSize: DefaultBlockSize,
		MaxFiles:  DefaultMaxFiles,
		MaxName:   DefaultMaxName,
	}
}

// Validate reports whether the geometry is usable.
func (c Config) Validate() error {
	switch {
	case c.BlockSize <= 0:
		return fmt.Errorf("%w: block size %d", ErrBadConfig, c.BlockSize)
	case c.MaxFiles <= 0:
		return fmt.Errorf("%w: max files %d", ErrBadConfig, c.MaxFiles)
	case c.MaxName < 2:
		return fmt.Errorf("%w: max name %d", ErrBadConfig, c.MaxName)
	}
	return nil
}

func (c Config) entrySize() int { return c.MaxName + entryFixed }

// tableSize is the size of the directory table in bytes.
func (c Config) tableSize() int { return tableHeader + c.MaxFiles*c.entrySize() }

// metaBlocks is the number of data blocks reserved for the superblock and
// the persisted table.
func (c Config) metaBlocks() int {
	return (superSize + c.tableSize() + c.BlockSize - 1) / c.BlockSize
}

func (c Config) blocksFor(size int) int {
	return (size + c.BlockSize - 1) / c.BlockSize
}
