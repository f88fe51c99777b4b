// Package config holds the boot configuration of the kernel. The zero value
// is not useful; start from DefaultConfig and overlay a YAML file with Load.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/tinykern/kern/alloc"
	"github.com/joshuapare/tinykern/kern/arena"
	"github.com/joshuapare/tinykern/kern/console"
	"github.com/joshuapare/tinykern/kern/fs"
	"github.com/joshuapare/tinykern/kern/sched"
)

// Backing names accepted in Region.Backing.
const (
	BackingHeap = "heap"
	BackingAnon = "anon"
	BackingFile = "file"
)

// Config is the serialisable boot configuration.
type Config struct {
	Memory    MemoryConfig   `json:"memory" yaml:"memory"`
	Scheduler sched.Config   `json:"scheduler" yaml:"scheduler"`
	FS        FSConfig       `json:"fs" yaml:"fs"`
	Console   console.Config `json:"console" yaml:"console"`
}

// Region describes a physical address range and what backs it.
type Region struct {
	Base    uint32 `json:"base" yaml:"base"`
	Size    int    `json:"size" yaml:"size"`
	Backing string `json:"backing" yaml:"backing"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
}

// MemoryConfig is the allocator arena and its block geometry.
type MemoryConfig struct {
	Region `yaml:",inline"`
	Alloc  alloc.Config `json:"alloc" yaml:"alloc"`
}

// FSConfig is the filesystem data arena and its layout.
type FSConfig struct {
	Region `yaml:",inline"`
	Layout fs.Config `json:"layout" yaml:"layout"`
}

// DefaultConfig returns the configuration the kernel boots with when no file
// is given.
func DefaultConfig() *Config {
	return &Config{
		Memory: MemoryConfig{
			Region: Region{Base: 0x200000, Size: 1 << 20, Backing: BackingHeap},
			Alloc:  alloc.DefaultConfig(),
		},
		Scheduler: sched.DefaultConfig(),
		FS: FSConfig{
			Region: Region{Base: 0x300000, Size: 1 << 20, Backing: BackingHeap},
			Layout: fs.DefaultConfig(),
		},
		Console: console.DefaultConfig(),
	}
}

// Load overlays the YAML file at path on the defaults and validates the
// result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse overlays YAML data on the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns aggregated errors describing invalid settings, or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if err := c.Memory.Region.validate("memory"); err != nil {
		errs = append(errs, err)
	}
	if err := c.Memory.Alloc.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Memory.Size < c.Memory.Alloc.MinSize {
		errs = append(errs, fmt.Errorf("memory.size %d smaller than alloc.min_size %d",
			c.Memory.Size, c.Memory.Alloc.MinSize))
	}
	if err := c.Scheduler.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.FS.Region.validate("fs"); err != nil {
		errs = append(errs, err)
	}
	if err := c.FS.Layout.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Console.Validate(); err != nil {
		errs = append(errs, err)
	}
	if overlaps(c.Memory.Region, c.FS.Region) {
		errs = append(errs, fmt.Errorf("memory [%#x,+%d) overlaps fs [%#x,+%d)",
			c.Memory.Base, c.Memory.Size, c.FS.Base, c.FS.Size))
	}
	return errors.Join(errs...)
}

// Kind maps Backing to the arena backing it selects.
func (r Region) Kind() (arena.Backing, error) {
	switch r.Backing {
	case "", BackingHeap:
		return arena.BackingHeap, nil
	case BackingAnon:
		return arena.BackingAnon, nil
	case BackingFile:
		return arena.BackingFile, nil
	default:
		return 0, fmt.Errorf("unknown backing %q", r.Backing)
	}
}

// Open creates the arena the region describes.
func (r Region) Open() (*arena.Arena, error) {
	kind, err := r.Kind()
	if err != nil {
		return nil, err
	}
	switch kind {
	case arena.BackingAnon:
		return arena.MapAnon(arena.Addr(r.Base), r.Size)
	case arena.BackingFile:
		return arena.Map(r.Path, arena.Addr(r.Base), r.Size)
	default:
		return arena.New(arena.Addr(r.Base), r.Size)
	}
}

func (r Region) validate(name string) error {
	if r.Size <= 0 {
		return fmt.Errorf("%s.size must be > 0", name)
	}
	if uint64(r.Base)+uint64(r.Size) > math.MaxUint32 {
		return fmt.Errorf("%s [%#x,+%d) exceeds the 32-bit address space", name, r.Base, r.Size)
	}
	kind, err := r.Kind()
	if err != nil {
		return fmt.Errorf("%s.backing: %w", name, err)
	}
	if kind == arena.BackingFile && r.Path == "" {
		return fmt.Errorf("%s.path is required for file backing", name)
	}
	return nil
}

func overlaps(a, b Region) bool {
	aEnd := uint64(a.Base) + uint64(a.Size)
	bEnd := uint64(b.Base) + uint64(b.Size)
	return uint64(a.Base) < bEnd && uint64(b.Base) < aEnd
}
