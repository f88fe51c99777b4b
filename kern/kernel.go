// Package kern boots the kernel: it creates every subsystem in dependency
// order, wires the keyboard to its interrupt line and hands the console to
// the shell.
package kern

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joshuapare/tinykern/internal/config"
	"github.com/joshuapare/tinykern/internal/idgen"
	"github.com/joshuapare/tinykern/internal/logger"
	"github.com/joshuapare/tinykern/kern/alloc"
	"github.com/joshuapare/tinykern/kern/arena"
	"github.com/joshuapare/tinykern/kern/console"
	"github.com/joshuapare/tinykern/kern/fs"
	"github.com/joshuapare/tinykern/kern/irq"
	"github.com/joshuapare/tinykern/kern/keyboard"
	"github.com/joshuapare/tinykern/kern/sched"
	"github.com/joshuapare/tinykern/kern/shell"
)

// Version is reported in the boot banner.
const Version = "1.0"

// Kernel is a booted system. Fields are exported for inspection; mutate
// them only through their own methods.
type Kernel struct {
	ID string

	Console  *console.Console
	Ports    irq.Ports
	IRQ      *irq.Table
	Keyboard *keyboard.Keyboard
	Memory   *arena.Arena
	Heap     *alloc.Buddy
	Data     *arena.Arena
	FS       *fs.FS
	Sched    *sched.Scheduler
	Shell    *shell.Shell

	cfg      *config.Config
	bootedAt time.Time
	down     bool
}

// Option customises Boot.
type Option func(*Kernel)

// WithPorts replaces the simulated I/O ports.
func WithPorts(p irq.Ports) Option {
	return func(k *Kernel) { k.Ports = p }
}

// Boot brings the system up in the fixed order console, memory,
// filesystem, keyboard, scheduler, shell. A nil cfg means defaults. On
// failure everything created so far is torn down.
func Boot(cfg *config.Config, opts ...Option) (*Kernel, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kern: config: %w", err)
	}

	k := &Kernel{ID: idgen.New(), cfg: cfg, Ports: irq.NewSimPorts()}
	for _, opt := range opts {
		opt(k)
	}

	k.Console = console.New(cfg.Console)
	k.say("tinykern v" + Version + "\n")
	k.say("Initializing system...\n")

	if err := k.boot(cfg); err != nil {
		k.closeArenas()
		return nil, err
	}

	k.say("\nSystem initialized successfully!\n")
	k.say("Starting shell...\n\n")
	k.Shell = shell.New(shell.Env{
		Screen:   k.Console,
		FS:       k.FS,
		Sched:    k.Sched,
		Heap:     k.Heap,
		Keyboard: k.Keyboard,
	})
	k.Shell.Start()
	k.bootedAt = time.Now()

	logger.Info("kern: booted", "id", k.ID, "memory", cfg.Memory.Size, "fs", cfg.FS.Size)
	return k, nil
}

func (k *Kernel) boot(cfg *config.Config) error {
	var err error

	k.step("memory manager")
	if k.Memory, err = cfg.Memory.Open(); err != nil {
		return fmt.Errorf("kern: memory arena: %w", err)
	}
	if k.Heap, err = alloc.New(k.Memory, cfg.Memory.Alloc); err != nil {
		return fmt.Errorf("kern: memory manager: %w", err)
	}

	k.step("file system")
	if k.Data, err = cfg.FS.Open(); err != nil {
		return fmt.Errorf("kern: fs arena: %w", err)
	}
	if k.FS, err = fs.Mount(k.Heap, k.Data, cfg.FS.Layout); err != nil {
		return fmt.Errorf("kern: file system: %w", err)
	}

	k.step("keyboard driver")
	k.Keyboard = keyboard.New()
	k.IRQ = irq.New(k.Ports, k.Console)
	k.IRQ.Register(irq.IRQ1, func(*irq.Registers) {
		k.Keyboard.HandleScancode(k.Ports.InB(keyboard.DataPort))
	})

	k.step("scheduler")
	if k.Sched, err = sched.New(k.Heap, cfg.Scheduler); err != nil {
		return fmt.Errorf("kern: scheduler: %w", err)
	}
	return nil
}

// Config returns the configuration the kernel booted with.
func (k *Kernel) Config() *config.Config { return k.cfg }

// Uptime returns the time since Boot returned.
func (k *Kernel) Uptime() time.Duration { return time.Since(k.bootedAt) }

// Scancode delivers one scancode as the keyboard controller would: latched
// on the data port, then IRQ1. It needs ports that can latch, and reports
// false otherwise.
func (k *Kernel) Scancode(code uint8) bool {
	sim, ok := k.Ports.(*irq.SimPorts)
	if !ok {
		return false
	}
	sim.Latch(keyboard.DataPort, code)
	k.IRQ.Raise(irq.IRQ1)
	return true
}

// Type presses the keys for s through the interrupt path and lets the shell
// consume them. Characters with no key on a US keyboard are skipped.
func (k *Kernel) Type(s string) int {
	typed := 0
	for i := 0; i < len(s); i++ {
		st, ok := keyboard.ScancodeFor(s[i])
		if !ok {
			continue
		}
		for _, code := range st.Codes() {
			if !k.Scancode(code) {
				return typed
			}
		}
		typed++
		// drain as we go so long input cannot overflow the ring
		k.Shell.Poll()
	}
	return typed
}

// Run types line followed by Enter.
func (k *Kernel) Run(line string) {
	k.Type(line + "\n")
}

// Stats is a snapshot of every subsystem.
type Stats struct {
	ID       string       `json:"id"`
	Uptime   string       `json:"uptime"`
	Memory   alloc.Stats  `json:"memory"`
	Sched    sched.Stats  `json:"scheduler"`
	FS       fs.Stats     `json:"fs"`
	Keyboard KeyboardStat `json:"keyboard"`
	Commands uint64       `json:"commands"`
}

// KeyboardStat reports keyboard interrupt traffic.
type KeyboardStat struct {
	Interrupts uint64 `json:"interrupts"`
	Buffered   int    `json:"buffered"`
	Dropped    uint64 `json:"dropped"`
}

// Stats collects a snapshot.
func (k *Kernel) Stats() Stats {
	return Stats{
		ID:     k.ID,
		Uptime: k.Uptime().Round(time.Millisecond).String(),
		Memory: k.Heap.Stats(),
		Sched:  k.Sched.Stats(),
		FS:     k.FS.Stats(),
		Keyboard: KeyboardStat{
			Interrupts: k.IRQ.Count(irq.IRQ1),
			Buffered:   k.Keyboard.Buffered(),
			Dropped:    k.Keyboard.Dropped(),
		},
		Commands: k.Shell.Executed(),
	}
}

// Shutdown persists the filesystem and releases both arenas. It is safe to
// call more than once.
func (k *Kernel) Shutdown(ctx context.Context) error {
	if k.down {
		return nil
	}
	k.down = true

	var errs []error
	if k.FS != nil {
		if err := k.FS.Unmount(ctx); err != nil {
			errs = append(errs, fmt.Errorf("kern: unmount: %w", err))
		}
	}
	if k.Data != nil {
		if err := k.Data.Sync(ctx); err != nil {
			errs = append(errs, fmt.Errorf("kern: sync fs arena: %w", err))
		}
	}
	if k.Memory != nil {
		if err := k.Memory.Sync(ctx); err != nil {
			errs = append(errs, fmt.Errorf("kern: sync memory arena: %w", err))
		}
	}
	if err := k.closeArenas(); err != nil {
		errs = append(errs, err)
	}
	logger.Info("kern: shutdown", "id", k.ID)
	return errors.Join(errs...)
}

func (k *Kernel) closeArenas() error {
	var errs []error
	for _, a := range []*arena.Arena{k.Data, k.Memory} {
		if a == nil {
			continue
		}
		if err := a.Close(); err != nil {
			errs = append(errs, fmt.Errorf("kern: close arena: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (k *Kernel) say(s string) {
	k.Console.WriteString(s)
}

func (k *Kernel) step(name string) {
	logger.Debug("kern: init", "id", k.ID, "subsystem", name)
	k.say("Initializing " + name + "...\n")
}
