// Package irq is the interrupt dispatch table: 256 handler slots indexed by
// vector, with PIC end-of-interrupt signalling for hardware IRQs.
package irq

import (
	"fmt"
	"io"

	"github.com/joshuapare/tinykern/internal/logger"
)

const (
	// Vectors is the number of interrupt vectors.
	Vectors = 256

	// IRQ0 is the vector the master PIC's first line is remapped to.
	IRQ0 = 32
	// IRQ1 is the keyboard line.
	IRQ1 = 33

	// irqSlaveBase is the first vector served by the slave PIC.
	irqSlaveBase = 40
	irqLast      = 47

	PICMaster uint16 = 0x20
	PICSlave  uint16 = 0xA0
	EOI       uint8  = 0x20
)

// Ports is port-mapped I/O.
type Ports interface {
	InB(port uint16) uint8
	OutB(port uint16, v uint8)
}

// Registers is the state pushed by the common interrupt stub.
type Registers struct {
	DS                                     uint32
	EDI, ESI, EBP, ESP, EBX, EDX, ECX, EAX uint32
	IntNo, ErrCode                         uint32
	EIP, CS, EFlags, UserESP, SS           uint32
}

// Handler services one vector.
type Handler func(regs *Registers)

// Table routes vectors to handlers.
//
// NOT thread-safe.
type Table struct {
	handlers [Vectors]Handler
	counts   [Vectors]uint64
	ports    Ports
	out      io.Writer
}

// New returns an empty table that signals EOI through ports and reports
// unhandled exceptions to out.
func New(ports Ports, out io.Writer) *Table {
	if out == nil {
		out = io.Discard
	}
	return &Table{ports: ports, out: out}
}

// Register installs h for vector n, replacing any previous handler.
func (t *Table) Register(n uint8, h Handler) {
	t.handlers[n] = h
	logger.Debug("irq: register", "vector", n)
}

// Unregister removes the handler for vector n.
func (t *Table) Unregister(n uint8) {
	t.handlers[n] = nil
}

// Handled reports whether vector n has a handler.
func (t *Table) Handled(n uint8) bool { return t.handlers[n] != nil }

// Count returns how many times vector n has been dispatched.
func (t *Table) Count(n uint8) uint64 { return t.counts[n] }

// Dispatch services a CPU exception or software interrupt. Vectors without a
// handler are reported on the console.
func (t *Table) Dispatch(regs *Registers) {
	n := uint8(regs.IntNo)
	t.counts[n]++
	if h := t.handlers[n]; h != nil {
		h(regs)
		return
	}
	fmt.Fprintf(t.out, "Unhandled interrupt: %d\n", n)
	logger.Warn("irq: unhandled", "vector", n)
}

// DispatchIRQ services a hardware interrupt. EOI goes to the slave PIC for
// vectors from 40 and always to the master, before the handler runs.
func (t *Table) DispatchIRQ(regs *Registers) {
	n := uint8(regs.IntNo)
	t.counts[n]++
	if n >= irqSlaveBase {
		t.ports.OutB(PICSlave, EOI)
	}
	t.ports.OutB(PICMaster, EOI)
	if h := t.handlers[n]; h != nil {
		h(regs)
	}
}

// Raise delivers vector n through the path real hardware would take.
func (t *Table) Raise(n uint8) {
	regs := &Registers{IntNo: uint32(n)}
	if n >= IRQ0 && n <= irqLast {
		t.DispatchIRQ(regs)
		return
	}
	t.Dispatch(regs)
}
