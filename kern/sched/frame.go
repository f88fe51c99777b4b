package sched

import "github.com/joshuapare/tinykern/kern/arena"

const (
	// FrameWords is the number of 32-bit words in a trap-return frame.
	FrameWords = 11

	// FrameSize is the size of a trap-return frame in bytes.
	FrameSize = FrameWords * 4

	// InitialEFlags has only the interrupt-enable flag and the reserved bit 1
	// set.
	InitialEFlags = 0x202

	// KernelCS is the code segment selector new processes start in.
	KernelCS = 0x08
)

// TrapFrame is the frame the interrupt return path pops to resume a
// process. Fields are in ascending address order starting at the saved
// stack pointer: the general registers as laid down by pusha, then the
// iret words.
type TrapFrame struct {
	EAX, ECX, EDX, EBX uint32
	ESP, EBP, ESI, EDI uint32
	EIP, CS, EFlags    uint32
}

// writeFrame lays a fresh frame down from top and returns the saved stack
// pointer, which is the lowest address written. The order, high to low, is
// EFLAGS, CS, EIP, EDI, ESI, EBP, ESP, EBX, EDX, ECX, EAX. The ESP slot holds
// its own address.
func writeFrame(mem *arena.Arena, top arena.Addr, entry uint32) arena.Addr {
	sp := top
	push := func(v uint32) {
		sp -= 4
		mem.PutU32(sp, v)
	}
	push(InitialEFlags)
	push(KernelCS)
	push(entry)
	push(0)              // edi
	push(0)              // esi
	push(0)              // ebp
	push(uint32(sp) - 4) // esp: the slot being written
	push(0)              // ebx
	push(0)              // edx
	push(0)              // ecx
	push(0)              // eax
	return sp
}

// ReadTrapFrame decodes the frame at sp. It reports false when the frame
// does not lie inside mem.
func ReadTrapFrame(mem *arena.Arena, sp arena.Addr) (TrapFrame, bool) {
	if !mem.Contains(sp, FrameSize) {
		return TrapFrame{}, false
	}
	w := func(i int) uint32 { return mem.U32(sp + arena.Addr(4*i)) }
	return TrapFrame{
		EAX: w(0), ECX: w(1), EDX: w(2), EBX: w(3),
		ESP: w(4), EBP: w(5), ESI: w(6), EDI: w(7),
		EIP: w(8), CS: w(9), EFlags: w(10),
	}, true
}
