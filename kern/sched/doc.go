// Package sched holds the process table, the per-priority ready queues and
// the cooperative scheduler that picks the current process.
//
// Scheduling is strict priority with round-robin inside a level: SelectNext
// re-enqueues a Running current process at the tail of its level, then
// promotes the head of the highest non-empty level. There is no aging, so a
// busy high level starves lower ones.
//
// The scheduler does not switch CPU registers. Create prepares a trap-return
// frame on each new stack (see TrapFrame) and records its address as the
// saved stack pointer; resuming a process from that frame is the interrupt
// layer's job.
//
// A Scheduler is not thread-safe. Callers serialise access, as with the
// allocator it draws stacks from.
package sched
