package shell

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/joshuapare/tinykern/internal/logger"
)

const maxDigits = 1 << 30

// order is the order help lists commands in.
var order = []string{
	"help", "clear", "ls", "create", "delete", "echo", "write", "cat",
	"ps", "spawn", "kill", "block", "unblock", "yield", "mem", "exit",
}

func builtins() map[string]command {
	return map[string]command{
		"help":    {"help", "Show this help message", (*Shell).cmdHelp},
		"clear":   {"clear", "Clear the screen", (*Shell).cmdClear},
		"ls":      {"ls", "List files", (*Shell).cmdList},
		"create":  {"create <name> [size]", "Create a file", (*Shell).cmdCreate},
		"delete":  {"delete <name>", "Delete a file", (*Shell).cmdDelete},
		"echo":    {"echo <text>", "Echo text", (*Shell).cmdEcho},
		"write":   {"write <name> <text>", "Write text to a file", (*Shell).cmdWrite},
		"cat":     {"cat <name>", "Print a file", (*Shell).cmdCat},
		"ps":      {"ps", "List processes", (*Shell).cmdPS},
		"spawn":   {"spawn <entry> [priority]", "Create a process", (*Shell).cmdSpawn},
		"kill":    {"kill <pid>", "Terminate a process", (*Shell).cmdKill},
		"block":   {"block <pid>", "Block a process", (*Shell).cmdBlock},
		"unblock": {"unblock <pid>", "Make a blocked process ready", (*Shell).cmdUnblock},
		"yield":   {"yield", "Run the scheduler", (*Shell).cmdYield},
		"mem":     {"mem", "Show allocator statistics", (*Shell).cmdMem},
		"exit":    {"exit", "Exit shell (not implemented)", (*Shell).cmdExit},
	}
}

func (s *Shell) cmdHelp(string) {
	s.print("Available commands:\n")
	for _, name := range order {
		c := s.commands[name]
		s.printf("  %-8s - %s\n", name, c.help)
	}
}

func (s *Shell) cmdClear(string) {
	if s.env.Screen != nil {
		s.env.Screen.Clear()
	}
}

func (s *Shell) cmdList(string) {
	if s.env.FS == nil {
		s.print("Filesystem not initialized\n")
		return
	}
	files := s.env.FS.List()
	if len(files) == 0 {
		s.print("No files found\n")
		return
	}
	for _, fi := range files {
		s.printf("%s (%d bytes)\n", fi.Name, fi.Size)
	}
}

func (s *Shell) cmdCreate(args string) {
	name, rest := firstField(args)
	if name == "" {
		s.print("Usage: create <filename> <size>\n")
		return
	}
	if s.env.FS == nil {
		s.print("Filesystem not initialized\n")
		return
	}
	size, _ := leadingDigits(rest)
	if size == 0 {
		size = defaultFileSize
	}
	if err := s.env.FS.Create(name, size); err != nil {
		s.debugErr("create", err)
		s.print("Failed to create file\n")
		return
	}
	s.printf("File created: %s\n", name)
}

func (s *Shell) cmdDelete(args string) {
	name, _ := firstField(args)
	if name == "" {
		s.print("Usage: delete <filename>\n")
		return
	}
	if s.env.FS == nil {
		s.print("Filesystem not initialized\n")
		return
	}
	if err := s.env.FS.Delete(name); err != nil {
		s.print("File not found\n")
		return
	}
	s.printf("File deleted: %s\n", name)
}

func (s *Shell) cmdEcho(args string) {
	s.print(args)
	s.print("\n")
}

func (s *Shell) cmdWrite(args string) {
	name, text := firstField(args)
	if name == "" {
		s.print("Usage: write <filename> <text>\n")
		return
	}
	if s.env.FS == nil {
		s.print("Filesystem not initialized\n")
		return
	}
	n, err := s.env.FS.Write(name, []byte(text))
	if err != nil {
		s.print("File not found\n")
		return
	}
	s.printf("Wrote %d bytes to %s\n", n, name)
}

func (s *Shell) cmdCat(args string) {
	name, _ := firstField(args)
	if name == "" {
		s.print("Usage: cat <filename>\n")
		return
	}
	if s.env.FS == nil {
		s.print("Filesystem not initialized\n")
		return
	}
	data, err := s.env.FS.ReadAll(name)
	if err != nil {
		s.print("File not found\n")
		return
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	s.out.Write(data)
	s.print("\n")
}

func (s *Shell) cmdPS(string) {
	if s.env.Sched == nil {
		s.print("Scheduler not initialized\n")
		return
	}
	procs := s.env.Sched.Processes()
	if len(procs) == 0 {
		s.print("No processes\n")
		return
	}
	s.print("  PID PRI STATE       ENTRY      STACK\n")
	for _, p := range procs {
		s.printf("%5d %3d %-11s 0x%08x 0x%08x\n", p.PID, p.Priority, p.State, p.Entry, uint32(p.StackBase))
	}
}

func (s *Shell) cmdSpawn(args string) {
	entryArg, rest := firstField(args)
	if entryArg == "" {
		s.print("Usage: spawn <entry> [priority]\n")
		return
	}
	if s.env.Sched == nil {
		s.print("Scheduler not initialized\n")
		return
	}
	entry, err := strconv.ParseUint(entryArg, 0, 32)
	if err != nil {
		s.printf("Invalid entry point: %s\n", entryArg)
		return
	}
	prio := 0
	if p, _ := firstField(rest); p != "" {
		if prio, err = strconv.Atoi(p); err != nil {
			s.printf("Invalid priority: %s\n", p)
			return
		}
	}
	pid, err := s.env.Sched.Create(uint32(entry), prio)
	if err != nil {
		s.debugErr("spawn", err)
		s.print("Failed to create process\n")
		return
	}
	s.printf("Process created: %d\n", pid)
}

func (s *Shell) cmdKill(args string) {
	pid, ok := s.pidArg("kill", args)
	if !ok {
		return
	}
	if _, err := s.env.Sched.Lookup(pid); err != nil {
		s.print("No such process\n")
		return
	}
	s.env.Sched.Exit(pid)
	s.printf("Process terminated: %d\n", pid)
}

func (s *Shell) cmdBlock(args string) {
	pid, ok := s.pidArg("block", args)
	if !ok {
		return
	}
	if err := s.env.Sched.Block(pid); err != nil {
		s.print("No such process\n")
		return
	}
	s.printf("Process blocked: %d\n", pid)
}

func (s *Shell) cmdUnblock(args string) {
	pid, ok := s.pidArg("unblock", args)
	if !ok {
		return
	}
	if err := s.env.Sched.Unblock(pid); err != nil {
		s.print("No such process\n")
		return
	}
	s.printf("Process ready: %d\n", pid)
}

func (s *Shell) cmdYield(string) {
	if s.env.Sched == nil {
		s.print("Scheduler not initialized\n")
		return
	}
	p, ok := s.env.Sched.Yield()
	if !ok {
		s.print("No process ready\n")
		return
	}
	s.printf("Running process %d (priority %d)\n", p.PID, p.Priority)
}

func (s *Shell) cmdMem(string) {
	if s.env.Heap == nil {
		s.print("Memory manager not initialized\n")
		return
	}
	st := s.env.Heap.Stats()
	s.printf("Heap: %d of %d bytes free, %d untracked\n", st.FreeBytes, st.TrackedBytes, st.UntrackedBytes)
	s.printf("Live allocations: %d (%d bytes)\n", st.LiveAllocations, st.LiveBytes)
	var parts []string
	for order, n := range st.FreeBlocks {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d:%d", order, n))
		}
	}
	s.printf("Free blocks by order: %s\n", strings.Join(parts, " "))
}

func (s *Shell) cmdExit(string) {
	s.print("Exit not implemented\n")
}

// pidArg parses the pid argument of a scheduler command, printing usage
// or an error and reporting false when the command cannot proceed.
func (s *Shell) pidArg(name, args string) (uint32, bool) {
	arg, _ := firstField(args)
	if arg == "" {
		s.printf("Usage: %s <pid>\n", name)
		return 0, false
	}
	if s.env.Sched == nil {
		s.print("Scheduler not initialized\n")
		return 0, false
	}
	pid, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		s.printf("Invalid pid: %s\n", arg)
		return 0, false
	}
	return uint32(pid), true
}

func (s *Shell) debugErr(cmd string, err error) {
	logger.Debug("shell: command failed", "command", cmd, "error", err)
}

// firstField splits off the first space-delimited word and returns it with
// the remainder, leading spaces trimmed.
func firstField(s string) (string, string) {
	s = strings.TrimLeft(s, " ")
	word, rest, _ := strings.Cut(s, " ")
	return word, strings.TrimLeft(rest, " ")
}

// leadingDigits parses the decimal prefix of s, saturating at maxDigits.
func leadingDigits(s string) (int, bool) {
	n, i := 0, 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = min(n*10+int(s[i]-'0'), maxDigits)
	}
	return n, i > 0
}
