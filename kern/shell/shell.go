// Package shell is the kernel's line-oriented command interpreter. Input
// arrives a byte at a time from the keyboard buffer; output goes to the
// console.
package shell

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/joshuapare/tinykern/internal/logger"
	"github.com/joshuapare/tinykern/kern/alloc"
	"github.com/joshuapare/tinykern/kern/fs"
	"github.com/joshuapare/tinykern/kern/keyboard"
	"github.com/joshuapare/tinykern/kern/sched"
)

const (
	// MaxInput bounds a command line, terminator included.
	MaxInput = 256

	Prompt = "> "
	Banner = "tinykern shell v1.0\nType 'help' for available commands\n"

	defaultFileSize = 1024
)

// Screen is the console the shell draws on.
type Screen interface {
	io.Writer
	Clear()
}

// Env is what the shell operates on. Nil members make the commands that
// need them report the subsystem as unavailable.
type Env struct {
	Screen   Screen
	FS       *fs.FS
	Sched    *sched.Scheduler
	Heap     *alloc.Buddy
	Keyboard *keyboard.Keyboard
}

type command struct {
	usage string
	help  string
	run   func(s *Shell, args string)
}

// Shell holds the line being edited and dispatches completed lines.
type Shell struct {
	env      Env
	out      io.Writer
	line     []byte
	commands map[string]command
	executed uint64
}

// New returns a shell bound to env.
func New(env Env) *Shell {
	out := io.Writer(io.Discard)
	if env.Screen != nil {
		out = env.Screen
	}
	return &Shell{
		env:      env,
		out:      out,
		line:     make([]byte, 0, MaxInput),
		commands: builtins(),
	}
}

// Start prints the banner and the first prompt.
func (s *Shell) Start() {
	s.print(Banner)
	s.print(Prompt)
}

// Line returns the input typed since the last prompt.
func (s *Shell) Line() string { return string(s.line) }

// Executed returns the number of lines run.
func (s *Shell) Executed() uint64 { return s.executed }

// Feed handles one input character with echo: newline runs the line,
// backspace erases, other printable ASCII is appended while there is room.
// Everything else is ignored.
func (s *Shell) Feed(ch byte) {
	switch {
	case ch == '\n':
		s.print("\n")
		line := string(s.line)
		s.line = s.line[:0]
		s.Execute(line)
		s.print(Prompt)
	case ch == '\b':
		if len(s.line) > 0 {
			s.line = s.line[:len(s.line)-1]
			s.print("\b \b")
		}
	case ch >= 32 && ch < 127:
		if len(s.line) < MaxInput-1 {
			s.line = append(s.line, ch)
			s.out.Write([]byte{ch})
		}
	}
}

// Poll feeds every character waiting in the keyboard buffer and returns how
// many were consumed.
func (s *Shell) Poll() int {
	if s.env.Keyboard == nil {
		return 0
	}
	n := 0
	for {
		ch, ok := s.env.Keyboard.Getchar()
		if !ok {
			return n
		}
		s.Feed(ch)
		n++
	}
}

// Execute runs one command line. Blank lines do nothing.
func (s *Shell) Execute(line string) {
	line = strings.TrimLeft(line, " ")
	if line == "" {
		return
	}
	name, args, _ := strings.Cut(line, " ")
	args = strings.TrimLeft(args, " ")

	s.executed++
	logger.Debug("shell: execute", "command", name)
	cmd, ok := s.commands[name]
	if !ok {
		s.printf("Unknown command: %s\nType 'help' for available commands\n", name)
		return
	}
	cmd.run(s, args)
}

func (s *Shell) print(str string) { io.WriteString(s.out, str) }

func (s *Shell) printf(format string, args ...any) { fmt.Fprintf(s.out, format, args...) }

// Commands returns the command names in sorted order.
func (s *Shell) Commands() []string {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
