package shell

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/tinykern/kern/alloc"
	"github.com/joshuapare/tinykern/kern/arena"
	"github.com/joshuapare/tinykern/kern/console"
	"github.com/joshuapare/tinykern/kern/fs"
	"github.com/joshuapare/tinykern/kern/keyboard"
	"github.com/joshuapare/tinykern/kern/sched"
)

type bufScreen struct {
	bytes.Buffer
	clears int
}

func (b *bufScreen) Clear() {
	b.Reset()
	b.clears++
}

func newTestEnv(t *testing.T) (Env, *bufScreen) {
	t.Helper()
	mem, err := arena.New(0x200000, 1<<20)
	require.NoError(t, err)
	heap, err := alloc.New(mem, alloc.DefaultConfig())
	require.NoError(t, err)
	data, err := arena.New(0x300000, 1<<20)
	require.NoError(t, err)
	files, err := fs.Mount(heap, data, fs.DefaultConfig())
	require.NoError(t, err)
	sc, err := sched.New(heap, sched.DefaultConfig())
	require.NoError(t, err)

	screen := &bufScreen{}
	return Env{Screen: screen, FS: files, Sched: sc, Heap: heap, Keyboard: keyboard.New()}, screen
}

// run executes each line and returns everything printed.
func run(t *testing.T, sh *Shell, screen *bufScreen, lines ...string) string {
	t.Helper()
	screen.Reset()
	for _, l := range lines {
		sh.Execute(l)
	}
	return screen.String()
}

func TestShell_StartAndFeed(t *testing.T) {
	env, screen := newTestEnv(t)
	sh := New(env)
	sh.Start()
	assert.Equal(t, Banner+Prompt, screen.String())

	screen.Reset()
	for _, ch := range []byte("echo hi\n") {
		sh.Feed(ch)
	}
	assert.Equal(t, "echo hi\nhi\n> ", screen.String())
	assert.Empty(t, sh.Line())
	assert.Equal(t, uint64(1), sh.Executed())
}

func TestShell_FeedEditing(t *testing.T) {
	env, screen := newTestEnv(t)
	sh := New(env)

	for _, ch := range []byte("ecx\bho\x01 ok") {
		sh.Feed(ch)
	}
	assert.Equal(t, "echo ok", sh.Line())
	assert.Equal(t, "ecx\b \bho ok", screen.String(), "control bytes are not echoed")

	sh.Feed('\b')
	sh.Feed('\b')
	sh.Feed('\b')
	sh.Feed('\b')
	sh.Feed('\b')
	sh.Feed('\b')
	sh.Feed('\b')
	sh.Feed('\b')
	assert.Empty(t, sh.Line(), "backspace on an empty line does nothing")
}

func TestShell_FeedLimit(t *testing.T) {
	env, _ := newTestEnv(t)
	sh := New(env)
	for range MaxInput + 20 {
		sh.Feed('a')
	}
	assert.Len(t, sh.Line(), MaxInput-1)
}

func TestShell_Poll(t *testing.T) {
	env, screen := newTestEnv(t)
	sh := New(env)

	for _, ch := range []byte("echo Hi!\n") {
		st, ok := keyboard.ScancodeFor(ch)
		require.True(t, ok)
		for _, code := range st.Codes() {
			env.Keyboard.HandleScancode(code)
		}
	}
	assert.Equal(t, 9, sh.Poll())
	assert.Contains(t, screen.String(), "Hi!\n> ")
	assert.Zero(t, sh.Poll())
}

func TestShell_Help(t *testing.T) {
	env, screen := newTestEnv(t)
	sh := New(env)

	out := run(t, sh, screen, "help")
	require.True(t, strings.HasPrefix(out, "Available commands:\n"))
	for _, name := range sh.Commands() {
		assert.Contains(t, out, "  "+name, "help lists %s", name)
	}
	assert.Len(t, sh.Commands(), len(order))
}

func TestShell_Unknown(t *testing.T) {
	env, screen := newTestEnv(t)
	sh := New(env)

	out := run(t, sh, screen, "frobnicate now", "", "   ")
	assert.Equal(t, "Unknown command: frobnicate\nType 'help' for available commands\n", out)
	assert.Equal(t, uint64(1), sh.Executed())
}

func TestShell_Clear(t *testing.T) {
	env, screen := newTestEnv(t)
	sh := New(env)
	sh.Execute("echo x")
	sh.Execute("clear")
	assert.Equal(t, 1, screen.clears)
	assert.Empty(t, screen.String())
}

func TestShell_Files(t *testing.T) {
	env, screen := newTestEnv(t)
	sh := New(env)

	assert.Equal(t, "No files found\n", run(t, sh, screen, "ls"))
	assert.Equal(t, "File created: a.txt\n", run(t, sh, screen, "create a.txt 16"))
	assert.Equal(t, "File created: b\n", run(t, sh, screen, "create   b"))
	assert.Equal(t, "Failed to create file\n", run(t, sh, screen, "create a.txt"))
	assert.Equal(t, "a.txt (16 bytes)\nb (1024 bytes)\n", run(t, sh, screen, "ls"))

	assert.Equal(t, "Wrote 11 bytes to a.txt\n", run(t, sh, screen, "write a.txt hello world"))
	assert.Equal(t, "hello world\n", run(t, sh, screen, "cat a.txt"))
	assert.Equal(t, "Wrote 16 bytes to a.txt\n", run(t, sh, screen, "write a.txt 0123456789abcdefXYZ"))
	assert.Equal(t, "0123456789abcdef\n", run(t, sh, screen, "cat a.txt"))

	assert.Equal(t, "File deleted: a.txt\n", run(t, sh, screen, "delete a.txt"))
	assert.Equal(t, "File not found\n", run(t, sh, screen, "delete a.txt"))
	assert.Equal(t, "File not found\n", run(t, sh, screen, "cat a.txt"))
	assert.Equal(t, "File not found\n", run(t, sh, screen, "write a.txt x"))

	assert.Equal(t, "Usage: create <filename> <size>\n", run(t, sh, screen, "create"))
	assert.Equal(t, "Usage: delete <filename>\n", run(t, sh, screen, "delete"))
	assert.Equal(t, "Usage: cat <filename>\n", run(t, sh, screen, "cat"))
	assert.Equal(t, "Usage: write <filename> <text>\n", run(t, sh, screen, "write"))
}

func TestShell_Processes(t *testing.T) {
	env, screen := newTestEnv(t)
	sh := New(env)

	assert.Equal(t, "No processes\n", run(t, sh, screen, "ps"))
	assert.Equal(t, "No process ready\n", run(t, sh, screen, "yield"))
	assert.Equal(t, "Process created: 1\n", run(t, sh, screen, "spawn 0x1000"))
	assert.Equal(t, "Process created: 2\n", run(t, sh, screen, "spawn 4096 2"))
	assert.Equal(t, "Running process 2 (priority 2)\n", run(t, sh, screen, "yield"))

	out := run(t, sh, screen, "ps")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "ready")
	assert.Regexp(t, `^    1   0 ready       0x00001000 0x[0-9a-f]{8}$`, lines[1])
	assert.Regexp(t, `^    2   2 running     0x00001000 0x[0-9a-f]{8}$`, lines[2])
	assert.Contains(t, lines[2], "running")

	assert.Equal(t, "Process blocked: 2\n", run(t, sh, screen, "block 2"))
	cur, ok := env.Sched.Current()
	require.True(t, ok)
	assert.Equal(t, uint32(1), cur.PID)
	assert.Equal(t, "Process ready: 2\n", run(t, sh, screen, "unblock 2"))
	assert.Equal(t, "Running process 2 (priority 2)\n", run(t, sh, screen, "yield"))

	assert.Equal(t, "Process terminated: 2\n", run(t, sh, screen, "kill 2"))
	assert.Equal(t, "No such process\n", run(t, sh, screen, "kill 2"))
	assert.Equal(t, "No such process\n", run(t, sh, screen, "block 9"))
	assert.Equal(t, "No such process\n", run(t, sh, screen, "unblock 9"))

	assert.Equal(t, "Invalid entry point: main\n", run(t, sh, screen, "spawn main"))
	assert.Equal(t, "Invalid priority: high\n", run(t, sh, screen, "spawn 1 high"))
	assert.Equal(t, "Invalid pid: x\n", run(t, sh, screen, "kill x"))
	assert.Equal(t, "Usage: kill <pid>\n", run(t, sh, screen, "kill"))
	assert.Equal(t, "Usage: spawn <entry> [priority]\n", run(t, sh, screen, "spawn"))
}

func TestShell_Mem(t *testing.T) {
	env, screen := newTestEnv(t)
	sh := New(env)

	out := run(t, sh, screen, "mem")
	assert.Contains(t, out, "of 1048576 bytes free")
	assert.Contains(t, out, "Live allocations: 1 ")
	assert.Contains(t, out, "Free blocks by order:")
}

func TestShell_Exit(t *testing.T) {
	env, screen := newTestEnv(t)
	sh := New(env)
	assert.Equal(t, "Exit not implemented\n", run(t, sh, screen, "exit"))
}

func TestShell_MissingSubsystems(t *testing.T) {
	screen := &bufScreen{}
	sh := New(Env{Screen: screen})

	assert.Equal(t, "Filesystem not initialized\n", run(t, sh, screen, "ls"))
	assert.Equal(t, "Filesystem not initialized\n", run(t, sh, screen, "create x"))
	assert.Equal(t, "Scheduler not initialized\n", run(t, sh, screen, "ps"))
	assert.Equal(t, "Scheduler not initialized\n", run(t, sh, screen, "kill 1"))
	assert.Equal(t, "Memory manager not initialized\n", run(t, sh, screen, "mem"))
	assert.Zero(t, sh.Poll())
}

func TestShell_OnConsole(t *testing.T) {
	con := console.New(console.DefaultConfig())
	sh := New(Env{Screen: con})
	sh.Start()
	for _, ch := range []byte("echo done\n") {
		sh.Feed(ch)
	}
	lines := con.Lines()
	assert.Equal(t, "> echo done", lines[2])
	assert.Equal(t, "done", lines[3])
	assert.Equal(t, ">", lines[4])
}
