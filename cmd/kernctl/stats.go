package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/tinykern/kern"
)

var statsSpawn []string

func init() {
	cmd := newStatsCmd()
	cmd.Flags().
		StringArrayVar(&statsSpawn, "spawn", nil, "Spawn a process first, as \"entry[:priority]\" (repeatable)")
	rootCmd.AddCommand(cmd)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show allocator, scheduler and filesystem statistics",
		Long: `The stats command boots the system and reports heap free lists,
process table occupancy, filesystem usage and keyboard traffic.

Example:
  kernctl stats
  kernctl stats --spawn 0x1000:2 --spawn 0x2000
  kernctl stats --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context())
		},
	}
	return cmd
}

func runStats(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	k, err := bootKernel(cfg)
	if err != nil {
		return err
	}

	for _, spec := range statsSpawn {
		entry, pri, _ := strings.Cut(spec, ":")
		k.Run(strings.TrimSpace("spawn " + entry + " " + pri))
	}

	st := k.Stats()
	if jsonOut {
		if err := printJSON(st); err != nil {
			return shutdownAfter(ctx, k, err)
		}
		return k.Shutdown(ctx)
	}

	if !quiet {
		writeStats(os.Stdout, st)
	}
	return k.Shutdown(ctx)
}

func writeStats(w io.Writer, st kern.Stats) {
	fmt.Fprintf(w, "Kernel %s (up %s)\n", st.ID, st.Uptime)

	m := st.Memory
	fmt.Fprintf(w, "\nMemory:\n")
	fmt.Fprintf(w, "  Min block:     %d bytes (orders 0-%d, top %d)\n", m.MinSize, m.MaxOrder, m.TopOrder)
	fmt.Fprintf(w, "  Tracked:       %d bytes (%d untracked)\n", m.TrackedBytes, m.UntrackedBytes)
	fmt.Fprintf(w, "  Free:          %d bytes\n", m.FreeBytes)
	fmt.Fprintf(w, "  Live:          %d allocations, %d bytes\n", m.LiveAllocations, m.LiveBytes)
	fmt.Fprintf(w, "  Calls:         %d alloc, %d free, %d failed\n", m.AllocCalls, m.FreeCalls, m.FailedAllocs)
	fmt.Fprintf(w, "  Splits/merges: %d/%d\n", m.Splits, m.Merges)
	for order, n := range m.FreeBlocks {
		if n == 0 {
			continue
		}
		fmt.Fprintf(w, "  Order %2d:      %d free (%d bytes each)\n", order, n, m.MinSize<<order)
	}

	s := st.Sched
	fmt.Fprintf(w, "\nScheduler:\n")
	fmt.Fprintf(w, "  Processes:     %d/%d (%d blocked)\n", s.Live, s.Capacity, s.Blocked)
	for pri, n := range s.Ready {
		fmt.Fprintf(w, "  Priority %d:    %d ready\n", pri, n)
	}
	if s.Current != 0 {
		fmt.Fprintf(w, "  Running:       %d\n", s.Current)
	} else {
		fmt.Fprintf(w, "  Running:       none\n")
	}
	fmt.Fprintf(w, "  Counters:      %d created, %d exited, %d switches\n", s.Created, s.Exited, s.Switches)

	f := st.FS
	fmt.Fprintf(w, "\nFilesystem:\n")
	fmt.Fprintf(w, "  Files:         %d/%d\n", f.Files, f.MaxFiles)
	fmt.Fprintf(w, "  Blocks:        %d free of %d (%d bytes, %d metadata)\n",
		f.FreeBlocks, f.TotalBlocks, f.BlockSize, f.MetaBlocks)

	kb := st.Keyboard
	fmt.Fprintf(w, "\nKeyboard:\n")
	fmt.Fprintf(w, "  Interrupts:    %d (%d buffered, %d dropped)\n", kb.Interrupts, kb.Buffered, kb.Dropped)
	fmt.Fprintf(w, "  Commands:      %d\n", st.Commands)
}
