package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/tinykern/kern"
)

var (
	execCommands   []string
	execScrollback int
)

func init() {
	cmd := newExecCmd()
	cmd.Flags().StringArrayVarP(&execCommands, "command", "c", nil, "Shell command to run (repeatable)")
	cmd.Flags().
		IntVar(&execScrollback, "scrollback", 500, "Console rows to keep so earlier output is not scrolled away")
	rootCmd.AddCommand(cmd)
}

func newExecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec [script]",
		Short: "Run shell commands and print the console",
		Long: `The exec command boots the system and types each command into the
shell through the keyboard interrupt path. Commands come from -c flags, then
from the script file, or from stdin when neither is given. Use "-" as the
script to read stdin explicitly. Script lines starting with # are skipped.

Example:
  kernctl exec -c "create notes" -c "write notes hello" -c "cat notes"
  kernctl exec session.txt
  echo ps | kernctl exec`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd.Context(), cmd.InOrStdin(), args)
		},
	}
	return cmd
}

func runExec(ctx context.Context, stdin io.Reader, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if execScrollback > cfg.Console.Height {
		cfg.Console.Height = execScrollback
	}

	k, err := bootKernel(cfg)
	if err != nil {
		return err
	}

	for _, line := range execCommands {
		runLine(k, line)
	}

	var src io.Reader
	switch {
	case len(args) == 1 && args[0] != "-":
		f, err := os.Open(args[0])
		if err != nil {
			return shutdownAfter(ctx, k, fmt.Errorf("failed to open script: %w", err))
		}
		defer f.Close()
		src = f
	case len(args) == 1 || len(execCommands) == 0:
		src = stdin
	}

	if src != nil {
		sc := bufio.NewScanner(src)
		for sc.Scan() {
			line := sc.Text()
			if strings.HasPrefix(strings.TrimSpace(line), "#") {
				continue
			}
			runLine(k, line)
		}
		if err := sc.Err(); err != nil {
			return shutdownAfter(ctx, k, fmt.Errorf("failed to read commands: %w", err))
		}
	}

	printScreen(k)
	return k.Shutdown(ctx)
}

func runLine(k *kern.Kernel, line string) {
	printVerbose("> %s\n", line)
	k.Run(line)
}
