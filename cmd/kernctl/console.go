package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/joshuapare/tinykern/internal/logger"
)

func init() {
	rootCmd.AddCommand(newConsoleCmd())
}

func newConsoleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Open the interactive console",
		Long: `The console command boots the system and opens a terminal UI showing
the text-mode screen. Key presses are delivered as scancodes on IRQ1, so the
shell sees exactly what the keyboard driver decodes.

Example:
  kernctl console
  kernctl console --config tinykern.yaml --log-file kernctl.log`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd.Context())
		},
	}
	return cmd
}

func runConsole(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	k, err := bootKernel(cfg)
	if err != nil {
		return err
	}
	logger.Info("console: starting", "id", k.ID)

	p := tea.NewProgram(NewModel(k), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("console: TUI error", "error", err)
		return shutdownAfter(ctx, k, fmt.Errorf("error running TUI: %w", err))
	}

	if err := k.Shutdown(ctx); err != nil {
		logger.Warn("console: shutdown", "error", err)
		return err
	}
	logger.Info("console: exited normally")
	return nil
}
