package main

import (
	"context"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newBootCmd())
}

func newBootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boot",
		Short: "Boot the system and print the console",
		Long: `The boot command brings up every subsystem in order, prints the
console as the shell leaves it, and shuts down again.

Example:
  kernctl boot
  kernctl boot --config tinykern.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoot(cmd.Context())
		},
	}
	return cmd
}

func runBoot(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	k, err := bootKernel(cfg)
	if err != nil {
		return err
	}
	printScreen(k)
	return k.Shutdown(ctx)
}
