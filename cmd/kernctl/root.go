package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/tinykern/internal/config"
	"github.com/joshuapare/tinykern/internal/logger"
	"github.com/joshuapare/tinykern/kern"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	configPath string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "kernctl",
	Short: "Boot and drive the tinykern simulator",
	Long: `kernctl boots a simulated tinykern system: a buddy heap, a priority
scheduler, a flat filesystem and the interactive shell. Commands can be fed to
the shell from flags, a script or stdin, or typed live in the console TUI.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write debug logs to this file")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return logger.Init(logger.Options{
		Enabled: verbose || logFile != "",
		Path:    logFile,
		Level:   level,
	})
}

// loadConfig reads --config, or returns defaults when it is unset.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.DefaultConfig(), nil
	}
	printVerbose("Loading config: %s\n", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// bootKernel boots a kernel from cfg.
func bootKernel(cfg *config.Config) (*kern.Kernel, error) {
	k, err := kern.Boot(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to boot: %w", err)
	}
	printVerbose("Booted kernel %s\n", k.ID)
	return k, nil
}

// shutdownAfter shuts k down on an error path and joins any teardown
// failure to cause.
func shutdownAfter(ctx context.Context, k *kern.Kernel, cause error) error {
	if err := k.Shutdown(ctx); err != nil {
		logger.Warn("kernctl: shutdown", "error", err)
		return errors.Join(cause, err)
	}
	return cause
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// printJSON prints data as JSON
func printJSON(data interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// printScreen prints the console contents.
func printScreen(k *kern.Kernel) {
	printInfo("%s\n", k.Console.Text())
}
