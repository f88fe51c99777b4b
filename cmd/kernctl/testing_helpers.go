package main

import (
	"bytes"
	"os"
	"testing"
)

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Drain concurrently so large screens cannot fill the pipe
	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	// Redirect stdout to pipe
	os.Stdout = w

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout

	return string(<-done), fnErr
}

// resetFlags restores every package-level flag to its default
func resetFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		verbose, quiet, jsonOut = false, false, false
		configPath, logFile = "", ""
		execCommands = nil
		execScrollback = 500
		statsSpawn = nil
	}
	reset()
	t.Cleanup(reset)
}
