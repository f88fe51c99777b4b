package main

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/tinykern/kern"
)

// Model is the console application model. It owns a booted kernel and
// forwards key presses to it through the keyboard interrupt path.
type Model struct {
	k    *kern.Kernel
	keys KeyMap
	help help.Model

	width  int
	height int

	showHelp  bool
	showStats bool

	// Status message for temporary feedback
	statusMessage string
}

// NewModel wraps a booted kernel.
func NewModel(k *kern.Kernel) Model {
	return Model{
		k:    k,
		keys: DefaultKeyMap(),
		help: help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Kernel returns the kernel the model drives.
func (m Model) Kernel() *kern.Kernel {
	return m.k
}
