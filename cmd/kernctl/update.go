package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/tinykern/internal/logger"
)

// Update handles incoming messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMessage = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		logger.Debug("console: quit")
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Stats):
		m.showStats = !m.showStats
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		m.k.Type("\n")
		return m, nil
	case key.Matches(msg, m.keys.Backspace):
		m.k.Type("\b")
		return m, nil
	}

	var text string
	switch msg.Type {
	case tea.KeyRunes:
		text = string(msg.Runes)
	case tea.KeySpace:
		text = " "
	default:
		return m, nil
	}

	if n := m.k.Type(text); n < len(text) {
		m.statusMessage = fmt.Sprintf("No key for %q", text)
	}
	return m, nil
}
