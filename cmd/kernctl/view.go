package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the entire UI
func (m Model) View() string {
	content := m.renderScreen()
	if m.showStats {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, m.renderStats())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		content,
		m.renderStatus(),
	)
}

// renderHeader renders the title and kernel id
func (m Model) renderHeader() string {
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		headerStyle.Render("tinykern console"),
		lipgloss.NewStyle().Render("  "),
		idStyle.Render(m.k.ID),
	)
}

// renderScreen draws the text-mode console with the cursor cell highlighted.
func (m Model) renderScreen() string {
	c := m.k.Console
	row, col := c.Cursor()

	lines := c.Lines()
	for i, line := range lines {
		runes := []rune(line)
		for len(runes) < c.Width() {
			runes = append(runes, ' ')
		}
		if i == row && col < len(runes) {
			line = string(runes[:col]) + cursorStyle.Render(string(runes[col])) + string(runes[col+1:])
		} else {
			line = string(runes)
		}
		lines[i] = line
	}
	return screenStyle.Render(strings.Join(lines, "\n"))
}

// renderStats draws the side panel with live subsystem counters.
func (m Model) renderStats() string {
	st := m.k.Stats()

	var sb strings.Builder
	row := func(k, v string) {
		sb.WriteString(panelKeyStyle.Render(k) + v + "\n")
	}

	sb.WriteString(panelTitleStyle.Render("Memory") + "\n")
	row("free", fmt.Sprintf("%d B", st.Memory.FreeBytes))
	row("live", fmt.Sprintf("%d (%d B)", st.Memory.LiveAllocations, st.Memory.LiveBytes))
	row("splits", fmt.Sprintf("%d", st.Memory.Splits))
	row("merges", fmt.Sprintf("%d", st.Memory.Merges))

	sb.WriteString("\n" + panelTitleStyle.Render("Scheduler") + "\n")
	row("processes", fmt.Sprintf("%d/%d", st.Sched.Live, st.Sched.Capacity))
	row("blocked", fmt.Sprintf("%d", st.Sched.Blocked))
	for pri, n := range st.Sched.Ready {
		row(fmt.Sprintf("ready p%d", pri), fmt.Sprintf("%d", n))
	}
	if st.Sched.Current != 0 {
		row("running", fmt.Sprintf("%d", st.Sched.Current))
	} else {
		row("running", "-")
	}

	sb.WriteString("\n" + panelTitleStyle.Render("Filesystem") + "\n")
	row("files", fmt.Sprintf("%d/%d", st.FS.Files, st.FS.MaxFiles))
	row("blocks", fmt.Sprintf("%d free", st.FS.FreeBlocks))

	sb.WriteString("\n" + panelTitleStyle.Render("Keyboard") + "\n")
	row("irqs", fmt.Sprintf("%d", st.Keyboard.Interrupts))
	row("dropped", fmt.Sprintf("%d", st.Keyboard.Dropped))
	row("commands", fmt.Sprintf("%d", st.Commands))

	return panelStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

// renderStatus renders the status bar with help text
func (m Model) renderStatus() string {
	if m.statusMessage != "" {
		return statusStyle.Width(m.width).Render(
			statusMessageStyle.Render(m.statusMessage),
		)
	}
	return statusStyle.Width(m.width).Render(m.help.View(m.keys))
}
