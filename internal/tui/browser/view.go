package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattsolo1/grove-codecollab/pkg/language"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("39"))
	dirStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	openFileStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
	tabStyle      = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	activeTab     = lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true).Foreground(lipgloss.Color("229"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("240")).PaddingRight(1)
)

func (m Model) View() string {
	if m.confirm.Active {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.confirm.View())
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Room: " + m.room))
	b.WriteString("\n\n")

	treeWidth := m.width / 3
	if treeWidth < 20 {
		treeWidth = 20
	}
	left := paneStyle.Width(treeWidth).Height(m.getViewportHeight()).Render(m.renderTree(treeWidth))
	right := lipgloss.NewStyle().PaddingLeft(1).Render(m.renderEditor(m.width - treeWidth - 3))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")

	switch {
	case m.action != actionNone:
		b.WriteString(m.input.View())
	case m.statusMessage != "":
		b.WriteString(statusStyle.Render(m.statusMessage))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderTree(width int) string {
	if len(m.displayNodes) == 0 {
		return faintStyle.Render("(empty room, press n to add a file)")
	}

	open := make(map[string]bool)
	for _, id := range m.ws.OpenFiles() {
		open[string(id)] = true
	}

	end := m.scrollOffset + m.getViewportHeight()
	if end > len(m.displayNodes) {
		end = len(m.displayNodes)
	}

	var lines []string
	for i := m.scrollOffset; i < end; i++ {
		n := m.displayNodes[i]
		indent := strings.Repeat("  ", n.depth)
		var line string
		switch {
		case n.isDir && n.open:
			line = indent + "▾ " + n.name + "/"
		case n.isDir:
			line = indent + "▸ " + n.name + "/"
		default:
			line = indent + "  " + n.name
		}
		line = truncate(line, width)

		switch {
		case i == m.cursor:
			line = cursorStyle.Render(line)
		case n.isDir:
			line = dirStyle.Render(line)
		case open[string(n.id)]:
			line = openFileStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderEditor(width int) string {
	open := m.ws.OpenFiles()
	if len(open) == 0 {
		return faintStyle.Render("No open files")
	}

	active, _ := m.ws.Active()
	var tabs []string
	for _, id := range open {
		n, ok := m.ws.File(id)
		if !ok {
			continue
		}
		if id == active {
			tabs = append(tabs, activeTab.Render(n.Name))
		} else {
			tabs = append(tabs, tabStyle.Render(n.Name))
		}
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")

	f := m.ws.ActiveFile()
	if f == nil {
		return b.String()
	}
	path, _ := m.ws.Tree().PathOf(f.ID)
	b.WriteString(faintStyle.Render(fmt.Sprintf("%s  [%s]", path, language.Detect(f.Name))))
	b.WriteString("\n")

	maxLines := m.getViewportHeight() - 2
	lines := strings.Split(f.Content, "\n")
	if len(lines) > maxLines && maxLines > 0 {
		lines = lines[:maxLines]
	}
	for i, l := range lines {
		lines[i] = truncate(l, width)
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
