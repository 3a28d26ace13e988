package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-codecollab/internal/tui/browser/components/confirm"
	"github.com/mattsolo1/grove-codecollab/pkg/tree"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ensureCursorVisible()
		return m, nil

	case confirm.ConfirmedMsg:
		id := tree.ID(msg.Payload)
		var removed []tree.ID
		err := m.mutate(func(ws *workspace.Workspace) error {
			var err error
			removed, err = ws.Delete(id)
			return err
		})
		if err == nil {
			m.statusMessage = fmt.Sprintf("Deleted %d node(s)", len(removed))
		}
		m.ensureCursorVisible()
		return m, nil

	case confirm.CancelledMsg:
		m.statusMessage = "Cancelled"
		return m, nil

	case tea.KeyMsg:
		if m.confirm.Active {
			var cmd tea.Cmd
			m.confirm, cmd = m.confirm.Update(msg)
			return m, cmd
		}
		if m.action != actionNone {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMessage = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.displayNodes)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.GoToTop):
		m.cursor = 0

	case key.Matches(msg, m.keys.GoToBottom):
		m.cursor = len(m.displayNodes) - 1
		m.clampCursor()

	case key.Matches(msg, m.keys.Select):
		n, ok := m.selected()
		if !ok {
			break
		}
		_ = m.mutate(func(ws *workspace.Workspace) error {
			if n.isDir {
				return ws.ToggleDirectory(n.id)
			}
			ws.OpenFile(n.id)
			return nil
		})

	case key.Matches(msg, m.keys.Collapse):
		_ = m.mutate(func(ws *workspace.Workspace) error {
			ws.CollapseAll()
			return nil
		})

	case key.Matches(msg, m.keys.NextTab):
		m.cycleTab(1)

	case key.Matches(msg, m.keys.PrevTab):
		m.cycleTab(-1)

	case key.Matches(msg, m.keys.CloseTab):
		active, ok := m.ws.Active()
		if !ok {
			break
		}
		_ = m.mutate(func(ws *workspace.Workspace) error {
			ws.CloseFileAndFocusNext(active)
			return nil
		})

	case key.Matches(msg, m.keys.NewFile):
		m.startInput(actionNewFile, "")

	case key.Matches(msg, m.keys.NewDir):
		m.startInput(actionNewDir, "")

	case key.Matches(msg, m.keys.Rename):
		if n, ok := m.selected(); ok {
			m.startInput(actionRename, n.name)
		}

	case key.Matches(msg, m.keys.Delete):
		n, ok := m.selected()
		if !ok {
			break
		}
		what := "file"
		if n.isDir {
			what = "folder and everything in it"
		}
		m.confirm.Activate(fmt.Sprintf("Delete %s %q?", what, n.name), string(n.id))
	}

	m.ensureCursorVisible()
	return m, nil
}

// cycleTab moves the active tab by step, wrapping around.
func (m *Model) cycleTab(step int) {
	open := m.ws.OpenFiles()
	if len(open) < 2 {
		return
	}
	active, _ := m.ws.Active()
	idx := 0
	for i, id := range open {
		if id == active {
			idx = i
			break
		}
	}
	next := open[(idx+step+len(open))%len(open)]
	_ = m.mutate(func(ws *workspace.Workspace) error {
		ws.SetActive(next)
		return nil
	})
}

func (m *Model) startInput(action inputAction, value string) {
	m.action = action
	switch action {
	case actionNewFile:
		m.input.Placeholder = "file name"
	case actionNewDir:
		m.input.Placeholder = "folder name"
	case actionRename:
		m.input.Placeholder = "new name"
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) stopInput() {
	m.action = actionNone
	m.input.Blur()
	m.input.SetValue("")
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.stopInput()
		return m, nil
	case tea.KeyEnter:
		name := strings.TrimSpace(m.input.Value())
		action := m.action
		m.stopInput()
		if name == "" {
			return m, nil
		}
		m.submit(action, name)
		m.ensureCursorVisible()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit(action inputAction, name string) {
	var created tree.ID
	switch action {
	case actionNewFile, actionNewDir:
		parent := m.targetDir()
		err := m.mutate(func(ws *workspace.Workspace) error {
			var err error
			if action == actionNewFile {
				created, err = ws.CreateFile(parent, name)
			} else {
				created, err = ws.CreateDirectory(parent, name)
			}
			if err != nil {
				return err
			}
			// show the new node
			if !ws.Tree().IsDirectory(parent) || parent == ws.Tree().Root() {
				return nil
			}
			if n, ok := ws.Tree().Get(parent); ok && !n.IsOpen {
				return ws.ToggleDirectory(parent)
			}
			return nil
		})
		if err != nil {
			return
		}
		m.statusMessage = fmt.Sprintf("Created %s", name)
		m.focus(created)

	case actionRename:
		n, ok := m.selected()
		if !ok {
			return
		}
		if err := m.mutate(func(ws *workspace.Workspace) error {
			return ws.Rename(n.id, name)
		}); err == nil {
			m.statusMessage = fmt.Sprintf("Renamed to %s", name)
		}
	}
}

// focus moves the cursor to id when it is visible.
func (m *Model) focus(id tree.ID) {
	for i, n := range m.displayNodes {
		if n.id == id {
			m.cursor = i
			return
		}
	}
}
