package browser

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-codecollab/internal/tui/browser/components/confirm"
	"github.com/mattsolo1/grove-codecollab/pkg/service"
	"github.com/mattsolo1/grove-codecollab/pkg/tree"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

type inputAction int

const (
	actionNone inputAction = iota
	actionNewFile
	actionNewDir
	actionRename
)

// displayNode is one visible line of the file tree.
type displayNode struct {
	id    tree.ID
	name  string
	depth int
	isDir bool
	open  bool
}

// Model is the main model for the room browser TUI
type Model struct {
	service      *service.Service
	room         string
	ws           *workspace.Workspace
	displayNodes []displayNode
	cursor       int
	scrollOffset int
	keys         KeyMap
	help         help.Model
	width        int
	height       int

	input   textinput.Model
	action  inputAction
	confirm confirm.Model

	statusMessage string
}

// New loads room and returns a browser positioned on its first node.
func New(svc *service.Service, room string) (Model, error) {
	ti := textinput.New()
	ti.CharLimit = 255

	m := Model{
		service: svc,
		room:    room,
		keys:    keys,
		help:    help.New(),
		input:   ti,
		confirm: confirm.New(),
		height:  24,
		width:   80,
	}
	err := svc.View(room, func(ws *workspace.Workspace) error {
		m.ws = ws
		return nil
	})
	if err != nil {
		return m, err
	}
	m.buildDisplayNodes()
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

// buildDisplayNodes flattens the sorted tree, descending only into open
// directories. The cursor stays on the same node when it is still visible.
func (m *Model) buildDisplayNodes() {
	var keep tree.ID
	if m.cursor >= 0 && m.cursor < len(m.displayNodes) {
		keep = m.displayNodes[m.cursor].id
	}

	m.displayNodes = m.displayNodes[:0]
	var walk func(n *tree.Node, depth int)
	walk = func(n *tree.Node, depth int) {
		for _, c := range n.Children {
			m.displayNodes = append(m.displayNodes, displayNode{
				id:    c.ID,
				name:  c.Name,
				depth: depth,
				isDir: c.IsDirectory(),
				open:  c.IsOpen,
			})
			if c.IsDirectory() && c.IsOpen {
				walk(c, depth+1)
			}
		}
	}
	walk(m.ws.Tree().Sorted(), 0)

	for i, n := range m.displayNodes {
		if n.id == keep {
			m.cursor = i
			return
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.displayNodes) {
		m.cursor = len(m.displayNodes) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// selected returns the node under the cursor.
func (m *Model) selected() (displayNode, bool) {
	if m.cursor < 0 || m.cursor >= len(m.displayNodes) {
		return displayNode{}, false
	}
	return m.displayNodes[m.cursor], true
}

// targetDir is the directory new nodes go into: the selected directory,
// or the parent of the selected file.
func (m *Model) targetDir() tree.ID {
	n, ok := m.selected()
	if !ok {
		return m.ws.Tree().Root()
	}
	if n.isDir {
		return n.id
	}
	if p, ok := m.ws.Tree().Parent(n.id); ok {
		return p
	}
	return m.ws.Tree().Root()
}

// mutate applies fn to the stored room and keeps the saved result.
func (m *Model) mutate(fn func(ws *workspace.Workspace) error) error {
	err := m.service.Update(m.room, false, func(ws *workspace.Workspace) error {
		if err := fn(ws); err != nil {
			return err
		}
		m.ws = ws
		return nil
	})
	if err != nil {
		m.statusMessage = err.Error()
		return err
	}
	m.buildDisplayNodes()
	return nil
}

func (m *Model) getViewportHeight() int {
	// header, spacing, tab bar and footer
	h := m.height - 6
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) ensureCursorVisible() {
	vh := m.getViewportHeight()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+vh {
		m.scrollOffset = m.cursor - vh + 1
	}
}
