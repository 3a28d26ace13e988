// Package commit gathers a room's files into a selectable list for a push.
//
// Files come from three sources with decreasing precedence: the active
// file, the open files, then a traversal of the whole tree. The first
// source to produce a path owns it; later sources never overwrite it.
package commit

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-codecollab/pkg/language"
	"github.com/mattsolo1/grove-codecollab/pkg/sync"
	"github.com/mattsolo1/grove-codecollab/pkg/tree"
)

// Status describes where an item came from.
type Status string

const (
	StatusModified  Status = "modified"
	StatusUntracked Status = "untracked"
)

// FallbackPath is used when a room has no files at all.
const FallbackPath = "index.js"

const fallbackContent = "// Initial file\nconsole.log(\"Hello from CodeCollab!\");"

// CriticalFiles are entry points that are always offered when they are open.
var CriticalFiles = []string{"index.js", "main.py", "main.java"}

// ErrUnknownPath is returned when selecting a path that is not in the plan.
var ErrUnknownPath = errors.New("path not in commit plan")

// OpenFile is an editor tab as seen by the aggregator. Content is the text
// the user sees, including unsaved edits. Path is empty when the file could
// not be located in the tree.
type OpenFile struct {
	ID      tree.ID
	Name    string
	Path    string
	Content string
}

func (f OpenFile) path() string {
	if f.Path != "" {
		return f.Path
	}
	return f.Name
}

// Source is everything the aggregator reads.
type Source struct {
	Root   *tree.Node
	Open   []OpenFile
	Active *OpenFile
}

// Item is one selectable file.
type Item struct {
	Path      string `json:"path"`
	Extension string `json:"extension"`
	Status    Status `json:"status"`
	Content   string `json:"content"`
	Selected  bool   `json:"selected"`
}

// Plan is the ordered, deduplicated list of items.
type Plan struct {
	Items []*Item

	// Fallback is set when the room had no files and a starter file was
	// offered instead.
	Fallback bool

	byPath map[string]*Item
	log    logrus.FieldLogger
}

// Build aggregates src into a plan with every item selected.
func Build(src Source) *Plan {
	return BuildWithLogger(src, nil)
}

// BuildWithLogger is Build with diagnostics sent to logger.
func BuildWithLogger(src Source, logger logrus.FieldLogger) *Plan {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	p := &Plan{byPath: make(map[string]*Item), log: logger}

	if src.Active != nil {
		p.add(src.Active.path(), src.Active.Content, StatusModified)
	}
	for _, f := range src.Open {
		p.add(f.path(), f.Content, StatusModified)
	}
	if src.Root != nil {
		_ = tree.Walk(src.Root, func(filePath string, n *tree.Node) error {
			if n.IsFile() {
				p.add(filePath, n.Content, StatusUntracked)
			}
			return nil
		})
	}

	for _, name := range CriticalFiles {
		if p.hasBase(name) {
			continue
		}
		if f := findByName(src, name); f != nil {
			p.log.WithField("file", name).Debug("adding critical file")
			p.add(f.path(), f.Content, StatusModified)
		}
	}

	if len(p.Items) == 0 {
		p.log.Warn("no files found in room, using fallback file")
		p.add(FallbackPath, fallbackContent, StatusUntracked)
		p.Fallback = true
	}
	return p
}

func (p *Plan) add(filePath, content string, status Status) {
	if filePath == "" {
		return
	}
	if _, ok := p.byPath[filePath]; ok {
		return
	}
	it := &Item{
		Path:      filePath,
		Extension: language.Extension(filePath),
		Status:    status,
		Content:   content,
		Selected:  true,
	}
	p.byPath[filePath] = it
	p.Items = append(p.Items, it)
}

func (p *Plan) hasBase(name string) bool {
	for _, it := range p.Items {
		if path.Base(it.Path) == name {
			return true
		}
	}
	return false
}

func findByName(src Source, name string) *OpenFile {
	if src.Active != nil && src.Active.Name == name {
		return src.Active
	}
	for i := range src.Open {
		if src.Open[i].Name == name {
			return &src.Open[i]
		}
	}
	return nil
}

// Item returns the item for a path.
func (p *Plan) Item(filePath string) (*Item, bool) {
	it, ok := p.byPath[filePath]
	return it, ok
}

// Paths returns every path in plan order.
func (p *Plan) Paths() []string {
	out := make([]string, len(p.Items))
	for i, it := range p.Items {
		out[i] = it.Path
	}
	return out
}

// Toggle flips the selection of one path.
func (p *Plan) Toggle(filePath string) error {
	it, ok := p.byPath[filePath]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPath, filePath)
	}
	it.Selected = !it.Selected
	return nil
}

// Select sets the selection of one path.
func (p *Plan) Select(filePath string, selected bool) error {
	it, ok := p.byPath[filePath]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPath, filePath)
	}
	it.Selected = selected
	return nil
}

// SetAll selects or deselects every item.
func (p *Plan) SetAll(selected bool) {
	for _, it := range p.Items {
		it.Selected = selected
	}
}

// AllSelected reports whether every item is selected.
func (p *Plan) AllSelected() bool {
	for _, it := range p.Items {
		if !it.Selected {
			return false
		}
	}
	return len(p.Items) > 0
}

// Selected returns the selected paths in plan order.
func (p *Plan) Selected() []string {
	var out []string
	for _, it := range p.Items {
		if it.Selected {
			out = append(out, it.Path)
		}
	}
	return out
}

// Payload builds the push request for the selected items. Items with no
// content get a placeholder for their extension so the push never carries
// an empty file. The plan itself is not modified.
func (p *Plan) Payload(repository, message string) (*sync.PushRequest, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, sync.ErrNoMessage
	}
	selected := p.Selected()
	if len(selected) == 0 {
		return nil, sync.ErrNoFiles
	}

	req := &sync.PushRequest{
		Repository:   strings.TrimSpace(repository),
		Message:      message,
		Files:        selected,
		FileContents: make(map[string]string, len(selected)),
	}
	for _, filePath := range selected {
		content := p.byPath[filePath].Content
		if content == "" {
			p.log.WithField("file", filePath).Warn("creating default content for empty file")
			content = language.Placeholder(filePath)
		}
		req.FileContents[filePath] = content
	}
	return req, nil
}
