package workspace

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-codecollab/pkg/tree"
)

// ErrInvalidRoom indicates an unusable room name.
var ErrInvalidRoom = errors.New("invalid room name")

// Reader is the read-only view of a workspace tree handed to consumers.
type Reader interface {
	Root() tree.ID
	Len() int
	Has(id tree.ID) bool
	Get(id tree.ID) (*tree.Node, bool)
	IsFile(id tree.ID) bool
	IsDirectory(id tree.ID) bool
	Parent(id tree.ID) (tree.ID, bool)
	Children(id tree.ID) []tree.ID
	PathOf(id tree.ID) (string, error)
	Lookup(path string) (tree.ID, error)
	Snapshot() *tree.Node
	Subtree(id tree.ID) (*tree.Node, error)
	Sorted() *tree.Node
}

// Workspace is a room's file tree together with its editor tabs. Every
// mutation goes through Workspace so that open and active file state stays
// consistent with the tree. Workspace is not safe for concurrent use.
type Workspace struct {
	Room string

	tree   *tree.Tree
	open   []tree.ID
	active tree.ID
	// drafts holds unsaved editor text for open files.
	drafts map[tree.ID]string
	log    logrus.FieldLogger
}

// New returns an empty workspace for room.
func New(room string, logger logrus.FieldLogger) *Workspace {
	return &Workspace{
		Room:   room,
		tree:   tree.New(),
		drafts: make(map[tree.ID]string),
		log:    withRoom(logger, room),
	}
}

func withRoom(logger logrus.FieldLogger, room string) logrus.FieldLogger {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return logger.WithField("room", room)
}

// ValidateRoomName checks that a room name can be used as a registry key.
func ValidateRoomName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidRoom)
	}
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidRoom, name)
	}
	return nil
}

// Tree returns a read-only view of the file tree.
func (w *Workspace) Tree() Reader {
	return w.tree
}

// CreateFile creates an empty file under parentID.
func (w *Workspace) CreateFile(parentID tree.ID, name string) (tree.ID, error) {
	id, err := w.tree.CreateFile(parentID, name)
	if err != nil {
		return "", w.reject("create file", err)
	}
	w.log.WithFields(logrus.Fields{"id": id, "name": name}).Debug("file created")
	return id, nil
}

// CreateDirectory creates an open, empty directory under parentID.
func (w *Workspace) CreateDirectory(parentID tree.ID, name string) (tree.ID, error) {
	id, err := w.tree.CreateDirectory(parentID, name)
	if err != nil {
		return "", w.reject("create directory", err)
	}
	w.log.WithFields(logrus.Fields{"id": id, "name": name}).Debug("directory created")
	return id, nil
}

// Insert attaches a detached subtree, keeping its ids.
func (w *Workspace) Insert(parentID tree.ID, n *tree.Node) (tree.ID, error) {
	id, err := w.tree.Insert(parentID, n)
	if err != nil {
		return "", w.reject("insert", err)
	}
	return id, nil
}

// Rename renames a node. Tabs follow the node by id.
func (w *Workspace) Rename(id tree.ID, newName string) error {
	if err := w.tree.Rename(id, newName); err != nil {
		return w.reject("rename", err)
	}
	return nil
}

// Move reparents a node and opens the target directory so the moved node
// is visible.
func (w *Workspace) Move(id, newParentID tree.ID) error {
	if err := w.tree.Move(id, newParentID); err != nil {
		return w.reject("move", err)
	}
	_ = w.tree.Expand(newParentID)
	// ids survive a move, so tabs stay valid; prune anything that does not.
	w.reconcile()
	return nil
}

// ToggleDirectory flips a directory's open state.
func (w *Workspace) ToggleDirectory(id tree.ID) error {
	if err := w.tree.Toggle(id); err != nil {
		return w.reject("toggle", err)
	}
	return nil
}

// CollapseAll closes every directory except the root.
func (w *Workspace) CollapseAll() {
	w.tree.CollapseAll()
}

// Delete removes a node and its descendants, closes their tabs and, when
// the active file went away, activates the nearest surviving tab.
func (w *Workspace) Delete(id tree.ID) ([]tree.ID, error) {
	removed, err := w.tree.Delete(id)
	if err != nil {
		return nil, w.reject("delete", err)
	}

	gone := make(map[tree.ID]bool, len(removed))
	for _, rid := range removed {
		gone[rid] = true
		delete(w.drafts, rid)
	}

	next := w.active
	if gone[w.active] {
		next = pickSurvivor(w.open, indexOf(w.open, w.active), gone)
	}
	kept := w.open[:0:0]
	for _, oid := range w.open {
		if !gone[oid] {
			kept = append(kept, oid)
		}
	}
	w.open = kept
	w.active = next

	w.log.WithFields(logrus.Fields{"id": id, "removed": len(removed)}).Debug("node deleted")
	return removed, nil
}

// reject logs a refused operation. Lookup misses are expected when a remote
// peer removed the node first, so they are warnings rather than errors.
func (w *Workspace) reject(op string, err error) error {
	entry := w.log.WithError(err).WithField("op", op)
	if errors.Is(err, tree.ErrNotFound) {
		entry.Warn("stale node reference")
	} else {
		entry.Info("operation rejected")
	}
	return err
}

// NextActive picks the tab to activate after closing closing: the tab to
// its right, else the tab to its left, else none.
func NextActive(open []tree.ID, closing tree.ID) tree.ID {
	return pickSurvivor(open, indexOf(open, closing), map[tree.ID]bool{closing: true})
}

func pickSurvivor(open []tree.ID, idx int, gone map[tree.ID]bool) tree.ID {
	if idx < 0 {
		return ""
	}
	for j := idx + 1; j < len(open); j++ {
		if !gone[open[j]] {
			return open[j]
		}
	}
	for j := idx - 1; j >= 0; j-- {
		if !gone[open[j]] {
			return open[j]
		}
	}
	return ""
}

func indexOf(ids []tree.ID, id tree.ID) int {
	if id == "" {
		return -1
	}
	for i, x := range ids {
		if x == id {
			return i
		}
	}
	return -1
}

// OpenFile shows a file in a tab and makes it active. Ids that do not
// resolve to a file are ignored.
func (w *Workspace) OpenFile(id tree.ID) bool {
	if !w.tree.IsFile(id) {
		w.log.WithField("id", id).Warn("open: id does not resolve to a file")
		return false
	}
	if indexOf(w.open, id) < 0 {
		w.open = append(w.open, id)
	}
	w.switchTo(id)
	return true
}

// SetActive switches the editor to an already open tab. The previously
// active file's draft is written to the tree first.
func (w *Workspace) SetActive(id tree.ID) bool {
	if indexOf(w.open, id) < 0 {
		w.log.WithField("id", id).Warn("activate: file is not open")
		return false
	}
	w.switchTo(id)
	return true
}

func (w *Workspace) switchTo(id tree.ID) {
	if w.active == id {
		return
	}
	if w.active != "" {
		w.flush(w.active)
	}
	w.active = id
}

// CloseFile removes a tab, saving its draft. Closing the active tab leaves
// no active file; callers choose the next one with NextActive.
func (w *Workspace) CloseFile(id tree.ID) bool {
	idx := indexOf(w.open, id)
	if idx < 0 {
		w.log.WithField("id", id).Warn("close: file is not open")
		return false
	}
	w.flush(id)
	w.open = append(w.open[:idx:idx], w.open[idx+1:]...)
	if w.active == id {
		w.active = ""
	}
	return true
}

// CloseFileAndFocusNext closes a tab and, if it was active, activates its
// neighbour using NextActive.
func (w *Workspace) CloseFileAndFocusNext(id tree.ID) bool {
	wasActive := w.active == id
	next := NextActive(w.open, id)
	if !w.CloseFile(id) {
		return false
	}
	if wasActive && next != "" {
		w.active = next
	}
	return true
}

// EditDraft records unsaved editor text for an open file.
func (w *Workspace) EditDraft(id tree.ID, content string) bool {
	if indexOf(w.open, id) < 0 {
		w.log.WithField("id", id).Warn("draft: file is not open")
		return false
	}
	w.drafts[id] = content
	return true
}

// Draft returns the unsaved text of a file, if any.
func (w *Workspace) Draft(id tree.ID) (string, bool) {
	d, ok := w.drafts[id]
	return d, ok
}

// UpdateFileContent writes content to a file in the tree and discards any
// draft. This is the single write path for local and remote edits; writing
// the same content twice is a no-op. It reports whether the file changed.
func (w *Workspace) UpdateFileContent(id tree.ID, content string) bool {
	changed, err := w.tree.SetContent(id, content)
	if err != nil {
		w.log.WithError(err).WithField("id", id).Warn("update content: stale file reference")
		return false
	}
	delete(w.drafts, id)
	return changed
}

func (w *Workspace) flush(id tree.ID) {
	if d, ok := w.drafts[id]; ok {
		w.UpdateFileContent(id, d)
	}
}

// Flush writes every draft into the tree and returns how many were saved.
func (w *Workspace) Flush() int {
	n := 0
	for id := range w.drafts {
		if w.UpdateFileContent(id, w.drafts[id]) {
			n++
		}
	}
	return n
}

// OpenFiles returns the open tab ids in tab order.
func (w *Workspace) OpenFiles() []tree.ID {
	return append([]tree.ID(nil), w.open...)
}

// Active returns the active file id, if any.
func (w *Workspace) Active() (tree.ID, bool) {
	return w.active, w.active != ""
}

// File returns a file node with its draft applied.
func (w *Workspace) File(id tree.ID) (*tree.Node, bool) {
	n, ok := w.tree.Get(id)
	if !ok || !n.IsFile() {
		return nil, false
	}
	if d, ok := w.drafts[id]; ok {
		n.Content = d
	}
	return n, true
}

// ActiveFile returns the active file with its draft applied, or nil.
func (w *Workspace) ActiveFile() *tree.Node {
	if w.active == "" {
		return nil
	}
	n, _ := w.File(w.active)
	return n
}

// reconcile drops tabs whose ids no longer resolve to files.
func (w *Workspace) reconcile() {
	kept := w.open[:0:0]
	for _, id := range w.open {
		if w.tree.IsFile(id) {
			kept = append(kept, id)
			continue
		}
		delete(w.drafts, id)
		w.log.WithField("id", id).Warn("dropping tab for missing file")
	}
	w.open = kept
	if w.active != "" && indexOf(w.open, w.active) < 0 {
		w.log.WithField("id", w.active).Warn("clearing active file that is not open")
		w.active = ""
	}
	for id := range w.drafts {
		if indexOf(w.open, id) < 0 {
			delete(w.drafts, id)
		}
	}
}

// Validate checks the tab invariants: every open id is a live file and the
// active file is open.
func (w *Workspace) Validate() error {
	seen := make(map[tree.ID]bool, len(w.open))
	for _, id := range w.open {
		if !w.tree.IsFile(id) {
			return fmt.Errorf("open tab %s does not resolve to a file", id)
		}
		if seen[id] {
			return fmt.Errorf("file %s is open twice", id)
		}
		seen[id] = true
	}
	if w.active != "" && !seen[w.active] {
		return fmt.Errorf("active file %s is not open", w.active)
	}
	for id := range w.drafts {
		if !seen[id] {
			return fmt.Errorf("draft for %s has no open tab", id)
		}
	}
	return nil
}
