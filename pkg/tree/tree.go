/*
Package tree implements the in-memory workspace file tree.

Nodes live in an arena keyed by id. Each record stores its parent id and an
ordered list of child ids, so moves are pure reparenting and parent lookups
never walk the tree. Every mutator validates first and only then touches the
arena; a failed call leaves the tree unchanged.
*/
package tree

import (
	"fmt"
	"strings"
)

type record struct {
	id       ID
	kind     Kind
	name     string
	content  string
	isOpen   bool
	parent   ID
	children []ID
}

// Tree is a mutable file tree with exactly one root directory. Tree is not
// safe for concurrent use.
type Tree struct {
	root  ID
	nodes map[ID]*record
	// seen holds every id this tree has ever housed, deleted ones included.
	seen map[ID]struct{}
}

// New returns a tree holding only the open root directory.
func New() *Tree {
	rootID := newID()
	t := &Tree{
		root:  rootID,
		nodes: make(map[ID]*record),
		seen:  make(map[ID]struct{}),
	}
	t.add(&record{id: rootID, kind: KindDirectory, name: RootName, isOpen: true})
	return t
}

func (t *Tree) add(r *record) {
	t.nodes[r.id] = r
	t.seen[r.id] = struct{}{}
}

// Root returns the root directory id.
func (t *Tree) Root() ID {
	return t.root
}

// Len returns the number of live nodes, root included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Has reports whether id resolves to a live node.
func (t *Tree) Has(id ID) bool {
	_, ok := t.nodes[id]
	return ok
}

// Used reports whether id has ever been housed by this tree.
func (t *Tree) Used(id ID) bool {
	_, ok := t.seen[id]
	return ok
}

// Get returns a detached copy of a single node without its children.
func (t *Tree) Get(id ID) (*Node, bool) {
	r, ok := t.nodes[id]
	if !ok {
		return nil, false
	}
	return r.node(), true
}

// IsFile reports whether id resolves to a live file.
func (t *Tree) IsFile(id ID) bool {
	r, ok := t.nodes[id]
	return ok && r.kind == KindFile
}

// IsDirectory reports whether id resolves to a live directory.
func (t *Tree) IsDirectory(id ID) bool {
	r, ok := t.nodes[id]
	return ok && r.kind == KindDirectory
}

// Parent returns the parent id. The root has no parent.
func (t *Tree) Parent(id ID) (ID, bool) {
	r, ok := t.nodes[id]
	if !ok || id == t.root {
		return "", false
	}
	return r.parent, true
}

// Children returns a copy of the child ids of a directory in stored order.
func (t *Tree) Children(id ID) []ID {
	r, ok := t.nodes[id]
	if !ok || r.kind != KindDirectory {
		return nil
	}
	return append([]ID(nil), r.children...)
}

func (r *record) node() *Node {
	n := &Node{ID: r.id, Name: r.name, Kind: r.kind}
	if r.kind == KindFile {
		n.Content = r.content
	} else {
		n.IsOpen = r.isOpen
	}
	return n
}

// Snapshot returns a deep copy of the whole tree in stored child order.
func (t *Tree) Snapshot() *Node {
	return t.build(t.root)
}

// Subtree returns a deep copy of the subtree rooted at id.
func (t *Tree) Subtree(id ID) (*Node, error) {
	if !t.Has(id) {
		return nil, fmt.Errorf("subtree %s: %w", id, ErrNotFound)
	}
	return t.build(id), nil
}

func (t *Tree) build(id ID) *Node {
	r := t.nodes[id]
	n := r.node()
	if r.kind == KindDirectory && len(r.children) > 0 {
		n.Children = make([]*Node, 0, len(r.children))
		for _, c := range r.children {
			n.Children = append(n.Children, t.build(c))
		}
	}
	return n
}

func validName(name string) error {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	case strings.Contains(name, "/"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	}
	return nil
}

// directory resolves id to a live directory record.
func (t *Tree) directory(id ID) (*record, error) {
	r, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("directory %s: %w", id, ErrNotFound)
	}
	if r.kind != KindDirectory {
		return nil, fmt.Errorf("%s: %w", r.name, ErrNotDirectory)
	}
	return r, nil
}

// conflict reports whether dir has a child other than except with the given
// name and kind. Names compare case-sensitively.
func (t *Tree) conflict(dir *record, name string, kind Kind, except ID) bool {
	for _, c := range dir.children {
		if c == except {
			continue
		}
		cr := t.nodes[c]
		if cr.kind == kind && cr.name == name {
			return true
		}
	}
	return false
}

// CreateFile appends an empty file named name under parentID.
func (t *Tree) CreateFile(parentID ID, name string) (ID, error) {
	return t.create(parentID, name, KindFile)
}

// CreateDirectory appends an open, empty directory named name under parentID.
func (t *Tree) CreateDirectory(parentID ID, name string) (ID, error) {
	return t.create(parentID, name, KindDirectory)
}

func (t *Tree) create(parentID ID, name string, kind Kind) (ID, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	parent, err := t.directory(parentID)
	if err != nil {
		return "", fmt.Errorf("create %s %q: %w", kind, name, err)
	}
	if t.conflict(parent, name, kind, "") {
		return "", fmt.Errorf("create %s %q: %w", kind, name, ErrDuplicateName)
	}

	r := &record{id: newID(), kind: kind, name: name, parent: parentID}
	if kind == KindDirectory {
		r.isOpen = true
	}
	t.add(r)
	parent.children = append(parent.children, r.id)
	return r.id, nil
}

// Insert attaches a detached subtree under parentID, keeping its ids. Nodes
// without an id get a fresh one. The subtree is validated as a whole, and
// any id this tree has ever used is rejected.
func (t *Tree) Insert(parentID ID, n *Node) (ID, error) {
	if n == nil {
		return "", fmt.Errorf("insert: %w: nil node", ErrInvalidSnapshot)
	}
	parent, err := t.directory(parentID)
	if err != nil {
		return "", fmt.Errorf("insert %q: %w", n.Name, err)
	}

	sub := n.Clone()
	ids := make(map[ID]struct{})
	if err := t.validateDetached(sub, ids); err != nil {
		return "", fmt.Errorf("insert %q: %w", n.Name, err)
	}
	if t.conflict(parent, sub.Name, sub.Kind, "") {
		return "", fmt.Errorf("insert %s %q: %w", sub.Kind, sub.Name, ErrDuplicateName)
	}

	t.attach(parentID, sub)
	parent.children = append(parent.children, sub.ID)
	return sub.ID, nil
}

// validateDetached assigns missing ids and checks names, kinds, id freshness
// and sibling uniqueness throughout a detached subtree.
func (t *Tree) validateDetached(n *Node, ids map[ID]struct{}) error {
	if err := validName(n.Name); err != nil {
		return err
	}
	if n.Kind != KindFile && n.Kind != KindDirectory {
		return fmt.Errorf("%w: unknown node type %q", ErrInvalidSnapshot, n.Kind)
	}
	if n.ID == "" {
		n.ID = newID()
	}
	if _, dup := ids[n.ID]; dup || t.Used(n.ID) {
		return fmt.Errorf("%s: %w", n.ID, ErrIDReused)
	}
	ids[n.ID] = struct{}{}

	if n.IsFile() {
		if len(n.Children) > 0 {
			return fmt.Errorf("%w: file %q has children", ErrInvalidSnapshot, n.Name)
		}
		return nil
	}

	type key struct {
		name string
		kind Kind
	}
	names := make(map[key]struct{}, len(n.Children))
	for _, c := range n.Children {
		if c == nil {
			return fmt.Errorf("%w: nil child in %q", ErrInvalidSnapshot, n.Name)
		}
		k := key{c.Name, c.Kind}
		if _, dup := names[k]; dup {
			return fmt.Errorf("%s %q in %q: %w", c.Kind, c.Name, n.Name, ErrDuplicateName)
		}
		names[k] = struct{}{}
		if err := t.validateDetached(c, ids); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) attach(parentID ID, n *Node) {
	r := &record{
		id:      n.ID,
		kind:    n.Kind,
		name:    n.Name,
		content: n.Content,
		isOpen:  n.IsOpen,
		parent:  parentID,
	}
	t.add(r)
	for _, c := range n.Children {
		t.attach(r.id, c)
		r.children = append(r.children, c.ID)
	}
}

// Rename changes the name of a node. Id, children and content are untouched.
func (t *Tree) Rename(id ID, newName string) error {
	if err := validName(newName); err != nil {
		return err
	}
	r, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("rename %s: %w", id, ErrNotFound)
	}
	if id == t.root {
		return fmt.Errorf("rename: %w", ErrRootImmutable)
	}
	if r.name == newName {
		return nil
	}
	if t.conflict(t.nodes[r.parent], newName, r.kind, id) {
		return fmt.Errorf("rename %q to %q: %w", r.name, newName, ErrDuplicateName)
	}
	r.name = newName
	return nil
}

// Delete removes a node and, for directories, all of its descendants. It
// returns every removed id, the node itself first.
func (t *Tree) Delete(id ID) ([]ID, error) {
	r, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	if id == t.root {
		return nil, fmt.Errorf("delete: %w", ErrRootImmutable)
	}

	removed := t.collect(id, nil)
	parent := t.nodes[r.parent]
	parent.children = without(parent.children, id)
	for _, rid := range removed {
		delete(t.nodes, rid)
	}
	return removed, nil
}

func (t *Tree) collect(id ID, acc []ID) []ID {
	acc = append(acc, id)
	for _, c := range t.nodes[id].children {
		acc = t.collect(c, acc)
	}
	return acc
}

func without(ids []ID, id ID) []ID {
	out := make([]ID, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

// IsAncestor reports whether ancestor is id itself or lies on id's parent
// chain.
func (t *Tree) IsAncestor(ancestor, id ID) bool {
	for cur := id; ; {
		if cur == ancestor {
			return true
		}
		r, ok := t.nodes[cur]
		if !ok || cur == t.root {
			return false
		}
		cur = r.parent
	}
}

// Move detaches id from its parent and appends it to newParentID. Moving a
// node under its current parent is a no-op.
func (t *Tree) Move(id, newParentID ID) error {
	r, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("move %s: %w", id, ErrNotFound)
	}
	if id == t.root {
		return fmt.Errorf("move: %w", ErrRootImmutable)
	}
	target, err := t.directory(newParentID)
	if err != nil {
		return fmt.Errorf("move %q: %w", r.name, err)
	}
	if r.parent == newParentID {
		return nil
	}
	if t.IsAncestor(id, newParentID) {
		return fmt.Errorf("move %q into %q: %w", r.name, target.name, ErrCycle)
	}
	if t.conflict(target, r.name, r.kind, id) {
		return fmt.Errorf("move %q into %q: %w", r.name, target.name, ErrDuplicateName)
	}

	old := t.nodes[r.parent]
	old.children = without(old.children, id)
	target.children = append(target.children, id)
	r.parent = newParentID
	return nil
}

// Toggle flips a directory's open state. Files and the root are unaffected.
func (t *Tree) Toggle(id ID) error {
	r, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("toggle %s: %w", id, ErrNotFound)
	}
	if r.kind == KindDirectory && id != t.root {
		r.isOpen = !r.isOpen
	}
	return nil
}

// Expand opens a directory. It is a no-op on files.
func (t *Tree) Expand(id ID) error {
	r, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("expand %s: %w", id, ErrNotFound)
	}
	if r.kind == KindDirectory {
		r.isOpen = true
	}
	return nil
}

// CollapseAll closes every directory except the root.
func (t *Tree) CollapseAll() {
	for id, r := range t.nodes {
		if r.kind == KindDirectory && id != t.root {
			r.isOpen = false
		}
	}
}

// SetContent overwrites a file's content and reports whether it changed.
func (t *Tree) SetContent(id ID, content string) (bool, error) {
	r, ok := t.nodes[id]
	if !ok {
		return false, fmt.Errorf("set content %s: %w", id, ErrNotFound)
	}
	if r.kind != KindFile {
		return false, fmt.Errorf("set content %q: %w", r.name, ErrNotFile)
	}
	if r.content == content {
		return false, nil
	}
	r.content = content
	return true, nil
}

// Retired returns the ids this tree has housed that are no longer live.
func (t *Tree) Retired() []ID {
	var out []ID
	for id := range t.seen {
		if _, live := t.nodes[id]; !live {
			out = append(out, id)
		}
	}
	return out
}

// Retire marks ids as used so they can never be inserted. It is how a
// restored tree remembers nodes deleted before it was persisted.
func (t *Tree) Retire(ids ...ID) {
	for _, id := range ids {
		t.seen[id] = struct{}{}
	}
}
