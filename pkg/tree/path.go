package tree

import (
	"fmt"
	"strings"
)

// Separator joins path segments in workspace paths.
const Separator = "/"

// PathOf returns the workspace path of id. The root contributes no segment,
// so its direct children sit at the top level and the root itself is "".
func (t *Tree) PathOf(id ID) (string, error) {
	if !t.Has(id) {
		return "", fmt.Errorf("path of %s: %w", id, ErrNotFound)
	}
	var segments []string
	for cur := id; cur != t.root; cur = t.nodes[cur].parent {
		segments = append(segments, t.nodes[cur].name)
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, Separator), nil
}

// Lookup resolves a workspace path to an id. Intermediate segments must be
// directories. For the last segment a file wins over a directory of the same
// name unless the path ends with a separator. "" and "/" resolve to root.
func (t *Tree) Lookup(path string) (ID, error) {
	wantDir := strings.HasSuffix(path, Separator)
	trimmed := strings.Trim(path, Separator)
	if trimmed == "" {
		return t.root, nil
	}

	segments := strings.Split(trimmed, Separator)
	cur := t.root
	for i, seg := range segments {
		last := i == len(segments)-1
		var file, dir ID
		for _, c := range t.nodes[cur].children {
			cr := t.nodes[c]
			if cr.name != seg {
				continue
			}
			if cr.kind == KindFile {
				file = c
			} else {
				dir = c
			}
		}
		switch {
		case last && !wantDir && file != "":
			return file, nil
		case dir != "":
			cur = dir
		default:
			return "", fmt.Errorf("lookup %q: %w", path, ErrNotFound)
		}
	}
	return cur, nil
}

// Walk visits every node below n depth-first in child order, passing each
// node's workspace path. n itself is treated as the tree root and
// contributes no segment. Returning an error from fn stops the walk.
func Walk(n *Node, fn func(path string, n *Node) error) error {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if err := walk(c, "", fn); err != nil {
			return err
		}
	}
	return nil
}

func walk(n *Node, parent string, fn func(string, *Node) error) error {
	path := JoinPath(parent, n.Name)
	if err := fn(path, n); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := walk(c, path, fn); err != nil {
			return err
		}
	}
	return nil
}

// JoinPath appends name to a workspace path.
func JoinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + Separator + name
}

// FromSnapshot rebuilds a live tree from a snapshot. The snapshot root must
// be a directory; ids must be unique and siblings unique by name and kind.
func FromSnapshot(root *Node) (*Tree, error) {
	if root == nil || !root.IsDirectory() {
		return nil, fmt.Errorf("%w: root must be a directory", ErrInvalidSnapshot)
	}
	if root.ID == "" {
		return nil, fmt.Errorf("%w: root has no id", ErrInvalidSnapshot)
	}

	t := &Tree{
		root:  root.ID,
		nodes: make(map[ID]*record),
		seen:  make(map[ID]struct{}),
	}
	t.add(&record{id: root.ID, kind: KindDirectory, name: root.Name, isOpen: true})

	for _, c := range root.Children {
		if c == nil {
			return nil, fmt.Errorf("%w: nil child in root", ErrInvalidSnapshot)
		}
		if c.ID == "" {
			return nil, fmt.Errorf("%w: node %q has no id", ErrInvalidSnapshot, c.Name)
		}
		if _, err := t.Insert(root.ID, c); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
	}
	return t, nil
}
