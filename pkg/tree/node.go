package tree

import (
	"github.com/google/uuid"
)

// ID identifies a node for its whole lifetime. IDs are never reused.
type ID string

// Kind discriminates files from directories.
type Kind string

const (
	KindFile      Kind = "file"
	KindDirectory Kind = "directory"
)

// RootName is the conventional name of the implicit root directory.
const RootName = "root"

// Node is the detached value form of a tree node. It is what snapshots,
// uploads and remote inserts exchange; the live tree stores records.
type Node struct {
	ID       ID      `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Kind     Kind    `json:"type" yaml:"type"`
	Content  string  `json:"content,omitempty" yaml:"content,omitempty"`
	IsOpen   bool    `json:"isOpen,omitempty" yaml:"isOpen,omitempty"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

func newID() ID {
	return ID(uuid.NewString())
}

// NewFile returns a detached file node with a fresh id.
func NewFile(name, content string) *Node {
	return &Node{
		ID:      newID(),
		Name:    name,
		Kind:    KindFile,
		Content: content,
	}
}

// NewDirectory returns a detached, open directory node with a fresh id.
func NewDirectory(name string, children ...*Node) *Node {
	return &Node{
		ID:       newID(),
		Name:     name,
		Kind:     KindDirectory,
		IsOpen:   true,
		Children: children,
	}
}

// IsFile reports whether n is a file node.
func (n *Node) IsFile() bool {
	return n != nil && n.Kind == KindFile
}

// IsDirectory reports whether n is a directory node.
func (n *Node) IsDirectory() bool {
	return n != nil && n.Kind == KindDirectory
}

// Find returns the node with the given id inside n, or nil.
func (n *Node) Find(id ID) *Node {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}
