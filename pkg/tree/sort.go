package tree

import (
	"sort"

	"golang.org/x/text/cases"
)

// Sort returns a deep copy of n in which every directory lists its
// subdirectories first and then its files. Within each group names compare
// case-insensitively (Unicode case folding); names that fold equal fall
// back to byte order and finally to id, so the order is total. n is not
// modified.
func Sort(n *Node) *Node {
	if n == nil {
		return nil
	}
	return sortNode(n.Clone(), cases.Fold())
}

func sortNode(n *Node, fold cases.Caser) *Node {
	if !n.IsDirectory() || len(n.Children) == 0 {
		return n
	}
	for _, c := range n.Children {
		sortNode(c, fold)
	}
	sort.SliceStable(n.Children, func(i, j int) bool {
		return Less(n.Children[i], n.Children[j], fold)
	})
	return n
}

// Less orders two siblings: directories before files, then by folded name,
// raw name and id.
func Less(a, b *Node, fold cases.Caser) bool {
	if a.IsDirectory() != b.IsDirectory() {
		return a.IsDirectory()
	}
	fa, fb := fold.String(a.Name), fold.String(b.Name)
	if fa != fb {
		return fa < fb
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}

// Sorted returns a sorted snapshot of the whole tree.
func (t *Tree) Sorted() *Node {
	return Sort(t.Snapshot())
}
