package workspace

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-codecollab/pkg/tree"
)

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	return New("test-room", nil)
}

func mustFile(t *testing.T, w *Workspace, parent tree.ID, name string) tree.ID {
	t.Helper()
	id, err := w.CreateFile(parent, name)
	require.NoError(t, err)
	return id
}

func TestDeleteActivatesRightNeighbour(t *testing.T) {
	w := newTestWorkspace(t)
	root := w.Tree().Root()
	a := mustFile(t, w, root, "a.js")
	b := mustFile(t, w, root, "b.js")

	require.True(t, w.OpenFile(a))
	require.True(t, w.OpenFile(b))
	require.True(t, w.SetActive(a))

	_, err := w.Delete(a)
	require.NoError(t, err)

	assert.Equal(t, []tree.ID{b}, w.OpenFiles())
	active, ok := w.Active()
	require.True(t, ok)
	assert.Equal(t, b, active)
	assert.NoError(t, w.Validate())
}

func TestDeleteActivatesLeftWhenRightmost(t *testing.T) {
	w := newTestWorkspace(t)
	root := w.Tree().Root()
	a := mustFile(t, w, root, "a.js")
	b := mustFile(t, w, root, "b.js")
	w.OpenFile(a)
	w.OpenFile(b)

	_, err := w.Delete(b)
	require.NoError(t, err)

	active, _ := w.Active()
	assert.Equal(t, a, active)
}

func TestDeleteLastOpenFileClearsActive(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustFile(t, w, w.Tree().Root(), "a.js")
	w.OpenFile(a)

	_, err := w.Delete(a)
	require.NoError(t, err)

	assert.Empty(t, w.OpenFiles())
	_, ok := w.Active()
	assert.False(t, ok)
	assert.Nil(t, w.ActiveFile())
}

func TestDeleteDirectoryClosesDescendants(t *testing.T) {
	w := newTestWorkspace(t)
	root := w.Tree().Root()
	keepLeft := mustFile(t, w, root, "left.txt")
	src, err := w.CreateDirectory(root, "src")
	require.NoError(t, err)
	lib, err := w.CreateDirectory(src, "lib")
	require.NoError(t, err)
	x := mustFile(t, w, src, "x.go")
	y := mustFile(t, w, lib, "y.go")
	keepRight := mustFile(t, w, root, "right.txt")

	for _, id := range []tree.ID{keepLeft, x, y, keepRight} {
		w.OpenFile(id)
	}
	require.True(t, w.SetActive(x))
	require.True(t, w.EditDraft(y, "unsaved"))

	removed, err := w.Delete(src)
	require.NoError(t, err)
	assert.ElementsMatch(t, []tree.ID{src, lib, x, y}, removed)

	assert.Equal(t, []tree.ID{keepLeft, keepRight}, w.OpenFiles())
	active, _ := w.Active()
	assert.Equal(t, keepRight, active, "nearest surviving tab to the right wins")
	_, hasDraft := w.Draft(y)
	assert.False(t, hasDraft)
	assert.NoError(t, w.Validate())
}

func TestDeleteInactiveKeepsActive(t *testing.T) {
	w := newTestWorkspace(t)
	root := w.Tree().Root()
	a := mustFile(t, w, root, "a")
	b := mustFile(t, w, root, "b")
	w.OpenFile(a)
	w.OpenFile(b)

	_, err := w.Delete(a)
	require.NoError(t, err)
	active, _ := w.Active()
	assert.Equal(t, b, active)
}

func TestDeleteRootRejected(t *testing.T) {
	w := newTestWorkspace(t)
	_, err := w.Delete(w.Tree().Root())
	assert.ErrorIs(t, err, tree.ErrRootImmutable)
}

func TestOpenFile(t *testing.T) {
	w := newTestWorkspace(t)
	root := w.Tree().Root()
	a := mustFile(t, w, root, "a")
	b := mustFile(t, w, root, "b")
	dir, _ := w.CreateDirectory(root, "d")

	assert.True(t, w.OpenFile(a))
	assert.True(t, w.OpenFile(b))
	assert.True(t, w.OpenFile(a), "reopening only activates")
	assert.Equal(t, []tree.ID{a, b}, w.OpenFiles())
	active, _ := w.Active()
	assert.Equal(t, a, active)

	assert.False(t, w.OpenFile(dir))
	assert.False(t, w.OpenFile(tree.ID("ghost")))
	assert.Equal(t, []tree.ID{a, b}, w.OpenFiles())
}

func TestCloseFileLeavesSelectionToCaller(t *testing.T) {
	w := newTestWorkspace(t)
	root := w.Tree().Root()
	a := mustFile(t, w, root, "a")
	b := mustFile(t, w, root, "b")
	c := mustFile(t, w, root, "c")
	for _, id := range []tree.ID{a, b, c} {
		w.OpenFile(id)
	}
	w.SetActive(b)

	open := w.OpenFiles()
	next := NextActive(open, b)
	assert.Equal(t, c, next)

	require.True(t, w.CloseFile(b))
	_, ok := w.Active()
	assert.False(t, ok)
	assert.Equal(t, []tree.ID{a, c}, w.OpenFiles())

	assert.False(t, w.CloseFile(b))
}

func TestCloseFileAndFocusNext(t *testing.T) {
	w := newTestWorkspace(t)
	root := w.Tree().Root()
	a := mustFile(t, w, root, "a")
	b := mustFile(t, w, root, "b")
	w.OpenFile(a)
	w.OpenFile(b)

	require.True(t, w.CloseFileAndFocusNext(b))
	active, _ := w.Active()
	assert.Equal(t, a, active)

	require.True(t, w.CloseFileAndFocusNext(a))
	_, ok := w.Active()
	assert.False(t, ok)
}

func TestNextActive(t *testing.T) {
	a, b, c := tree.ID("a"), tree.ID("b"), tree.ID("c")
	tests := []struct {
		name    string
		open    []tree.ID
		closing tree.ID
		want    tree.ID
	}{
		{"right neighbour", []tree.ID{a, b, c}, a, b},
		{"middle prefers right", []tree.ID{a, b, c}, b, c},
		{"last falls back left", []tree.ID{a, b, c}, c, b},
		{"only tab", []tree.ID{a}, a, ""},
		{"not open", []tree.ID{a, b}, c, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextActive(tt.open, tt.closing))
		})
	}
}

func TestDraftsFlushOnTabSwitch(t *testing.T) {
	w := newTestWorkspace(t)
	root := w.Tree().Root()
	a := mustFile(t, w, root, "a.py")
	b := mustFile(t, w, root, "b.py")
	w.OpenFile(a)
	w.OpenFile(b)
	w.SetActive(a)

	require.True(t, w.EditDraft(a, "print('a')"))
	n, _ := w.Tree().Get(a)
	assert.Equal(t, "", n.Content, "draft is not saved yet")
	assert.Equal(t, "print('a')", w.ActiveFile().Content)

	w.SetActive(b)
	n, _ = w.Tree().Get(a)
	assert.Equal(t, "print('a')", n.Content)
	_, hasDraft := w.Draft(a)
	assert.False(t, hasDraft)

	assert.False(t, w.EditDraft(tree.ID("nope"), "x"))
}

func TestUpdateFileContent(t *testing.T) {
	w := newTestWorkspace(t)
	root := w.Tree().Root()
	a := mustFile(t, w, root, "a")
	sibling := mustFile(t, w, root, "b")
	w.OpenFile(a)
	w.EditDraft(a, "draft")

	assert.True(t, w.UpdateFileContent(a, "saved"))
	assert.False(t, w.UpdateFileContent(a, "saved"), "same content is a no-op")
	_, hasDraft := w.Draft(a)
	assert.False(t, hasDraft)

	n, _ := w.Tree().Get(a)
	assert.Equal(t, "saved", n.Content)
	assert.Equal(t, "a", n.Name)
	s, _ := w.Tree().Get(sibling)
	assert.Equal(t, "", s.Content)

	assert.False(t, w.UpdateFileContent(tree.ID("stale"), "x"))
}

func TestMoveKeepsTabsAndOpensTarget(t *testing.T) {
	w := newTestWorkspace(t)
	root := w.Tree().Root()
	dir, _ := w.CreateDirectory(root, "dir")
	require.NoError(t, w.ToggleDirectory(dir))
	a := mustFile(t, w, root, "a")
	w.OpenFile(a)

	require.NoError(t, w.Move(a, dir))

	assert.Equal(t, []tree.ID{a}, w.OpenFiles())
	d, _ := w.Tree().Get(dir)
	assert.True(t, d.IsOpen)
	path, _ := w.Tree().PathOf(a)
	assert.Equal(t, "dir/a", path)

	assert.ErrorIs(t, w.Move(dir, dir), tree.ErrCycle)
}

func TestSnapshotRestore(t *testing.T) {
	w := newTestWorkspace(t)
	root := w.Tree().Root()
	src, _ := w.CreateDirectory(root, "src")
	a := mustFile(t, w, src, "a.js")
	b := mustFile(t, w, root, "b.py")
	gone := mustFile(t, w, root, "gone.txt")
	w.UpdateFileContent(a, "x")
	w.OpenFile(a)
	w.OpenFile(b)
	w.EditDraft(b, "y")
	_, err := w.Delete(gone)
	require.NoError(t, err)

	snap := w.Snapshot()
	restored, err := Restore(snap, nil)
	require.NoError(t, err)

	assert.Equal(t, w.Tree().Snapshot(), restored.Tree().Snapshot())
	assert.Equal(t, w.OpenFiles(), restored.OpenFiles())
	active, _ := restored.Active()
	assert.Equal(t, b, active)
	draft, _ := restored.Draft(b)
	assert.Equal(t, "y", draft)

	_, err = restored.Insert(root, &tree.Node{ID: gone, Name: "gone.txt", Kind: tree.KindFile})
	assert.ErrorIs(t, err, tree.ErrIDReused)
}

func TestRestoreRepairsTabs(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustFile(t, w, w.Tree().Root(), "a")

	snap := w.Snapshot()
	snap.OpenFiles = []tree.ID{"missing", a, a}
	snap.ActiveFile = "missing"
	snap.Drafts = map[tree.ID]string{"missing": "x"}

	restored, err := Restore(snap, nil)
	require.NoError(t, err)
	assert.Equal(t, []tree.ID{a}, restored.OpenFiles())
	_, ok := restored.Active()
	assert.False(t, ok)
	assert.NoError(t, restored.Validate())
}

func TestYAMLRoundTrip(t *testing.T) {
	w := newTestWorkspace(t)
	root := w.Tree().Root()
	src, _ := w.CreateDirectory(root, "src")
	a := mustFile(t, w, src, "main.go")
	w.UpdateFileContent(a, "package main\n")
	w.OpenFile(a)

	var buf bytes.Buffer
	require.NoError(t, EncodeYAML(&buf, w.Snapshot()))
	assert.Contains(t, buf.String(), "room: test-room")

	snap, err := DecodeYAML(&buf)
	require.NoError(t, err)
	restored, err := Restore(snap, nil)
	require.NoError(t, err)
	assert.Equal(t, w.Tree().Snapshot(), restored.Tree().Snapshot())
	assert.Equal(t, []tree.ID{a}, restored.OpenFiles())
}

func TestValidateRoomName(t *testing.T) {
	assert.NoError(t, ValidateRoomName("pairing-42"))
	assert.ErrorIs(t, ValidateRoomName(""), ErrInvalidRoom)
	assert.ErrorIs(t, ValidateRoomName("a/b"), ErrInvalidRoom)
}

func TestPlanCommitUsesDraftsAndTreePaths(t *testing.T) {
	w := newTestWorkspace(t)
	root := w.Tree().Root()
	src, _ := w.CreateDirectory(root, "src")
	a := mustFile(t, w, src, "index.js")
	b := mustFile(t, w, root, "b.py")
	w.UpdateFileContent(a, "saved")
	w.UpdateFileContent(b, "saved b")
	w.OpenFile(a)
	w.EditDraft(a, "unsaved")

	before := w.Tree().Snapshot()
	plan := w.PlanCommit()

	assert.Equal(t, []string{"src/index.js", "b.py"}, plan.Paths())
	it, ok := plan.Item("src/index.js")
	require.True(t, ok)
	assert.Equal(t, "unsaved", it.Content)
	assert.Equal(t, before, w.Tree().Snapshot(), "planning only reads the workspace")

	srcState := w.CommitSource()
	require.NotNil(t, srcState.Active)
	assert.Equal(t, a, srcState.Active.ID)
}
