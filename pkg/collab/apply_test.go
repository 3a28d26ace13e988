package collab

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-codecollab/pkg/tree"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

func event(t *testing.T, typ Type, payload interface{}) Event {
	t.Helper()
	ev, err := NewEvent(typ, payload)
	require.NoError(t, err)
	return ev
}

func TestReplayCreateUpdateDelete(t *testing.T) {
	ws := workspace.New("collab", nil)
	root := ws.Tree().Root()

	events := []Event{
		event(t, DirectoryCreated, DirectoryCreatedPayload{ParentDirID: root, NewDirectory: &tree.Node{ID: "d1", Name: "src", Kind: tree.KindDirectory, IsOpen: true}}),
		event(t, FileCreated, FileCreatedPayload{ParentDirID: "d1", NewFile: &tree.Node{ID: "f1", Name: "a.js"}}),
		event(t, FileUpdated, FileUpdatedPayload{FileID: "f1", NewContent: "one"}),
		event(t, FileUpdated, FileUpdatedPayload{FileID: "f1", NewContent: "two"}),
		event(t, FileRenamed, RenamedPayload{ID: "f1", NewName: "b.js"}),
		event(t, FileCreated, FileCreatedPayload{ParentDirID: root, NewFile: &tree.Node{ID: "f2", Name: "c.py", Kind: tree.KindFile}}),
		event(t, NodeMoved, MovedPayload{ID: "f2", NewParentID: "d1"}),
		event(t, FileDeleted, DeletedPayload{ID: "f1"}),
	}

	st, err := NewApplier(nil).Replay(ws, events)
	require.NoError(t, err)
	assert.Equal(t, Stats{Applied: 8}, st)

	_, err = ws.Tree().Lookup("src/b.js")
	assert.ErrorIs(t, err, tree.ErrNotFound)
	id, err := ws.Tree().Lookup("src/c.py")
	require.NoError(t, err)
	assert.Equal(t, tree.ID("f2"), id)
	require.NoError(t, ws.Validate())
}

func TestLastWriteWins(t *testing.T) {
	ws := workspace.New("collab", nil)
	id, _ := ws.CreateFile(ws.Tree().Root(), "a.js")

	for _, c := range []string{"x", "y", "z"} {
		out, err := Apply(ws, event(t, FileUpdated, FileUpdatedPayload{FileID: id, NewContent: c}))
		require.NoError(t, err)
		assert.Equal(t, Applied, out)
	}
	n, _ := ws.Tree().Get(id)
	assert.Equal(t, "z", n.Content)
}

func TestStaleReferencesAreSkipped(t *testing.T) {
	ws := workspace.New("collab", nil)
	before := ws.Snapshot()

	for _, ev := range []Event{
		event(t, FileUpdated, FileUpdatedPayload{FileID: "gone", NewContent: "x"}),
		event(t, FileRenamed, RenamedPayload{ID: "gone", NewName: "y"}),
		event(t, DirectoryDeleted, DeletedPayload{ID: "gone"}),
		event(t, NodeMoved, MovedPayload{ID: "gone", NewParentID: ws.Tree().Root()}),
		event(t, FileCreated, FileCreatedPayload{ParentDirID: "gone", NewFile: &tree.Node{ID: "f", Name: "f", Kind: tree.KindFile}}),
	} {
		out, err := Apply(ws, ev)
		assert.NoError(t, err, ev.Type)
		assert.Equal(t, Skipped, out, ev.Type)
	}
	assert.Equal(t, before, ws.Snapshot())
}

func TestRepeatedCreateIsSkipped(t *testing.T) {
	ws := workspace.New("collab", nil)
	ev := event(t, FileCreated, FileCreatedPayload{ParentDirID: ws.Tree().Root(), NewFile: &tree.Node{ID: "f", Name: "a.js", Kind: tree.KindFile}})

	out, err := Apply(ws, ev)
	require.NoError(t, err)
	assert.Equal(t, Applied, out)

	out, err = Apply(ws, ev)
	require.NoError(t, err)
	assert.Equal(t, Skipped, out)
	assert.Equal(t, 2, ws.Tree().Len())
}

func TestValidationErrorsAreReturned(t *testing.T) {
	ws := workspace.New("collab", nil)
	root := ws.Tree().Root()
	a, _ := ws.CreateFile(root, "a.js")
	_, _ = ws.CreateFile(root, "b.js")
	dir, _ := ws.CreateDirectory(root, "src")

	tests := []struct {
		name string
		ev   Event
		want error
	}{
		{"duplicate rename", event(t, FileRenamed, RenamedPayload{ID: a, NewName: "b.js"}), tree.ErrDuplicateName},
		{"delete root", event(t, DirectoryDeleted, DeletedPayload{ID: root}), tree.ErrRootImmutable},
		{"move into self", event(t, NodeMoved, MovedPayload{ID: dir, NewParentID: dir}), tree.ErrCycle},
		{"file event on directory", event(t, FileDeleted, DeletedPayload{ID: dir}), tree.ErrNotFile},
		{"directory event on file", event(t, DirectoryRenamed, RenamedPayload{ID: a, NewName: "z"}), tree.ErrNotDirectory},
		{"wrong created kind", event(t, FileCreated, FileCreatedPayload{ParentDirID: root, NewFile: &tree.Node{Name: "x", Kind: tree.KindDirectory}}), ErrBadPayload},
		{"missing node", event(t, DirectoryCreated, DirectoryCreatedPayload{ParentDirID: root}), ErrBadPayload},
		{"unknown type", Event{Type: "cursor-moved", Payload: []byte(`{}`)}, ErrUnknownType},
		{"empty payload", Event{Type: FileUpdated}, ErrBadPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(ws, tt.ev)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, 4, ws.Tree().Len())
}

func TestReplayContinuesPastFailures(t *testing.T) {
	ws := workspace.New("collab", nil)
	root := ws.Tree().Root()
	events := []Event{
		event(t, FileCreated, FileCreatedPayload{ParentDirID: root, NewFile: &tree.Node{ID: "f1", Name: "a.js", Kind: tree.KindFile}}),
		event(t, FileCreated, FileCreatedPayload{ParentDirID: root, NewFile: &tree.Node{ID: "f2", Name: "a.js", Kind: tree.KindFile}}),
		event(t, FileUpdated, FileUpdatedPayload{FileID: "missing", NewContent: "x"}),
		event(t, FileUpdated, FileUpdatedPayload{FileID: "f1", NewContent: "ok"}),
	}

	st, err := NewApplier(nil).Replay(ws, events)
	assert.ErrorIs(t, err, tree.ErrDuplicateName)
	assert.Contains(t, err.Error(), "event 2")
	assert.Equal(t, Stats{Applied: 2, Skipped: 1, Failed: 1}, st)
}

func TestReadWriteEvents(t *testing.T) {
	input := `{"type":"file-updated","payload":{"fileId":"f1","newContent":"hi"}}

{"type":"file-deleted","payload":{"id":"f1"}}
`
	events, err := ReadEvents(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, FileUpdated, events[0].Type)

	var p FileUpdatedPayload
	require.NoError(t, events[0].Decode(&p))
	assert.Equal(t, FileUpdatedPayload{FileID: "f1", NewContent: "hi"}, p)

	var buf bytes.Buffer
	require.NoError(t, WriteEvents(&buf, events))
	again, err := ReadEvents(&buf)
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, FileDeleted, again[1].Type)

	_, err = ReadEvents(strings.NewReader("{\"type\":\"x\"}\nnot json\n"))
	assert.ErrorIs(t, err, ErrBadPayload)
	assert.Contains(t, err.Error(), "line 2")
}
