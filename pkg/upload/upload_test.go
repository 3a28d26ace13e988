package upload

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-codecollab/pkg/tree"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestFilesFromDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "project")
	writeFile(t, filepath.Join(dir, "index.js"), "console.log(1)")
	writeFile(t, filepath.Join(dir, "src", "util.py"), "print(2)")
	writeFile(t, filepath.Join(dir, ".git", "HEAD"), "ref: refs/heads/main")
	writeFile(t, filepath.Join(dir, ".cache", "x"), "hidden")
	writeFile(t, filepath.Join(dir, "big.txt"), string(make([]byte, 64)))
	writeFile(t, filepath.Join(dir, "logo.png"), "\xff\xfe\xfd")

	files, skipped, err := FilesFromDir(context.Background(), dir, &Options{IncludeRoot: true, MaxFileSize: 32})
	require.NoError(t, err)

	got := map[string]string{}
	for _, f := range files {
		got[f.RelativePath] = f.Content
	}
	assert.Equal(t, map[string]string{
		"project/index.js":    "console.log(1)",
		"project/src/util.py": "print(2)",
	}, got)

	var reasons []string
	for _, s := range skipped {
		reasons = append(reasons, s.Path+":"+s.Reason)
	}
	sort.Strings(reasons)
	assert.Equal(t, []string{"big.txt:too large", "logo.png:not text"}, reasons)
}

func TestFilesFromDirRejectsFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, f, "x")
	_, _, err := FilesFromDir(context.Background(), f, nil)
	assert.Error(t, err)
}

func TestImportBuildsNesting(t *testing.T) {
	ws := workspace.New("upload", nil)
	root := ws.Tree().Root()

	ids, err := Import(ws, root, []File{
		{RelativePath: "project/src/a.js", Content: "a"},
		{RelativePath: "project/src/b.js", Content: "b"},
		{RelativePath: "readme.md", Content: "hi"},
	})
	require.NoError(t, err)
	require.Len(t, ids, 3)

	for path, want := range map[string]string{
		"project/src/a.js": "a",
		"project/src/b.js": "b",
		"readme.md":        "hi",
	} {
		id, err := ws.Tree().Lookup(path)
		require.NoError(t, err, path)
		n, _ := ws.Tree().Get(id)
		assert.Equal(t, want, n.Content)
	}

	project, err := ws.Tree().Lookup("project/")
	require.NoError(t, err)
	assert.Len(t, ws.Tree().Children(project), 1, "src is created once")
	n, _ := ws.Tree().Get(project)
	assert.True(t, n.IsOpen)
}

func TestImportReplacesExistingContent(t *testing.T) {
	ws := workspace.New("upload", nil)
	root := ws.Tree().Root()
	existing, err := ws.CreateFile(root, "a.js")
	require.NoError(t, err)
	dir, err := ws.CreateDirectory(root, "lib")
	require.NoError(t, err)
	require.NoError(t, ws.ToggleDirectory(dir))

	ids, err := Import(ws, root, []File{
		{RelativePath: "a.js", Content: "new"},
		{RelativePath: "lib/x.js", Content: "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, existing, ids[0])

	n, _ := ws.Tree().Get(existing)
	assert.Equal(t, "new", n.Content)

	d, _ := ws.Tree().Get(dir)
	assert.True(t, d.IsOpen, "reused directory is opened")
	assert.Equal(t, 4, ws.Tree().Len())
}

func TestImportErrors(t *testing.T) {
	ws := workspace.New("upload", nil)
	root := ws.Tree().Root()
	file, _ := ws.CreateFile(root, "a.js")

	_, err := Import(ws, file, []File{{RelativePath: "x", Content: "x"}})
	assert.ErrorIs(t, err, tree.ErrNotDirectory)

	_, err = Import(ws, root, []File{{RelativePath: "/", Content: "x"}})
	assert.ErrorIs(t, err, ErrEmptyPath)
}
