package export

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-codecollab/pkg/tree"
)

func scenarioRoot() *tree.Node {
	return &tree.Node{ID: "root", Name: tree.RootName, Kind: tree.KindDirectory, IsOpen: true, Children: []*tree.Node{
		{ID: "src", Name: "src", Kind: tree.KindDirectory, IsOpen: true, Children: []*tree.Node{
			{ID: "a", Name: "a.js", Kind: tree.KindFile, Content: "x"},
		}},
		{ID: "b", Name: "b.py", Kind: tree.KindFile, Content: "y"},
	}}
}

func TestBundleScenario(t *testing.T) {
	entries, err := Bundle(scenarioRoot(), "")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"src/a.js": "x", "b.py": "y"}, AsMap(entries))
	assert.Equal(t, []Entry{{Path: "b.py", Content: "y"}, {Path: "src/a.js", Content: "x"}}, entries)
}

func TestBundleSubtreeKeepsItsName(t *testing.T) {
	entries, err := Bundle(scenarioRoot(), "src")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"src/a.js": "x"}, AsMap(entries))

	entries, err = Bundle(scenarioRoot(), "root")
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = Bundle(scenarioRoot(), "missing")
	assert.ErrorIs(t, err, tree.ErrNotFound)
}

func TestBundleKeepsEmptyDirectories(t *testing.T) {
	root := scenarioRoot()
	root.Children = append(root.Children, &tree.Node{ID: "docs", Name: "docs", Kind: tree.KindDirectory, Children: []*tree.Node{
		{ID: "img", Name: "img", Kind: tree.KindDirectory},
	}})

	entries, err := Bundle(root, "")
	require.NoError(t, err)
	assert.Contains(t, entries, Entry{Path: "docs/img/"})
	assert.NotContains(t, AsMap(entries), "docs/img/")
}

func TestBundleIsPure(t *testing.T) {
	root := scenarioRoot()
	before := root.Clone()
	_, err := Bundle(root, "")
	require.NoError(t, err)
	assert.Equal(t, before, root)
}

func TestWriteZip(t *testing.T) {
	entries := []Entry{{Path: "b.py", Content: "y"}, {Path: "empty/"}, {Path: "src/a.js", Content: "x"}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatZip, entries))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	got := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		got[f.Name] = string(data)
	}
	assert.Equal(t, map[string]string{"b.py": "y", "empty/": "", "src/a.js": "x"}, got)

	// Same input, same bytes.
	var again bytes.Buffer
	require.NoError(t, WriteZip(&again, entries))
	assert.Equal(t, buf.Bytes(), again.Bytes())
}

func TestWriteTarGz(t *testing.T) {
	entries := []Entry{{Path: "b.py", Content: "y"}, {Path: "empty/"}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTarGz, entries))

	gz, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	hdr, err := tr.Next()
	require.NoError(t, err)
	assert.Equal(t, "b.py", hdr.Name)
	data, _ := io.ReadAll(tr)
	assert.Equal(t, "y", string(data))

	hdr, err = tr.Next()
	require.NoError(t, err)
	assert.Equal(t, "empty/", hdr.Name)
	assert.Equal(t, byte(tar.TypeDir), hdr.Typeflag)

	_, err = tr.Next()
	assert.True(t, errors.Is(err, io.EOF))
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(io.Discard, "rar", nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Equal(t, ".tar.gz", Extension(FormatTarGz))
	assert.Equal(t, ".zip", Extension(FormatZip))
}
