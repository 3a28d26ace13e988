// Package export flattens a room's tree into path/content entries and writes
// them as downloadable archives.
package export

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/mattsolo1/grove-codecollab/pkg/tree"
)

// Archive formats accepted by Write.
const (
	FormatZip   = "zip"
	FormatTarGz = "tar.gz"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Entry is one archive member. Paths use "/" and directories end with "/".
type Entry struct {
	Path    string `json:"path"`
	Content string `json:"content,omitempty"`
}

// IsDir reports whether the entry stands for an empty directory.
func (e Entry) IsDir() bool {
	return strings.HasSuffix(e.Path, tree.Separator)
}

// Bundle flattens root, or the subtree with id subtreeID when it is not
// empty, into entries ordered by path. Paths follow the workspace rule: the
// tree root contributes no segment, while any other subtree keeps its own
// name as the first segment. Directories without files become "dir/"
// entries so they survive the archive.
func Bundle(root *tree.Node, subtreeID tree.ID) ([]Entry, error) {
	if root == nil {
		return nil, fmt.Errorf("bundle: %w", tree.ErrNotFound)
	}

	start := root
	if subtreeID != "" && subtreeID != root.ID {
		start = root.Find(subtreeID)
		if start == nil {
			return nil, fmt.Errorf("bundle %s: %w", subtreeID, tree.ErrNotFound)
		}
	}

	var entries []Entry
	if start == root {
		_ = tree.Walk(root, func(p string, n *tree.Node) error {
			entries = appendNode(entries, p, n)
			return nil
		})
	} else {
		wrapper := &tree.Node{Kind: tree.KindDirectory, Children: []*tree.Node{start}}
		_ = tree.Walk(wrapper, func(p string, n *tree.Node) error {
			entries = appendNode(entries, p, n)
			return nil
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

func appendNode(entries []Entry, p string, n *tree.Node) []Entry {
	switch {
	case n.IsFile():
		return append(entries, Entry{Path: p, Content: n.Content})
	case n.IsDirectory() && len(n.Children) == 0:
		return append(entries, Entry{Path: p + tree.Separator})
	}
	return entries
}

// AsMap returns the file entries keyed by path.
func AsMap(entries []Entry) map[string]string {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			m[e.Path] = e.Content
		}
	}
	return m
}

// Write encodes entries in the named format.
func Write(w io.Writer, format string, entries []Entry) error {
	switch format {
	case FormatZip, "":
		return WriteZip(w, entries)
	case FormatTarGz, "tgz":
		return WriteTarGz(w, entries)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Extension returns the file name suffix for a format.
func Extension(format string) string {
	if format == FormatTarGz || format == "tgz" {
		return ".tar.gz"
	}
	return ".zip"
}

// archiveTime is fixed so identical trees produce identical archives.
var archiveTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// WriteZip writes entries as a zip archive.
func WriteZip(w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.Path, Method: zip.Deflate, Modified: archiveTime}
		if e.IsDir() {
			hdr.Method = zip.Store
		}
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("zip %s: %w", e.Path, err)
		}
		if !e.IsDir() {
			if _, err := io.WriteString(fw, e.Content); err != nil {
				return fmt.Errorf("zip %s: %w", e.Path, err)
			}
		}
	}
	return zw.Close()
}

// WriteTarGz writes entries as a gzip-compressed tarball.
func WriteTarGz(w io.Writer, entries []Entry) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.Path, ModTime: archiveTime, Format: tar.FormatPAX}
		if e.IsDir() {
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = 0755
		} else {
			hdr.Typeflag = tar.TypeReg
			hdr.Mode = 0644
			hdr.Size = int64(len(e.Content))
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("tar %s: %w", e.Path, err)
		}
		if !e.IsDir() {
			if _, err := io.WriteString(tw, e.Content); err != nil {
				return fmt.Errorf("tar %s: %w", e.Path, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}
