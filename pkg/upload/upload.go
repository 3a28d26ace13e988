// Package upload seeds a room from local files and folders.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/mattsolo1/grove-codecollab/pkg/tree"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

// MaxFileSize is the largest file FilesFromDir reads.
const MaxFileSize = 1 << 20

// File is an uploaded file. RelativePath uses "/" and, for folder uploads,
// starts with the folder's own name.
type File struct {
	RelativePath string
	Content      string
}

// ErrEmptyPath is returned for a file without a usable path.
var ErrEmptyPath = errors.New("upload: empty path")

// Options tunes FilesFromDir.
type Options struct {
	// IncludeRoot prefixes every path with the directory's base name, as a
	// browser folder upload does.
	IncludeRoot bool
	MaxFileSize int64
	// Workers bounds concurrent reads; zero means 8.
	Workers int
}

// Skipped describes a file FilesFromDir left out.
type Skipped struct {
	Path   string
	Reason string
}

// FilesFromDir reads every text file below dir. Hidden directories, .git
// and files over the size limit or with invalid UTF-8 are skipped and
// reported.
func FilesFromDir(ctx context.Context, dir string, opts *Options) ([]File, []Skipped, error) {
	if opts == nil {
		opts = &Options{}
	}
	limit := opts.MaxFileSize
	if limit <= 0 {
		limit = MaxFileSize
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 8
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("upload %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("upload %s: not a directory", dir)
	}
	prefix := ""
	if opts.IncludeRoot {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, nil, err
		}
		prefix = filepath.Base(abs)
	}

	var paths []string
	var skipped []Skipped
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == dir {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if name == ".git" || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if fi.Size() > limit {
			skipped = append(skipped, Skipped{Path: rel, Reason: "too large"})
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	contents := make([]string, len(paths))
	binary := make([]bool, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rel := range paths {
		i, rel := i, rel
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
			if err != nil {
				return fmt.Errorf("read %s: %w", rel, err)
			}
			if !utf8.Valid(data) {
				binary[i] = true
				return nil
			}
			contents[i] = string(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	files := make([]File, 0, len(paths))
	for i, rel := range paths {
		if binary[i] {
			skipped = append(skipped, Skipped{Path: rel, Reason: "not text"})
			continue
		}
		if prefix != "" {
			rel = prefix + "/" + rel
		}
		files = append(files, File{RelativePath: rel, Content: contents[i]})
	}
	return files, skipped, nil
}

// Import adds files below parentID. Multi-segment paths create (or reuse)
// the directory chain, opened so the new files are visible. A file whose
// name already exists in its directory has its content replaced. It returns
// the ids of the files written, in input order.
func Import(ws *workspace.Workspace, parentID tree.ID, files []File) ([]tree.ID, error) {
	if !ws.Tree().IsDirectory(parentID) {
		return nil, fmt.Errorf("import into %s: %w", parentID, tree.ErrNotDirectory)
	}

	ids := make([]tree.ID, 0, len(files))
	for _, f := range files {
		segments, err := split(f.RelativePath)
		if err != nil {
			return ids, err
		}

		dir := parentID
		for _, seg := range segments[:len(segments)-1] {
			dir, err = ensureDirectory(ws, dir, seg)
			if err != nil {
				return ids, fmt.Errorf("import %s: %w", f.RelativePath, err)
			}
		}

		name := segments[len(segments)-1]
		id, ok := childFile(ws, dir, name)
		if !ok {
			id, err = ws.CreateFile(dir, name)
			if err != nil {
				return ids, fmt.Errorf("import %s: %w", f.RelativePath, err)
			}
		}
		ws.UpdateFileContent(id, f.Content)
		ids = append(ids, id)
	}
	return ids, nil
}

func split(rel string) ([]string, error) {
	rel = strings.Trim(path.Clean("/"+filepath.ToSlash(rel)), "/")
	if rel == "" || rel == "." {
		return nil, ErrEmptyPath
	}
	return strings.Split(rel, "/"), nil
}

func ensureDirectory(ws *workspace.Workspace, parent tree.ID, name string) (tree.ID, error) {
	for _, c := range ws.Tree().Children(parent) {
		n, ok := ws.Tree().Get(c)
		if ok && n.IsDirectory() && n.Name == name {
			if !n.IsOpen {
				if err := ws.ToggleDirectory(c); err != nil {
					return "", err
				}
			}
			return c, nil
		}
	}
	return ws.CreateDirectory(parent, name)
}

func childFile(ws *workspace.Workspace, parent tree.ID, name string) (tree.ID, bool) {
	for _, c := range ws.Tree().Children(parent) {
		n, ok := ws.Tree().Get(c)
		if ok && n.IsFile() && n.Name == name {
			return c, true
		}
	}
	return "", false
}
