package workspace

import (
	"github.com/mattsolo1/grove-codecollab/pkg/commit"
	"github.com/mattsolo1/grove-codecollab/pkg/tree"
)

// CommitSource describes the workspace for the commit aggregator. Open and
// active files carry their draft text and their tree path.
func (w *Workspace) CommitSource() commit.Source {
	src := commit.Source{Root: w.tree.Snapshot()}
	for _, id := range w.open {
		f, ok := w.openFile(id)
		if !ok {
			continue
		}
		src.Open = append(src.Open, f)
		if id == w.active {
			active := f
			src.Active = &active
		}
	}
	return src
}

func (w *Workspace) openFile(id tree.ID) (commit.OpenFile, bool) {
	n, ok := w.File(id)
	if !ok {
		return commit.OpenFile{}, false
	}
	p, err := w.tree.PathOf(id)
	if err != nil {
		w.log.WithError(err).WithField("id", id).Warn("open file has no path, using its name")
		p = ""
	}
	return commit.OpenFile{ID: id, Name: n.Name, Path: p, Content: n.Content}, true
}

// PlanCommit aggregates the workspace into a commit plan. The workspace is
// only read.
func (w *Workspace) PlanCommit() *commit.Plan {
	return commit.BuildWithLogger(w.CommitSource(), w.log)
}
