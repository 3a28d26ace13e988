package workspace

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/mattsolo1/grove-codecollab/pkg/tree"
)

// Snapshot is the persisted form of a workspace.
type Snapshot struct {
	Room       string             `json:"room" yaml:"room"`
	Root       *tree.Node         `json:"root" yaml:"root"`
	OpenFiles  []tree.ID          `json:"openFiles,omitempty" yaml:"openFiles,omitempty"`
	ActiveFile tree.ID            `json:"activeFile,omitempty" yaml:"activeFile,omitempty"`
	Drafts     map[tree.ID]string `json:"drafts,omitempty" yaml:"drafts,omitempty"`
	Retired    []tree.ID          `json:"retired,omitempty" yaml:"retired,omitempty"`
}

// Snapshot captures the tree and tab state.
func (w *Workspace) Snapshot() *Snapshot {
	s := &Snapshot{
		Room:       w.Room,
		Root:       w.tree.Snapshot(),
		OpenFiles:  w.OpenFiles(),
		ActiveFile: w.active,
		Retired:    w.tree.Retired(),
	}
	if len(w.drafts) > 0 {
		s.Drafts = make(map[tree.ID]string, len(w.drafts))
		for id, d := range w.drafts {
			s.Drafts[id] = d
		}
	}
	return s
}

// Restore rebuilds a workspace from a snapshot. Tab state that no longer
// matches the tree is repaired and logged rather than rejected; a broken
// tree is an error.
func Restore(s *Snapshot, logger logrus.FieldLogger) (*Workspace, error) {
	if s == nil {
		return nil, fmt.Errorf("restore: nil snapshot")
	}
	if err := ValidateRoomName(s.Room); err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}

	w := New(s.Room, logger)
	if s.Root != nil {
		t, err := tree.FromSnapshot(s.Root)
		if err != nil {
			return nil, fmt.Errorf("restore room %s: %w", s.Room, err)
		}
		w.tree = t
	}
	w.tree.Retire(s.Retired...)

	for _, id := range s.OpenFiles {
		if indexOf(w.open, id) < 0 {
			w.open = append(w.open, id)
		}
	}
	w.active = s.ActiveFile
	for id, d := range s.Drafts {
		w.drafts[id] = d
	}
	w.reconcile()
	return w, nil
}

// EncodeYAML writes a snapshot as YAML.
func EncodeYAML(out io.Writer, s *Snapshot) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return enc.Close()
}

// DecodeYAML reads a snapshot written by EncodeYAML.
func DecodeYAML(in io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.NewDecoder(in).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}
