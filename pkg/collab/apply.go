package collab

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-codecollab/pkg/tree"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

// Outcome reports what Apply did with an event.
type Outcome int

const (
	Applied Outcome = iota
	// Skipped means the event referred to nodes this workspace no longer
	// has, or repeated a create it already applied.
	Skipped
)

func (o Outcome) String() string {
	if o == Skipped {
		return "skipped"
	}
	return "applied"
}

// Applier applies remote events to a workspace.
type Applier struct {
	log logrus.FieldLogger
}

// NewApplier returns an Applier logging to logger, or nowhere when nil.
func NewApplier(logger logrus.FieldLogger) *Applier {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Applier{log: logger}
}

// Apply applies ev with a discarding logger.
func Apply(ws *workspace.Workspace, ev Event) (Outcome, error) {
	return NewApplier(nil).Apply(ws, ev)
}

// Apply applies one event. Stale references are logged and skipped;
// validation failures and malformed events are returned.
func (a *Applier) Apply(ws *workspace.Workspace, ev Event) (Outcome, error) {
	log := a.log.WithFields(logrus.Fields{"room": ws.Room, "event": ev.Type})

	var err error
	switch ev.Type {
	case FileUpdated:
		var p FileUpdatedPayload
		if err := ev.Decode(&p); err != nil {
			return Skipped, err
		}
		if !ws.UpdateFileContent(p.FileID, p.NewContent) {
			log.WithField("id", p.FileID).Warn("update for unknown file skipped")
			return Skipped, nil
		}
		return Applied, nil

	case FileCreated:
		var p FileCreatedPayload
		if err := ev.Decode(&p); err != nil {
			return Skipped, err
		}
		return a.insert(ws, log, p.ParentDirID, p.NewFile, tree.KindFile)

	case DirectoryCreated:
		var p DirectoryCreatedPayload
		if err := ev.Decode(&p); err != nil {
			return Skipped, err
		}
		return a.insert(ws, log, p.ParentDirID, p.NewDirectory, tree.KindDirectory)

	case FileRenamed, DirectoryRenamed:
		var p RenamedPayload
		if err := ev.Decode(&p); err != nil {
			return Skipped, err
		}
		if err = checkKind(ws, p.ID, ev.Type == FileRenamed); err == nil {
			err = ws.Rename(p.ID, p.NewName)
		}
		return settle(log.WithField("id", p.ID), err)

	case FileDeleted, DirectoryDeleted:
		var p DeletedPayload
		if err := ev.Decode(&p); err != nil {
			return Skipped, err
		}
		if err = checkKind(ws, p.ID, ev.Type == FileDeleted); err == nil {
			_, err = ws.Delete(p.ID)
		}
		return settle(log.WithField("id", p.ID), err)

	case NodeMoved:
		var p MovedPayload
		if err := ev.Decode(&p); err != nil {
			return Skipped, err
		}
		return settle(log.WithField("id", p.ID), ws.Move(p.ID, p.NewParentID))
	}
	return Skipped, fmt.Errorf("%w: %q", ErrUnknownType, ev.Type)
}

func (a *Applier) insert(ws *workspace.Workspace, log logrus.FieldLogger, parent tree.ID, n *tree.Node, kind tree.Kind) (Outcome, error) {
	if n == nil {
		return Skipped, fmt.Errorf("%w: missing node", ErrBadPayload)
	}
	if n.Kind == "" {
		n.Kind = kind
	}
	if n.Kind != kind {
		return Skipped, fmt.Errorf("%w: expected %s, got %s", ErrBadPayload, kind, n.Kind)
	}
	if n.ID != "" && ws.Tree().Has(n.ID) {
		log.WithField("id", n.ID).Debug("create already applied")
		return Skipped, nil
	}
	_, err := ws.Insert(parent, n)
	return settle(log.WithField("id", n.ID), err)
}

// checkKind guards typed events against ids of the other kind.
func checkKind(ws *workspace.Workspace, id tree.ID, wantFile bool) error {
	n, ok := ws.Tree().Get(id)
	if !ok {
		return fmt.Errorf("%s: %w", id, tree.ErrNotFound)
	}
	if wantFile && !n.IsFile() {
		return fmt.Errorf("%s: %w", id, tree.ErrNotFile)
	}
	if !wantFile && !n.IsDirectory() {
		return fmt.Errorf("%s: %w", id, tree.ErrNotDirectory)
	}
	return nil
}

func settle(log logrus.FieldLogger, err error) (Outcome, error) {
	switch {
	case err == nil:
		return Applied, nil
	case errors.Is(err, tree.ErrNotFound):
		log.WithError(err).Warn("event for unknown node skipped")
		return Skipped, nil
	default:
		return Skipped, err
	}
}

// Stats counts the outcomes of a replay.
type Stats struct {
	Applied int
	Skipped int
	Failed  int
}

// Replay applies events in order. A failing event does not stop the
// replay; all failures are joined into the returned error.
func (a *Applier) Replay(ws *workspace.Workspace, events []Event) (Stats, error) {
	var st Stats
	var errs []error
	for i, ev := range events {
		out, err := a.Apply(ws, ev)
		switch {
		case err != nil:
			st.Failed++
			errs = append(errs, fmt.Errorf("event %d (%s): %w", i+1, ev.Type, err))
		case out == Skipped:
			st.Skipped++
		default:
			st.Applied++
		}
	}
	return st, errors.Join(errs...)
}
