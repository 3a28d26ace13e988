// Package collab applies file-system events broadcast by other members of a
// room to the local workspace.
package collab

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/mattsolo1/grove-codecollab/pkg/tree"
)

// Type names an event on the wire.
type Type string

const (
	FileUpdated      Type = "file-updated"
	FileCreated      Type = "file-created"
	DirectoryCreated Type = "directory-created"
	FileRenamed      Type = "file-renamed"
	DirectoryRenamed Type = "directory-renamed"
	FileDeleted      Type = "file-deleted"
	DirectoryDeleted Type = "directory-deleted"
	NodeMoved        Type = "node-moved"
)

var (
	ErrUnknownType = errors.New("unknown event type")
	ErrBadPayload  = errors.New("malformed event payload")
)

// Event is one message as it travels between peers.
type Event struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type FileUpdatedPayload struct {
	FileID     tree.ID `json:"fileId"`
	NewContent string  `json:"newContent"`
}

type FileCreatedPayload struct {
	ParentDirID tree.ID    `json:"parentDirId"`
	NewFile     *tree.Node `json:"newFile"`
}

type DirectoryCreatedPayload struct {
	ParentDirID  tree.ID    `json:"parentDirId"`
	NewDirectory *tree.Node `json:"newDirectory"`
}

// RenamedPayload serves both file-renamed and directory-renamed.
type RenamedPayload struct {
	ID      tree.ID `json:"id"`
	NewName string  `json:"newName"`
}

// DeletedPayload serves both file-deleted and directory-deleted.
type DeletedPayload struct {
	ID tree.ID `json:"id"`
}

type MovedPayload struct {
	ID          tree.ID `json:"id"`
	NewParentID tree.ID `json:"newParentId"`
}

// NewEvent encodes payload into an event of type t.
func NewEvent(t Type, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s: %w", t, err)
	}
	return Event{Type: t, Payload: raw}, nil
}

// Decode reads the payload into v.
func (e Event) Decode(v interface{}) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("%s: %w: empty payload", e.Type, ErrBadPayload)
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("%s: %w: %v", e.Type, ErrBadPayload, err)
	}
	return nil
}

// ReadEvents decodes newline-delimited JSON events. Blank lines are ignored.
func ReadEvents(r io.Reader) ([]Event, error) {
	var events []Event
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(b, &ev); err != nil {
			return events, fmt.Errorf("line %d: %w: %v", line, ErrBadPayload, err)
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return events, fmt.Errorf("read events: %w", err)
	}
	return events, nil
}

// WriteEvents writes events as newline-delimited JSON.
func WriteEvents(w io.Writer, events []Event) error {
	enc := json.NewEncoder(w)
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return fmt.Errorf("write %s: %w", ev.Type, err)
		}
	}
	return nil
}
