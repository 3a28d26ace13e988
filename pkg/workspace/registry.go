package workspace

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-codecollab/pkg/tree"
)

// ErrRoomNotFound indicates that no room with the given name is stored.
var ErrRoomNotFound = errors.New("room not found")

// RoomInfo summarizes a stored room.
type RoomInfo struct {
	Name      string    `json:"name" yaml:"name"`
	Files     int       `json:"files" yaml:"files"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Registry persists room snapshots in sqlite.
type Registry struct {
	db      *sql.DB
	dataDir string
	log     logrus.FieldLogger
}

// NewRegistry opens (creating if needed) the room database under dataDir.
func NewRegistry(dataDir string, logger logrus.FieldLogger) (*Registry, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "rooms.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	r := &Registry{
		db:      db,
		dataDir: dataDir,
		log:     logger,
	}

	if err := r.init(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize registry: %w", err)
	}

	return r, nil
}

// init creates the database schema
func (r *Registry) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rooms (
		name TEXT PRIMARY KEY,
		snapshot TEXT NOT NULL,
		file_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_rooms_updated ON rooms(updated_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

func countFiles(root *tree.Node) int {
	n := 0
	_ = tree.Walk(root, func(_ string, node *tree.Node) error {
		if node.IsFile() {
			n++
		}
		return nil
	})
	return n
}

// Save stores the workspace, keeping the room's original creation time.
func (r *Registry) Save(w *Workspace) error {
	if err := ValidateRoomName(w.Room); err != nil {
		return fmt.Errorf("save room: %w", err)
	}

	snap := w.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	query := `
	INSERT INTO rooms (name, snapshot, file_count, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET
		snapshot = excluded.snapshot,
		file_count = excluded.file_count,
		updated_at = excluded.updated_at
	`

	now := time.Now()
	if _, err := r.db.Exec(query, w.Room, string(data), countFiles(snap.Root), now, now); err != nil {
		return fmt.Errorf("save room %s: %w", w.Room, err)
	}
	return nil
}

// Load restores a stored room.
func (r *Registry) Load(name string) (*Workspace, error) {
	var data string
	err := r.db.QueryRow("SELECT snapshot FROM rooms WHERE name = ?", name).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return Restore(&snap, r.log)
}

// Exists reports whether a room is stored.
func (r *Registry) Exists(name string) (bool, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM rooms WHERE name = ?", name).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns all stored rooms, most recently updated first.
func (r *Registry) List() ([]*RoomInfo, error) {
	query := `
	SELECT name, file_count, created_at, updated_at
	FROM rooms ORDER BY updated_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []*RoomInfo
	for rows.Next() {
		info := &RoomInfo{}
		if err := rows.Scan(&info.Name, &info.Files, &info.CreatedAt, &info.UpdatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, info)
	}

	return rooms, rows.Err()
}

// Remove deletes a stored room.
func (r *Registry) Remove(name string) error {
	res, err := r.db.Exec("DELETE FROM rooms WHERE name = ?", name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, name)
	}
	return nil
}

// Close closes the registry database
func (r *Registry) Close() error {
	return r.db.Close()
}
