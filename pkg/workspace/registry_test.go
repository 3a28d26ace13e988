package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewRegistry(t *testing.T) {
	tmpDir := t.TempDir()
	dataDir := filepath.Join(tmpDir, "data")

	reg, err := NewRegistry(dataDir, nil)
	if err != nil {
		t.Fatalf("Failed to create registry: %v", err)
	}
	defer reg.Close()

	if reg.dataDir != dataDir {
		t.Errorf("Expected dataDir %s, got %s", dataDir, reg.dataDir)
	}

	// Check if database file was created
	dbFile := filepath.Join(dataDir, "rooms.db")
	if _, err := os.Stat(dbFile); os.IsNotExist(err) {
		t.Error("Expected database file to be created")
	}
}

func TestSaveAndLoadRoom(t *testing.T) {
	reg, err := NewRegistry(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Failed to create registry: %v", err)
	}
	defer reg.Close()

	w := New("pairing", nil)
	src, _ := w.CreateDirectory(w.Tree().Root(), "src")
	a, _ := w.CreateFile(src, "a.js")
	w.UpdateFileContent(a, "console.log(1)")
	w.OpenFile(a)

	if err := reg.Save(w); err != nil {
		t.Fatalf("Failed to save room: %v", err)
	}

	loaded, err := reg.Load("pairing")
	if err != nil {
		t.Fatalf("Failed to load room: %v", err)
	}

	path, err := loaded.Tree().PathOf(a)
	if err != nil {
		t.Fatalf("Loaded room lost file id: %v", err)
	}
	if path != "src/a.js" {
		t.Errorf("Expected path src/a.js, got %s", path)
	}
	if active, _ := loaded.Active(); active != a {
		t.Errorf("Expected active file %s, got %s", a, active)
	}

	// Test Load non-existent
	_, err = reg.Load("non-existent")
	if !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("Expected ErrRoomNotFound, got %v", err)
	}
}

func TestSaveKeepsCreationTime(t *testing.T) {
	reg, err := NewRegistry(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Failed to create registry: %v", err)
	}
	defer reg.Close()

	w := New("room", nil)
	if err := reg.Save(w); err != nil {
		t.Fatalf("Failed to save room: %v", err)
	}
	first, err := reg.List()
	if err != nil || len(first) != 1 {
		t.Fatalf("Expected one room, got %v (%v)", first, err)
	}

	if _, err := w.CreateFile(w.Tree().Root(), "x.txt"); err != nil {
		t.Fatal(err)
	}
	if err := reg.Save(w); err != nil {
		t.Fatalf("Failed to re-save room: %v", err)
	}

	second, err := reg.List()
	if err != nil || len(second) != 1 {
		t.Fatalf("Expected one room after update, got %v (%v)", second, err)
	}
	if !second[0].CreatedAt.Equal(first[0].CreatedAt) {
		t.Errorf("Creation time changed from %v to %v", first[0].CreatedAt, second[0].CreatedAt)
	}
	if second[0].Files != 1 {
		t.Errorf("Expected 1 file, got %d", second[0].Files)
	}
}

func TestListAndRemoveRooms(t *testing.T) {
	reg, err := NewRegistry(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Failed to create registry: %v", err)
	}
	defer reg.Close()

	for _, name := range []string{"one", "two"} {
		if err := reg.Save(New(name, nil)); err != nil {
			t.Fatalf("Failed to save room %s: %v", name, err)
		}
	}

	rooms, err := reg.List()
	if err != nil {
		t.Fatalf("Failed to list rooms: %v", err)
	}
	if len(rooms) != 2 {
		t.Errorf("Expected 2 rooms, got %d", len(rooms))
	}

	if err := reg.Remove("one"); err != nil {
		t.Fatalf("Failed to remove room: %v", err)
	}
	if ok, _ := reg.Exists("one"); ok {
		t.Error("Room still exists after removal")
	}
	if err := reg.Remove("one"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("Expected ErrRoomNotFound removing twice, got %v", err)
	}
}

func TestSaveRejectsInvalidRoom(t *testing.T) {
	reg, err := NewRegistry(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Failed to create registry: %v", err)
	}
	defer reg.Close()

	if err := reg.Save(New("", nil)); !errors.Is(err, ErrInvalidRoom) {
		t.Errorf("Expected ErrInvalidRoom, got %v", err)
	}
}
