package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mattsolo1/grove-codecollab/pkg/export"
)

// Index manages the search index over room files
type Index struct {
	db     *sql.DB
	useFTS bool
}

// Match is one file that matched a query
type Match struct {
	Room    string `json:"room"`
	Path    string `json:"path"`
	Snippet string `json:"snippet"`
}

// NewIndex creates a new search index
func NewIndex(dbPath string) (*Index, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	idx := &Index{db: db}
	if err := idx.init(); err != nil {
		db.Close()
		return nil, err
	}

	return idx, nil
}

// init creates the database schema
func (idx *Index) init() error {
	idx.useFTS = idx.checkFTS5Support()

	schema := `
	CREATE TABLE IF NOT EXISTS files (
		room TEXT NOT NULL,
		path TEXT NOT NULL,
		content TEXT,
		PRIMARY KEY (room, path)
	);

	CREATE INDEX IF NOT EXISTS idx_files_room ON files(room);
	`
	if _, err := idx.db.Exec(schema); err != nil {
		return err
	}

	if idx.useFTS {
		ftsSchema := `
		CREATE VIRTUAL TABLE IF NOT EXISTS files_fts USING fts5(
			room UNINDEXED,
			path,
			content,
			tokenize = 'porter unicode61'
		);
		`
		if _, err := idx.db.Exec(ftsSchema); err != nil {
			// If FTS creation fails, disable FTS and continue
			idx.useFTS = false
		}
	}

	return nil
}

// checkFTS5Support checks if the FTS5 module is compiled in
func (idx *Index) checkFTS5Support() bool {
	_, err := idx.db.Exec("CREATE VIRTUAL TABLE IF NOT EXISTS fts5_test USING fts5(content)")
	if err != nil {
		return false
	}
	_, _ = idx.db.Exec("DROP TABLE IF EXISTS fts5_test")
	return true
}

// FullText reports whether queries run against FTS5.
func (idx *Index) FullText() bool {
	return idx.useFTS
}

// IndexRoom replaces the indexed files of room with entries
func (idx *Index) IndexRoom(room string, entries []export.Entry) error {
	tx, err := idx.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := deleteRoom(tx, room, idx.useFTS); err != nil {
		return err
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := tx.Exec("INSERT INTO files (room, path, content) VALUES (?, ?, ?)", room, e.Path, e.Content); err != nil {
			return fmt.Errorf("index %s: %w", e.Path, err)
		}
		if idx.useFTS {
			if _, err := tx.Exec("INSERT INTO files_fts (room, path, content) VALUES (?, ?, ?)", room, e.Path, e.Content); err != nil {
				return fmt.Errorf("index %s: %w", e.Path, err)
			}
		}
	}

	return tx.Commit()
}

func deleteRoom(tx *sql.Tx, room string, fts bool) error {
	if fts {
		if _, err := tx.Exec("DELETE FROM files_fts WHERE room = ?", room); err != nil {
			return err
		}
	}
	_, err := tx.Exec("DELETE FROM files WHERE room = ?", room)
	return err
}

// Options for searching
type Options struct {
	Room  string
	Limit int
}

// Search finds files whose path or content matches query
func (idx *Index) Search(query string, opts *Options) ([]Match, error) {
	if opts == nil {
		opts = &Options{}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	if idx.useFTS {
		return idx.searchWithFTS(query, opts.Room, limit)
	}
	return idx.searchWithoutFTS(query, opts.Room, limit)
}

// ftsPhrase quotes query so punctuation is not read as FTS syntax.
func ftsPhrase(query string) string {
	return `"` + strings.ReplaceAll(query, `"`, `""`) + `"`
}

func (idx *Index) searchWithFTS(query, room string, limit int) ([]Match, error) {
	where := "files_fts MATCH ?"
	args := []any{ftsPhrase(query)}
	if room != "" {
		where += " AND room = ?"
		args = append(args, room)
	}
	args = append(args, limit)

	rows, err := idx.db.Query(fmt.Sprintf(`
		SELECT room, path, snippet(files_fts, 2, '[', ']', '...', 16)
		FROM files_fts
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.Room, &m.Path, &m.Snippet); err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

func (idx *Index) searchWithoutFTS(query, room string, limit int) ([]Match, error) {
	pattern := "%" + strings.ReplaceAll(query, " ", "%") + "%"
	where := "(path LIKE ? OR content LIKE ?)"
	args := []any{pattern, pattern}
	if room != "" {
		where += " AND room = ?"
		args = append(args, room)
	}
	args = append(args, limit)

	rows, err := idx.db.Query(fmt.Sprintf(`
		SELECT room, path, content
		FROM files
		WHERE %s
		ORDER BY room, path
		LIMIT ?
	`, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Match
	for rows.Next() {
		var m Match
		var content sql.NullString
		if err := rows.Scan(&m.Room, &m.Path, &content); err != nil {
			return nil, err
		}
		m.Snippet = snippet(content.String, query, 32)
		results = append(results, m)
	}
	return results, rows.Err()
}

// snippet cuts up to width bytes of context around the first
// case-insensitive occurrence of query, marking the hit like FTS does.
func snippet(content, query string, width int) string {
	lc, lq := strings.ToLower(content), strings.ToLower(query)
	var i int
	if len(lc) == len(content) && len(lq) == len(query) {
		i = strings.Index(lc, lq)
	} else {
		i = strings.Index(content, query)
	}
	if i < 0 || len(query) == 0 {
		return ""
	}
	start, end := i-width, i+len(query)+width
	prefix, suffix := "...", "..."
	if start <= 0 {
		start, prefix = 0, ""
	}
	if end >= len(content) {
		end, suffix = len(content), ""
	}
	for start > 0 && !utf8.RuneStart(content[start]) {
		start--
	}
	for end < len(content) && !utf8.RuneStart(content[end]) {
		end++
	}
	hit := content[i : i+len(query)]
	out := prefix + content[start:i] + "[" + hit + "]" + content[i+len(query):end] + suffix
	return strings.ReplaceAll(out, "\n", " ")
}

// RemoveRoom drops every indexed file of room
func (idx *Index) RemoveRoom(room string) error {
	tx, err := idx.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := deleteRoom(tx, room, idx.useFTS); err != nil {
		return err
	}
	return tx.Commit()
}

// Close closes the index
func (idx *Index) Close() error {
	return idx.db.Close()
}
