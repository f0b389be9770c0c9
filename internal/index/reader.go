package index

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// DB is a read handle on an index written by Writer.
type DB struct {
	db *sql.DB
}

// Open opens an existing index.
func Open(dbPath string) (*DB, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// CountNodes returns the number of rows of the given kind, or of all rows
// when kind is empty.
func (d *DB) CountNodes(kind string) (int, error) {
	var n int
	var err error
	if kind == "" {
		err = d.db.QueryRow("SELECT COUNT(*) FROM nodes").Scan(&n)
	} else {
		err = d.db.QueryRow("SELECT COUNT(*) FROM nodes WHERE kind = ?", kind).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("count nodes: %w", err)
	}
	return n, nil
}

// Files returns the path of every file node, sorted.
func (d *DB) Files() ([]string, error) {
	return d.strings("SELECT path FROM nodes WHERE kind = 'file' ORDER BY path")
}

// Topics returns the topics recorded for tag, sorted.
func (d *DB) Topics(tag string) ([]string, error) {
	return d.strings("SELECT topic FROM topics WHERE tag = ? ORDER BY topic", tag)
}

// Content returns the outline text of the file node at path, rendered with
// unit-space indentation relative to the file.
func (d *DB) Content(path string, unit int) (string, error) {
	var id, depth int64
	err := d.db.QueryRow("SELECT id, depth FROM nodes WHERE kind = 'file' AND path = ? ORDER BY id DESC LIMIT 1", path).Scan(&id, &depth)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("file %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("file %s: %w", path, err)
	}

	rows, err := d.db.Query(`
		WITH RECURSIVE sub(id, depth, sort_key) AS (
			SELECT id, depth, printf('%010d', position) FROM nodes WHERE parent_id = ?
			UNION ALL
			SELECT n.id, n.depth, sub.sort_key || '.' || printf('%010d', n.position)
			FROM nodes n JOIN sub ON n.parent_id = sub.id
		)
		SELECT n.headline, sub.depth FROM sub JOIN nodes n ON n.id = sub.id
		ORDER BY sub.sort_key
	`, id)
	if err != nil {
		return "", fmt.Errorf("content %s: %w", path, err)
	}
	defer func() { _ = rows.Close() }()

	var out []byte
	for rows.Next() {
		var headline string
		var lineDepth int64
		if err := rows.Scan(&headline, &lineDepth); err != nil {
			return "", err
		}
		for i := int64(0); i < (lineDepth-depth-1)*int64(unit); i++ {
			out = append(out, ' ')
		}
		out = append(out, headline...)
		out = append(out, '\n')
	}
	return string(out), rows.Err()
}

func (d *DB) strings(query string, args ...any) ([]string, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
