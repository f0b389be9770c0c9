// Package index writes a site outline and its topic closure into a SQLite
// database, so a built site can be inspected with plain SQL.
//
// Schema:
//
//	nodes(id, parent_id, position, depth, headline, kind, path)
//	topics(tag, topic)
//
// kind is "dir", "file" or "flatten" for nodes the materializer acts on and
// "content" for lines inside a file. path is the slash-separated location
// the materializer would give a dir or file node, and NULL otherwise.
package index

import (
	"database/sql"
	"fmt"
	"log/slog"
	"path"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/agentic-research/sitetree/internal/dirtree"
	"github.com/agentic-research/sitetree/internal/outline"
	"github.com/agentic-research/sitetree/internal/topic"
)

// KindContent marks a node that is a line of file content.
const KindContent = "content"

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id INTEGER PRIMARY KEY,
	parent_id INTEGER,
	position INTEGER NOT NULL,
	depth INTEGER NOT NULL,
	headline TEXT NOT NULL,
	kind TEXT NOT NULL,
	path TEXT
);

CREATE TABLE IF NOT EXISTS topics (
	tag TEXT,
	topic TEXT,
	PRIMARY KEY (tag, topic)
) WITHOUT ROWID;
`

// Writer bulk-loads outlines into a fresh database.
type Writer struct {
	db        *sql.DB
	tx        *sql.Tx
	stmtNode  *sql.Stmt
	stmtTopic *sql.Stmt
	batchSize int
	count     int
	nextID    int64
	logger    *slog.Logger
	mu        sync.Mutex
}

// NewWriter opens (or creates) the database at dbPath and prepares the
// schema. A nil logger uses slog.Default().
func NewWriter(dbPath string, logger *slog.Logger) (*Writer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	for _, pragma := range []string{"PRAGMA synchronous = OFF", "PRAGMA journal_mode = MEMORY"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	var maxID sql.NullInt64
	if err := db.QueryRow("SELECT MAX(id) FROM nodes").Scan(&maxID); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("read max id: %w", err)
	}

	w := &Writer{
		db:        db,
		batchSize: 10000,
		nextID:    maxID.Int64 + 1,
		logger:    logger,
	}
	if err := w.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) beginTx() error {
	var err error
	w.tx, err = w.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	w.stmtNode, err = w.tx.Prepare(`
		INSERT INTO nodes (id, parent_id, position, depth, headline, kind, path)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare nodes: %w", err)
	}
	w.stmtTopic, err = w.tx.Prepare(`INSERT OR IGNORE INTO topics (tag, topic) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare topics: %w", err)
	}
	return nil
}

func (w *Writer) closeStmts() {
	if w.stmtNode != nil {
		_ = w.stmtNode.Close()
	}
	if w.stmtTopic != nil {
		_ = w.stmtTopic.Close()
	}
}

func (w *Writer) commitTx() error {
	w.closeStmts()
	if err := w.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// step counts one insert and rolls the transaction over every batchSize
// inserts.
func (w *Writer) step() error {
	w.count++
	if w.count < w.batchSize {
		return nil
	}
	w.count = 0
	if err := w.commitTx(); err != nil {
		return err
	}
	return w.beginTx()
}

// frame is a node waiting to be inserted.
type frame struct {
	node     *outline.Node
	parentID sql.NullInt64
	position int
	depth    int
	dir      string
	inFile   bool
}

// AddOutline inserts every node of o in document order and returns the
// number of rows written. Node ids continue from the largest id already
// in the database.
func (w *Writer) AddOutline(o outline.Outline) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	stack := pushFrames(nil, o, sql.NullInt64{}, 1, "", false)
	written := 0
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		id := w.nextID
		w.nextID++

		kind := KindContent
		var p sql.NullString
		dir := f.dir
		if !f.inFile {
			k := dirtree.Classify(f.node.Headline)
			kind = k.String()
			switch k {
			case dirtree.KindFile, dirtree.KindDir:
				dir = path.Join(f.dir, f.node.Headline)
				p = sql.NullString{String: dir, Valid: true}
			}
		}

		if _, err := w.stmtNode.Exec(id, f.parentID, f.position, f.depth, f.node.Headline, kind, p); err != nil {
			return written, fmt.Errorf("insert node %q: %w", f.node.Headline, err)
		}
		written++
		if err := w.step(); err != nil {
			return written, err
		}

		inFile := f.inFile || kind == dirtree.KindFile.String()
		stack = pushFrames(stack, f.node.Children, sql.NullInt64{Int64: id, Valid: true}, f.depth+1, dir, inFile)
	}

	w.logger.Debug("indexed outline", slog.Int("nodes", written))
	return written, nil
}

func pushFrames(stack []frame, nodes outline.Outline, parent sql.NullInt64, depth int, dir string, inFile bool) []frame {
	for i := len(nodes) - 1; i >= 0; i-- {
		stack = append(stack, frame{
			node:     &nodes[i],
			parentID: parent,
			position: i,
			depth:    depth,
			dir:      dir,
			inFile:   inFile,
		})
	}
	return stack
}

// AddClosure inserts one row per (tag, topic) pair of c and returns the
// number of pairs.
func (w *Writer) AddClosure(c *topic.Closure) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	written := 0
	for _, tag := range c.Tags() {
		for _, t := range c.Topics(tag) {
			if _, err := w.stmtTopic.Exec(tag, t); err != nil {
				return written, fmt.Errorf("insert topic %q/%q: %w", tag, t, err)
			}
			written++
			if err := w.step(); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// Abort rolls back the rows added since the last batch commit and closes
// the database. Batches already committed stay; callers that need an
// all-or-nothing load remove the file afterwards.
func (w *Writer) Abort() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closeStmts()
	if err := w.tx.Rollback(); err != nil {
		_ = w.db.Close()
		return fmt.Errorf("rollback: %w", err)
	}
	return w.db.Close()
}

// Close commits pending rows, builds the lookup indices and closes the
// database.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.commitTx(); err != nil {
		_ = w.db.Close()
		return err
	}
	for _, stmt := range []string{
		`CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_path ON nodes(path)`,
	} {
		if _, err := w.db.Exec(stmt); err != nil {
			w.logger.Warn("index creation failed", slog.String("stmt", stmt), slog.Any("error", err))
		}
	}
	return w.db.Close()
}
