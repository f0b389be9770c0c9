package dirtree

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentic-research/sitetree/api"
	"github.com/agentic-research/sitetree/internal/outline"
)

// Materializer writes an outline into a directory tree.
//
// Headlines with a period are files, headlines starting with the flatten
// marker are skipped over, anything else is a directory. This means
// directory names cannot contain periods and file names must contain one.
type Materializer struct {
	fs     billy.Filesystem
	cfg    api.Config
	codec  outline.Codec
	logger *slog.Logger
}

// NewMaterializer creates a materializer over fs. A nil logger uses
// slog.Default().
func NewMaterializer(fs billy.Filesystem, cfg api.Config, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{
		fs:     fs,
		cfg:    cfg,
		codec:  outline.NewCodec(cfg),
		logger: logger,
	}
}

// job is an outline node waiting to be written under dir.
type job struct {
	dir   string
	node  *outline.Node
	depth int
}

// Materialize removes root, recreates it empty and writes o into it.
// The first filesystem error aborts the write; nothing is rolled back.
func (m *Materializer) Materialize(root string, o outline.Outline) error {
	if err := util.RemoveAll(m.fs, root); err != nil {
		return &IoError{Op: "remove", Path: root, Err: err}
	}
	if err := m.fs.MkdirAll(root, 0o755); err != nil {
		return &IoError{Op: "mkdir", Path: root, Err: err}
	}

	var files int
	stack := pushReversed(nil, root, o, 1)
	for len(stack) > 0 {
		j := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if m.cfg.MaxDepth > 0 && j.depth > m.cfg.MaxDepth {
			return fmt.Errorf("%s: %w", j.dir, ErrTooDeep)
		}

		head := j.node.Headline
		switch Classify(head) {
		case KindFile:
			path, err := m.join(root, j.dir, head)
			if err != nil {
				return err
			}
			if err := m.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return &IoError{Op: "mkdir", Path: filepath.Dir(path), Err: err}
			}
			content := m.codec.Render(j.node.Children)
			if err := util.WriteFile(m.fs, path, []byte(content), 0o644); err != nil {
				return &IoError{Op: "write", Path: path, Err: err}
			}
			files++

		case KindFlatten:
			stack = pushReversed(stack, j.dir, j.node.Children, j.depth+1)

		case KindDir:
			path, err := m.join(root, j.dir, head)
			if err != nil {
				return err
			}
			if err := m.fs.MkdirAll(path, 0o755); err != nil {
				return &IoError{Op: "mkdir", Path: path, Err: err}
			}
			stack = pushReversed(stack, path, j.node.Children, j.depth+1)
		}
	}

	m.logger.Debug("materialized outline", slog.String("root", root), slog.Int("files", files))
	return nil
}

// MaterializeText parses outline text and materializes it under root.
func (m *Materializer) MaterializeText(root, text string) error {
	o, err := m.codec.Parse(text)
	if err != nil {
		return err
	}
	return m.Materialize(root, o)
}

// join appends a headline to dir, rejecting results outside root.
func (m *Materializer) join(root, dir, head string) (string, error) {
	path := m.fs.Join(dir, head)
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &IoError{Op: "join", Path: path, Err: ErrEscapesRoot}
	}
	return path, nil
}

// pushReversed pushes nodes so that they pop in document order. Document
// order matters: a later file overwrites an earlier one of the same name.
func pushReversed(stack []job, dir string, nodes outline.Outline, depth int) []job {
	for i := len(nodes) - 1; i >= 0; i-- {
		stack = append(stack, job{dir: dir, node: &nodes[i], depth: depth})
	}
	return stack
}

// WriteDirectory materializes o at path on the OS filesystem with the
// default configuration.
func WriteDirectory(path string, o outline.Outline) error {
	fs, root, err := OpenOS(path)
	if err != nil {
		return err
	}
	return NewMaterializer(fs, api.DefaultConfig(), nil).Materialize(root, o)
}
