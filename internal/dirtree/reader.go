package dirtree

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"golang.org/x/text/encoding/unicode"

	"github.com/agentic-research/sitetree/api"
	"github.com/agentic-research/sitetree/internal/outline"
)

// Reader dumps a directory tree into a single outline text.
type Reader struct {
	fs     billy.Filesystem
	cfg    api.Config
	codec  outline.Codec
	logger *slog.Logger
}

// NewReader creates a reader over fs. A nil logger uses slog.Default().
func NewReader(fs billy.Filesystem, cfg api.Config, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		fs:     fs,
		cfg:    cfg,
		codec:  outline.NewCodec(cfg),
		logger: logger,
	}
}

// pending is a listing entry waiting to be emitted. depth is 1 for the
// root's own children.
type pending struct {
	path  string
	entry Entry
	depth int
}

// Read walks root and returns its outline text. The root itself has no
// headline. Directories become headlines. Allow-listed files become their
// stem (full name with KeepExtensions) followed by their content lines one
// level deeper, each leading tab adding a further level. Other files are
// skipped.
//
// Entries are visited in name order so output is reproducible.
func (r *Reader) Read(root string) (string, error) {
	var b strings.Builder

	stack, err := r.list(root, 1)
	if err != nil {
		return "", err
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := r.checkDepth(p.path, p.depth); err != nil {
			return "", err
		}

		if p.entry.IsDir {
			r.writeLine(&b, p.depth-1, p.entry.Name)
			children, err := r.list(p.path, p.depth+1)
			if err != nil {
				return "", err
			}
			stack = append(stack, children...)
			continue
		}

		if !r.cfg.AllowsExtension(p.entry.Ext) {
			r.logger.Debug("skipping file", slog.String("path", p.path))
			continue
		}

		lines, err := r.readLines(p.path)
		if err != nil {
			return "", err
		}
		head := p.entry.Stem
		if r.cfg.KeepExtensions {
			head = p.entry.Name
		}
		r.writeLine(&b, p.depth-1, head)
		for _, line := range lines {
			tabs := 0
			for tabs < len(line) && line[tabs] == '\t' {
				tabs++
			}
			if err := r.checkDepth(p.path, p.depth+1+tabs); err != nil {
				return "", err
			}
			r.writeLine(&b, p.depth+tabs, line[tabs:])
		}
	}

	return b.String(), nil
}

// ReadOutline reads root and parses the result back into an Outline.
func (r *Reader) ReadOutline(root string) (outline.Outline, error) {
	text, err := r.Read(root)
	if err != nil {
		return nil, err
	}
	return r.codec.Parse(text)
}

// list returns dir's entries in reverse name order, ready to be pushed on
// the walk stack.
func (r *Reader) list(dir string, depth int) ([]pending, error) {
	infos, err := r.fs.ReadDir(dir)
	if err != nil {
		return nil, &IoError{Op: "readdir", Path: dir, Err: err}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() > infos[j].Name() })

	out := make([]pending, 0, len(infos))
	for _, info := range infos {
		out = append(out, pending{
			path:  r.fs.Join(dir, info.Name()),
			entry: NewEntry(info.Name(), info.IsDir()),
			depth: depth,
		})
	}
	return out, nil
}

func (r *Reader) readLines(path string) ([]string, error) {
	data, err := util.ReadFile(r.fs, path)
	if err != nil {
		return nil, &IoError{Op: "read", Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return nil, &EncodingError{Path: path}
	}
	data, err = unicode.UTF8BOM.NewDecoder().Bytes(data)
	if err != nil {
		return nil, &IoError{Op: "decode", Path: path, Err: err}
	}
	return outline.SplitLines(string(data)), nil
}

func (r *Reader) checkDepth(path string, level int) error {
	if r.cfg.MaxDepth > 0 && level > r.cfg.MaxDepth {
		return fmt.Errorf("%s: level %d: %w", path, level, ErrTooDeep)
	}
	return nil
}

func (r *Reader) writeLine(b *strings.Builder, depth int, text string) {
	b.WriteString(r.codec.Indent(depth))
	b.WriteString(text)
	b.WriteByte('\n')
}

// ReadDirectory reads path from the OS filesystem with the default
// configuration.
func ReadDirectory(path string) (string, error) {
	fs, root, err := OpenOS(path)
	if err != nil {
		return "", err
	}
	return NewReader(fs, api.DefaultConfig(), nil).Read(root)
}

// OpenOS returns an OS filesystem rooted at the parent of path, and the
// name of path within it.
func OpenOS(path string) (billy.Filesystem, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", &IoError{Op: "abs", Path: path, Err: err}
	}
	parent, name := filepath.Split(abs)
	if name == "" {
		return nil, "", &IoError{Op: "open", Path: abs, Err: ErrEscapesRoot}
	}
	return osfs.New(parent), name, nil
}
