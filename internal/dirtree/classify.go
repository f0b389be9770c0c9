// Package dirtree maps directory trees to outline text and materializes
// outlines back onto a filesystem.
package dirtree

import "strings"

// Kind is how the materializer treats an outline node.
type Kind int

const (
	// KindDir creates a directory (possibly several segments deep) and
	// descends into it.
	KindDir Kind = iota
	// KindFile writes the node's rendered children as file content.
	KindFile
	// KindFlatten descends into the children without adding a path segment.
	KindFlatten
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindFlatten:
		return "flatten"
	default:
		return "dir"
	}
}

// FlattenMarker prefixes headlines that vanish from the output path.
const FlattenMarker = "_"

// Classify decides a node's kind from its headline. A period makes it a
// file, even when the headline also starts with the flatten marker.
func Classify(headline string) Kind {
	switch {
	case strings.Contains(headline, "."):
		return KindFile
	case strings.HasPrefix(headline, FlattenMarker):
		return KindFlatten
	default:
		return KindDir
	}
}

// Entry is a directory listing entry as seen by the reader.
type Entry struct {
	Name  string
	IsDir bool
	// Stem and Ext are set for files only. Ext has no leading dot.
	Stem string
	Ext  string
}

// NewEntry classifies a listing entry. A dotfile with no further period
// (".gitignore") has no extension.
func NewEntry(name string, isDir bool) Entry {
	e := Entry{Name: name, IsDir: isDir}
	if isDir {
		return e
	}
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		e.Stem = name
		return e
	}
	e.Stem = name[:i]
	e.Ext = name[i+1:]
	return e
}
