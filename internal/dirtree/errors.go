package dirtree

import (
	"errors"
	"fmt"
)

var (
	// ErrTooDeep is returned when a tree nests deeper than the configured
	// maximum depth.
	ErrTooDeep = errors.New("tree exceeds maximum depth")
	// ErrEscapesRoot is returned when a headline would place a file or
	// directory outside the materialization root.
	ErrEscapesRoot = errors.New("path escapes output root")
)

// IoError wraps a filesystem failure with the operation and path involved.
type IoError struct {
	Op   string
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IoError) Unwrap() error {
	return e.Err
}

// EncodingError reports a file whose content is not valid UTF-8 text.
type EncodingError struct {
	Path string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s: content is not valid UTF-8 text", e.Path)
}
