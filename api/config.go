package api

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Epoch is the fallback timestamp for items that carry no date at all.
const Epoch = "1970-01-01T00:00:00Z"

// ErrOutputOverlap is returned when the output directory is the source
// directory or one of them contains the other.
var ErrOutputOverlap = errors.New("output must not overlap source")

// Config is the explicit configuration shared by the outline codec, the
// directory reader and the directory materializer.
type Config struct {
	// IndentUnit is the number of spaces per outline depth level.
	IndentUnit int `hcl:"indent_unit,optional" json:"indent_unit"`
	// Extensions lists the file extensions (without the dot) the directory
	// reader will load. Everything else is skipped.
	Extensions []string `hcl:"extensions,optional" json:"extensions"`
	// KeepExtensions makes the reader use full file names as headlines
	// instead of stems, so that a tree read and materialized without any
	// transform in between keeps its file names.
	KeepExtensions bool `hcl:"keep_extensions,optional" json:"keep_extensions"`
	// MaxDepth bounds the nesting depth of parsed text and walked directories.
	MaxDepth int `hcl:"max_depth,optional" json:"max_depth"`
	// Epoch is the date string used when an item has no date.
	Epoch string `hcl:"epoch,optional" json:"epoch"`

	// Source is the site data directory.
	Source string `hcl:"source,optional" json:"source"`
	// Output is the directory that gets wiped and rewritten on build.
	Output string `hcl:"output,optional" json:"output"`
	// Static is copied over Output after materialization. Optional.
	Static string `hcl:"static,optional" json:"static,omitempty"`
	// Hierarchy is the outline file holding the topic hierarchy. Optional.
	Hierarchy string `hcl:"hierarchy,optional" json:"hierarchy,omitempty"`
}

// DefaultConfig returns the stock configuration: two-space indent,
// .idm and .md files, site/ -> public/ with static/ assets.
func DefaultConfig() Config {
	return Config{
		IndentUnit: 2,
		Extensions: []string{"idm", "md"},
		MaxDepth:   256,
		Epoch:      Epoch,
		Source:     "site",
		Output:     "public",
		Static:     "static",
	}
}

// AllowsExtension reports whether a file with extension ext (with or
// without the leading dot) should be read.
func (c Config) AllowsExtension(ext string) bool {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return false
	}
	for _, e := range c.Extensions {
		if strings.TrimPrefix(e, ".") == ext {
			return true
		}
	}
	return false
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	var errs []error
	if c.IndentUnit < 1 {
		errs = append(errs, fmt.Errorf("indent_unit must be positive, got %d", c.IndentUnit))
	}
	if c.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth))
	}
	if len(c.Extensions) == 0 {
		errs = append(errs, errors.New("extensions must not be empty"))
	}
	if err := CheckOutput(c.Source, c.Output); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// CheckOutput returns ErrOutputOverlap when wiping output would touch
// source. Paths are compared cleaned and absolute; empty paths never
// overlap.
func CheckOutput(source, output string) error {
	if source == "" || output == "" {
		return nil
	}
	src, err := filepath.Abs(source)
	if err != nil {
		return fmt.Errorf("source %q: %w", source, err)
	}
	out, err := filepath.Abs(output)
	if err != nil {
		return fmt.Errorf("output %q: %w", output, err)
	}
	if within(src, out) || within(out, src) {
		return fmt.Errorf("%w: output %q, source %q", ErrOutputOverlap, output, source)
	}
	return nil
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// NormalizeDate fills in a partial date ("1984" or "1984-03") from Epoch so
// that it becomes a full timestamp.
func (c Config) NormalizeDate(partial string) string {
	epoch := c.Epoch
	if epoch == "" {
		epoch = Epoch
	}
	if len(partial) >= len(epoch) {
		return partial
	}
	return partial + epoch[len(partial):]
}
