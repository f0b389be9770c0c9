// Package config loads the site configuration from an optional HCL file.
//
//	indent_unit = 2
//	extensions  = ["idm", "md"]
//	source      = "site"
//	output      = "public"
//	static      = "static"
//	hierarchy   = "site/topics.idm"
//
// Every attribute is optional; absent ones keep their defaults. Relative
// paths are resolved against the directory holding the file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/agentic-research/sitetree/api"
)

// FileName is the project config file looked up when no path is given.
const FileName = "sitetree.hcl"

// Loader resolves and decodes the configuration file.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads the config at path. With an empty path it searches for
// FileName in the working directory and its parents, and falls back to
// api.DefaultConfig when none exists. An explicit path must exist.
func (l *Loader) Load(path string) (api.Config, error) {
	if path == "" {
		path = l.findProjectConfig()
		if path == "" {
			l.logger.Debug("no project config found, using defaults")
			cfg := api.DefaultConfig()
			return cfg, cfg.Validate()
		}
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		return api.Config{}, err
	}
	l.logger.Debug("loaded config", slog.String("path", path))

	if err := cfg.Validate(); err != nil {
		return api.Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromFile decodes path over the defaults and resolves its relative
// paths against the file's directory.
func LoadFromFile(path string) (api.Config, error) {
	if _, err := os.Stat(path); err != nil {
		return api.Config{}, fmt.Errorf("config: %w", err)
	}
	cfg := api.DefaultConfig()
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return api.Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for _, p := range []*string{&cfg.Source, &cfg.Output, &cfg.Static, &cfg.Hierarchy} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
	return cfg, nil
}

// findProjectConfig searches for FileName in the working directory and
// its parents.
func (l *Loader) findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
