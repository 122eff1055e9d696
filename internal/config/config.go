// Package config loads aurora.json project settings and applies the
// AURORA_* environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Masterminds/semver/v3"

	"github.com/aurora-lang/aurora/internal/diagnostic"
)

// DefaultFile is the project configuration file name.
const DefaultFile = "aurora.json"

// Environment variables that override the file.
const (
	EnvStdlibDir     = "AURORA_STDLIB_DIR"
	EnvStdlibVersion = "AURORA_STDLIB_VERSION"
	EnvColor         = "AURORA_COLOR"
	EnvDebug         = "AURORA_DEBUG"
)

// ProjectConfig is the content of aurora.json.
type ProjectConfig struct {
	ModuleName    string `json:"module_name,omitempty"`
	StdlibDir     string `json:"stdlib_dir,omitempty"`
	StdlibVersion string `json:"stdlib_version,omitempty"`
	Color         string `json:"color,omitempty"`
	Verbose       bool   `json:"verbose,omitempty"`
	Debug         bool   `json:"debug,omitempty"`
}

// Default returns the settings used when no file exists.
func Default() *ProjectConfig {
	return &ProjectConfig{Color: string(diagnostic.ColorAuto)}
}

// Load reads path and applies environment overrides. A missing file yields
// the defaults.
func Load(path string) (*ProjectConfig, error) {
	config := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		// stdlib_dir is relative to the file that names it.
		if config.StdlibDir != "" && !filepath.IsAbs(config.StdlibDir) {
			config.StdlibDir = filepath.Join(filepath.Dir(path), config.StdlibDir)
		}
	}

	if err := config.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *ProjectConfig) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvStdlibDir); ok && v != "" {
		c.StdlibDir = v
	}
	if v, ok := lookup(EnvStdlibVersion); ok && v != "" {
		c.StdlibVersion = v
	}
	if v, ok := lookup(EnvColor); ok && v != "" {
		c.Color = v
	}
	if v, ok := lookup(EnvDebug); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDebug, err)
		}
		c.Debug = debug
	}
	return nil
}

// Validate checks the stdlib version constraint and the color mode.
func (c *ProjectConfig) Validate() error {
	if c.StdlibVersion != "" {
		if _, err := semver.NewConstraint(c.StdlibVersion); err != nil {
			return fmt.Errorf("stdlib_version %q: %w", c.StdlibVersion, err)
		}
	}

	if _, err := diagnostic.ParseColorMode(c.Color); err != nil {
		return fmt.Errorf("color: %w", err)
	}

	return nil
}

// ColorMode returns the configured color mode, auto when unset or invalid.
func (c *ProjectConfig) ColorMode() diagnostic.ColorMode {
	mode, err := diagnostic.ParseColorMode(c.Color)
	if err != nil {
		return diagnostic.ColorAuto
	}
	return mode
}

// Save writes the configuration as indented JSON.
func (c *ProjectConfig) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Init writes a default configuration for the project in path's directory.
// It refuses to overwrite an existing file.
func Init(path string) (*ProjectConfig, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("configuration file already exists: %s", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	config := Default()
	config.ModuleName = filepath.Base(filepath.Dir(abs))
	config.StdlibVersion = "^1.0"

	if err := config.Save(path); err != nil {
		return nil, err
	}

	return config, nil
}
