// Package modules resolves Aurora import paths to module sources.
//
// Named imports ("Math", "Collections") are looked up in a versioned stdlib
// manifest. Relative string imports ("./geometry") are resolved against the
// importing file's directory. Loaded modules are parsed once and cached.
package modules

//go:generate mockgen -source=resolver.go -destination=mock_resolver.go -package=modules

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	semver "github.com/Masterminds/semver/v3"
	"golang.org/x/sync/singleflight"

	"github.com/aurora-lang/aurora/internal/ast"
	"github.com/aurora-lang/aurora/internal/parser"
)

// ManifestFile is the name of the manifest at the root of a stdlib tree.
const ManifestFile = "stdlib.json"

// SourceExt is the extension of Aurora source files.
const SourceExt = ".aur"

//go:embed stdlib/*.aur stdlib/stdlib.json
var embedded embed.FS

// ErrNotFound is returned when an import path names no known module.
var ErrNotFound = errors.New("module not found")

// Resolver locates and loads imported modules.
type Resolver interface {
	// IsKnownModule reports whether path can be resolved.
	IsKnownModule(path string) bool
	// Resolve returns the location of path without reading it.
	Resolve(path string) (Location, error)
	// Load reads and parses the module at path.
	Load(ctx context.Context, path string) (*Source, error)
}

// Location identifies where a module lives.
type Location struct {
	// Path is the import path as written.
	Path string
	// File is a path inside the stdlib filesystem, or an OS path for
	// relative imports.
	File string
	// Namespace qualifies the module's declarations, e.g. "math".
	Namespace string
	Stdlib    bool
}

// Source is a loaded module.
type Source struct {
	Program *ast.Program
	Text    string
	Location
}

// Manifest lists the stdlib modules and the version of the stdlib tree.
type Manifest struct {
	Modules map[string]ManifestEntry `json:"modules"`
	Version string                   `json:"version"`
}

// ManifestEntry describes one stdlib module.
type ManifestEntry struct {
	File      string `json:"file"`
	Since     string `json:"since,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

// Option configures a StdlibResolver.
type Option func(*StdlibResolver)

// WithFS reads the stdlib from fsys instead of the embedded copy.
func WithFS(fsys fs.FS) Option {
	return func(r *StdlibResolver) { r.fsys = fsys }
}

// WithDir reads the stdlib from a directory on disk.
func WithDir(dir string) Option {
	return func(r *StdlibResolver) { r.fsys = os.DirFS(dir) }
}

// WithConstraint only accepts a stdlib whose manifest version satisfies
// expr, e.g. "^1.0".
func WithConstraint(expr string) Option {
	return func(r *StdlibResolver) { r.constraintExpr = expr }
}

// WithBaseDir enables relative imports, resolved against dir.
func WithBaseDir(dir string) Option {
	return func(r *StdlibResolver) { r.baseDir = dir }
}

// StdlibResolver resolves stdlib module names and relative file imports.
// It is safe for concurrent use.
type StdlibResolver struct {
	fsys           fs.FS
	version        *semver.Version
	constraint     *semver.Constraints
	modules        map[string]ManifestEntry
	cache          *moduleCache
	constraintExpr string
	baseDir        string
	compatible     bool
}

// moduleCache holds parsed modules keyed by resolved file. It is shared by a
// resolver and every view made with ForDir.
type moduleCache struct {
	mu      sync.RWMutex
	entries map[string]cachedSource
	sf      singleflight.Group
}

// cachedSource remembers the modification time of OS files so an edited
// module is parsed again. Stdlib entries have a zero time.
type cachedSource struct {
	src     *Source
	modTime time.Time
}

// NewStdlibResolver reads the manifest and returns a resolver. A manifest
// whose version does not satisfy the configured constraint is hidden: no
// stdlib module is known, but relative imports still work.
func NewStdlibResolver(opts ...Option) (*StdlibResolver, error) {
	r := &StdlibResolver{
		modules: make(map[string]ManifestEntry),
		cache:   &moduleCache{entries: make(map[string]cachedSource)},
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.fsys == nil {
		sub, err := fs.Sub(embedded, "stdlib")
		if err != nil {
			return nil, fmt.Errorf("embedded stdlib: %w", err)
		}

		r.fsys = sub
	}

	if r.constraintExpr != "" {
		c, err := semver.NewConstraint(r.constraintExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid stdlib version constraint %q: %w", r.constraintExpr, err)
		}

		r.constraint = c
	}

	data, err := fs.ReadFile(r.fsys, ManifestFile)
	if err != nil {
		return nil, fmt.Errorf("read stdlib manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode stdlib manifest: %w", err)
	}

	v, err := semver.NewVersion(m.Version)
	if err != nil {
		return nil, fmt.Errorf("stdlib manifest version %q: %w", m.Version, err)
	}

	r.version = v
	r.compatible = r.constraint == nil || r.constraint.Check(v)

	if !r.compatible {
		return r, nil
	}

	for name, entry := range m.Modules {
		if entry.Since != "" {
			since, err := semver.NewVersion(entry.Since)
			if err != nil {
				return nil, fmt.Errorf("stdlib module %s: since %q: %w", name, entry.Since, err)
			}
			// modules introduced after this tree's version are not available.
			if since.GreaterThan(v) {
				continue
			}
		}

		if entry.Namespace == "" {
			entry.Namespace = strings.ToLower(name)
		}

		r.modules[name] = entry
	}

	return r, nil
}

// Version returns the manifest version.
func (r *StdlibResolver) Version() string {
	return r.version.String()
}

// Compatible reports whether the manifest satisfied the constraint.
func (r *StdlibResolver) Compatible() bool {
	return r.compatible
}

// ForDir returns a resolver for files in dir. It shares the manifest and
// the module cache with r, so a module imported from several files is read
// and parsed once.
func (r *StdlibResolver) ForDir(dir string) *StdlibResolver {
	view := *r
	view.baseDir = dir

	return &view
}

// Modules returns the available stdlib module names, sorted.
func (r *StdlibResolver) Modules() []string {
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func isRelative(p string) bool {
	return strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../") || filepath.IsAbs(p)
}

func (r *StdlibResolver) relativeFile(p string) string {
	file := p
	if filepath.Ext(file) == "" {
		file += SourceExt
	}

	if filepath.IsAbs(file) {
		return filepath.Clean(file)
	}

	return filepath.Join(r.baseDir, file)
}

// IsKnownModule implements Resolver.
func (r *StdlibResolver) IsKnownModule(p string) bool {
	if isRelative(p) {
		if r.baseDir == "" && !filepath.IsAbs(p) {
			return false
		}

		info, err := os.Stat(r.relativeFile(p))

		return err == nil && !info.IsDir()
	}

	_, ok := r.modules[p]

	return ok
}

// Resolve implements Resolver.
func (r *StdlibResolver) Resolve(p string) (Location, error) {
	if !r.IsKnownModule(p) {
		return Location{}, fmt.Errorf("%w: %s", ErrNotFound, p)
	}

	if isRelative(p) {
		file := r.relativeFile(p)
		ns := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

		return Location{Path: p, File: file, Namespace: strings.ToLower(ns)}, nil
	}

	entry := r.modules[p]

	return Location{Path: p, File: path.Clean(entry.File), Namespace: entry.Namespace, Stdlib: true}, nil
}

// Load implements Resolver. Concurrent loads of the same module share one
// read and parse.
func (r *StdlibResolver) Load(ctx context.Context, p string) (*Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loc, err := r.Resolve(p)
	if err != nil {
		return nil, err
	}

	key := cacheKey(loc)
	stamp := modTime(loc)

	if src, ok := r.cache.lookup(key, stamp); ok {
		return withPath(src, p), nil
	}

	v, err, _ := r.cache.sf.Do(key, func() (interface{}, error) {
		var (
			data []byte
			err  error
		)
		if loc.Stdlib {
			data, err = fs.ReadFile(r.fsys, loc.File)
		} else {
			data, err = os.ReadFile(loc.File)
		}

		if err != nil {
			return nil, fmt.Errorf("load module %s: %w", p, err)
		}

		prog, err := parser.ParseSource(loc.File, string(data))
		if err != nil {
			return nil, fmt.Errorf("parse module %s: %w", p, err)
		}

		src := &Source{Location: loc, Text: string(data), Program: prog}

		r.cache.mu.Lock()
		r.cache.entries[key] = cachedSource{src: src, modTime: stamp}
		r.cache.mu.Unlock()

		return src, nil
	})
	if err != nil {
		return nil, err
	}

	return withPath(v.(*Source), p), nil
}

// Cached reports whether the module path resolves to has been loaded and
// is still current.
func (r *StdlibResolver) Cached(p string) bool {
	loc, err := r.Resolve(p)
	if err != nil {
		return false
	}

	_, ok := r.cache.lookup(cacheKey(loc), modTime(loc))

	return ok
}

func (c *moduleCache) lookup(key string, stamp time.Time) (*Source, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || !entry.modTime.Equal(stamp) {
		return nil, false
	}

	return entry.src, true
}

// cacheKey identifies the file behind loc. Relative imports spelled
// differently from different directories share an entry.
func cacheKey(loc Location) string {
	if loc.Stdlib {
		return "stdlib:" + loc.File
	}

	if abs, err := filepath.Abs(loc.File); err == nil {
		return abs
	}

	return loc.File
}

func modTime(loc Location) time.Time {
	if loc.Stdlib {
		return time.Time{}
	}

	info, err := os.Stat(loc.File)
	if err != nil {
		return time.Time{}
	}

	return info.ModTime()
}

// withPath returns src as seen by an import written as p.
func withPath(src *Source, p string) *Source {
	if src.Path == p {
		return src
	}

	out := *src
	out.Path = p

	return &out
}
