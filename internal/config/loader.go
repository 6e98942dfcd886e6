package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"mockspec/internal/template"
	"mockspec/pkg/logging"
)

const subsystem = "Config"

// LoadError reports a file that could not be read or parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError checks if an error is a LoadError.
func IsLoadError(err error) bool {
	var lerr *LoadError
	return errors.As(err, &lerr)
}

// Loader reads expectation files and merges them into a Suite.
type Loader struct {
	overrides *Settings
	engine    *template.Engine
}

// NewLoader creates a loader. The non-zero fields of overrides, typically
// command line flags, take precedence over the settings found in files.
func NewLoader(overrides *Settings) *Loader {
	return &Loader{overrides: overrides, engine: template.New()}
}

// Load resolves paths (files, directories or doublestar globs), parses every
// file concurrently and merges the parts in sorted path order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Suite, error) {
	files, err := ResolvePaths(paths...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &LoadError{Path: strings.Join(paths, ", "), Err: errors.New("no expectation files found")}
	}

	parsed := make([]*File, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := ParseFile(path)
			if err != nil {
				return err
			}
			parsed[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	settings := DefaultSettings()
	for _, f := range parsed {
		settings.Merge(f.Settings)
	}
	settings.Merge(l.overrides)
	if err := settings.Validate(); err != nil {
		return nil, &LoadError{Path: strings.Join(files, ", "), Err: err}
	}

	suite := newSuite(settings, files)
	builder := &partBuilder{engine: l.engine, settings: settings}
	for i, f := range parsed {
		for j, spec := range f.Expectations {
			part, err := builder.Part(spec)
			if err != nil {
				return nil, fmt.Errorf("%s: expectations[%d]: %w", files[i], j, err)
			}
			if err := suite.add(part); err != nil {
				return nil, fmt.Errorf("%s: expectations[%d]: %w", files[i], j, err)
			}
		}
	}

	logging.Info(subsystem, "Loaded %d endpoints from %d files", len(suite.order), len(files))
	return suite, nil
}

// ParseFile reads and decodes one expectation file. Unknown keys are
// rejected.
func ParseFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, &LoadError{Path: path, Err: err}
	}

	logging.Debug(subsystem, "Parsed %s: %d expectations", path, len(f.Expectations))
	return &f, nil
}

// ResolvePaths expands files, directories and glob patterns into a sorted,
// de-duplicated list of YAML files.
func ResolvePaths(paths ...string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, path := range paths {
		if hasMeta(path) {
			if !doublestar.ValidatePattern(filepath.ToSlash(path)) {
				return nil, &LoadError{Path: path, Err: doublestar.ErrBadPattern}
			}
			matches, err := doublestar.FilepathGlob(path, doublestar.WithFilesOnly())
			if err != nil {
				return nil, &LoadError{Path: path, Err: err}
			}
			for _, m := range matches {
				if isYAMLFile(m) {
					add(m)
				}
			}
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		if !info.IsDir() {
			add(path)
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isYAMLFile(p) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
	}

	sort.Strings(files)
	return files, nil
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
