// Package watch re-runs a callback when expectation files change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"mockspec/pkg/logging"
)

const subsystem = "Watch"

// DefaultDebounce is how long the watcher waits for further changes before
// firing.
const DefaultDebounce = 300 * time.Millisecond

// Watcher watches the directories behind a set of expectation paths and
// calls OnChange once per burst of YAML file changes.
type Watcher struct {
	paths    []string
	debounce time.Duration
	onChange func(ctx context.Context)

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a watcher for paths (files, directories or doublestar
// patterns). A zero debounce uses DefaultDebounce.
func New(paths []string, debounce time.Duration, onChange func(ctx context.Context)) *Watcher {
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{paths: paths, debounce: debounce, onChange: onChange}
}

// Dirs returns the directories that have to be watched for paths.
func Dirs(paths []string) []string {
	dirs, _ := resolve(paths)
	return dirs
}

// resolve returns the directories to watch and the roots whose whole tree is
// watched. Directories created under a root later are watched as they appear.
func resolve(paths []string) (dirs, roots []string) {
	seen := make(map[string]struct{})
	add := func(dir string) {
		seen[filepath.Clean(dir)] = struct{}{}
	}

	for _, path := range paths {
		if strings.ContainsAny(path, "*?[{") {
			base, _ := doublestar.SplitPattern(filepath.ToSlash(path))
			path = filepath.FromSlash(base)
		}

		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			add(filepath.Dir(path))
			continue
		}
		roots = append(roots, filepath.Clean(path))
		_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err == nil && d.IsDir() {
				add(p)
			}
			return nil
		})
	}

	dirs = make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs, roots
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dirs, roots := resolve(w.paths)
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			logging.Warn(subsystem, "Failed to watch %s: %v", dir, err)
			continue
		}
		logging.Debug(subsystem, "Watching directory: %s", dir)
	}

	defer w.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) && underRoot(event.Name, roots) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if w.addTree(watcher, event.Name) {
						w.schedule(ctx)
					}
					continue
				}
			}
			if !isYAMLFile(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			logging.Debug(subsystem, "Detected %s on %s", event.Op, event.Name)
			w.schedule(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Error(subsystem, err, "Filesystem watcher error")
		}
	}
}

// addTree watches dir and every directory below it. It reports whether the
// tree already holds YAML files, which appear before their watch is in place
// when a populated directory is moved in.
func (w *Watcher) addTree(watcher *fsnotify.Watcher, dir string) bool {
	found := false
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			found = found || isYAMLFile(p)
			return nil
		}
		if err := watcher.Add(p); err != nil {
			logging.Warn(subsystem, "Failed to watch %s: %v", p, err)
			return nil
		}
		logging.Debug(subsystem, "Watching new directory: %s", p)
		return nil
	})
	return found
}

func underRoot(path string, roots []string) bool {
	for _, root := range roots {
		rel, err := filepath.Rel(root, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if ctx.Err() == nil {
			w.onChange(ctx)
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
