// Package watch keeps an fsnotify watcher aligned with the configured glob
// patterns and reports file changes once they settle.
package watch

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// debounceDelay is how long a path must stay quiet before its change is
// reported. Editors and test runners touch files in bursts.
const debounceDelay = 200 * time.Millisecond

// Registry wraps one fsnotify watcher. Set reconciles the watched
// directory set against the current patterns; events are debounced per
// path and handed to the callback with the absolute path.
type Registry struct {
	watcher *fsnotify.Watcher
	onEvent func(path string)

	mu       sync.Mutex
	patterns []string
	refs     map[string]int
	timers   map[string]*time.Timer

	closeOnce sync.Once
	done      chan struct{}
}

// NewRegistry starts a registry with no watches. The callback runs on a
// timer goroutine and must not block for long.
func NewRegistry(onEvent func(path string)) (*Registry, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	r := &Registry{
		watcher: watcher,
		onEvent: onEvent,
		refs:    make(map[string]int),
		timers:  make(map[string]*time.Timer),
		done:    make(chan struct{}),
	}
	go r.run()
	return r, nil
}

// Set replaces the watched pattern set. Directories held only by dropped
// patterns are released; base directories of new patterns and their
// current subtrees are added. Directory watches are reference-counted
// across patterns.
func (r *Registry) Set(root string, patterns []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	newRefs := make(map[string]int)
	if root != "" {
		for _, pattern := range patterns {
			for _, dir := range dirsFor(root, pattern) {
				newRefs[dir]++
			}
		}
	}
	for dir := range r.refs {
		if newRefs[dir] == 0 {
			_ = r.watcher.Remove(dir)
		}
	}
	for dir := range newRefs {
		if r.refs[dir] == 0 {
			if err := r.watcher.Add(dir); err != nil {
				log.Printf("Failed to watch %s: %v", dir, err)
			}
		}
	}
	r.refs = newRefs
	r.patterns = append([]string(nil), patterns...)
	log.Printf("Watching %d directories for %d patterns", len(newRefs), len(patterns))
}

// Patterns reports the currently registered pattern set.
func (r *Registry) Patterns() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.patterns...)
}

// Close stops the event loop, cancels pending debounce timers and
// releases the watcher.
func (r *Registry) Close() error {
	r.closeOnce.Do(func() { close(r.done) })
	r.mu.Lock()
	for path, timer := range r.timers {
		timer.Stop()
		delete(r.timers, path)
	}
	r.mu.Unlock()
	return r.watcher.Close()
}

func (r *Registry) run() {
	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					for _, file := range r.addTree(event.Name) {
						r.debounce(file)
					}
					continue
				}
			}
			r.debounce(event.Name)
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watcher error: %v", err)
		case <-r.done:
			return
		}
	}
}

func (r *Registry) debounce(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	select {
	case <-r.done:
		return
	default:
	}
	if timer, ok := r.timers[path]; ok {
		timer.Stop()
	}
	r.timers[path] = time.AfterFunc(debounceDelay, func() {
		r.mu.Lock()
		delete(r.timers, path)
		r.mu.Unlock()
		r.onEvent(path)
	})
}

// addTree watches a directory that appeared after Set and reports the
// files already inside it, which would otherwise be missed.
func (r *Registry) addTree(dir string) []string {
	var files []string
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			files = append(files, path)
			return nil
		}
		if path != dir && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if r.refs[path] == 0 {
			if err := r.watcher.Add(path); err != nil {
				log.Printf("Failed to watch %s: %v", path, err)
				return nil
			}
		}
		r.refs[path]++
		return nil
	})
	return files
}

// dirsFor lists the directories a pattern can produce matches in: its
// fixed base plus the current subtree below it.
func dirsFor(root, pattern string) []string {
	base, _ := doublestar.SplitPattern(pattern)
	dir := root
	if base != "." {
		dir = filepath.Join(root, filepath.FromSlash(base))
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil
	}
	var dirs []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != dir && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs
}

// skipDir filters trees nobody wants watched. node_modules alone can
// exceed the default inotify watch limit.
func skipDir(name string) bool {
	return name == "node_modules" || strings.HasPrefix(name, ".")
}
