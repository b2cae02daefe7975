package pkgmanifest

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// manifestFileName is the fixed filename every package manifest carries.
const manifestFileName = "pandagend.json"

// Event reports one observed manifest change: a freshly parsed-and-validated
// Manifest, or the error that occurred reading/parsing/validating it.
type Event struct {
	Path     string
	Manifest Manifest
	Errs     []ValidationError
	Err      error
}

// Watcher watches a directory tree for pandagend.json files, re-validating
// whenever one is created or modified. Grounded on the teacher's
// internal/config directory-loader-plus-watch pattern (fsnotify.Watcher
// wrapping a recursive directory walk).
type Watcher struct {
	fsw    *fsnotify.Watcher
	events chan Event
	done   chan struct{}
}

// NewWatcher starts watching root (and its existing subdirectories) for
// pandagend.json changes, emitting one Event per observed write/create.
// Callers must call Close when done to release the underlying fsnotify
// watcher.
func NewWatcher(root string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{fsw: fsw, events: make(chan Event, 16), done: make(chan struct{})}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				close(w.events)
				return
			}
			if filepath.Base(ev.Name) != manifestFileName {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.events <- w.loadAndValidate(ev.Name)
		case <-w.done:
			close(w.events)
			return
		}
	}
}

func (w *Watcher) loadAndValidate(path string) Event {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Event{Path: path, Err: err}
	}
	m, errs, err := ParseAndValidate(raw)
	if err != nil {
		return Event{Path: path, Err: err}
	}
	return Event{Path: path, Manifest: m, Errs: errs}
}

// Events returns the channel of manifest change events.
func (w *Watcher) Events() <-chan Event { return w.events }

// Close stops the watcher and releases its underlying file descriptors.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
