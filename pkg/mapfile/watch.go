package mapfile

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce is how long a file must stay quiet before its change is
// reported. Saves that truncate and then write report once, after the
// last write.
const debounce = 100 * time.Millisecond

// Watcher reports changes to map files.
//
// Editors often replace a file rather than writing it in place, so the
// watcher follows the parent directory and filters by file name.
type Watcher struct {
	watcher *fsnotify.Watcher
	files   map[string]bool
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// NewWatcher starts watching the given map files.
func NewWatcher(paths ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	files := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = w.Close()
			return nil, err
		}
		files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	watcher := &Watcher{
		watcher: w,
		files:   files,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher and closes Events and Errors.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.Events)
	defer close(w.Errors)

	settled := make(chan string)
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !w.files[name] {
				continue
			}
			if t, ok := timers[name]; ok {
				t.Reset(debounce)
				continue
			}
			timers[name] = time.AfterFunc(debounce, func() {
				select {
				case settled <- name:
				case <-w.closeCh:
				}
			})
		case name := <-settled:
			select {
			case w.Events <- name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}
