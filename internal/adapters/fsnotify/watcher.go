// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It watches the directory containing the target file, so editors that save by
// writing a temp file and renaming it over the original are still seen, and
// debounces rapid events (editors often trigger multiple writes per save).
package fsnotify

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/corey/minigrep/internal/ports"
	"github.com/fsnotify/fsnotify"
)

const debounceInterval = 50 * time.Millisecond

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw      *fsnotify.Watcher
	done    chan struct{}
	exited  chan struct{} // closed when the event loop returns; nil before Watch
	stopped bool
	mu      sync.Mutex
}

var _ ports.Watcher = (*Watcher)(nil)

// NewWatcher creates a new file system watcher.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:   fw,
		done: make(chan struct{}),
	}, nil
}

// Watch starts monitoring filePath.
// onChange is called with the absolute path of the file once a burst of
// events has been quiet for debounceInterval, so it sees the finished write.
// Callbacks run one at a time on the watcher's goroutine and must not call Stop.
func (w *Watcher) Watch(filePath string, onChange func(filePath string)) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return err
	}
	if err := w.fw.Add(filepath.Dir(absPath)); err != nil {
		return err
	}

	exited := make(chan struct{})
	w.mu.Lock()
	w.exited = exited
	w.mu.Unlock()

	go func() {
		defer close(exited)

		var timer *time.Timer
		var fire <-chan time.Time
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != absPath {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}

				// Debounce: restart the quiet period on every event
				if timer == nil {
					timer = time.NewTimer(debounceInterval)
				} else {
					timer.Reset(debounceInterval)
				}
				fire = timer.C

			case <-fire:
				fire = nil
				select {
				case <-w.done:
					return
				default:
				}
				onChange(absPath)

			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// Errors are swallowed — fsnotify recovers automatically

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// Stop ends monitoring, releases all resources, and waits for an in-flight
// callback to return. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.done)
	exited := w.exited
	w.mu.Unlock()

	err := w.fw.Close()
	if exited != nil {
		<-exited
	}
	return err
}
