// Package signals watches the project's signal directory so an external
// process can stop a pipeline run mid-flight by dropping a stop file.
package signals

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const stopFile = "stop"

// Watcher monitors .posterforge/signals for a stop file. Detection is
// fsnotify-first with a stat fallback in ShouldStop, so a missed event
// never strands a run.
type Watcher struct {
	signalsDir string

	mu   sync.RWMutex
	stop bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// New creates a watcher for the given project root, creating the signal
// directory if needed. An fsnotify failure degrades to polling-only.
func New(projectRoot string) (*Watcher, error) {
	signalsDir := filepath.Join(projectRoot, ".posterforge", "signals")
	if err := os.MkdirAll(signalsDir, 0755); err != nil {
		return nil, err
	}

	w := &Watcher{
		signalsDir: signalsDir,
		done:       make(chan struct{}),
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return w, nil
	}
	if err := fsw.Add(signalsDir); err != nil {
		fsw.Close()
		return w, nil
	}
	w.watcher = fsw

	go w.watch()
	return w, nil
}

func (w *Watcher) watch() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) == stopFile && event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.mu.Lock()
				w.stop = true
				w.mu.Unlock()
			}
		case <-w.watcher.Errors:
			// Keep watching; ShouldStop stats the file anyway.
		}
	}
}

// ShouldStop reports whether a stop has been signalled, checking the file
// directly in case the watcher missed the event.
func (w *Watcher) ShouldStop() bool {
	if _, err := os.Stat(filepath.Join(w.signalsDir, stopFile)); err == nil {
		w.mu.Lock()
		w.stop = true
		w.mu.Unlock()
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stop
}

// SendStop creates the stop signal file.
func (w *Watcher) SendStop() error {
	path := filepath.Join(w.signalsDir, stopFile)
	return os.WriteFile(path, []byte(time.Now().Format(time.RFC3339)), 0644)
}

// Clear removes the stop file and resets state, so the next run starts clean.
func (w *Watcher) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stop = false
	os.Remove(filepath.Join(w.signalsDir, stopFile))
}

// CancelOnStop polls ShouldStop until the watcher is closed or the stop
// signal arrives, then invokes cancel. Run it as a goroutine next to a
// pipeline run.
func (w *Watcher) CancelOnStop(cancel func(), interval time.Duration) {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			if w.ShouldStop() {
				cancel()
				return
			}
		}
	}
}

// Close shuts down the watcher.
func (w *Watcher) Close() {
	close(w.done)
	if w.watcher != nil {
		w.watcher.Close()
	}
}
