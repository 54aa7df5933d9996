package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// watcher reruns onChange after any watched file is written, collapsing
// bursts of events within debounce into one call.
type watcher struct {
	fs       *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	onChange func()
	busy     sync.Mutex // one onChange at a time
}

func newWatcher(paths []string) (*watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &watcher{fs: fs, files: make(map[string]bool), debounce: 200 * time.Millisecond}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fs.Close()
			return nil, fmt.Errorf("failed to resolve path: %w", err)
		}
		w.files[abs] = true
		// Editors replace files on save, so watch the directory.
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := fs.Add(dir); err != nil {
			fs.Close()
			return nil, fmt.Errorf("failed to watch directory: %w", err)
		}
	}
	return w, nil
}

// run blocks until ctx is done. No onChange call is in flight once it
// returns.
func (w *watcher) run(ctx context.Context) error {
	defer w.fs.Close()
	var (
		timer    *time.Timer
		inFlight sync.WaitGroup
	)
	// cancelPending stops a timer that has not fired yet and settles its
	// share of inFlight.
	cancelPending := func() {
		if timer != nil && timer.Stop() {
			inFlight.Done()
		}
		timer = nil
	}
	defer inFlight.Wait()
	defer cancelPending()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !w.files[abs] {
				continue
			}
			cancelPending()
			inFlight.Add(1)
			timer = time.AfterFunc(w.debounce, func() {
				defer inFlight.Done()
				w.busy.Lock()
				defer w.busy.Unlock()
				w.onChange()
			})

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logrus.Warnf("watch: %v", err)
		}
	}
}
