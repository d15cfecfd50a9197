package commands

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/cslkit/pkg/csl/resource"
)

// defaultDebounce is how long the watcher waits for writes to settle.
const defaultDebounce = 200 * time.Millisecond

// docWatcher reports changed style and locale files under a set of
// directories, batching bursts of events.
type docWatcher struct {
	dirs     []string
	debounce time.Duration
	logger   *slog.Logger

	// onChange receives the changed paths, sorted. Calls never overlap and
	// none happen after run returns.
	onChange func(paths []string)
	// ready is called once the directories are watched. May be nil.
	ready func()
}

// isCSLDocument reports whether path names a style or locale file.
func isCSLDocument(path string) bool {
	if _, ok := resource.StyleID(path); ok {
		return true
	}
	_, ok := resource.LocaleCode(path)
	return ok
}

func (w *docWatcher) run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range w.dirs {
		if err := watcher.Add(dir); err != nil {
			// Don't fail - continue watching the other directories
			w.logger.Error("failed to watch directory", "dir", dir, "error", err)
		}
	}
	if w.ready != nil {
		w.ready()
	}

	pending := make(map[string]struct{})
	flush := func() {
		if len(pending) == 0 {
			return
		}
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		pending = make(map[string]struct{})
		sort.Strings(paths)
		w.onChange(paths)
	}

	// Debounce timer. Its channel is only selected while a flush is due, so
	// onChange always runs on this goroutine.
	var (
		debounceTimer *time.Timer
		debounced     <-chan time.Time
	)
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-debounced:
			debounced = nil
			flush()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !isCSLDocument(event.Name) {
				continue
			}
			w.logger.Debug("file changed", "file", event.Name, "op", event.Op.String())
			pending[event.Name] = struct{}{}

			if debounceTimer == nil {
				debounceTimer = time.NewTimer(w.debounce)
			} else {
				debounceTimer.Reset(w.debounce)
			}
			debounced = debounceTimer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}
