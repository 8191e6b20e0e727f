package workspace

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// Watch reloads the store whenever the workspace file changes on disk and
// calls onChange when the folder list differs afterwards. It blocks until ctx
// is cancelled.
//
// The parent directory is watched rather than the file itself, so editors that
// save by rename and a file that does not exist yet are both handled.
func (s *Store) Watch(ctx context.Context, onChange func()) error {
	if s.path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create workspace watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		s.logger.Error("failed to watch workspace directory", "dir", dir, "error", err)
		// Keep running without watching; the panel still works.
		<-ctx.Done()
		return nil
	}

	target := filepath.Clean(s.path)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				changed, err := s.Reload()
				if err != nil {
					s.logger.Error("workspace reload failed", "error", err)
					return
				}
				if changed {
					s.logger.Debug("workspace file changed", "path", s.path)
					onChange()
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("workspace watcher error", "error", err)
		}
	}
}
