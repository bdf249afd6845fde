package content

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce groups bursts of file events into one reload.
const DefaultDebounce = 300 * time.Millisecond

// WatchDirs returns the directories to watch for the seed patterns: the
// static base of every pattern plus the directory of every matched file.
func WatchDirs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		dir = filepath.Clean(dir)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	for _, pattern := range patterns {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
		add(filepath.FromSlash(base))
	}
	files, err := MatchFiles(patterns)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		add(filepath.Dir(f))
	}
	return dirs, nil
}

// Watch calls onChange after files under the seed patterns are written,
// created, renamed or removed. Events are debounced. It blocks until ctx
// is cancelled.
func Watch(ctx context.Context, patterns []string, debounce time.Duration, logger *zap.Logger, onChange func()) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	dirs, err := WatchDirs(patterns)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			logger.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		logger.Debug("watching", zap.String("dir", dir))
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, patterns) {
				continue
			}
			logger.Debug("seed file changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		case <-timer.C:
			onChange()
		}
	}
}

func relevant(ev fsnotify.Event, patterns []string) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.ToSlash(ev.Name)
	for _, p := range patterns {
		if ok, err := doublestar.PathMatch(filepath.FromSlash(p), ev.Name); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(filepath.ToSlash(p), name); err == nil && ok {
			return true
		}
	}
	return false
}
