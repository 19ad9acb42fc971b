package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 250 * time.Millisecond

// Watch reloads the config in dir whenever a config file there changes and
// passes the result to onChange. When loading fails onChange gets a nil
// result and the error, and the caller keeps its previous config. It blocks
// until ctx is done.
//
// The directory is watched rather than the file so that editors replacing
// the file by rename are noticed.
func Watch(ctx context.Context, dir string, logger *slog.Logger, onChange func(*LoadResult, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logger.Debug("watching config directory", "dir", dir)

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isConfigEvent(ev) {
				continue
			}
			logger.Debug("config change detected", "op", ev.Op.String(), "file", ev.Name)
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			timerCh = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "error", err)

		case <-timerCh:
			timerCh = nil
			res, err := LoadDir(dir)
			if err != nil {
				logger.Warn("failed to reload config", "error", err)
				onChange(nil, err)
				continue
			}
			logger.Info("config reloaded", "path", res.Path)
			onChange(res, nil)
		}
	}
}

func isConfigEvent(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	base := filepath.Base(ev.Name)
	if !strings.HasPrefix(base, configBaseName+".") {
		return false
	}
	_, err := FormatForPath(base)
	return err == nil
}
