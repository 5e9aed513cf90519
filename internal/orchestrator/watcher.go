package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the pipeline registry whenever the configuration file
// changes on disk. The parent directory is watched rather than the
// file itself so editors that replace the file atomically still
// trigger a reload. Blocks until the context is cancelled.
func (o *Orchestrator) Watch(ctx context.Context) error {
	if o.configPath == "" {
		return fmt.Errorf("no config path to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(o.configPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(o.configPath)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				o.logger.Log("config change detected (%s), reloading", event.Op)
				o.Reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			o.logger.Log("watcher error: %v", err)
		}
	}
}
