package rulesource

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yourusername/realtor-intake-bot/internal/rulestore"
)

// debounce editors fire several write events per save
const watchDebounce = 500 * time.Millisecond

// WatchFile reloads the store whenever the rules file changes on disk.
// The parent directory is watched, not the file: most editors replace
// the file on save, which drops a direct watch. Blocks until the
// context is canceled.
func WatchFile(ctx context.Context, path string, store *rulestore.Store) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(path)
	log.Printf("[RULES] watching %s for changes", target)

	var timer *time.Timer
	reload := func() {
		if err := store.Reload(ctx); err != nil {
			log.Printf("[RULES] reload after file change failed: %v", err)
			return
		}
		log.Printf("[RULES] reloaded rules after change to %s", target)
	}

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
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[RULES] watch error: %v", err)
		}
	}
}
