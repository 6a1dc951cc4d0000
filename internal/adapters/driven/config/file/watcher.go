package file

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/ragbot/internal/logger"
)

// PromptWatcher reloads a PromptStore whenever a persona file changes.
type PromptWatcher struct {
	store   *PromptStore
	watcher *fsnotify.Watcher
}

// NewPromptWatcher watches the store's prompt directory. The directory is
// created if needed.
func NewPromptWatcher(store *PromptStore) (*PromptWatcher, error) {
	// Write the default files before watching so they don't trigger reloads
	store.initOnce.Do(store.initialise)
	if store.initErr != nil {
		return nil, store.initErr
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(store.Dir()); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", store.Dir(), err)
	}

	return &PromptWatcher{store: store, watcher: w}, nil
}

// Run processes events until ctx is cancelled or the watcher is closed.
func (w *PromptWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(event) {
				logger.Info("Persona %s changed, reloading prompts", filepath.Base(event.Name))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Prompt watcher error: %v", err)
		}
	}
}

// Close stops watching.
func (w *PromptWatcher) Close() error {
	return w.watcher.Close()
}

// handleEvent reloads the store for content changes to persona files and
// reports whether it did.
func (w *PromptWatcher) handleEvent(event fsnotify.Event) bool {
	if filepath.Ext(event.Name) != PromptExt {
		return false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	w.store.Reload()
	return true
}
