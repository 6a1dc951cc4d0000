package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragbot/internal/core/domain"
)

func TestPromptWatcher_HandleEvent(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		op       fsnotify.Op
		reloaded bool
	}{
		{name: "write persona", file: "salesbot.txt", op: fsnotify.Write, reloaded: true},
		{name: "create persona", file: "partnerbot.txt", op: fsnotify.Create, reloaded: true},
		{name: "remove persona", file: "recruitbot.txt", op: fsnotify.Remove, reloaded: true},
		{name: "rename persona", file: "recruitbot.txt", op: fsnotify.Rename, reloaded: true},
		{name: "write and chmod", file: "salesbot.txt", op: fsnotify.Write | fsnotify.Chmod, reloaded: true},
		{name: "chmod only", file: "salesbot.txt", op: fsnotify.Chmod, reloaded: false},
		{name: "readme", file: "README.md", op: fsnotify.Write, reloaded: false},
		{name: "editor swap file", file: ".salesbot.txt", op: fsnotify.Write, reloaded: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			store, err := NewPromptStore(dir)
			require.NoError(t, err)
			w, err := NewPromptWatcher(store)
			require.NoError(t, err)
			defer w.Close()

			_, err = store.Load(domain.PersonaSalesBot)
			require.NoError(t, err)

			got := w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, tt.file), Op: tt.op})

			assert.Equal(t, tt.reloaded, got)
			store.mu.RLock()
			cached := len(store.cache)
			store.mu.RUnlock()
			if tt.reloaded {
				assert.Zero(t, cached)
			} else {
				assert.Equal(t, 1, cached)
			}
		})
	}
}

func TestPromptWatcher_Run(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	w, err := NewPromptWatcher(store)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	_, err = store.Load(domain.PersonaSalesBot)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "salesbot.txt"), []byte("Persona modifiée."), 0600))

	assert.Eventually(t, func() bool {
		p, err := store.Load(domain.PersonaSalesBot)
		return err == nil && p == "Persona modifiée."
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
