package playground

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caffeineduck/pyplay/internal/logger"
	"github.com/caffeineduck/pyplay/locale"
	"github.com/caffeineduck/pyplay/store"
)

// Download file attributes.
const (
	DownloadName = "code.py"
	DownloadMIME = "text/x-python"
)

// File is an export of the editor content.
type File struct {
	Name string `json:"name"`
	MIME string `json:"mime"`
	Data []byte `json:"data"`
}

// Save writes the editor content to the manual save slot.
func (w *Workspace) Save(ctx context.Context) error {
	content := w.Content()
	if err := w.store.Set(ctx, store.SlotCode, content); err != nil {
		return fmt.Errorf("save code: %w", err)
	}

	w.mu.Lock()
	w.toastLocked(locale.Saved)
	w.mu.Unlock()
	return nil
}

// Load replaces the editor content with the manual save slot. With nothing
// saved, or an empty save, it shows a notice, leaves the content alone and
// returns store.ErrNotFound.
func (w *Workspace) Load(ctx context.Context) error {
	saved, err := w.store.Get(ctx, store.SlotCode)
	if err == nil && saved == "" {
		err = store.ErrNotFound
	}
	if errors.Is(err, store.ErrNotFound) {
		w.mu.Lock()
		w.toastLocked(locale.NothingSaved)
		w.mu.Unlock()
		return err
	}
	if err != nil {
		return fmt.Errorf("load code: %w", err)
	}

	w.mu.Lock()
	w.setContentLocked(saved)
	w.toastLocked(locale.Loaded)
	w.mu.Unlock()
	return nil
}

// AutosaveOnce writes the editor content to the autosave slot.
func (w *Workspace) AutosaveOnce(ctx context.Context) error {
	if err := w.store.Set(ctx, store.SlotAutosave, w.Content()); err != nil {
		return fmt.Errorf("autosave: %w", err)
	}
	return nil
}

// Autosave snapshots the editor every autosave interval until ctx or the
// workspace is done. Failures are logged and retried on the next tick.
func (w *Workspace) Autosave(ctx context.Context) {
	ticker := time.NewTicker(w.autosaveEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if err := w.AutosaveOnce(ctx); err != nil {
				logger.Warnf("%v", err)
			}
		}
	}
}

// Download exports the editor content as code.py.
func (w *Workspace) Download() File {
	w.mu.Lock()
	defer w.mu.Unlock()
	f := File{Name: DownloadName, MIME: DownloadMIME, Data: []byte(w.editor.Content())}
	w.toastLocked(locale.Downloaded)
	return f
}
