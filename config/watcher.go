package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"go.viam.com/sslmotion/logging"
	"go.viam.com/sslmotion/utils"
)

// DefaultReloadDelay is how long the watcher waits for writes to settle before reloading.
const DefaultReloadDelay = 100 * time.Millisecond

// Watcher reloads a Store whenever its file changes on disk.
type Watcher struct {
	store   *Store
	watcher *fsnotify.Watcher
	workers utils.StoppableWorkers
	logger  logging.Logger
}

// Watch starts watching the store's file. Editors often replace files instead of writing them,
// so the parent directory is watched and events are filtered by name. onReload, if non-nil, is
// called after every reload attempt with its result.
func Watch(store *Store, delay time.Duration, logger logging.Logger, onReload func(error)) (*Watcher, error) {
	if store.Path() == "" {
		return nil, errors.New("store has no backing file to watch")
	}
	target, err := filepath.Abs(store.Path())
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve config path")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file watcher")
	}
	if err := fsw.Add(filepath.Dir(target)); err != nil {
		return nil, combine(errors.Wrapf(err, "failed to watch %s", filepath.Dir(target)), fsw.Close())
	}

	w := &Watcher{store: store, watcher: fsw, logger: logger.Sublogger("config")}
	debounced := debounce.New(delay)
	reload := func() {
		err := store.Reload()
		if onReload != nil {
			onReload(err)
		}
	}
	w.workers = utils.NewStoppableWorkers(func(ctx context.Context) {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					w.logger.Debugw("config file changed", "op", event.Op.String())
					debounced(reload)
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				w.logger.Warnw("config watcher error", "error", err)
			}
		}
	})
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	w.workers.Stop()
	return err
}
