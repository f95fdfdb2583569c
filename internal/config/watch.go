package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watcher reloads a config file whenever it changes on disk. The parent
// directory is watched so editors that replace the file by rename are seen.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
}

func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, err
	}
	return &Watcher{path: abs, watcher: w}, nil
}

// Run delivers every successful reload to onChange and every load or watch
// failure to onError until ctx is done. It closes the watcher on return.
func (w *Watcher) Run(ctx context.Context, onChange func(*Config), onError func(error)) error {
	defer func() { _ = w.watcher.Close() }()

	var last time.Time
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			now := time.Now()
			if now.Sub(last) < reloadDebounce {
				continue
			}
			last = now

			c, err := LoadFile(w.path)
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			onChange(c)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if onError != nil {
				onError(err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
