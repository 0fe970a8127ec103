package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Loader holds the current config and reloads it when the file changes.
type Loader struct {
	path     string
	logger   *log.Logger
	mu       sync.RWMutex
	current  *File
	onChange []func(*File)
}

// NewLoader loads path once. A nil logger logs to the default logger.
func NewLoader(path string, logger *log.Logger) (*Loader, error) {
	if logger == nil {
		logger = log.Default()
	}
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Loader{path: path, logger: logger, current: f}, nil
}

// Config returns the latest successfully loaded config.
func (l *Loader) Config() *File {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers fn to run after every successful reload.
func (l *Loader) OnChange(fn func(*File)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Reload re-reads the file. On error the previous config stays current.
func (l *Loader) Reload() (*File, error) {
	f, err := Load(l.path)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.current = f
	callbacks := make([]func(*File), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(f)
	}
	return f, nil
}

// Watch reloads the config whenever the file is written or replaced. It
// watches the parent directory so editors that save by rename are seen.
// Call the returned stop function to end the watch.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	dir := filepath.Dir(l.path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("config watcher add %s: %w", dir, err)
	}
	target := filepath.Clean(l.path)

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					if _, err := l.Reload(); err != nil {
						l.logger.Warn("config reload failed, keeping previous", "path", l.path, "err", err)
						continue
					}
					l.logger.Info("config reloaded", "path", l.path)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.logger.Warn("config watcher", "err", err)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-finished
		})
	}, nil
}
