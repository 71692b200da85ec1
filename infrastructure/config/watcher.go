package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounceDelay = 200 * time.Millisecond

// Watcher hot reloads the log level from the YAML config file.
type Watcher struct {
	path    string
	level   zap.AtomicLevel
	logger  *zap.Logger
	watcher *fsnotify.Watcher

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// NewWatcher starts watching path. The parent directory is watched so
// editors that replace the file are picked up.
func NewWatcher(path string, level zap.AtomicLevel, logger *zap.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	w := &Watcher{
		path:    abs,
		level:   level,
		logger:  logger,
		watcher: fsWatcher,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.watchLoop()

	logger.Info("Configuration hot reloading enabled", zap.String("file", abs))
	return w, nil
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	defer w.watcher.Close()

	var debounce *time.Timer
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return
		}
	}
}

func (w *Watcher) reload() {
	level, ok, err := readLogLevel(w.path)
	if err != nil {
		w.logger.Error("Invalid configuration after reload", zap.Error(err))
		return
	}
	if !ok || level == w.level.Level() {
		return
	}

	old := w.level.Level()
	w.level.SetLevel(level)
	w.logger.Info("Log level changed",
		zap.String("from", old.String()),
		zap.String("to", level.String()),
	)
}

// Close stops the watcher
func (w *Watcher) Close() error {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.done
	return nil
}
