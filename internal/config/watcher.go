// internal/config/watcher.go
package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/valpere/reachlist/internal/utils"
)

// ConfigWatcher reloads the service configuration when its file changes
type ConfigWatcher struct {
	watcher    *fsnotify.Watcher
	configPath string
	callbacks  []func(*ServiceConfig)
	logger     utils.Logger
	mu         sync.RWMutex
	stopped    bool
	done       chan struct{}
}

// NewConfigWatcher starts watching configPath. Editors that replace the file
// through a rename are covered by watching the parent directory too.
func NewConfigWatcher(configPath string, logger utils.Logger) (*ConfigWatcher, error) {
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	cw := &ConfigWatcher{
		watcher:    watcher,
		configPath: absPath,
		callbacks:  make([]func(*ServiceConfig), 0),
		logger:     logger.WithField("component", "config_watcher"),
		done:       make(chan struct{}),
	}

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	go cw.watch()

	return cw, nil
}

// OnChange registers a callback invoked with every successfully reloaded config
func (cw *ConfigWatcher) OnChange(callback func(*ServiceConfig)) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.callbacks = append(cw.callbacks, callback)
}

func (cw *ConfigWatcher) watch() {
	defer close(cw.done)
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.configPath {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				cw.handleConfigChange()
			}

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Warnf("config watcher error: %v", err)
		}
	}
}

func (cw *ConfigWatcher) handleConfigChange() {
	cw.mu.RLock()
	if cw.stopped {
		cw.mu.RUnlock()
		return
	}
	callbacks := make([]func(*ServiceConfig), len(cw.callbacks))
	copy(callbacks, cw.callbacks)
	cw.mu.RUnlock()

	// a half-written file fails validation; the next write event retries
	cfg, err := LoadFromFile(cw.configPath)
	if err != nil {
		cw.logger.Warnf("failed to reload config: %v", err)
		return
	}

	cw.logger.Infof("configuration reloaded from %s", cw.configPath)
	for _, callback := range callbacks {
		callback(cfg)
	}
}

// Close stops the watcher and waits for the event loop to exit
func (cw *ConfigWatcher) Close() error {
	cw.mu.Lock()
	if cw.stopped {
		cw.mu.Unlock()
		return nil
	}
	cw.stopped = true
	cw.mu.Unlock()

	err := cw.watcher.Close()
	<-cw.done
	return err
}
