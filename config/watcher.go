package config

import (
	"context"
	"path/filepath"
	"reflect"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/planararm/logging"
	"go.viam.com/planararm/utils"
)

// A Watcher is responsible for watching for changes to a config file and delivering the new
// config when it changes.
type Watcher interface {
	Config() <-chan *Config
	Close() error
}

type fsConfigWatcher struct {
	fsWatcher *fsnotify.Watcher
	configCh  chan *Config
	workers   utils.StoppableWorkers
}

// NewWatcher returns a watcher that rereads configPath whenever it changes. The directory is
// watched rather than the file so that editors that replace the file on save are seen. Only
// valid configs that differ from the last one delivered are sent; initial is treated as
// delivered.
func NewWatcher(ctx context.Context, configPath string, initial *Config, logger logging.Logger) (Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "cannot create config file watcher")
	}
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, multierr.Combine(err, fsWatcher.Close())
	}
	if err := fsWatcher.Add(filepath.Dir(absPath)); err != nil {
		return nil, multierr.Combine(errors.Wrapf(err, "cannot watch %q", configPath), fsWatcher.Close())
	}

	w := &fsConfigWatcher{fsWatcher: fsWatcher, configCh: make(chan *Config)}
	w.workers = utils.NewStoppableWorkersWithContext(ctx, func(ctx context.Context) {
		last := initial
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-fsWatcher.Errors:
				if !ok {
					return
				}
				logger.Errorw("error watching config file", "error", err)
			case event, ok := <-fsWatcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != absPath {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				newConfig, err := Read(ctx, configPath, logger)
				if err != nil {
					logger.Errorw("error reading config after change", "path", configPath, "error", err)
					continue
				}
				if last != nil && reflect.DeepEqual(last, newConfig) {
					continue
				}
				select {
				case <-ctx.Done():
					return
				case w.configCh <- newConfig:
					last = newConfig
				}
			}
		}
	})
	return w, nil
}

func (w *fsConfigWatcher) Config() <-chan *Config {
	return w.configCh
}

func (w *fsConfigWatcher) Close() error {
	w.workers.Stop()
	return w.fsWatcher.Close()
}
