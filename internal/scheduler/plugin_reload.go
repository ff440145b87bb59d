package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
	"github.com/MrSnakeDoc/mrunner/internal/logger"
	"github.com/fsnotify/fsnotify"
)

// DefaultSettleDelay groups the burst of events an editor save produces
// into one reload.
const DefaultSettleDelay = 250 * time.Millisecond

// PluginSource produces the plugin commands
type PluginSource interface {
	Dir() string
	Commands() ([]domain.Command, error)
}

// PluginSink receives every successfully loaded plugin list
type PluginSink interface {
	UpdatePlugins(commands []domain.Command)
}

// PluginReloader handles periodic, manual and file-triggered reloading of
// the plugin directory
type PluginReloader struct {
	source        PluginSource
	sink          PluginSink
	logger        logger.Logger
	interval      time.Duration
	watch         bool
	settle        time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}
	started       atomic.Bool
	done          chan struct{}
}

// NewPluginReloader creates a new plugin reloader. With watch set, changes
// in the plugin directory trigger a reload as well.
func NewPluginReloader(
	source PluginSource,
	sink PluginSink,
	log logger.Logger,
	interval time.Duration,
	watch bool,
	manualTrigger chan struct{},
) *PluginReloader {
	return &PluginReloader{
		source:        source,
		sink:          sink,
		logger:        log,
		interval:      interval,
		watch:         watch,
		settle:        DefaultSettleDelay,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
		done:          make(chan struct{}),
	}
}

// Start loads the plugins once, then keeps reloading in the background
func (pr *PluginReloader) Start(ctx context.Context) error {
	// Load immediately on start
	if err := pr.Reload(ctx); err != nil {
		return fmt.Errorf("initial plugin reload failed: %w", err)
	}

	var events <-chan fsnotify.Event
	var errs <-chan error
	var watcher *fsnotify.Watcher
	if pr.watch {
		w, err := pr.startWatcher()
		if err != nil {
			pr.logger.Warn("plugin directory not watched",
				logger.String("dir", pr.source.Dir()),
				logger.Error(err))
		} else {
			watcher = w
			events, errs = w.Events, w.Errors
		}
	}

	ticker := time.NewTicker(pr.interval)
	pr.started.Store(true)
	go func() {
		defer close(pr.done)
		defer ticker.Stop()
		if watcher != nil {
			defer watcher.Close()
		}

		var settle <-chan time.Time
		for {
			select {
			case <-ticker.C:
				pr.reloadLogged(ctx)
			case <-pr.manualTrigger:
				pr.logger.Info("manual plugin reload triggered")
				pr.reloadLogged(ctx)
			case ev, ok := <-events:
				if !ok {
					events = nil
					continue
				}
				if isPluginEvent(ev) {
					settle = time.After(pr.settle)
				}
			case <-settle:
				settle = nil
				pr.logger.Info("plugin directory changed")
				pr.reloadLogged(ctx)
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				pr.logger.Warn("plugin watcher error", logger.Error(err))
			case <-pr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader and waits for its goroutine
func (pr *PluginReloader) Stop() {
	pr.stopOnce.Do(func() { close(pr.stopCh) })
	if pr.started.Load() {
		<-pr.done
	}
}

// Reload loads the plugin directory and publishes the result
func (pr *PluginReloader) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cmds, err := pr.source.Commands()
	if err != nil {
		return fmt.Errorf("failed to load plugins: %w", err)
	}

	pr.sink.UpdatePlugins(cmds)
	pr.logger.Info("loaded plugins",
		logger.String("dir", pr.source.Dir()),
		logger.Int("count", len(cmds)))
	return nil
}

func (pr *PluginReloader) reloadLogged(ctx context.Context) {
	if err := pr.Reload(ctx); err != nil {
		pr.logger.Error("failed to reload plugins", logger.Error(err))
	}
}

func (pr *PluginReloader) startWatcher() (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(pr.source.Dir()); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", pr.source.Dir(), err)
	}
	return w, nil
}

func isPluginEvent(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	switch filepath.Ext(ev.Name) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
