package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/mrunner/internal/bookmarks"
	"github.com/MrSnakeDoc/mrunner/internal/config"
	"github.com/MrSnakeDoc/mrunner/internal/hotkeys"
	"github.com/MrSnakeDoc/mrunner/internal/httpserver"
	"github.com/MrSnakeDoc/mrunner/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mrunner/internal/index"
	"github.com/MrSnakeDoc/mrunner/internal/logger"
	"github.com/MrSnakeDoc/mrunner/internal/palette"
	"github.com/MrSnakeDoc/mrunner/internal/redis"
	"github.com/MrSnakeDoc/mrunner/internal/runner"
	"github.com/MrSnakeDoc/mrunner/internal/scheduler"
	"github.com/MrSnakeDoc/mrunner/internal/search"
	"github.com/MrSnakeDoc/mrunner/internal/shortcuts"
	"github.com/MrSnakeDoc/mrunner/internal/sources/apps"
	"github.com/MrSnakeDoc/mrunner/internal/sources/plugins"
	filestore "github.com/MrSnakeDoc/mrunner/internal/store/file"
	redisstore "github.com/MrSnakeDoc/mrunner/internal/store/redis"
	"github.com/MrSnakeDoc/mrunner/internal/utils"
	"github.com/MrSnakeDoc/mrunner/internal/version"
)

// Action tags the global hotkey registry dispatches.
const ActionToggleWindow = "toggle-window"

// preferenceStore is what both preference backends provide.
type preferenceStore interface {
	shortcuts.Persister
	apps.PreferenceStore
}

type App struct {
	cfg    *config.Config
	logger logger.Logger

	catalog     *index.Catalog
	filter      *search.Filter
	session     *palette.Session
	shortcuts   *shortcuts.Store
	bookmarks   *bookmarks.Store
	hotkeys     *hotkeys.Registry
	folders     *apps.Folders
	runner      *runner.Runner
	syncer      *scheduler.CommandSyncer
	reloader    *scheduler.PluginReloader
	redisClient *goredis.Client
	usage       deps.UsageRecorder

	reloadTrigger chan struct{}
}

// New wires every component. It loads nothing that needs the network
// except Redis when that backend is configured.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	a := &App{
		cfg:           cfg,
		logger:        loggerClient,
		catalog:       index.NewCatalog(),
		reloadTrigger: make(chan struct{}, 1),
	}

	prefs, err := a.openPreferences(ctx)
	if err != nil {
		return nil, err
	}

	// A broken bookmark database only disables bookmarks
	db, err := bookmarks.OpenDB(ctx, cfg.BookmarkDB)
	if err != nil {
		loggerClient.Warn("bookmark database unavailable, bookmark search disabled",
			logger.String("path", cfg.BookmarkDB),
			logger.Error(err))
	} else {
		a.bookmarks = bookmarks.NewStore(db)
	}

	opts := search.DefaultOptions()
	opts.Threshold = cfg.FuzzyThreshold
	a.filter = search.NewFilter(a.catalog, opts, loggerClient.With(logger.String("component", "filter")))

	var searcher palette.BookmarkSearcher
	if a.bookmarks != nil {
		searcher = a.bookmarks
	}
	a.session = palette.NewSession(a.filter, searcher, a.catalog,
		loggerClient.Named("palette"),
		palette.WithDebounce(cfg.Debounce))

	a.hotkeys = hotkeys.NewRegistry(loggerClient.Named("hotkeys"))
	a.hotkeys.Handle(ActionToggleWindow, func(ctx context.Context) error {
		loggerClient.Info("toggle window requested")
		return nil
	})
	a.shortcuts = shortcuts.NewStore(prefs, a.hotkeys, loggerClient.With(logger.String("component", "shortcuts")))

	a.folders, err = apps.NewFolders(prefs, "")
	if err != nil {
		a.Close()
		return nil, err
	}
	a.syncer = scheduler.NewCommandSyncer(
		apps.NewSource(a.folders, runtime.GOOS, loggerClient),
		a.catalog,
		loggerClient,
	)

	var runOpts []runner.Option
	if len(cfg.AllowList) > 0 {
		runOpts = append(runOpts, runner.WithAllowList(cfg.AllowList))
	}
	a.runner = runner.New(loggerClient.Named("runner"), runOpts...)

	a.reloader = scheduler.NewPluginReloader(
		plugins.NewSource(cfg.PluginDir, loggerClient),
		a.catalog,
		loggerClient,
		cfg.PluginReloadInterval,
		cfg.WatchPlugins,
		a.reloadTrigger,
	)

	return a, nil
}

func (a *App) openPreferences(ctx context.Context) (preferenceStore, error) {
	if a.cfg.PrefsBackend != config.BackendRedis {
		fs, err := filestore.New(a.cfg.ConfigDir, a.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open preferences: %w", err)
		}
		a.logger.Info("preferences stored on disk", logger.String("path", fs.Path()))
		return fs, nil
	}

	client, err := redis.Connect(ctx, redis.Options{
		Addr:           a.cfg.RedisAddr,
		Username:       a.cfg.RedisUser,
		Password:       a.cfg.RedisPassword,
		DB:             a.cfg.RedisDB,
		DialTimeout:    a.cfg.RedisDT,
		ReadTimeout:    a.cfg.RedisRT,
		WriteTimeout:   a.cfg.RedisWT,
		PoolSize:       a.cfg.RedisPoolSize,
		ConnectTimeout: a.cfg.RedisConnectTimeout,
		RetryInterval:  a.cfg.RedisRetryInterval,
		MaxWait:        a.cfg.RedisMaxWait,
		PingTimeout:    a.cfg.RedisPingTimeout,
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	a.redisClient = client
	rs := redisstore.NewStore(client, a.logger)
	a.usage = rs
	return rs, nil
}

// Load fills the catalog and the shortcut store once.
func (a *App) Load(ctx context.Context) {
	a.syncer.Sync(ctx)
	if err := a.reloader.Reload(ctx); err != nil {
		a.logger.Warn("plugins not loaded", logger.Error(err))
	}
	a.session.Refresh()
	a.shortcuts.Load(ctx)
}

// Search runs a one-shot query, see palette.Search.
func (a *App) Search(ctx context.Context, raw string, limit int) ([]search.Ranked, error) {
	var searcher palette.BookmarkSearcher
	if a.bookmarks != nil {
		searcher = a.bookmarks
	}
	return palette.Search(ctx, a.filter, searcher, raw, limit)
}

// Shortcuts returns the shortcut store.
func (a *App) Shortcuts() *shortcuts.Store {
	return a.shortcuts
}

// Run serves the API until SIGINT/SIGTERM.
func (a *App) Run() error {
	a.logger.Infof("🚀 Starting %s on %s", version.String(), a.cfg.ListenAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.syncer.Sync(ctx)
	a.session.Refresh()
	a.shortcuts.Load(ctx)

	if err := os.MkdirAll(a.cfg.PluginDir, 0o755); err != nil {
		a.logger.Warn("failed to create plugin dir",
			logger.String("dir", a.cfg.PluginDir),
			logger.Error(err))
	}

	// Start plugin reloader (loads plugins and starts periodic refresh)
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start plugin reloader: %w", err)
	}
	a.logger.Info("plugin reloader started",
		logger.String("dir", a.cfg.PluginDir),
		logger.Duration("interval", a.cfg.PluginReloadInterval),
		logger.Bool("watch", a.cfg.WatchPlugins))

	d := deps.Deps{
		Logger:         a.logger,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		AllowedHosts:   a.cfg.AllowedHosts,
		AllowedCIDRS:   a.cfg.AllowedCIDRS,
		TrustProxy:     a.cfg.TrustProxy,
		Catalog:        a.catalog,
		Filter:         a.filter,
		Session:        a.session,
		Shortcuts:      a.shortcuts,
		Bookmarks:      a.bookmarks,
		Runner:         a.runner,
		Hotkeys:        a.hotkeys,
		Folders:        a.folders,
		Usage:          a.usage,
		Redis:          a.redisClient,
		ReloadTrigger:  a.reloadTrigger,
		FoldersChanged: a.syncer.Sync,
	}
	server := httpserver.New(a.cfg, a.logger, d)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	a.reloader.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	a.Close()
	if runErr == nil {
		a.logger.Info("✅ mrunner stopped cleanly")
	}
	return runErr
}

// Close releases the session, the bookmark database and redis.
func (a *App) Close() {
	if a.session != nil {
		a.session.Close()
	}
	if a.shortcuts != nil {
		a.shortcuts.Wait()
	}
	if a.bookmarks != nil {
		utils.CloseLogged(a.bookmarks, "bookmarks", a.logger)
	}
	if a.redisClient != nil {
		utils.CloseLogged(a.redisClient, "redis", a.logger)
	}
	_ = a.logger.Sync()
}
