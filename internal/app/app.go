package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ShayOinif/Contacts/internal/config"
	"github.com/ShayOinif/Contacts/internal/contact"
	"github.com/ShayOinif/Contacts/internal/logging"
	"github.com/ShayOinif/Contacts/internal/prefs"
	"github.com/ShayOinif/Contacts/internal/repo"
	"github.com/ShayOinif/Contacts/internal/source"
	"github.com/ShayOinif/Contacts/internal/ui"
)

// Options configure the contacts application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/contacts/prefs.toml
	DBPath     string // overrides the configured database
	Demo       bool   // serve built-in records from memory
	Verbose    bool
	LogLevel   string // overrides the configured level
	// LogToFile sends logs to the configured file instead of stderr.
	LogToFile bool
}

// Env is an opened store with the repository built over it.
type Env struct {
	Config config.Config
	Logger *zap.Logger
	Source contact.Source
	// SQLite is nil in demo mode.
	SQLite *source.SQLite
	Repo   *repo.Repository
}

// Open loads configuration, builds the logger and opens the store.
func Open(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}

	logOpts := logging.Options{Level: cfg.LogLevel, Verbose: opts.Verbose}
	if opts.LogLevel != "" {
		logOpts.Level = opts.LogLevel
	}
	if opts.LogToFile {
		logOpts.File = cfg.LogFile
	}
	logger, err := logging.New(logOpts)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	env := &Env{Config: cfg, Logger: logger}
	if opts.Demo {
		env.Source = source.NewMemory(DemoContacts()...)
		logger.Info("serving demo contacts")
	} else {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			_ = logger.Sync()
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		store, err := source.OpenSQLite(cfg.DBPath, source.SQLiteOptions{
			AccountTypes: cfg.AccountTypes,
			Logger:       logger.Named("store"),
		})
		if err != nil {
			_ = logger.Sync()
			return nil, fmt.Errorf("open contacts store: %w", err)
		}
		env.Source = store
		env.SQLite = store
		logger.Info("opened contacts store", zap.String("path", cfg.DBPath))
	}

	env.Repo = repo.New(env.Source, repo.Options{
		Grace:    cfg.GraceWindow,
		Debounce: cfg.Debounce,
		Logger:   logger,
	})
	return env, nil
}

// Close releases the repository and the store.
func (e *Env) Close() error {
	e.Repo.Close()
	var err error
	if e.SQLite != nil {
		err = e.SQLite.Close()
	}
	_ = e.Logger.Sync()
	return err
}

// Run boots the contacts TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	opts.LogToFile = true
	env, err := Open(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		env.Logger.Warn("load preferences", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		RunPoller(gctx, env.Repo, env.Config.RetryInterval, env.Logger.Named("poller"))
		return nil
	})
	g.Go(func() error {
		// Quitting the UI stops the poller.
		defer cancel()
		return ui.Run(ui.Options{
			Context:   gctx,
			Repo:      env.Repo,
			Logger:    env.Logger.Named("ui"),
			ThemeName: userPrefs.Theme,
			LastQuery: userPrefs.LastQuery,
			PrefsPath: opts.PrefsPath,
		})
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
