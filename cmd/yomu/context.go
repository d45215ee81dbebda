package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"yomu/internal/config"
	"yomu/internal/covers"
	"yomu/internal/extension"
	"yomu/internal/library"
	"yomu/internal/logging"
	"yomu/internal/notifications"
	"yomu/internal/reconcile"
	"yomu/internal/status"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// app bundles the wired subsystems behind a CLI command.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *library.Store
	registry   *extension.Registry
	covers     *covers.Manager
	hub        *status.Hub
	notifier   notifications.Service
	reconciler *reconcile.Reconciler

	lock *flock.Flock
}

// openApp loads configuration, opens the store, and registers the built-in
// content sources. When exclusive is set, the library file lock is acquired
// first so concurrent yomu processes cannot race on store mutations.
func (c *commandContext) openApp(exclusive bool) (*app, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	var lock *flock.Flock
	if exclusive {
		lock = flock.New(cfg.LockPath())
		locked, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire library lock: %w", err)
		}
		if !locked {
			return nil, fmt.Errorf("another yomu process holds the library lock at %s", cfg.LockPath())
		}
	}

	store, err := library.Open(cfg)
	if err != nil {
		if lock != nil {
			lock.Unlock()
		}
		return nil, err
	}

	registry := extension.NewRegistry()
	registry.Register(extension.NewFilesystemSource(cfg.Filesystem.Language))
	if cfg.Webdex.BaseURL != "" {
		timeout := time.Duration(cfg.Webdex.RequestTimeout) * time.Second
		registry.Register(extension.NewWebdexSource(cfg.Webdex.BaseURL, timeout))
	}

	coverManager := covers.NewManager(cfg, logger)
	hub := status.NewHub(0)
	notifier := notifications.NewService(cfg)
	reconciler := reconcile.New(store, registry, coverManager, notifier, hub, logger, cfg.Library.PreferredLanguages)

	return &app{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		registry:   registry,
		covers:     coverManager,
		hub:        hub,
		notifier:   notifier,
		reconciler: reconciler,
		lock:       lock,
	}, nil
}

func (a *app) Close() error {
	err := a.store.Close()
	if a.lock != nil {
		if unlockErr := a.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}
	return err
}
