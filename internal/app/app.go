// Package app wires the configured components together for the commands.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Marlvin12/perfit/adapters"
	"github.com/Marlvin12/perfit/api"
	"github.com/Marlvin12/perfit/detector"
	"github.com/Marlvin12/perfit/internal/config"
	"github.com/Marlvin12/perfit/messaging"
	"github.com/Marlvin12/perfit/sites"
	"github.com/Marlvin12/perfit/storage"
	"github.com/sirupsen/logrus"
)

// App holds the wired components
type App struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Registry *sites.Registry
	Detector *detector.Detector
	Adapter  *adapters.BaseAdapter
	Store    *storage.Store
	API      *api.Client
	Router   *messaging.Router

	closers []func() error
}

// New builds every component from the configuration
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	registry, err := LoadRegistry(cfg.Sites.File)
	if err != nil {
		return nil, err
	}
	a.Registry = registry
	logger.Infof("Loaded %d supported sites", registry.Len())

	a.Detector = detector.NewDetector(registry, logger)
	a.Adapter = adapters.NewBaseAdapter(cfg.FetchOptions(), a.Detector, logger)
	a.closers = append(a.closers, func() error { a.Adapter.Close(); return nil })

	local, err := a.localPartition()
	if err != nil {
		a.Close()
		return nil, err
	}
	sync, err := a.syncPartition(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = storage.NewStore(local, sync)

	a.API = api.NewClient(api.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.Burst,
	}, a.Store, logger)

	a.Router = messaging.NewRouter(a.Store, a.API, a.Adapter, logger)
	return a, nil
}

// LoadRegistry returns the built-in registry, extended or replaced by a site file
func LoadRegistry(file string) (*sites.Registry, error) {
	if file == "" {
		return sites.Default(), nil
	}
	registry, err := sites.LoadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load sites from %s: %w", file, err)
	}
	return registry, nil
}

func (a *App) localPartition() (storage.Partition, error) {
	path := a.Config.Storage.LocalPath
	if path == "" {
		return storage.NewMemoryPartition(), nil
	}

	p, err := storage.NewSQLitePartition(path, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open local storage: %w", err)
	}
	a.closers = append(a.closers, p.Close)
	return p, nil
}

func (a *App) syncPartition(ctx context.Context) (storage.Partition, error) {
	cfg := a.Config.Storage
	if cfg.Sync != "redis" {
		return storage.NewMemoryPartition(), nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := storage.DialRedis(dialCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	a.Logger.Infof("Synchronized storage on redis %s", cfg.RedisAddr)
	return storage.NewRedisPartition(client, cfg.RedisPrefix), nil
}

// Close releases every opened resource, newest first
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warnf("Failed to close resource: %v", err)
		}
	}
	a.closers = nil
}
