package root

import (
	"context"
	"io"
	"log"
	"os"

	"goalquest/internal/catalog"
	"goalquest/internal/config"
	"goalquest/internal/engine"
	"goalquest/internal/storage"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagDBPath != "" {
		cfg.DBPath = flagDBPath
	}
	if cfg.DBPath == "" {
		path, err := storage.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		cfg.DBPath = path
	}
	if flagVerbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *log.Logger {
	if !cfg.Verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "gq: ", log.LstdFlags)
}

func openService(ctx context.Context) (*engine.Service, *config.Config, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	cat, err := catalog.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}

	svc := engine.NewService(db, cat)
	svc.Location = cfg.Location()
	svc.Logger = newLogger(cfg)
	return svc, cfg, cleanup, nil
}
