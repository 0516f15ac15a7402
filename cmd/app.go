package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/meghashyamc/rabbit/config"
	"github.com/meghashyamc/rabbit/db/kvdb"
	"github.com/meghashyamc/rabbit/db/searchdb"
	"github.com/meghashyamc/rabbit/logger"
	"github.com/meghashyamc/rabbit/services/convert"
	"github.com/meghashyamc/rabbit/services/index"
)

// app holds what every command needs: configuration, the file logger and,
// once openStores is called, the index and the metadata database.
type app struct {
	cfg       *config.Config
	logger    logger.Logger
	logCloser io.Closer
	searchDB  *searchdb.BleveDB
	kvDB      *kvdb.BoltDB
}

func loadApp() (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.GetDataPath(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", cfg.GetDataPath(), err)
	}

	appLogger, logCloser, err := logger.NewFile(cfg.GetLogDir(), cfg.GetLogLevel())
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: appLogger, logCloser: logCloser}, nil
}

func (a *app) openStores() error {
	var err error
	a.searchDB, err = searchdb.New(a.logger, a.cfg.GetIndexPath(), searchdb.DefaultAnalysis())
	if err != nil {
		return fmt.Errorf("failed to open index at %s: %w", a.cfg.GetIndexPath(), err)
	}

	a.kvDB, err = kvdb.New(a.logger, a.cfg.GetKVDBPath())
	if err != nil {
		return fmt.Errorf("failed to open metadata database at %s: %w", a.cfg.GetKVDBPath(), err)
	}

	return nil
}

func (a *app) indexService(ctx context.Context, walker *index.Walker, opts index.Options) *index.Service {
	converter := convert.New(convert.NewPandoc(a.cfg.GetConverterCommand(), a.cfg.GetConverterTimeout()))
	return index.New(ctx, a.logger, a.searchDB, walker, converter, a.kvDB, opts)
}

func (a *app) Close() error {
	var errs []error
	if a.searchDB != nil {
		errs = append(errs, a.searchDB.Close())
	}
	if a.kvDB != nil {
		errs = append(errs, a.kvDB.Close())
	}
	errs = append(errs, a.logCloser.Close())

	return errors.Join(errs...)
}
