package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/rabbit/config"
	"github.com/meghashyamc/rabbit/db/kvdb"
	"github.com/meghashyamc/rabbit/db/searchdb"
	"github.com/meghashyamc/rabbit/logger"
	"github.com/meghashyamc/rabbit/services/convert"
	"github.com/meghashyamc/rabbit/services/index"
	"github.com/meghashyamc/rabbit/services/search"
	"github.com/meghashyamc/rabbit/validation"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	cfg           *config.Config
	router        *gin.Engine
	httpServer    *http.Server
	kvdb          kvdb.DB
	searchdb      searchdb.DB
	indexService  *index.Service
	searchService *search.Service
	validator     *validation.Validator
	logger        logger.Logger
}

// Run serves the HTTP API until ctx is done or an interrupt arrives.
func Run(ctx context.Context, cfg *config.Config, logger logger.Logger) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	s := &server{
		cfg:    cfg,
		logger: logger,
	}
	if err := s.setupDependencies(ctx); err != nil {
		return err
	}
	defer s.closeDependencies()

	s.setupRouter()
	s.setupHTTPServer()

	return s.serve(ctx)
}

func (s *server) setupDependencies(ctx context.Context) error {
	var err error
	s.kvdb, err = kvdb.New(s.logger, s.cfg.GetKVDBPath())
	if err != nil {
		s.logger.Error("error creating kvDB", "err", err.Error())
		return err
	}
	bleveDB, err := searchdb.New(s.logger, s.cfg.GetIndexPath(), searchdb.DefaultAnalysis())
	if err != nil {
		s.logger.Error("error creating searchDB", "err", err.Error())
		s.kvdb.Close()
		return err
	}
	s.searchdb = bleveDB
	s.validator, err = validation.New(s.logger)
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		s.closeDependencies()
		return err
	}
	walker, err := index.NewWalker(s.cfg.GetExcludePatterns())
	if err != nil {
		s.logger.Error("error creating walker", "err", err.Error())
		s.closeDependencies()
		return err
	}

	converter := convert.New(convert.NewPandoc(s.cfg.GetConverterCommand(), s.cfg.GetConverterTimeout()))
	s.indexService = index.New(ctx, s.logger, bleveDB, walker, converter, s.kvdb, index.Options{
		Workers:        s.cfg.GetWorkers(),
		CommitInterval: s.cfg.GetCommitInterval(),
	})
	s.searchService = search.New(s.logger, bleveDB, s.cfg.GetSearchLimit())

	return nil
}

func (s *server) closeDependencies() {
	if err := s.searchdb.Close(); err != nil {
		s.logger.Error("error closing searchDB", "err", err.Error())
	}
	if err := s.kvdb.Close(); err != nil {
		s.logger.Error("error closing kvDB", "err", err.Error())
	}
}

func (s *server) setupRouter() {
	router := newRouter()

	router.Use(loggingMiddleware(s.logger))

	setupRoutes(router, s.logger, s.indexService, s.searchService, s.validator)

	s.router = router
}

func (s *server) setupHTTPServer() {

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%s", s.cfg.GetPort()),
		Handler: s.router.Handler(),
	}
}

// serve blocks until the listener fails or ctx is done, then shuts down.
func (s *server) serve(ctx context.Context) error {
	listenErrC := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErrC <- err
		}
		close(listenErrC)
	}()

	select {
	case err := <-listenErrC:
		if err != nil {
			s.logger.Error("http server failed", "err", err.Error())
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("starting to shut down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error shutting down http server", "err", err)
		return err
	}
	s.logger.Info("shut down http server successfully")

	return nil
}
