package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"statesapi/internal/config"
	"statesapi/internal/handlers"
	"statesapi/internal/metrics"
	"statesapi/internal/statedata"
	"statesapi/internal/store"
)

var logger = loggo.GetLogger("statesapi")

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Criticalf("loading configuration: %v", err)
		os.Exit(1)
	}
	if err := loggo.ConfigureLoggers(cfg.LogConfig); err != nil {
		logger.Criticalf("configuring loggers: %v", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		logger.Criticalf("%s", errors.Details(err))
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The static table is read once and never changes afterwards.
	table, err := statedata.Load()
	if err != nil {
		return errors.Trace(err)
	}

	s, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return errors.Annotatef(err, "opening %s store", cfg.Store.Backend)
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Warningf("closing store: %v", err)
		}
	}()

	router := handlers.NewRouter(handlers.Deps{
		Table:   table,
		Store:   s,
		Auth:    cfg.Auth,
		Metrics: metrics.New(),
		Timeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Infof("states API listening on %s (store=%s, %d states)", cfg.HTTPAddr, cfg.Store.Backend, table.Len())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Annotate(err, "serving http")
	case <-ctx.Done():
	}

	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return errors.Trace(srv.Shutdown(shutdownCtx))
}
