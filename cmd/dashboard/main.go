// Command dashboard serves the KPI dashboard. It reads either the
// persisted history (default) or recomputes the pipeline from the input
// workbooks in live mode.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"trainkpi/internal/dashboard"
	dashhandler "trainkpi/internal/dashboard/handler"
	dashmetrics "trainkpi/internal/dashboard/metrics"
	"trainkpi/internal/etl"
	"trainkpi/internal/history"
	"trainkpi/internal/platform/config"
	"trainkpi/internal/platform/httpserver"
	"trainkpi/internal/platform/logger"
)

func main() {
	cfg := config.DashboardFromEnv()
	log := logger.New()

	addr := flag.String("addr", cfg.Addr, "Listen address")
	source := flag.String("source", cfg.Source, "Data source: history or live")
	inputsDir := flag.String("inputs", cfg.InputsDir, "Input workbook directory for live mode")
	dbURL := flag.String("db-url", cfg.DatabaseURL, "Postgres URL for history mode (also KPI_DB_URL)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var dataSource dashboard.Source
	switch *source {
	case "history":
		if *dbURL == "" {
			log.Error("history mode requires a database URL (KPI_DB_URL or -db-url)")
			os.Exit(1)
		}
		store, err := history.OpenPostgres(ctx, *dbURL)
		if err != nil {
			log.Error("connect history store", "error", err.Error())
			os.Exit(1)
		}
		defer store.Close()
		dataSource = dashboard.NewHistorySource(store)
	case "live":
		pipeline := etl.New(log, *inputsDir, nil, nil, nil)
		dataSource = dashboard.NewLiveSource(pipeline)
	default:
		log.Error("unknown source", "source", *source)
		os.Exit(1)
	}

	service := dashboard.NewService(dataSource)
	handler := dashhandler.New(service, log, dashmetrics.New())

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	handler.Register(router)

	srv := httpserver.New(*addr, router)

	log.Info("starting dashboard", "addr", *addr, "source", *source)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("dashboard stopped", "error", err.Error())
		os.Exit(1)
	}
	log.Info("dashboard stopped")
}
