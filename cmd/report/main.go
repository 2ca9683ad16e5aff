// Command report runs the monthly training-KPI batch pipeline: it reads
// the roster, training log, and goals workbooks, writes the formatted
// monthly summary workbook, and appends the rows to the history store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"trainkpi/internal/etl"
	etlmetrics "trainkpi/internal/etl/metrics"
	"trainkpi/internal/export"
	"trainkpi/internal/history"
	"trainkpi/internal/platform/config"
	"trainkpi/internal/platform/logger"
	"trainkpi/pkg/requestcontext"
)

func main() {
	cfg := config.ReportFromEnv()
	log := logger.New()

	inputsDir := flag.String("inputs", cfg.InputsDir, "Directory containing the input workbooks")
	outputsDir := flag.String("outputs", cfg.OutputsDir, "Directory for the exported workbook")
	asOf := flag.String("as-of", "", "Reference date YYYY-MM-DD (default today)")
	dbURL := flag.String("db-url", cfg.DatabaseURL, "Postgres URL for the history store (optional; also KPI_DB_URL)")
	replace := flag.Bool("replace", false, "Replace the report month's history rows instead of appending")
	flag.Parse()

	ctx := context.Background()
	if *asOf != "" {
		parsed, err := time.Parse("2006-01-02", *asOf)
		if err != nil {
			log.Error("invalid -as-of date", "value", *asOf, "error", err.Error())
			os.Exit(1)
		}
		ctx = requestcontext.WithTime(ctx, parsed)
	}

	var store history.Store
	if *dbURL != "" {
		pgStore, err := history.OpenPostgres(ctx, *dbURL)
		if err != nil {
			log.Error("connect history store", "error", err.Error())
			os.Exit(1)
		}
		defer pgStore.Close()
		store = pgStore
	} else {
		log.Warn("no database URL configured; history will not be persisted")
	}

	service := etl.New(log, *inputsDir, export.New(*outputsDir), store, etlmetrics.New())

	log.Info("starting pipeline run",
		"inputs", *inputsDir,
		"outputs", *outputsDir,
		"replace", *replace,
	)

	result, err := service.Run(ctx, *replace)
	if err != nil {
		log.Error("pipeline run failed", "error", err.Error())
		os.Exit(1)
	}

	log.Info("pipeline run complete",
		"report_month", result.Month,
		"departments", len(result.Rows),
		"workbook", result.WorkbookPath,
	)
	fmt.Printf("Report for %s written to %s (%d departments)\n",
		result.Month, result.WorkbookPath, len(result.Rows))
}
