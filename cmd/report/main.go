package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/AngelCh415/adreport/internal/config"
	"github.com/AngelCh415/adreport/internal/ingest"
	"github.com/AngelCh415/adreport/internal/pipeline"
	"github.com/AngelCh415/adreport/internal/report"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout*time.Duration(cfg.FetchRetries+1))
	defer cancel()

	loader := ingest.NewLoader(ingest.NewHTTPClient(cfg.HTTPTimeout), cfg.FetchRetries, cfg.DataSheet, logger)
	svc := pipeline.NewService(loader, nil, cfg.Theme(), logger)

	res, err := svc.Run(ctx, cfg.DataFile)
	if err != nil {
		logger.Error("report failed", slog.String("source", cfg.DataFile), slog.String("err", err.Error()))
		os.Exit(1)
	}

	if cfg.ReportFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(res)
	} else {
		err = report.WriteText(os.Stdout, res.Report)
	}
	if err != nil {
		logger.Error("write report", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
