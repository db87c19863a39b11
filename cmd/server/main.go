package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/AngelCh415/adreport/internal/config"
	"github.com/AngelCh415/adreport/internal/httpx"
	"github.com/AngelCh415/adreport/internal/ingest"
	"github.com/AngelCh415/adreport/internal/pipeline"
	"github.com/AngelCh415/adreport/internal/store"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	cl := ingest.NewHTTPClient(cfg.HTTPTimeout)
	loader := ingest.NewLoader(cl, cfg.FetchRetries, cfg.DataSheet, logger)
	cache := store.NewMemoryStore[pipeline.Result](cfg.CacheEntries)
	svc := pipeline.NewService(loader, cache, cfg.Theme(), logger)

	r := httpx.NewRouter(logger, svc, cfg.DataFile, cfg.DataSheet)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server", slog.String("port", cfg.Port), slog.String("data_file", cfg.DataFile))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
