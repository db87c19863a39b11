package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/AngelCh415/adreport/internal/report"
)

type Config struct {
	Port           string
	DataFile       string
	DataSheet      string
	HTTPTimeout    time.Duration
	FetchRetries   int
	CacheEntries   int
	ReportTitle    string
	CurrencySymbol string
	ReportFormat   string
	LogLevel       slog.Level
}

// Load reads an optional .env file, then the environment.
func Load() Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() Config {
	to := 15 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			to = d
		}
	}
	lvl := slog.LevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return Config{
		Port:           envOr("PORT", "8080"),
		DataFile:       envOr("DATA_FILE", "client_online.xlsx"),
		DataSheet:      os.Getenv("DATA_SHEET"),
		HTTPTimeout:    to,
		FetchRetries:   envInt("FETCH_RETRIES", 3),
		CacheEntries:   envInt("CACHE_ENTRIES", 32),
		ReportTitle:    os.Getenv("REPORT_TITLE"),
		CurrencySymbol: os.Getenv("CURRENCY_SYMBOL"),
		ReportFormat:   envOr("REPORT_FORMAT", "text"),
		LogLevel:       lvl,
	}
}

// Theme applies the configured overrides to the default report theme.
func (c Config) Theme() report.Theme {
	t := report.DefaultTheme()
	if c.ReportTitle != "" {
		t.Title = c.ReportTitle
	}
	if c.CurrencySymbol != "" {
		t.CurrencySymbol = c.CurrencySymbol
	}
	return t
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
