package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/AngelCh415/adreport/internal/ingest"
	"github.com/AngelCh415/adreport/internal/metrics"
	"github.com/AngelCh415/adreport/internal/models"
	"github.com/AngelCh415/adreport/internal/report"
	"github.com/AngelCh415/adreport/internal/store"
)

type Loader interface {
	Load(ctx context.Context, source string) (models.RawTable, error)
}

// Result is everything one run derives from a dataset.
type Result struct {
	RunID       string                   `json:"run_id"`
	Source      string                   `json:"source"`
	Fingerprint string                   `json:"fingerprint"`
	Cached      bool                     `json:"cached"`
	Empty       bool                     `json:"empty"`
	Aggregation models.Aggregation       `json:"aggregation"`
	Ranked      []models.PlatformMetrics `json:"ranked"`
	Report      models.Report            `json:"report"`
}

// clone copies every map and slice so the memo never shares memory with a caller.
func (r Result) clone() Result {
	r.Aggregation.ByPlatform = maps.Clone(r.Aggregation.ByPlatform)
	r.Aggregation.Warnings = slices.Clone(r.Aggregation.Warnings)
	r.Ranked = slices.Clone(r.Ranked)
	rep := &r.Report
	rep.KPICards = slices.Clone(rep.KPICards)
	rep.Ranking = slices.Clone(rep.Ranking)
	rep.Proportion = slices.Clone(rep.Proportion)
	rep.Detail.Headers = slices.Clone(rep.Detail.Headers)
	rep.Detail.Rows = slices.Clone(rep.Detail.Rows)
	rep.Layout.HeightRatios = slices.Clone(rep.Layout.HeightRatios)
	rep.Layout.Regions = slices.Clone(rep.Layout.Regions)
	return r
}

type Service struct {
	loader Loader
	cache  *store.MemoryStore[Result]
	theme  report.Theme
	log    *slog.Logger
}

// NewService wires the pipeline. cache may be nil to disable memoisation.
func NewService(l Loader, cache *store.MemoryStore[Result], theme report.Theme, log *slog.Logger) *Service {
	return &Service{loader: l, cache: cache, theme: theme, log: log}
}

// Run loads source and builds its report.
func (s *Service) Run(ctx context.Context, source string) (Result, error) {
	raw, err := s.loader.Load(ctx, source)
	if err != nil {
		runsTotal.WithLabelValues(outcome(err)).Inc()
		s.log.Warn("load failed", slog.String("source", source), slog.String("err", err.Error()))
		return Result{}, err
	}
	return s.Build(ctx, source, raw)
}

// Build runs normalize, aggregate, rank and compose over an already loaded table.
// An empty dataset is not an error: the result has Empty set and zero metrics.
func (s *Service) Build(ctx context.Context, source string, raw models.RawTable) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	start := time.Now()
	defer func() { runDuration.Observe(time.Since(start).Seconds()) }()

	table, err := ingest.Normalize(raw, ingest.RequiredColumns)
	if err != nil {
		runsTotal.WithLabelValues(outcome(err)).Inc()
		s.log.Warn("normalize failed", slog.String("source", source), slog.String("err", err.Error()))
		return Result{}, err
	}

	fp := Fingerprint(table)
	if s.cache != nil {
		if res, ok := s.cache.Get(fp); ok {
			cacheHits.Inc()
			runsTotal.WithLabelValues("ok").Inc()
			res = res.clone()
			res.RunID = uuid.NewString()
			res.Source = source
			res.Cached = true
			return res, nil
		}
	}

	res := Result{RunID: uuid.NewString(), Source: source, Fingerprint: fp}
	res.Aggregation, err = metrics.Aggregate(table)
	switch {
	case errors.Is(err, models.ErrEmptyDataset):
		res.Empty = true
		s.log.Warn("dataset empty", slog.String("source", source))
	case err != nil:
		runsTotal.WithLabelValues(outcome(err)).Inc()
		return Result{}, err
	}
	for _, w := range res.Aggregation.Warnings {
		undefinedRatios.WithLabelValues(w.Metric).Inc()
		s.log.Debug("undefined ratio", slog.String("scope", w.Scope), slog.String("metric", w.Metric), slog.String("reason", w.Reason))
	}

	res.Ranked = metrics.Rank(res.Aggregation.ByPlatform)
	res.Report = report.Compose(res.Aggregation, res.Ranked, s.theme)

	if s.cache != nil {
		s.cache.Put(fp, res.clone())
	}
	if res.Empty {
		runsTotal.WithLabelValues("empty").Inc()
	} else {
		runsTotal.WithLabelValues("ok").Inc()
	}
	s.log.Info("report built",
		slog.String("run_id", res.RunID),
		slog.String("source", source),
		slog.Int("rows", res.Aggregation.Rows),
		slog.Int("blank_rows", table.Skipped),
		slog.Int("platforms", len(res.Ranked)),
		slog.Int("undefined_ratios", len(res.Aggregation.Warnings)))
	return res, nil
}

// Fingerprint hashes the normalized records, so tables that differ only in
// header spelling share a fingerprint.
func Fingerprint(t models.Table) string {
	h := sha256.New()
	buf := make([]byte, 0, 128)
	for _, r := range t.Records {
		buf = buf[:0]
		buf = strconv.AppendQuote(buf, r.Platform)
		buf = append(buf, '|')
		buf = strconv.AppendFloat(buf, r.Spend, 'g', -1, 64)
		buf = append(buf, '|')
		buf = strconv.AppendFloat(buf, r.Revenue, 'g', -1, 64)
		buf = append(buf, '|')
		buf = strconv.AppendInt(buf, r.Clicks, 10)
		buf = append(buf, '|')
		buf = strconv.AppendInt(buf, r.Conversions, 10)
		buf = append(buf, '\n')
		h.Write(buf)
	}
	return hex.EncodeToString(h.Sum(nil))
}
