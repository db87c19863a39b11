package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/AngelCh415/adreport/internal/models"
	"github.com/AngelCh415/adreport/internal/report"
	"github.com/AngelCh415/adreport/internal/store"
)

type fakeLoader struct {
	tables map[string]models.RawTable
	calls  int
}

func (f *fakeLoader) Load(_ context.Context, source string) (models.RawTable, error) {
	f.calls++
	t, ok := f.tables[source]
	if !ok {
		return models.RawTable{}, models.ErrSourceNotFound
	}
	return t, nil
}

func newService(l Loader, cache *store.MemoryStore[Result]) *Service {
	return NewService(l, cache, report.DefaultTheme(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var scenarioA = models.RawTable{
	Headers: []string{"Platform", "Spend", "Revenue", "Clicks", "Conversions"},
	Rows: [][]string{
		{"Google", "100", "300", "50", "10"},
		{"Meta", "200", "250", "80", "5"},
	},
}

func TestRunScenarioA(t *testing.T) {
	svc := newService(&fakeLoader{tables: map[string]models.RawTable{"a.xlsx": scenarioA}}, nil)
	res, err := svc.Run(context.Background(), "a.xlsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Empty || res.Cached {
		t.Errorf("unexpected flags: empty=%v cached=%v", res.Empty, res.Cached)
	}
	if res.Aggregation.Total.Profit != 250 {
		t.Errorf("profit: got %v, want 250", res.Aggregation.Total.Profit)
	}
	if len(res.Ranked) != 2 || res.Ranked[0].Platform != "Google" {
		t.Errorf("ranked: got %+v", res.Ranked)
	}
	if len(res.Report.Ranking) != 2 || res.Report.KPICards[0].Value != "$300" {
		t.Errorf("report: got %+v", res.Report)
	}
	if res.RunID == "" || len(res.Fingerprint) != 64 {
		t.Errorf("ids: run %q fingerprint %q", res.RunID, res.Fingerprint)
	}
}

func TestRunSourceNotFound(t *testing.T) {
	svc := newService(&fakeLoader{}, nil)
	_, err := svc.Run(context.Background(), "missing.xlsx")
	if !errors.Is(err, models.ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestBuildSchemaError(t *testing.T) {
	svc := newService(&fakeLoader{}, nil)
	_, err := svc.Build(context.Background(), "upload", models.RawTable{Headers: []string{"platform", "spend"}})
	var se *models.SchemaError
	if !errors.As(err, &se) || len(se.Missing) != 3 {
		t.Fatalf("expected SchemaError with 3 missing, got %v", err)
	}
}

func TestBuildEmptyDataset(t *testing.T) {
	svc := newService(&fakeLoader{}, nil)
	res, err := svc.Build(context.Background(), "upload", models.RawTable{Headers: scenarioA.Headers})
	if err != nil {
		t.Fatalf("empty dataset must not fail: %v", err)
	}
	if !res.Empty {
		t.Error("expected Empty result")
	}
	tot := res.Aggregation.Total
	if tot.Spend != 0 || tot.ROI.Defined || tot.ROAS.Defined || tot.CPL.Defined {
		t.Errorf("expected zero totals and undefined ratios, got %+v", tot)
	}
	if len(res.Report.KPICards) != 3 || res.Report.KPICards[2].Value != "no data" {
		t.Errorf("KPI cards: got %+v", res.Report.KPICards)
	}
}

func TestBuildUsesCache(t *testing.T) {
	cache := store.NewMemoryStore[Result](4)
	svc := newService(&fakeLoader{}, cache)

	first, err := svc.Build(context.Background(), "one", scenarioA)
	if err != nil {
		t.Fatal(err)
	}
	// same data, different header spelling
	respelled := models.RawTable{
		Headers: []string{" PLATFORM", "spend", "Revenue ", "clicks", "Conversions"},
		Rows:    scenarioA.Rows,
	}
	second, err := svc.Build(context.Background(), "two", respelled)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Cached || first.Cached {
		t.Fatalf("cached flags: first=%v second=%v", first.Cached, second.Cached)
	}
	if second.Fingerprint != first.Fingerprint || second.RunID == first.RunID {
		t.Errorf("fingerprint %q/%q run ids %q/%q", first.Fingerprint, second.Fingerprint, first.RunID, second.RunID)
	}
	if second.Source != "two" || second.Report.KPICards[1].Value != first.Report.KPICards[1].Value {
		t.Errorf("cached result mismatch: %+v", second)
	}
	if cache.Len() != 1 {
		t.Errorf("cache len: got %d, want 1", cache.Len())
	}
}

func TestBuildCachedResultIsDetached(t *testing.T) {
	cache := store.NewMemoryStore[Result](4)
	svc := newService(&fakeLoader{}, cache)

	first, err := svc.Build(context.Background(), "one", scenarioA)
	if err != nil {
		t.Fatal(err)
	}
	first.Aggregation.ByPlatform["Google"] = models.PlatformMetrics{Platform: "Google"}
	first.Ranked[0].Platform = "changed"
	first.Report.KPICards[0].Value = "changed"

	second, err := svc.Build(context.Background(), "two", scenarioA)
	if err != nil {
		t.Fatal(err)
	}
	second.Report.Detail.Rows[0].CPLText = "changed"
	second.Aggregation.Warnings = append(second.Aggregation.Warnings, models.UndefinedMetricWarning{})

	third, err := svc.Build(context.Background(), "three", scenarioA)
	if err != nil {
		t.Fatal(err)
	}
	if !third.Cached {
		t.Fatal("expected a cache hit")
	}
	if third.Aggregation.ByPlatform["Google"].Profit != 200 || third.Ranked[0].Platform != "Google" {
		t.Errorf("memo corrupted through the first result: %+v", third.Ranked)
	}
	if third.Report.KPICards[0].Value != "$300" || third.Report.Detail.Rows[0].CPLText != "$10.00" {
		t.Errorf("memo corrupted through a returned report: %+v", third.Report)
	}
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newService(&fakeLoader{}, nil).Build(ctx, "x", scenarioA)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestFingerprintChangesWithData(t *testing.T) {
	a := models.Table{Records: []models.Record{{Platform: "Google", Spend: 100}}}
	b := models.Table{Records: []models.Record{{Platform: "Google", Spend: 100.01}}}
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatal("different data produced the same fingerprint")
	}
	if Fingerprint(a) != Fingerprint(a) {
		t.Fatal("fingerprint is not deterministic")
	}
}

func TestOutcome(t *testing.T) {
	cases := map[string]error{
		"ok":                 nil,
		"source_not_found":   models.ErrSourceNotFound,
		"unsupported_format": models.ErrUnsupportedFormat,
		"schema_error":       &models.SchemaError{Missing: []string{"spend"}},
		"error":              errors.New("boom"),
	}
	for want, err := range cases {
		if got := outcome(err); got != want {
			t.Errorf("outcome(%v): got %q, want %q", err, got, want)
		}
	}
}
