package metrics

import (
	"reflect"
	"testing"

	"github.com/samber/lo"

	"github.com/AngelCh415/adreport/internal/models"
)

func pm(name string, profit float64) models.PlatformMetrics {
	return models.PlatformMetrics{Platform: name, Metrics: models.Metrics{Profit: profit}}
}

func names(ps []models.PlatformMetrics) []string {
	return lo.Map(ps, func(p models.PlatformMetrics, _ int) string { return p.Platform })
}

func TestRankScenarioA(t *testing.T) {
	agg, err := Aggregate(scenarioA())
	if err != nil {
		t.Fatal(err)
	}
	got := names(Rank(agg.ByPlatform))
	if want := []string{"Google", "Meta"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRankTieBreak(t *testing.T) {
	in := map[string]models.PlatformMetrics{
		"TikTok":   pm("TikTok", 50),
		"Meta":     pm("Meta", 50),
		"Google":   pm("Google", 200),
		"bing":     pm("bing", 50),
		"LinkedIn": pm("LinkedIn", -20),
	}
	// byte order puts upper case before lower case
	want := []string{"Google", "Meta", "TikTok", "bing", "LinkedIn"}
	for i := 0; i < 50; i++ {
		if got := names(Rank(in)); !reflect.DeepEqual(got, want) {
			t.Fatalf("run %d: got %v, want %v", i, got, want)
		}
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	in := map[string]models.PlatformMetrics{"a": pm("a", 1), "b": pm("b", 2)}
	out := Rank(in)
	out[0].Profit = 99
	if in["b"].Profit != 2 {
		t.Fatal("Rank output aliases its input")
	}
	if len(Rank(nil)) != 0 {
		t.Fatal("Rank(nil) should be empty")
	}
}
