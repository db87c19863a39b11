package metrics

import (
	"math"
	"sort"
	"strconv"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/AngelCh415/adreport/internal/models"
)

// TotalScope names the global aggregate in warnings.
const TotalScope = "total"

type sums struct {
	spend       decimal.Decimal
	revenue     decimal.Decimal
	clicks      int64
	conversions int64
}

func (s *sums) add(r models.Record) {
	s.spend = s.spend.Add(decimal.NewFromFloat(r.Spend))
	s.revenue = s.revenue.Add(decimal.NewFromFloat(r.Revenue))
	s.clicks += r.Clicks
	s.conversions += r.Conversions
}

// Aggregate sums the table globally and per platform, then derives ROI, ROAS
// and CPL. An empty table yields the zero aggregation, every ratio undefined,
// together with models.ErrEmptyDataset; the aggregation is usable either way.
//
// Spend and revenue must be finite; a NaN or infinite amount is reported as a
// *models.CellError and nothing is aggregated.
func Aggregate(t models.Table) (models.Aggregation, error) {
	for i, r := range t.Records {
		if err := checkFinite(i+1, "spend", r.Spend); err != nil {
			return models.Aggregation{}, err
		}
		if err := checkFinite(i+1, "revenue", r.Revenue); err != nil {
			return models.Aggregation{}, err
		}
	}

	var total sums
	groups := map[string]*sums{}
	for _, r := range t.Records {
		total.add(r)
		g, ok := groups[r.Platform]
		if !ok {
			g = &sums{}
			groups[r.Platform] = g
		}
		g.add(r)
	}

	agg := models.Aggregation{
		ByPlatform: make(map[string]models.PlatformMetrics, len(groups)),
		Rows:       len(t.Records),
	}
	agg.Total, agg.Warnings = derive(TotalScope, total, agg.Warnings)

	// sorted so warnings come out in a stable order
	platforms := lo.Keys(groups)
	sort.Strings(platforms)
	for _, p := range platforms {
		var m models.Metrics
		m, agg.Warnings = derive(p, *groups[p], agg.Warnings)
		agg.ByPlatform[p] = models.PlatformMetrics{Platform: p, Metrics: m}
	}

	if agg.Rows == 0 {
		return agg, models.ErrEmptyDataset
	}
	return agg, nil
}

func checkFinite(row int, col string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &models.CellError{Row: row, Column: col, Value: strconv.FormatFloat(v, 'g', -1, 64), Err: strconv.ErrRange}
	}
	return nil
}

func derive(scope string, s sums, warns []models.UndefinedMetricWarning) (models.Metrics, []models.UndefinedMetricWarning) {
	profit := s.revenue.Sub(s.spend)
	m := models.Metrics{
		Spend:       s.spend.InexactFloat64(),
		Revenue:     s.revenue.InexactFloat64(),
		Profit:      profit.InexactFloat64(),
		Clicks:      s.clicks,
		Conversions: s.conversions,
	}

	if s.spend.IsZero() {
		warns = append(warns,
			models.UndefinedMetricWarning{Scope: scope, Metric: "roi", Reason: "spend is zero"},
			models.UndefinedMetricWarning{Scope: scope, Metric: "roas", Reason: "spend is zero"},
		)
	} else {
		m.ROI = models.Defined(m.Profit / m.Spend * 100)
		m.ROAS = models.Defined(m.Revenue / m.Spend)
	}
	if s.conversions == 0 {
		warns = append(warns, models.UndefinedMetricWarning{Scope: scope, Metric: "cpl", Reason: "conversions is zero"})
	} else {
		m.CPL = models.Defined(m.Spend / float64(s.conversions))
	}
	return m, warns
}

// MeanROI averages the defined ROI values of the given platforms. It is
// undefined when no platform has a defined ROI.
func MeanROI(ranked []models.PlatformMetrics) models.Ratio {
	defined := lo.Filter(ranked, func(p models.PlatformMetrics, _ int) bool { return p.ROI.Defined })
	if len(defined) == 0 {
		return models.Undefined
	}
	sum := lo.SumBy(defined, func(p models.PlatformMetrics) float64 { return p.ROI.Value })
	return models.Defined(sum / float64(len(defined)))
}
