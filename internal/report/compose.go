package report

import (
	"github.com/AngelCh415/adreport/internal/metrics"
	"github.com/AngelCh415/adreport/internal/models"
)

// Compose lays the ranked metrics out as the four report panels. It only
// selects, orders and formats values; every number comes from agg or ranked
// untouched.
func Compose(agg models.Aggregation, ranked []models.PlatformMetrics, theme Theme) models.Report {
	rep := models.Report{
		Title:      theme.Title,
		Ranking:    make([]models.RankingEntry, 0, len(ranked)),
		Proportion: make([]models.ProportionEntry, 0, len(ranked)),
		Detail: models.DetailTable{
			Headers: theme.DetailHeaders[:],
			Rows:    make([]models.DetailRow, 0, len(ranked)),
		},
		Layout: FixedLayout(),
	}

	meanROI := metrics.MeanROI(ranked)
	roiText := theme.NoData
	if meanROI.Defined {
		roiText = theme.Percent(meanROI.Value)
	}
	rep.KPICards = []models.KPICard{
		{Label: theme.SpendLabel, Value: theme.Currency(agg.Total.Spend), Defined: true},
		{Label: theme.RevenueLabel, Value: theme.Currency(agg.Total.Revenue), Defined: true},
		{Label: theme.ROILabel, Value: roiText, Defined: meanROI.Defined},
	}

	for i, p := range ranked {
		color := theme.colorAt(i)
		rep.Ranking = append(rep.Ranking, models.RankingEntry{
			Platform:   p.Platform,
			Profit:     p.Profit,
			Annotation: theme.Currency(p.Profit),
			Color:      color,
		})
		// a zero-spend slice has no share of the donut
		if p.Spend != 0 {
			rep.Proportion = append(rep.Proportion, models.ProportionEntry{
				Platform: p.Platform,
				Spend:    p.Spend,
				Label:    theme.Currency(p.Spend),
				Color:    color,
			})
		}
		rep.Detail.Rows = append(rep.Detail.Rows, models.DetailRow{
			Platform:    p.Platform,
			Conversions: p.Conversions,
			CPL:         p.CPL,
			CPLText:     theme.ratioText(p.CPL, theme.CurrencyCents),
		})
	}
	return rep
}

// FixedLayout is the report canvas: a 3x3 grid with KPI cards across the top,
// ranking and proportion panels in the middle and the detail table at the bottom.
func FixedLayout() models.Layout {
	return models.Layout{
		Rows:         3,
		Cols:         3,
		HeightRatios: []float64{0.7, 1.5, 0.6},
		Regions: []models.Region{
			{Panel: models.PanelKPICards, Row: 0, Col: 0, RowSpan: 1, ColSpan: 3},
			{Panel: models.PanelRanking, Row: 1, Col: 0, RowSpan: 1, ColSpan: 2},
			{Panel: models.PanelProportion, Row: 1, Col: 2, RowSpan: 1, ColSpan: 1},
			{Panel: models.PanelDetail, Row: 2, Col: 0, RowSpan: 1, ColSpan: 3},
		},
	}
}
