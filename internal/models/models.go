package models

import "encoding/json"

// RawTable is a loaded document before normalization: header row plus string cells.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// Record is one normalized row of the dataset.
type Record struct {
	Platform    string
	Spend       float64
	Revenue     float64
	Clicks      int64
	Conversions int64
}

// Table is the normalized dataset. Records keep input order; Skipped counts
// blank input rows that produced no record.
type Table struct {
	Columns []string
	Records []Record
	Skipped int
}

// Ratio is a derived metric whose denominator may be zero.
type Ratio struct {
	Value   float64
	Defined bool
}

func Defined(v float64) Ratio { return Ratio{Value: v, Defined: true} }

var Undefined = Ratio{}

func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

func (r *Ratio) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = Undefined
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*r = Defined(v)
	return nil
}

type Metrics struct {
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue"`
	Profit      float64 `json:"profit"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	ROI         Ratio   `json:"roi"`
	ROAS        Ratio   `json:"roas"`
	CPL         Ratio   `json:"cpl"`
}

type PlatformMetrics struct {
	Platform string `json:"platform"`
	Metrics
}

type Aggregation struct {
	Total      Metrics                    `json:"total"`
	ByPlatform map[string]PlatformMetrics `json:"by_platform"`
	Rows       int                        `json:"rows"`
	Warnings   []UndefinedMetricWarning   `json:"warnings,omitempty"`
}

type KPICard struct {
	Label   string `json:"label"`
	Value   string `json:"value"`
	Defined bool   `json:"defined"`
}

type RankingEntry struct {
	Platform   string  `json:"platform"`
	Profit     float64 `json:"profit"`
	Annotation string  `json:"annotation"`
	Color      string  `json:"color"`
}

type ProportionEntry struct {
	Platform string  `json:"platform"`
	Spend    float64 `json:"spend"`
	Label    string  `json:"label"`
	Color    string  `json:"color"`
}

type DetailRow struct {
	Platform    string `json:"platform"`
	Conversions int64  `json:"conversions"`
	CPL         Ratio  `json:"cpl"`
	CPLText     string `json:"cpl_text"`
}

type DetailTable struct {
	Headers []string    `json:"headers"`
	Rows    []DetailRow `json:"rows"`
}

// Region places one panel on the report grid.
type Region struct {
	Panel   string `json:"panel"`
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	RowSpan int    `json:"row_span"`
	ColSpan int    `json:"col_span"`
}

type Layout struct {
	Rows         int       `json:"rows"`
	Cols         int       `json:"cols"`
	HeightRatios []float64 `json:"height_ratios"`
	Regions      []Region  `json:"regions"`
}

// Report is the composed panel set handed to a renderer.
type Report struct {
	Title      string            `json:"title"`
	KPICards   []KPICard         `json:"kpi_cards"`
	Ranking    []RankingEntry    `json:"ranking_panel"`
	Proportion []ProportionEntry `json:"proportion_panel"`
	Detail     DetailTable       `json:"detail_table"`
	Layout     Layout            `json:"layout"`
}

const (
	PanelKPICards   = "kpi_cards"
	PanelRanking    = "ranking_panel"
	PanelProportion = "proportion_panel"
	PanelDetail     = "detail_table"
)
