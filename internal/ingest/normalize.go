package ingest

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/samber/lo"

	"github.com/AngelCh415/adreport/internal/models"
)

const (
	ColPlatform    = "platform"
	ColSpend       = "spend"
	ColRevenue     = "revenue"
	ColClicks      = "clicks"
	ColConversions = "conversions"
)

// RequiredColumns is the minimum schema a dataset must expose.
var RequiredColumns = []string{ColPlatform, ColSpend, ColRevenue, ColClicks, ColConversions}

// UnknownPlatform groups rows whose platform cell is blank.
const UnknownPlatform = "unknown"

var errNotIntegral = errors.New("not an integer")

// NormalizeColumn lower-cases a column name and turns whitespace into underscores.
// NormalizeColumn(NormalizeColumn(s)) == NormalizeColumn(s).
func NormalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, name)
}

func NormalizeColumns(names []string) []string {
	return lo.Map(names, func(n string, _ int) string { return NormalizeColumn(n) })
}

// Normalize canonicalizes the header row, checks the required columns are present
// and decodes every non-blank row into a Record. Row order is preserved and
// len(Records)+Skipped always equals the input row count.
func Normalize(raw models.RawTable, required []string) (models.Table, error) {
	cols := NormalizeColumns(raw.Headers)
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}

	var missing []string
	for _, r := range required {
		if _, ok := index[NormalizeColumn(r)]; !ok {
			missing = append(missing, NormalizeColumn(r))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return models.Table{}, &models.SchemaError{Missing: missing}
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := models.Table{Columns: cols, Records: make([]models.Record, 0, len(raw.Rows))}
	for n, row := range raw.Rows {
		if blankRow(row) {
			out.Skipped++
			continue
		}
		rowNum := n + 1
		rec := models.Record{Platform: cell(row, ColPlatform)}
		if rec.Platform == "" {
			rec.Platform = UnknownPlatform
		}

		var err error
		if rec.Spend, err = parseAmount(cell(row, ColSpend)); err != nil {
			return models.Table{}, cellErr(rowNum, ColSpend, cell(row, ColSpend), err)
		}
		if rec.Revenue, err = parseAmount(cell(row, ColRevenue)); err != nil {
			return models.Table{}, cellErr(rowNum, ColRevenue, cell(row, ColRevenue), err)
		}
		if rec.Clicks, err = parseCount(cell(row, ColClicks)); err != nil {
			return models.Table{}, cellErr(rowNum, ColClicks, cell(row, ColClicks), err)
		}
		if rec.Conversions, err = parseCount(cell(row, ColConversions)); err != nil {
			return models.Table{}, cellErr(rowNum, ColConversions, cell(row, ColConversions), err)
		}
		out.Records = append(out.Records, rec)
	}
	return out, nil
}

func cellErr(row int, col, val string, err error) error {
	return &models.CellError{Row: row, Column: col, Value: val, Err: err}
}

func blankRow(row []string) bool {
	return lo.EveryBy(row, func(c string) bool { return strings.TrimSpace(c) == "" })
}

// parseAmount accepts spreadsheet-style money ("$1,200.50"). Blank is zero.
func parseAmount(s string) (float64, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ',', '$', ' ':
			return -1
		default:
			return r
		}
	}, s)
	if clean == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}

func parseCount(s string) (int64, error) {
	v, err := parseAmount(s)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
		return 0, errNotIntegral
	}
	return int64(v), nil
}
