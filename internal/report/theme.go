package report

// Theme holds every presentation constant the composer needs. It is passed by
// value and contains no reference types, so a composed report can never alter
// the caller's theme.
type Theme struct {
	Title          string
	CurrencySymbol string
	Placeholder    string
	NoData         string

	SpendLabel   string
	RevenueLabel string
	ROILabel     string

	DetailHeaders [3]string
	Palette       [4]string
}

func DefaultTheme() Theme {
	return Theme{
		Title:          "MARKETING PERFORMANCE ANALYSIS",
		CurrencySymbol: "$",
		Placeholder:    "—",
		NoData:         "no data",
		SpendLabel:     "TOTAL SPEND",
		RevenueLabel:   "TOTAL REVENUE",
		ROILabel:       "AVERAGE ROI",
		DetailHeaders:  [3]string{"PLATFORM", "CONVERSIONS", "CPL (COST PER LEAD)"},
		Palette:        [4]string{"#1B263B", "#415A77", "#778DA9", "#E0E1DD"},
	}
}

// colorAt cycles through the palette by rank position.
func (t Theme) colorAt(i int) string {
	return t.Palette[i%len(t.Palette)]
}
