package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/AngelCh415/adreport/internal/models"
)

const barWidth = 30

// WriteText renders a composed report for a terminal.
func WriteText(w io.Writer, rep models.Report) error {
	sep := strings.Repeat("═", 60)
	thin := strings.Repeat("─", 60)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n  %s\n%s\n\n", sep, rep.Title, sep)

	for _, c := range rep.KPICards {
		fmt.Fprintf(&b, "  %-16s %s\n", c.Label, c.Value)
	}

	fmt.Fprintf(&b, "\n  Profit by platform\n  %s\n", thin)
	var top float64
	for _, e := range rep.Ranking {
		if e.Profit > top {
			top = e.Profit
		}
	}
	for _, e := range rep.Ranking {
		n := 0
		if top > 0 && e.Profit > 0 {
			n = int(e.Profit / top * barWidth)
		}
		fmt.Fprintf(&b, "  %-16s %-*s %s\n", truncate(e.Platform, 16), barWidth, strings.Repeat("█", n), e.Annotation)
	}

	fmt.Fprintf(&b, "\n  Spend share\n  %s\n", thin)
	if len(rep.Proportion) == 0 {
		b.WriteString("  no spend recorded\n")
	}
	for _, e := range rep.Proportion {
		fmt.Fprintf(&b, "  %-16s %s\n", truncate(e.Platform, 16), e.Label)
	}

	fmt.Fprintf(&b, "\n  %s\n", thin)
	tw := tabwriter.NewWriter(&b, 0, 4, 3, ' ', 0)
	fmt.Fprintf(tw, "  %s\n", strings.Join(rep.Detail.Headers, "\t"))
	for _, r := range rep.Detail.Rows {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", r.Platform, strconv.FormatInt(r.Conversions, 10), r.CPLText)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(&b, "%s\n", sep)

	_, err := io.WriteString(w, b.String())
	return err
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
