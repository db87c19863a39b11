package metrics

import (
	"sort"

	"github.com/samber/lo"

	"github.com/AngelCh415/adreport/internal/models"
)

// Rank orders platforms by profit, highest first; equal profits fall back to
// the platform name, ascending.
func Rank(byPlatform map[string]models.PlatformMetrics) []models.PlatformMetrics {
	out := lo.Values(byPlatform)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Profit != out[j].Profit {
			return out[i].Profit > out[j].Profit
		}
		return out[i].Platform < out[j].Platform
	})
	return out
}
