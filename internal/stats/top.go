// Package stats contains statistics calculations and reporting.
package stats

import (
	"sort"

	"github.com/verte-zerg/minedigest/internal/model"
)

func sortSources(sources []model.SourceStat) {
	sort.Slice(sources, func(i, j int) bool {
		if sources[i].Chars == sources[j].Chars {
			return sources[i].Name < sources[j].Name
		}
		return sources[i].Chars > sources[j].Chars
	})
}

// TopSources returns the first n sources of a ranked breakdown and how many
// were left out.
func TopSources(sources []model.SourceStat, n int) ([]model.SourceStat, int) {
	if n <= 0 || len(sources) == 0 {
		return nil, len(sources)
	}
	if n > len(sources) {
		n = len(sources)
	}
	return sources[:n], len(sources) - n
}
