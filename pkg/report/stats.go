package report

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/cchdo/snapshotter/pkg/catalog"
	"github.com/cchdo/snapshotter/pkg/errors"
)

// Stats counts how often each collection tag appears across cruises.
type Stats struct {
	Basins   map[string]int
	Programs map[string]int
}

// CollectStats tallies ocean basins and programs over the cruise listing.
func CollectStats(cruises []catalog.Cruise) Stats {
	stats := Stats{
		Basins:   make(map[string]int),
		Programs: make(map[string]int),
	}
	for _, cruise := range cruises {
		for _, ocean := range cruise.Collections.Oceans {
			stats.Basins[ocean]++
		}
		for _, program := range cruise.Collections.Programs {
			stats.Programs[program]++
		}
	}
	return stats
}

// WriteCounts writes a two-column (count, <label>) frequency table, most
// common first, ties broken by name for stable output.
func WriteCounts(w io.Writer, label string, counts map[string]int) error {
	type pair struct {
		name  string
		count int
	}
	pairs := make([]pair, 0, len(counts))
	for name, count := range counts {
		pairs = append(pairs, pair{name: name, count: count})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].name < pairs[j].name
	})

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"count", label}); err != nil {
		return errors.Wrapf(err, "failed to write %s header", label)
	}
	for _, p := range pairs {
		if err := cw.Write([]string{strconv.Itoa(p.count), p.name}); err != nil {
			return errors.Wrapf(err, "failed to write %s row", label)
		}
	}
	cw.Flush()
	return errors.Wrapf(cw.Error(), "failed to flush %s report", label)
}
