package report

import (
	"encoding/csv"
	"io"
	"sort"
	"strings"

	"github.com/cchdo/snapshotter/pkg/catalog"
	"github.com/cchdo/snapshotter/pkg/errors"
)

// indexColumns is the cruise index header, in the published column order.
var indexColumns = []string{
	"expocode",
	"startDate",
	"endDate",
	"ship",
	"country",
	"woce_lines",
	"programs",
	"oceans",
	"groups",
}

// WriteIndex writes the tabular cruise index, one row per cruise sorted by
// expocode, collection tags joined as comma-separated text.
func WriteIndex(w io.Writer, cruises []catalog.Cruise) error {
	sorted := make([]catalog.Cruise, len(cruises))
	copy(sorted, cruises)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Expocode < sorted[j].Expocode
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(indexColumns); err != nil {
		return errors.Wrap(err, "failed to write cruise index header")
	}
	for _, cruise := range sorted {
		row := []string{
			cruise.Expocode,
			cruise.StartDate,
			cruise.EndDate,
			cruise.Ship,
			cruise.Country,
			strings.Join(cruise.Collections.WOCELines, ", "),
			strings.Join(cruise.Collections.Programs, ", "),
			strings.Join(cruise.Collections.Oceans, ", "),
			strings.Join(cruise.Collections.Groups, ", "),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "failed to write cruise index row for %s", cruise.Expocode)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush cruise index")
}
