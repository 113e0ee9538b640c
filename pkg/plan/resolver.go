package plan

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/cchdo/snapshotter/pkg/catalog"
	"github.com/cchdo/snapshotter/pkg/model"
	"github.com/samber/lo"
)

// fileSuffixes is the allow-list mapping archive groups to output filename
// suffixes. A (data type, data format) pair absent from this table is
// deliberately excluded from the snapshot.
var fileSuffixes = map[model.CategoryKey]string{
	{DataType: "bottle", DataFormat: "cf_netcdf"}:   "_bottle.nc",
	{DataType: "bottle", DataFormat: "exchange"}:    "_hy1.csv",
	{DataType: "bottle", DataFormat: "whp_netcdf"}:  "_nc_hyd.zip",
	{DataType: "bottle", DataFormat: "woce"}:        "hy.txt",
	{DataType: "ctd", DataFormat: "cf_netcdf"}:      "_ctd.nc",
	{DataType: "ctd", DataFormat: "exchange"}:       "_ct1.zip",
	{DataType: "ctd", DataFormat: "whp_netcdf"}:     "_nc_ctd.zip",
	{DataType: "ctd", DataFormat: "woce"}:           "ct.zip",
	{DataType: "large_volume", DataFormat: "woce"}:  "lv.txt",
	{DataType: "documentation", DataFormat: "pdf"}:  "do.pdf",
	{DataType: "documentation", DataFormat: "text"}: "do.txt",
	{DataType: "summary", DataFormat: "woce"}:       "su.txt",
}

// Suffix returns the output filename suffix for a key, if the key is mapped.
func Suffix(key model.CategoryKey) (string, bool) {
	suffix, ok := fileSuffixes[key]
	return suffix, ok
}

// Build walks cruises in catalog order and resolves every eligible, mapped
// file into a NamedDownload grouped by CategoryKey. Output filenames are
// `<expocode><suffix>` with path separators replaced; a name collision within
// a group appends `_2`, `_3`, ... scanning strictly upward until unique, so
// duplicate expocodes resolve deterministically as long as catalog order is
// stable.
func Build(cruises []catalog.Cruise, files []catalog.File, fileURL func(catalog.File) *url.URL) *model.DownloadPlan {
	eligible := lo.Filter(files, func(f catalog.File, _ int) bool {
		return Eligible(f)
	})
	byID := lo.KeyBy(eligible, func(f catalog.File) int {
		return f.ID
	})

	p := model.NewDownloadPlan()
	for _, cruise := range cruises {
		expocode := strings.ReplaceAll(cruise.Expocode, "/", "_")
		for _, fileID := range cruise.FileIDs {
			file, ok := byID[fileID]
			if !ok {
				continue
			}

			key := model.CategoryKey{DataType: file.DataType, DataFormat: file.DataFormat}
			suffix, ok := fileSuffixes[key]
			if !ok {
				continue
			}

			fname := expocode + suffix
			for count := 2; p.HasName(key, fname); count++ {
				fname = fmt.Sprintf("%s_%d%s", expocode, count, suffix)
			}

			p.Add(key, model.NamedDownload{
				Filename: fname,
				URL:      fileURL(file),
				Checksum: file.FileHash,
			})
		}
	}
	return p
}
