package plan

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cchdo/snapshotter/pkg/catalog"
	"github.com/cchdo/snapshotter/pkg/model"
)

func TestEligible(t *testing.T) {
	tests := []struct {
		name string
		file catalog.File
		want bool
	}{
		{
			name: "public dataset file",
			file: catalog.File{Role: "dataset", DataType: "bottle"},
			want: true,
		},
		{
			name: "non-dataset role",
			file: catalog.File{Role: "merged", DataType: "bottle"},
			want: false,
		},
		{
			name: "empty role",
			file: catalog.File{DataType: "bottle"},
			want: false,
		},
		{
			name: "restricted permissions",
			file: catalog.File{Role: "dataset", DataType: "bottle", Permissions: []string{"argo"}},
			want: false,
		},
		{
			name: "trace metals excluded",
			file: catalog.File{Role: "dataset", DataType: "trace_metals"},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Eligible(tt.file))
		})
	}
}

func TestSuffix(t *testing.T) {
	suffix, ok := Suffix(model.CategoryKey{DataType: "bottle", DataFormat: "exchange"})
	require.True(t, ok)
	assert.Equal(t, "_hy1.csv", suffix)

	_, ok = Suffix(model.CategoryKey{DataType: "bottle", DataFormat: "unknown_format"})
	assert.False(t, ok)
}

func testFileURL(f catalog.File) *url.URL {
	return &url.URL{Scheme: "https", Host: "example.org", Path: f.FilePath}
}

func TestBuild_ResolvesNamesAndGroups(t *testing.T) {
	files := []catalog.File{
		{ID: 1, Role: "dataset", DataType: "bottle", DataFormat: "exchange", FilePath: "/data/b1", FileHash: "aa"},
		{ID: 2, Role: "dataset", DataType: "ctd", DataFormat: "exchange", FilePath: "/data/c1", FileHash: "bb"},
		{ID: 3, Role: "dataset", DataType: "bottle", DataFormat: "woce", FilePath: "/data/w1", FileHash: "cc"},
	}
	cruises := []catalog.Cruise{
		{Expocode: "33RR20160208", FileIDs: []int{1, 2, 3}},
	}

	p := Build(cruises, files, testFileURL)

	require.Equal(t, []model.CategoryKey{
		{DataType: "bottle", DataFormat: "exchange"},
		{DataType: "ctd", DataFormat: "exchange"},
		{DataType: "bottle", DataFormat: "woce"},
	}, p.Categories())

	bottle := p.Files(model.CategoryKey{DataType: "bottle", DataFormat: "exchange"})
	require.Len(t, bottle, 1)
	assert.Equal(t, "33RR20160208_hy1.csv", bottle[0].Filename)
	assert.Equal(t, "https://example.org/data/b1", bottle[0].URL.String())
	assert.Equal(t, "aa", bottle[0].Checksum)

	woce := p.Files(model.CategoryKey{DataType: "bottle", DataFormat: "woce"})
	require.Len(t, woce, 1)
	assert.Equal(t, "33RR20160208hy.txt", woce[0].Filename)
}

func TestBuild_CollisionsCountUpward(t *testing.T) {
	files := []catalog.File{
		{ID: 1, Role: "dataset", DataType: "bottle", DataFormat: "exchange", FileHash: "aa"},
		{ID: 2, Role: "dataset", DataType: "bottle", DataFormat: "exchange", FileHash: "bb"},
		{ID: 3, Role: "dataset", DataType: "bottle", DataFormat: "exchange", FileHash: "cc"},
	}
	// three cruises sharing one expocode, each contributing the same category
	cruises := []catalog.Cruise{
		{Expocode: "64PE15", FileIDs: []int{1}},
		{Expocode: "64PE15", FileIDs: []int{2}},
		{Expocode: "64PE15", FileIDs: []int{3}},
	}

	p := Build(cruises, files, testFileURL)

	got := p.Files(model.CategoryKey{DataType: "bottle", DataFormat: "exchange"})
	require.Len(t, got, 3)
	assert.Equal(t, "64PE15_hy1.csv", got[0].Filename)
	assert.Equal(t, "64PE15_2_hy1.csv", got[1].Filename)
	assert.Equal(t, "64PE15_3_hy1.csv", got[2].Filename)
}

func TestBuild_ExpocodeSlashesReplaced(t *testing.T) {
	files := []catalog.File{
		{ID: 1, Role: "dataset", DataType: "summary", DataFormat: "woce", FileHash: "aa"},
	}
	cruises := []catalog.Cruise{
		{Expocode: "31/PR1999", FileIDs: []int{1}},
	}

	p := Build(cruises, files, testFileURL)

	got := p.Files(model.CategoryKey{DataType: "summary", DataFormat: "woce"})
	require.Len(t, got, 1)
	assert.Equal(t, "31_PR1999su.txt", got[0].Filename)
}

func TestBuild_SkipsIneligibleAndUnmapped(t *testing.T) {
	files := []catalog.File{
		{ID: 1, Role: "dataset", DataType: "bottle", DataFormat: "exchange", FileHash: "aa"},
		{ID: 2, Role: "merged", DataType: "bottle", DataFormat: "exchange", FileHash: "bb"},
		{ID: 3, Role: "dataset", DataType: "bottle", DataFormat: "matlab", FileHash: "cc"},
		{ID: 4, Role: "dataset", DataType: "trace_metals", DataFormat: "exchange", FileHash: "dd"},
	}
	cruises := []catalog.Cruise{
		{Expocode: "318M", FileIDs: []int{1, 2, 3, 4, 99}},
	}

	p := Build(cruises, files, testFileURL)

	assert.Equal(t, 1, p.Len())
	got := p.Files(model.CategoryKey{DataType: "bottle", DataFormat: "exchange"})
	require.Len(t, got, 1)
	assert.Equal(t, "318M_hy1.csv", got[0].Filename)
}
