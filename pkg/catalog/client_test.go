package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/cchdo/snapshotter/pkg/errors"
)

func newCatalogServer(t *testing.T, cruisesJSON, filesJSON string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/cruise/all":
			_, _ = w.Write([]byte(cruisesJSON))
		case "/api/v1/file/all":
			_, _ = w.Write([]byte(filesJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestAllCruises(t *testing.T) {
	cruisesJSON := `[
		{
			"expocode": "33RR20160208",
			"startDate": "2016-02-08",
			"endDate": "2016-03-30",
			"ship": "Roger Revelle",
			"country": "US",
			"participants": [{"name": "A. Scientist", "role": "Chief Scientist"}],
			"collections": {
				"woce_lines": ["I08S"],
				"oceans": ["indian"],
				"programs": ["GO-SHIP"],
				"groups": []
			},
			"notes": [{"date": "2017-01-05", "name": "Staff", "data_type": "bottle", "summary": "Update", "action": "merged", "body": ["line one"]}],
			"files": [101, 102]
		}
	]`
	server := newCatalogServer(t, cruisesJSON, "[]")
	defer server.Close()

	client, err := NewHTTPClient(server.URL, time.Second)
	require.NoError(t, err)

	cruises, err := client.AllCruises(context.Background())
	require.NoError(t, err)
	require.Len(t, cruises, 1)

	cruise := cruises[0]
	assert.Equal(t, "33RR20160208", cruise.Expocode)
	assert.Equal(t, "2016-02-08", cruise.StartDate)
	assert.Equal(t, "Roger Revelle", cruise.Ship)
	assert.Equal(t, []string{"I08S"}, cruise.Collections.WOCELines)
	assert.Equal(t, []int{101, 102}, cruise.FileIDs)
	require.Len(t, cruise.Notes, 1)
	assert.Equal(t, []string{"line one"}, cruise.Notes[0].Body)
}

func TestAllFiles(t *testing.T) {
	filesJSON := `[
		{
			"id": 101,
			"role": "dataset",
			"permissions": [],
			"data_type": "bottle",
			"data_format": "exchange",
			"file_path": "/data/bottle/33RR20160208_hy1.csv",
			"file_hash": "abc123"
		},
		{
			"id": 102,
			"role": "dataset",
			"permissions": ["argo"],
			"data_type": "ctd",
			"data_format": "exchange",
			"file_path": "/data/ctd/33RR20160208_ct1.zip",
			"file_hash": "def456"
		}
	]`
	server := newCatalogServer(t, "[]", filesJSON)
	defer server.Close()

	client, err := NewHTTPClient(server.URL, time.Second)
	require.NoError(t, err)

	files, err := client.AllFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, 101, files[0].ID)
	assert.Equal(t, "dataset", files[0].Role)
	assert.Empty(t, files[0].Permissions)
	assert.Equal(t, "abc123", files[0].FileHash)
	assert.Equal(t, []string{"argo"}, files[1].Permissions)
}

func TestAllCruises_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, time.Second)
	require.NoError(t, err)

	_, err = client.AllCruises(context.Background())
	assert.ErrorIs(t, err, pkgerrors.ErrMetadataFetch)
}

func TestAllFiles_MalformedJSON(t *testing.T) {
	server := newCatalogServer(t, "[]", "{not json")
	defer server.Close()

	client, err := NewHTTPClient(server.URL, time.Second)
	require.NoError(t, err)

	_, err = client.AllFiles(context.Background())
	assert.ErrorIs(t, err, pkgerrors.ErrMetadataFetch)
}

func TestFileURL(t *testing.T) {
	client, err := NewHTTPClient("https://cchdo.ucsd.edu", time.Second)
	require.NoError(t, err)

	got := client.FileURL(File{FilePath: "/data/bottle/318M_hy1.csv"})
	assert.Equal(t, "https://cchdo.ucsd.edu/data/bottle/318M_hy1.csv", got.String())
}

func TestParticipantsByRole(t *testing.T) {
	cruise := Cruise{
		Participants: []Participant{
			{Name: "A", Role: "Chief Scientist"},
			{Name: "B", Role: "CTD Watch"},
			{Name: "C", Role: "Chief Scientist"},
		},
	}

	chiefs := cruise.ParticipantsByRole("Chief Scientist")
	require.Len(t, chiefs, 2)
	assert.Equal(t, "A", chiefs[0].Name)
	assert.Equal(t, "C", chiefs[1].Name)
	assert.Empty(t, cruise.ParticipantsByRole("Unknown"))
}
