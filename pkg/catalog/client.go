package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cchdo/snapshotter/pkg/errors"
)

const (
	cruiseListPath = "/api/v1/cruise/all"
	fileListPath   = "/api/v1/file/all"
)

// HTTPClient fetches cruise and file listings from the catalog over plain
// HTTP GET. The catalog returns complete lists per call; there is no paging.
type HTTPClient struct {
	baseURL   *url.URL
	client    *http.Client
	userAgent string
}

// NewHTTPClient creates a new catalog client for the given base URL.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid catalog base URL %s", baseURL)
	}
	return &HTTPClient{
		baseURL: parsed,
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: "snapshotter/1.0",
	}, nil
}

// AllCruises fetches the complete cruise listing.
func (hc *HTTPClient) AllCruises(ctx context.Context) ([]Cruise, error) {
	var cruises []Cruise
	if err := hc.getJSON(ctx, cruiseListPath, &cruises); err != nil {
		return nil, errors.Wrap(errors.ErrMetadataFetch, err.Error())
	}
	return cruises, nil
}

// AllFiles fetches the complete file listing.
func (hc *HTTPClient) AllFiles(ctx context.Context) ([]File, error) {
	var files []File
	if err := hc.getJSON(ctx, fileListPath, &files); err != nil {
		return nil, errors.Wrap(errors.ErrMetadataFetch, err.Error())
	}
	return files, nil
}

// FileURL resolves a file record's path against the catalog base URL.
func (hc *HTTPClient) FileURL(file File) *url.URL {
	return hc.baseURL.ResolveReference(&url.URL{Path: file.FilePath})
}

func (hc *HTTPClient) getJSON(ctx context.Context, path string, out interface{}) error {
	endpoint := hc.baseURL.ResolveReference(&url.URL{Path: path})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), http.NoBody)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", hc.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := hc.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to fetch %s", endpoint)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code for %s: %d", endpoint, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "failed to parse %s response", path)
	}
	return nil
}
