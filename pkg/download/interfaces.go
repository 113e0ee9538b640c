package download

import (
	"context"
	"net/url"

	"github.com/hashicorp/go-multierror"
)

// Manager defines the interface for filling the content-addressed download
// cache. It replaces ad-hoc HTTP downloading with a batched, integrity
// verified API whose results downstream stages index by content hash.
type Manager interface {
	// FetchAll resolves all items into the cache under a bounded number of
	// concurrent transfers. Every item is attempted even if some fail; the
	// per-item outcomes are collected in the returned Result. The error
	// return is reserved for structural problems (unusable cache directory).
	FetchAll(ctx context.Context, items []Item, opts Options) (*Result, error)

	// Ensure resolves a single item into the cache and returns the local
	// path of the verified content.
	Ensure(ctx context.Context, item Item, dir string) (string, error)
}

// Item represents one remote file to resolve into the cache.
type Item struct {
	URL      *url.URL // source URL to download
	Checksum string   // hex-encoded sha256 published by the catalog; also the cache key
}

// Options control the behavior of the download manager.
type Options struct {
	Dir         string // cache directory. Must be absolute.
	Concurrency int    // cap on simultaneously in-flight transfers; if <=0, DefaultConcurrency

	// OnItemDone, if set, is called once per item as it completes, from
	// worker goroutines. err is nil on success.
	OnItemDone func(item Item, err error)
}

// Failure records one item that could not be resolved, with enough detail to
// retry manually.
type Failure struct {
	URL      string
	Checksum string
	Err      error
}

// Result holds the per-item outcomes of a FetchAll batch.
type Result struct {
	// Paths maps each successfully resolved checksum to its cache path.
	Paths map[string]string

	// Failures lists the items that could not be resolved, in completion order.
	Failures []Failure
}

// Err aggregates all failures into a single error, or nil if none occurred.
func (r *Result) Err() error {
	var merr *multierror.Error
	for _, f := range r.Failures {
		merr = multierror.Append(merr, f.Err)
	}
	return merr.ErrorOrNil()
}
