// Package model provides the value types shared by the snapshot pipeline:
// archive grouping keys, resolved download units and the download plan.
package model

import "net/url"

// CategoryKey identifies one output archive group: a (data type, data format)
// pair. The set of keys that produce archives is a static allow-list owned by
// the naming resolver; unmapped keys are excluded from the snapshot.
type CategoryKey struct {
	DataType   string
	DataFormat string
}

// String returns the key in its archive naming form, e.g. "bottle_exchange".
func (k CategoryKey) String() string {
	return k.DataType + "_" + k.DataFormat
}

// ArchiveName returns the name of the zip archive emitted for this key.
func (k CategoryKey) ArchiveName() string {
	return k.String() + ".zip"
}

// NamedDownload is the resolved unit of work for the download cache: an
// output filename unique within its category, the source URL and the expected
// content hash published by the catalog.
type NamedDownload struct {
	Filename string
	URL      *url.URL
	Checksum string // hex-encoded sha256
}

// DownloadPlan groups NamedDownloads by CategoryKey, preserving the catalog
// order in which entries were resolved. That insertion order, not fetch
// completion order, determines archive entry order and keeps repeated
// snapshots byte-identical. The plan is built once by the naming resolver and
// read-only afterwards.
type DownloadPlan struct {
	keys   []CategoryKey
	groups map[CategoryKey][]NamedDownload
	names  map[CategoryKey]map[string]struct{}
}

// NewDownloadPlan returns an empty plan.
func NewDownloadPlan() *DownloadPlan {
	return &DownloadPlan{
		groups: make(map[CategoryKey][]NamedDownload),
		names:  make(map[CategoryKey]map[string]struct{}),
	}
}

// Add appends a download to the key's group. Filenames must already be unique
// within the key; the resolver guarantees this before calling Add.
func (p *DownloadPlan) Add(key CategoryKey, dl NamedDownload) {
	if _, ok := p.groups[key]; !ok {
		p.keys = append(p.keys, key)
		p.names[key] = make(map[string]struct{})
	}
	p.groups[key] = append(p.groups[key], dl)
	p.names[key][dl.Filename] = struct{}{}
}

// HasName reports whether a filename is already taken within the key's group.
func (p *DownloadPlan) HasName(key CategoryKey, filename string) bool {
	_, ok := p.names[key][filename]
	return ok
}

// Categories returns the keys in first-insertion order.
func (p *DownloadPlan) Categories() []CategoryKey {
	out := make([]CategoryKey, len(p.keys))
	copy(out, p.keys)
	return out
}

// Files returns the key's downloads in insertion order.
func (p *DownloadPlan) Files(key CategoryKey) []NamedDownload {
	out := make([]NamedDownload, len(p.groups[key]))
	copy(out, p.groups[key])
	return out
}

// Items returns every download in the plan, grouped by category in plan order.
func (p *DownloadPlan) Items() []NamedDownload {
	var out []NamedDownload
	for _, key := range p.keys {
		out = append(out, p.groups[key]...)
	}
	return out
}

// Len returns the total number of downloads in the plan.
func (p *DownloadPlan) Len() int {
	n := 0
	for _, g := range p.groups {
		n += len(g)
	}
	return n
}
