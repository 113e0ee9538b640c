// Package plan decides which catalog files belong in a snapshot and resolves
// them into the immutable download plan the rest of the pipeline works from.
package plan

import "github.com/cchdo/snapshotter/pkg/catalog"

// restrictedDataType names the category excluded from public snapshots.
const restrictedDataType = "trace_metals"

// Eligible reports whether a file record is in scope for the snapshot: it
// must be a primary dataset file, carry no access restrictions, and not
// belong to a restricted category. Records with missing fields are simply
// ineligible, never an error.
func Eligible(file catalog.File) bool {
	// we also ensure the files are public, just in case
	return file.Role == "dataset" &&
		len(file.Permissions) == 0 &&
		file.DataType != restrictedDataType
}
