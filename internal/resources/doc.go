// Package resources copies a resource tree and rewrites the AT files inside
// it on the fly.
//
// The Copier decides which files are AT files from a PathSet; only lines of
// those files reach the Filter. The Filter loads its mappings on first use
// and remembers a failed load for the rest of its life.
package resources
