// Package archive moves old release sections out of the changelog into
// zstd-compressed Markdown bundles, one per release.
package archive
