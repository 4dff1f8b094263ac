// Package catalog keeps a local history of published releases and their
// entries in a SQLite database, so history stays queryable after old
// sections move to the archive.
package catalog
