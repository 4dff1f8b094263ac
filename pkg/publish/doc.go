// Package publish uploads rendered release notes to S3-compatible
// object storage so a docs site can serve them.
package publish
