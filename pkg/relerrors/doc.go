// Package relerrors provides error definitions shared across the codebase.
//
// This package defines standardized sentinel errors to ensure consistent
// error reporting and wrapping throughout the codebase.
package relerrors
