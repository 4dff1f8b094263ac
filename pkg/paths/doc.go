// Package paths provides utilities for resolving project and repository roots.
//
// This package implements functions for locating the project configuration
// file and the enclosing git repository in a consistent manner throughout
// the application.
package paths
