// Package relconfig loads and validates the project configuration file.
//
// The configuration lives in `.relnote.yaml` at the project root and
// declares the changelog path, the fragment directory, the rubric set, and
// optional archive and publish settings.
package relconfig
