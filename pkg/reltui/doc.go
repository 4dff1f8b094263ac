// Package reltui holds the Bubble Tea models behind the interactive
// commands: a progress view for release builds and a form for writing
// news fragments.
package reltui
