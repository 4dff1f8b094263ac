// Package fragment reads news fragments: one small Markdown file per pull
// request, named `<pr>.<rubric>.md`, holding the text of a future changelog
// entry. Fragments are assembled into a release section at build time.
package fragment
