// Package changelog models a release-notes document.
//
// A changelog is an ordered list of immutable release sections, newest
// first. Each release groups its entries under rubric headings (e.g.
// Bugfix, Documentation, Performance), and each entry carries trailing
// reference markers for pull requests and authors.
package changelog
