// Package lint checks the editorial properties of a changelog document and
// its pending fragments: entries end with pull-request and author
// references, rubrics belong to the declared set, and release headings are
// well-formed with versions decreasing down the document.
package lint
