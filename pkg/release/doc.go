// Package release assembles pending news fragments into a new release
// section and inserts it into the changelog. It also computes the next
// version from the bump weights of the fragments' rubrics.
package release
