package changelog

import (
	"fmt"
	"io"
	"strings"
)

// String renders the entry in its canonical single-line form, trailing
// reference markers included.
func (e *Entry) String() string {
	var b strings.Builder

	b.WriteString(e.Text)

	for _, r := range e.Refs {
		fmt.Fprintf(&b, " {%s}`%s`", r.Kind, r.Value)
	}

	return b.String()
}

// Heading returns the canonical release heading, e.g.
// "## 0.9.2 (2023-07-25)".
func (r *Release) Heading() string {
	date := r.Date
	if date == "" {
		date = UnreleasedDate
	}

	return fmt.Sprintf("## %s (%s)", r.Version, date)
}

// Render writes the changelog in its canonical Markdown form. Rendering is
// deterministic: parsing the output yields an equal document.
func (c *Changelog) Render(w io.Writer) error {
	var b strings.Builder

	if c.Preamble != "" {
		b.WriteString(c.Preamble)
		b.WriteString("\n")
	}

	for _, rel := range c.Releases {
		if b.Len() > 0 {
			b.WriteString("\n")
		}

		b.WriteString(rel.Heading())
		b.WriteString("\n")

		for _, sec := range rel.Sections {
			b.WriteString("\n### ")
			b.WriteString(sec.Rubric)
			b.WriteString("\n\n")

			for _, e := range sec.Entries {
				b.WriteString("- ")
				b.WriteString(e.String())
				b.WriteString("\n")
			}
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write changelog: %w", err)
	}

	return nil
}

// RenderRelease writes a single release section (heading included) in
// canonical form, used for previews and publishing.
func RenderRelease(w io.Writer, rel *Release) error {
	c := &Changelog{Releases: []*Release{rel}}

	return c.Render(w)
}
