package lint

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	okMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).SetString("✓")
	failMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).SetString("✗")
	posStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("211"))
	ruleStyle = lipgloss.NewStyle().Faint(true)
)

// WriteReport renders the findings of a lint run. With color enabled the
// output uses the same marks and palette as the interactive progress views.
func (r *Result) WriteReport(w io.Writer, color bool) error {
	if r.OK() {
		return write(w, "%s no problems found\n", mark(okMark.String(), "ok", color))
	}

	for _, f := range r.Findings {
		pos := f.Version
		if f.Rubric != "" {
			pos += "/" + f.Rubric
		}

		if pos != "" {
			pos = " " + styled(posStyle, pos, color)
		}

		err := write(w, "%s%s %s %s\n",
			mark(failMark.String(), "fail", color),
			pos,
			f.Message,
			styled(ruleStyle, "("+f.Rule+")", color),
		)
		if err != nil {
			return err
		}
	}

	return write(w, "\n%d problem(s) found\n", len(r.Findings))
}

func mark(colored, plain string, color bool) string {
	if color {
		return colored
	}

	return plain
}

func styled(s lipgloss.Style, text string, color bool) string {
	if color {
		return s.Render(text)
	}

	return text
}

func write(w io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}
