package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/relnote/relnote/pkg/fragment"
	"github.com/relnote/relnote/pkg/relconfig"
	"github.com/relnote/relnote/pkg/reltui"
)

var ErrAddFailed = errors.New("add failed")

// NewAddCmd returns the add command, which writes one news fragment.
func NewAddCmd(args *RootArgs) *cobra.Command {
	pr := new(int)
	rubric := new(string)
	text := new(string)
	authors := new([]string)
	interactive := new(bool)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a news fragment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := findConfig(args)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrAddFailed, err)
			}

			if *interactive {
				res, ok, err := runAddForm(cmd, cfg)
				if err != nil {
					return fmt.Errorf("%w: %w", ErrAddFailed, err)
				}

				if !ok {
					return nil
				}

				*pr = res.PR
				*rubric = res.Rubric
				*text = res.Text
				*authors = []string{res.Author}
			}

			if *pr <= 0 || *rubric == "" || *text == "" {
				return fmt.Errorf("%w: --pr, --rubric and --text are required", ErrAddFailed)
			}

			if cfg.RubricBySlug(*rubric) == nil {
				return fmt.Errorf("%w: rubric %q is not declared in %s",
					ErrAddFailed, *rubric, relconfig.FileName)
			}

			path, err := writeFragment(cfg, *pr, *rubric, *text, *authors)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrAddFailed, err)
			}

			cmd.Printf("Added %s.\n", path)

			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().IntVar(pr, "pr", 0, "Pull request number")
	cmd.Flags().StringVarP(rubric, "rubric", "r", "", "Rubric slug")
	cmd.Flags().StringVarP(text, "text", "t", "", "Entry text")
	cmd.Flags().StringSliceVarP(authors, "author", "a", []string{}, "Author github handle")
	cmd.Flags().BoolVarP(interactive, "interactive", "i", false, "Fill in the fragment interactively")

	return cmd
}

func runAddForm(cmd *cobra.Command, cfg *relconfig.Config) (reltui.FormResult, bool, error) {
	slugs := make([]string, len(cfg.Rubrics))
	for i, r := range cfg.Rubrics {
		slugs[i] = r.Slug
	}

	m := reltui.NewFormModel(slugs)

	p := tea.NewProgram(m, tea.WithOutput(cmd.OutOrStdout()))
	if _, err := p.Run(); err != nil {
		return reltui.FormResult{}, false, fmt.Errorf("failed to launch tui: %w", err)
	}

	res, ok := m.Result()

	return res, ok, nil
}

func writeFragment(cfg *relconfig.Config, pr int, rubric, text string, authors []string) (string, error) {
	dir := cfg.FragmentsPath()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, fragment.Name(pr, rubric))
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("fragment %s already exists", path)
	}

	var b strings.Builder

	b.WriteString(strings.TrimSpace(text))
	b.WriteString("\n")

	if len(authors) > 0 {
		b.WriteString("\nauthor: ")
		b.WriteString(strings.Join(authors, ", "))
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil { //nolint:gosec // Fragments are public documents.
		return "", err
	}

	return path, nil
}
