package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/relnote/relnote/cmd/relnote/commands"
)

const (
	cmdName = "relnote"

	shortDesc = "The relnote Command Line Interface (CLI)."
	longDesc  = `Relnote manages release notes from news fragments.

Contributors drop one small Markdown fragment per pull request into the
news directory. At release time relnote assembles the pending fragments
into a new versioned section of CHANGELOG.md, grouped by rubric, and
keeps the published sections lint-clean, archived, and searchable.
`
)

func main() {
	cmd := commands.NewRootCmd(cmdName, shortDesc, longDesc)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimLeft(err.Error(), "\n"))
		os.Exit(1)
	}
}
