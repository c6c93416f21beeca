package observability

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	bannerColor = color.New(color.FgHiCyan, color.Bold)
	dimColor    = color.New(color.FgWhite)
	StepColor   = color.New(color.FgGreen)
	ScoreColor  = color.New(color.FgCyan)
	WarnColor   = color.New(color.FgYellow)
	ErrorColor  = color.New(color.FgRed)
)

// TermWidth is the width of stdout, or 80 when it is not a terminal.
func TermWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

const bannerArt = `
    ____  __               ____                  __
   / __ \/ /___ _____     / __ )___  ____  _____/ /_
  / /_/ / / __ ` + "`" + `/ __ \   / __  / _ \/ __ \/ ___/ __ \
 / ____/ / /_/ / / / /  / /_/ /  __/ / / / /__/ / / /
/_/   /_/\__,_/_/ /_/  /_____/\___/_/ /_/\___/_/ /_/
`

// PrintBanner writes the centered logo followed by the active backend.
func PrintBanner(w io.Writer, provider, model string) {
	width := TermWidth()
	for _, l := range strings.Split(bannerArt, "\n") {
		padding := max((width-len(l))/2, 0)
		bannerColor.Fprintf(w, "%s%s\n", strings.Repeat(" ", padding), l)
	}

	info := fmt.Sprintf("provider: %s | model: %s", provider, model)
	padding := max((width-len(info))/2, 0)
	dimColor.Fprintf(w, "%s%s\n\n", strings.Repeat(" ", padding), info)
}

// Rule writes a horizontal separator across the terminal.
func Rule(w io.Writer) {
	dimColor.Fprintln(w, strings.Repeat("─", min(TermWidth(), 80)))
}
