package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
// When stdout is not a terminal, or the renderer cannot be built, markdown is
// passed through untouched so reports stay pipe friendly.
func NewRenderer() func(string) (string, error) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return passthrough
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return passthrough
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

func passthrough(markdown string) (string, error) {
	return markdown, nil
}
