package tui

import (
	"github.com/charmbracelet/glamour"
	"github.com/livingtrust/livingtrust/pkg/runner"
)

// NewRenderer returns a markdown renderer for advisor answers and step info.
// If glamour cannot start, text is passed through unchanged.
func NewRenderer() runner.ContentRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return r.Render
}
