package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Living Trust banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct{ text, color string }{
		{" _    _      _             _____             _   ", "#818cf8"},
		{"| |  (_)_ __(_)_ _  __ _  |_   _| _ _  _ ___| |_ ", "#a78bfa"},
		{"| |__| \\ V /| | ' \\/ _` |   | || '_| || (_-<  _|", "#c084fc"},
		{"|____|_|\\_/ |_|_||_\\__, |   |_||_|  \\_,_/__/\\__|", "#e879f9"},
		{"                   |___/                          ", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, termenv.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
