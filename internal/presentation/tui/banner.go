package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the chat banner.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct{ text, color string }{
		{" _          _       __ _             ", "#818cf8"},
		{"| |__  _ __(_) ___ / _(_)_ __   __ _ ", "#a78bfa"},
		{"| '_ \\| '__| |/ _ \\ |_| | '_ \\ / _` |", "#c084fc"},
		{"| |_) | |  | |  __/  _| | | | | (_| |", "#e879f9"},
		{"|_.__/|_|  |_|\\___|_| |_|_| |_|\\__, |", "#f472b6"},
		{"                               |___/ ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  PH Development · briefing").Faint())
	fmt.Fprintln(w)
}
