package ui

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Status markers printed in front of step lines.
const (
	IconStart   = "🚀"
	IconSuccess = "✅"
	IconSkip    = "⚠️"
	IconFailure = "❌"
	IconDone    = "🎉"
)

// DisplayPath replaces the user's home directory prefix with ~.
func DisplayPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == home || strings.HasPrefix(path, home+string(os.PathSeparator)) {
		return "~" + path[len(home):]
	}
	return path
}

// PrintTable writes rows as aligned columns, each line prefixed by indent spaces.
// Width is measured on the visible text so colored cells line up.
func PrintTable(w io.Writer, rows [][]string, indent int) {
	if len(rows) == 0 {
		return
	}

	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], visibleWidth(cell))
		}
	}

	prefix := strings.Repeat(" ", indent)
	for _, row := range rows {
		var line strings.Builder
		line.WriteString(prefix)
		for i, cell := range row {
			if i > 0 {
				line.WriteString("  ")
			}
			line.WriteString(cell)
			if i < len(row)-1 {
				line.WriteString(strings.Repeat(" ", widths[i]-visibleWidth(cell)))
			}
		}
		fmt.Fprintln(w, line.String())
	}
}

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func visibleWidth(s string) int {
	return utf8.RuneCountInString(ansiRe.ReplaceAllString(s, ""))
}

// Color helpers
var (
	Green  = color.New(color.FgGreen).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Blue   = color.New(color.FgBlue).SprintFunc()
	Bold   = color.New(color.Bold).SprintFunc()
	Dim    = color.New(color.FgHiBlack).SprintFunc()
)
