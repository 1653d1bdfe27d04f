package knownhosts

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorRemoved = lipgloss.Color("196") // A bright red
	colorAdded   = lipgloss.Color("40")  // A nice green
)

// Diff returns a line-oriented listing of the transformation from old to
// new content: removed lines prefixed with "-", added lines with "+".
// Lines common to both sides are omitted, duplicates are matched up
// pairwise. With styled set, lines are colorized for terminal display.
func Diff(oldText, newText string, styled bool) string {
	oldLines := splitLines(oldText)
	newLines := splitLines(newText)

	newCount := make(map[string]int, len(newLines))
	for _, l := range newLines {
		newCount[l]++
	}
	var removed []string
	for _, l := range oldLines {
		if newCount[l] > 0 {
			newCount[l]--
			continue
		}
		removed = append(removed, l)
	}

	oldCount := make(map[string]int, len(oldLines))
	for _, l := range oldLines {
		oldCount[l]++
	}
	var added []string
	for _, l := range newLines {
		if oldCount[l] > 0 {
			oldCount[l]--
			continue
		}
		added = append(added, l)
	}

	removeStyle := lipgloss.NewStyle().Foreground(colorRemoved)
	addStyle := lipgloss.NewStyle().Foreground(colorAdded)

	var b strings.Builder
	for _, l := range removed {
		line := "- " + l
		if styled {
			line = removeStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, l := range added {
		line := "+ " + l
		if styled {
			line = addStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
