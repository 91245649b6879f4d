// Package util provides terminal text helpers for command output.
package util

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// TruncateANSI truncates s to maxWidth visual columns, adding "..." if truncated.
// Escape sequences and wide characters are measured by their rendered width.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	// ansi.Truncate counts the tail toward maxWidth
	return ansi.Truncate(s, maxWidth, "...")
}

// PadANSI right-pads s with spaces to width visual columns.
// Strings already at or beyond width are returned unchanged.
func PadANSI(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// MaxWidth returns the widest visual width among values.
func MaxWidth(values []string) int {
	widest := 0
	for _, v := range values {
		widest = max(widest, lipgloss.Width(v))
	}
	return widest
}
