package outwriter

import (
	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/internal/termview"
)

// getMaxTableNameWidth calculates the maximum width for country names in table output
// based on terminal width and the fixed numeric columns.
func getMaxTableNameWidth(cfg *contract.Config) int {
	termWidth, _ := termview.TerminalSize(cfg.Width)

	// Rank + two numeric columns with borders/padding
	available := termWidth - 45
	if available < 12 {
		return 12
	}
	if available > 48 {
		return 48
	}
	return available
}

// truncateName shortens a name to maxWidth runes with a trailing ellipsis.
func truncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) <= maxWidth || maxWidth < 2 {
		return name
	}
	return string(runes[:maxWidth-1]) + "…"
}
