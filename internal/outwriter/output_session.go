package outwriter

import (
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/schema"
)

// WriteSessionState outputs a session snapshot. Only text and JSON are meaningful here;
// any other format falls back to JSON.
func WriteSessionState(state schema.SessionState, cfg *contract.Config) error {
	if cfg.Output == schema.TextOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSessionText(w, state)
		}, "Wrote session")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, state)
	}, "Wrote JSON")
}

func writeSessionText(w io.Writer, state schema.SessionState) error {
	var b strings.Builder
	fmt.Fprintf(&b, "🌐 Session %s\n", state.SessionID)
	fmt.Fprintf(&b, "  Date:      %s (range %s – %s)\n", state.Date, state.MinDate, state.MaxDate)
	fmt.Fprintf(&b, "  Selection: %s / %s / %s\n", state.Selection.Variable, state.Selection.Model, state.Selection.Scenario)
	for _, unit := range schema.AllStepUnits {
		fmt.Fprintf(&b, "  %-10s %s\n", schema.UnitNoun(unit)+":", contract.GetColorState(state.Playback[unit]))
	}
	if state.FrameURL != "" {
		fmt.Fprintf(&b, "  Frame:     %s\n", contract.FrameColor.Sprint(state.FrameURL))
	}
	fmt.Fprintf(&b, "  Features:  %d\n", state.Features)
	if state.Hovered != "" {
		fmt.Fprintf(&b, "  Hovered:   %s\n", state.Hovered)
	}
	if state.Ranking != nil {
		fmt.Fprintf(&b, "  Ranking:   %s (%d rows)\n", state.Ranking.Title, len(state.Ranking.Rows))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
