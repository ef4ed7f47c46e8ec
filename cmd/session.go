package cmd

import (
	"io"
	"os"

	"github.com/huangsam/globeplay/core"
	"github.com/huangsam/globeplay/internal/apiclient"
	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/internal/termview"
	"github.com/huangsam/globeplay/schema"
)

// session bundles a controller with the terminal view it draws on.
type session struct {
	ctrl   *core.Controller
	view   *termview.View
	client *apiclient.Client
}

// newSession builds a controller for the validated config. The view echoes to out,
// which may be nil; onCommit may be nil.
func newSession(out io.Writer, onCommit core.CommitHook) (*session, error) {
	client := apiclient.New(cfg.BaseURL, cfg.Timeout)
	view := termview.New(cfg.Selection, out)
	w, h := termview.TerminalSize(cfg.Width)
	view.Resize(w, h)

	var store contract.HistoryStore
	if historyStore != nil {
		store = historyStore
	}

	ctrl, err := core.NewController(core.Options{
		Renderer: view,
		Controls: view,
		Gate:     core.NewHTTPFrameGate(nil, cfg.Timeout),
		URLs:     client,
		Geometry: client,
		Ranking:  client,
		History:  store,
		Date:     cfg.Date,
		MinDate:  cfg.MinDate,
		MaxDate:  cfg.MaxDate,
		Unit:     cfg.Unit,
		OnCommit: onCommit,
	})
	if err != nil {
		return nil, err
	}
	return &session{ctrl: ctrl, view: view, client: client}, nil
}

// printCommit writes one committed frame; blank frames are marked in their own color.
func printCommit(c schema.FrameCommit) {
	if c.Loaded {
		_, _ = contract.FrameColor.Fprintf(os.Stdout, "🖼  %s  %s\n", c.Date, c.URL)
		return
	}
	_, _ = contract.BlankColor.Fprintf(os.Stdout, "⬛ %s  %s (frame did not load)\n", c.Date, c.URL)
}
