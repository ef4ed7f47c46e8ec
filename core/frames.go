package core

import (
	"context"
	"sync"
	"time"

	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/schema"
)

// CommitHook observes every committed frame. It is called with the session lock held
// and must not call back into the controller.
type CommitHook func(commit schema.FrameCommit)

// framePipeline owns the shared mutable state of a session: the cursor and the
// renderer's current frame. All access goes through mu.
type framePipeline struct {
	mu       sync.Mutex
	cursor   *DateCursor
	gate     contract.FrameGate
	urls     contract.FrameURLBuilder
	renderer contract.Renderer
	controls contract.ControlSurface
	onCommit CommitHook

	frameURL string
	loaded   bool
	commits  int
	seq      uint64 // latest control-driven push
}

// urlForLocked builds the frame URL for date from the current control selection.
func (p *framePipeline) urlForLocked(date time.Time) string {
	sel := p.controls.Selection().WithDefaults()
	return p.urls.FrameURL(FormatDate(date), sel)
}

// commitLocked moves the cursor to date and makes url the visible frame.
func (p *framePipeline) commitLocked(unit schema.StepUnit, date time.Time, url string, loaded bool) error {
	if err := p.cursor.Set(date); err != nil {
		return err
	}
	p.frameURL = url
	p.loaded = loaded
	p.commits++
	p.renderer.SetFrameImage(url)
	if p.onCommit != nil {
		p.onCommit(schema.FrameCommit{Unit: unit, Date: FormatDate(date), URL: url, Loaded: loaded})
	}
	return nil
}

// push preloads the frame for the current cursor and selection, then commits it
// unless a newer push started or playback moved the cursor meanwhile.
// It reports whether the frame loaded.
func (p *framePipeline) push(ctx context.Context) bool {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	date := p.cursor.Current()
	url := p.urlForLocked(date)
	p.mu.Unlock()

	loaded := p.gate.Preload(ctx, url)

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq || ctx.Err() != nil || !p.cursor.Current().Equal(date) {
		return loaded
	}
	_ = p.commitLocked("", date, url, loaded)
	return loaded
}
