package core

import (
	"sync"

	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/internal/geo"
	"github.com/huangsam/globeplay/schema"
)

// noHover marks an empty hover state.
const noHover = -1

// HoverTracker keeps the hovered feature as an index into an immutable, array-backed
// feature table and derives per-feature visual attributes from it on demand.
type HoverTracker struct {
	mu       sync.RWMutex
	features []schema.Feature
	byID     map[string]int
	hovered  int
	palette  schema.Palette

	renderer contract.Renderer
	controls contract.ControlSurface
}

// NewHoverTracker creates an empty tracker.
func NewHoverTracker(renderer contract.Renderer, controls contract.ControlSurface, palette schema.Palette) *HoverTracker {
	return &HoverTracker{
		byID:     map[string]int{},
		hovered:  noHover,
		palette:  palette,
		renderer: renderer,
		controls: controls,
	}
}

// Install loads the feature table and hands it to the renderer with the attribute
// functions. Each feature's Index is reset to its slot in the table.
func (t *HoverTracker) Install(features []schema.Feature) {
	table := make([]schema.Feature, len(features))
	byID := make(map[string]int, len(features))
	for i, f := range features {
		f.Index = i
		table[i] = f
		byID[f.ID] = i
	}

	t.mu.Lock()
	t.features = table
	t.byID = byID
	t.hovered = noHover
	t.mu.Unlock()

	t.redraw()
}

// Len returns the number of installed features.
func (t *HoverTracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.features)
}

// Lookup finds a feature by ID.
func (t *HoverTracker) Lookup(id string) (*schema.Feature, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.byID[id]
	if !ok {
		return nil, false
	}
	f := t.features[i]
	return &f, true
}

// Features returns a copy of the installed table.
func (t *HoverTracker) Features() []schema.Feature {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]schema.Feature, len(t.features))
	copy(out, t.features)
	return out
}

// Hovered returns the hovered feature, or nil.
func (t *HoverTracker) Hovered() *schema.Feature {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.hovered == noHover {
		return nil
	}
	f := t.features[t.hovered]
	return &f
}

// OnHover sets the hovered feature; nil clears it. Hovering the hovered feature again is
// a no-op. It reports whether the hover state changed and a redraw was requested.
func (t *HoverTracker) OnHover(f *schema.Feature) bool {
	t.mu.Lock()
	next := t.resolveLocked(f)
	if next == t.hovered {
		t.mu.Unlock()
		return false
	}
	t.hovered = next
	var label string
	if next != noHover {
		label = t.features[next].Label()
	}
	t.mu.Unlock()

	if next == noHover {
		t.controls.HideTooltip()
	} else {
		t.controls.ShowTooltip(label)
	}
	t.redraw()
	return true
}

// OnClick centers the camera on f's representative coordinate. A nil feature, or one
// without a usable coordinate, is a no-op and returns nil.
func (t *HoverTracker) OnClick(f *schema.Feature) *schema.CameraTarget {
	if f == nil {
		return nil
	}
	coord, ok := geo.RepresentativeCoordinate(*f)
	if !ok {
		return nil
	}
	target := &schema.CameraTarget{
		Coordinate: coord,
		Altitude:   schema.ClickAltitude,
		DurationMs: schema.ClickDurationMs,
	}
	t.renderer.CenterCameraOn(coord.Lat, coord.Lng, target.Altitude, target.DurationMs)
	return target
}

// Attributes derives the visual attributes of f against the current hover state.
func (t *HoverTracker) Attributes(f schema.Feature) schema.PolygonAttributes {
	if t.isHovered(f) {
		return t.palette.Hovered
	}
	return t.palette.Default
}

// Altitude is the renderer's altitude function.
func (t *HoverTracker) Altitude(f schema.Feature) float64 { return t.Attributes(f).Altitude }

// Fill is the renderer's cap color function.
func (t *HoverTracker) Fill(f schema.Feature) string { return t.Attributes(f).Fill }

// Stroke is the renderer's stroke color function.
func (t *HoverTracker) Stroke(f schema.Feature) string { return t.Attributes(f).Stroke }

func (t *HoverTracker) isHovered(f schema.Feature) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.hovered != noHover && t.hovered == f.Index && t.features[t.hovered].ID == f.ID
}

// resolveLocked maps an event feature to its table index by identity.
func (t *HoverTracker) resolveLocked(f *schema.Feature) int {
	if f == nil {
		return noHover
	}
	if f.Index >= 0 && f.Index < len(t.features) && t.features[f.Index].ID == f.ID {
		return f.Index
	}
	if i, ok := t.byID[f.ID]; ok {
		return i
	}
	return noHover
}

// redraw re-submits the same feature set, which makes the renderer re-query attributes.
func (t *HoverTracker) redraw() {
	t.mu.RLock()
	features := t.features
	t.mu.RUnlock()
	t.renderer.SetPolygonSet(features, t.Altitude, t.Fill, t.Stroke)
}
