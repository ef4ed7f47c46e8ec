// Package termview is a headless globe view for terminals and servers. It implements
// the renderer and control surface the controller drives, keeping their state for
// inspection and optionally echoing changes to a writer.
package termview

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/schema"
	"golang.org/x/term"
)

// Fallback viewport used when no terminal is attached.
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

var (
	labelColor  = color.New(color.FgMagenta)
	cameraColor = color.New(color.FgBlue)
)

// View is a Renderer and ControlSurface backed by in-memory state.
type View struct {
	mu  sync.RWMutex
	out io.Writer // nil disables echo

	selection schema.Selection
	labels    map[schema.StepUnit]string
	tooltip   string
	ranking   *schema.RankingTable

	frameURL string
	frames   int
	features []schema.Feature
	altitude contract.AltitudeFunc
	fill     contract.ColorFunc
	stroke   contract.ColorFunc
	redraws  int
	camera   *schema.CameraTarget
	width    int
	height   int

	onHover contract.FeatureHandler
	onClick contract.FeatureHandler
}

var (
	_ contract.Renderer        = &View{}
	_ contract.ControlSurface  = &View{}
	_ contract.SelectionSetter = &View{}
)

// New creates a view with an initial selection. out may be nil.
func New(sel schema.Selection, out io.Writer) *View {
	v := &View{
		out:       out,
		selection: sel.WithDefaults(),
		labels:    map[schema.StepUnit]string{},
		width:     DefaultWidth,
		height:    DefaultHeight,
	}
	for _, unit := range schema.AllStepUnits {
		v.labels[unit] = schema.PlayLabel(unit, schema.IdleState)
	}
	return v
}

// TerminalSize returns the size of the terminal on stdout. A positive width override wins;
// without a terminal the fallback viewport is returned.
func TerminalSize(widthOverride int) (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}
	if widthOverride > 0 {
		width = widthOverride
	}
	return width, height
}

// --- Renderer ---

// SetFrameImage records the visible frame.
func (v *View) SetFrameImage(url string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.frameURL = url
	v.frames++
}

// SetPolygonSet records the feature set and attribute functions; repeated calls count as redraws.
func (v *View) SetPolygonSet(features []schema.Feature, altitude contract.AltitudeFunc, fill, stroke contract.ColorFunc) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.features = features
	v.altitude, v.fill, v.stroke = altitude, fill, stroke
	v.redraws++
}

// OnPolygonHover registers the hover callback.
func (v *View) OnPolygonHover(cb contract.FeatureHandler) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onHover = cb
}

// OnPolygonClick registers the click callback.
func (v *View) OnPolygonClick(cb contract.FeatureHandler) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onClick = cb
}

// CenterCameraOn records the requested camera transition.
func (v *View) CenterCameraOn(lat, lng, altitude float64, durationMs int) {
	v.mu.Lock()
	v.camera = &schema.CameraTarget{
		Coordinate: schema.Coordinate{Lat: lat, Lng: lng},
		Altitude:   altitude,
		DurationMs: durationMs,
	}
	v.mu.Unlock()
	v.echo(cameraColor, "🎥 Camera → lat %.2f, lng %.2f (alt %.1f, %dms)\n", lat, lng, altitude, durationMs)
}

// Resize records the viewport size.
func (v *View) Resize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.width, v.height = width, height
}

// --- ControlSurface ---

// Selection returns the current selection.
func (v *View) Selection() schema.Selection {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.selection
}

// SetSelection replaces the current selection.
func (v *View) SetSelection(sel schema.Selection) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection = sel.WithDefaults()
}

// SetPlaybackLabel records the play/pause label of unit.
func (v *View) SetPlaybackLabel(unit schema.StepUnit, label string) {
	v.mu.Lock()
	changed := v.labels[unit] != label
	v.labels[unit] = label
	v.mu.Unlock()
	if changed {
		v.echo(labelColor, "%s\n", label)
	}
}

// ShowTooltip shows text.
func (v *View) ShowTooltip(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tooltip = text
}

// HideTooltip hides the tooltip.
func (v *View) HideTooltip() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tooltip = ""
}

// ShowRanking replaces the displayed ranking.
func (v *View) ShowRanking(table schema.RankingTable) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ranking = &table
}

// --- Inspection ---

// FrameURL returns the visible frame and how many frames were committed.
func (v *View) FrameURL() (string, int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.frameURL, v.frames
}

// Label returns the play/pause label of unit.
func (v *View) Label(unit schema.StepUnit) string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.labels[unit]
}

// Tooltip returns the visible tooltip text, or "" when hidden.
func (v *View) Tooltip() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.tooltip
}

// Ranking returns the displayed ranking, or nil.
func (v *View) Ranking() *schema.RankingTable {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.ranking
}

// Camera returns the last camera request, or nil.
func (v *View) Camera() *schema.CameraTarget {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.camera
}

// Size returns the viewport size.
func (v *View) Size() (int, int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.width, v.height
}

// Redraws returns how many times the polygon set was submitted.
func (v *View) Redraws() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.redraws
}

// Polygons derives the current attributes of every installed feature, keyed by feature ID.
func (v *View) Polygons() map[string]schema.PolygonAttributes {
	v.mu.RLock()
	features, altitude, fill, stroke := v.features, v.altitude, v.fill, v.stroke
	v.mu.RUnlock()

	out := make(map[string]schema.PolygonAttributes, len(features))
	if altitude == nil || fill == nil || stroke == nil {
		return out
	}
	for _, f := range features {
		out[f.ID] = schema.PolygonAttributes{Altitude: altitude(f), Fill: fill(f), Stroke: stroke(f)}
	}
	return out
}

func (v *View) echo(c *color.Color, format string, args ...any) {
	if v.out == nil {
		return
	}
	_, _ = fmt.Fprint(v.out, c.Sprintf(format, args...))
}
