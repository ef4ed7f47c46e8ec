// Package core has the temporal playback and interaction logic of a globe session.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/schema"
)

// Options wires a Controller to its collaborators.
type Options struct {
	Renderer contract.Renderer
	Controls contract.ControlSurface
	Gate     contract.FrameGate
	URLs     contract.FrameURLBuilder
	Geometry contract.GeometrySource
	Ranking  contract.RankingSource
	History  contract.HistoryStore // optional

	Date    time.Time
	MinDate time.Time
	MaxDate time.Time
	Unit    schema.StepUnit

	Palette  *schema.Palette // nil uses schema.DefaultPalette
	OnCommit CommitHook
}

// Controller is one visualization session. It owns the date cursor, one playback
// scheduler per step unit, the hover tracker and the ranking renderer.
// Construct it once per session and Close it on teardown.
type Controller struct {
	id        string
	startedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc

	frames     *framePipeline
	schedulers map[schema.StepUnit]*Scheduler
	hover      *HoverTracker
	ranking    *RankingRenderer
	geometry   contract.GeometrySource

	loadMu   sync.Mutex
	loaded   bool
	closeMu  sync.Mutex
	isClosed bool
}

// NewController validates opts and builds a session. No collaborator is called until
// the first operation.
func NewController(opts Options) (*Controller, error) {
	if opts.Renderer == nil || opts.Controls == nil || opts.Gate == nil || opts.URLs == nil {
		return nil, errors.New("renderer, controls, gate and URL builder are required")
	}
	if opts.Unit == "" {
		opts.Unit = schema.YearStep
	}
	cursor, err := NewDateCursor(opts.Date, opts.MinDate, opts.MaxDate, opts.Unit)
	if err != nil {
		return nil, err
	}
	palette := schema.DefaultPalette
	if opts.Palette != nil {
		palette = *opts.Palette
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		id:        uuid.NewString(),
		startedAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
		geometry:  opts.Geometry,
		frames: &framePipeline{
			cursor:   cursor,
			gate:     opts.Gate,
			urls:     opts.URLs,
			renderer: opts.Renderer,
			controls: opts.Controls,
			onCommit: opts.OnCommit,
		},
	}
	c.schedulers = make(map[schema.StepUnit]*Scheduler, len(schema.AllStepUnits))
	for _, unit := range schema.AllStepUnits {
		c.schedulers[unit] = newScheduler(ctx, unit, c.frames)
	}
	c.hover = NewHoverTracker(opts.Renderer, opts.Controls, palette)
	c.ranking = NewRankingRenderer(opts.Ranking, opts.Controls, opts.History, c.id)

	opts.Renderer.OnPolygonHover(func(f *schema.Feature) { c.hover.OnHover(f) })
	opts.Renderer.OnPolygonClick(func(f *schema.Feature) { c.hover.OnClick(f) })
	return c, nil
}

// ID returns the session ID.
func (c *Controller) ID() string { return c.id }

// Toggle starts or pauses playback of unit.
func (c *Controller) Toggle(unit schema.StepUnit) error {
	s, err := c.scheduler(unit)
	if err != nil {
		return err
	}
	return s.Toggle()
}

// Pause stops playback of unit if it is running; it is a no-op otherwise.
func (c *Controller) Pause(unit schema.StepUnit) error {
	s, err := c.scheduler(unit)
	if err != nil {
		return err
	}
	s.Pause()
	return nil
}

// State returns the playback state of unit; unknown units are Idle.
func (c *Controller) State(unit schema.StepUnit) schema.PlaybackState {
	s, err := c.scheduler(unit)
	if err != nil {
		return schema.IdleState
	}
	return s.State()
}

// Wait blocks until playback of unit has returned to Idle.
func (c *Controller) Wait(unit schema.StepUnit) {
	if s, err := c.scheduler(unit); err == nil {
		s.Wait()
	}
}

// SetDate moves the cursor to text and pushes the matching frame through the gate.
// Malformed or out-of-range input leaves the cursor unchanged.
func (c *Controller) SetDate(ctx context.Context, text string) error {
	if c.closed() {
		return ErrClosed
	}
	c.frames.mu.Lock()
	err := c.frames.cursor.SetText(text)
	c.frames.mu.Unlock()
	if err != nil {
		return err
	}
	c.frames.push(ctx)
	return nil
}

// SetSelection writes the selection to the controls, when they accept writes, and
// pushes the matching frame.
func (c *Controller) SetSelection(ctx context.Context, sel schema.Selection) error {
	if c.closed() {
		return ErrClosed
	}
	setter, ok := c.frames.controls.(contract.SelectionSetter)
	if !ok {
		return errors.New("controls do not accept selection changes")
	}
	sel = sel.WithDefaults()
	switch {
	case !schema.IsKnownVariable(sel.Variable):
		return fmt.Errorf("unknown variable %q", sel.Variable)
	case !schema.IsKnownModel(sel.Model):
		return fmt.Errorf("unknown model %q", sel.Model)
	case !schema.IsKnownScenario(sel.Scenario):
		return fmt.Errorf("unknown scenario %q", sel.Scenario)
	}
	setter.SetSelection(sel)
	c.frames.push(ctx)
	return nil
}

// Refresh re-pushes the frame of the current cursor and selection, reporting whether it loaded.
func (c *Controller) Refresh(ctx context.Context) (bool, error) {
	if c.closed() {
		return false, ErrClosed
	}
	return c.frames.push(ctx), nil
}

// LoadFeatures fetches the feature set once and installs it on the renderer.
// A failed fetch may be retried; after a success further calls are no-ops.
func (c *Controller) LoadFeatures(ctx context.Context) error {
	if c.closed() {
		return ErrClosed
	}
	if c.geometry == nil {
		return errors.New("no geometry source configured")
	}
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	if c.loaded {
		return nil
	}
	features, err := c.geometry.FetchCountries(ctx)
	if err != nil {
		return fmt.Errorf("failed to load features: %w", err)
	}
	c.hover.Install(features)
	c.loaded = true
	return nil
}

// Features returns the installed feature table.
func (c *Controller) Features() []schema.Feature { return c.hover.Features() }

// Hover sets the hovered feature by ID; an empty ID clears it.
// It reports whether the hover state changed.
func (c *Controller) Hover(id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return c.hover.OnHover(nil), nil
	}
	f, ok := c.hover.Lookup(id)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownFeature, id)
	}
	return c.hover.OnHover(f), nil
}

// Click centers the camera on the feature with the given ID. An empty ID is a no-op.
func (c *Controller) Click(id string) (*schema.CameraTarget, error) {
	if strings.TrimSpace(id) == "" {
		return c.hover.OnClick(nil), nil
	}
	f, ok := c.hover.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFeature, id)
	}
	return c.hover.OnClick(f), nil
}

// Attributes returns the derived attributes of the feature with the given ID.
func (c *Controller) Attributes(id string) (schema.PolygonAttributes, error) {
	f, ok := c.hover.Lookup(id)
	if !ok {
		return schema.PolygonAttributes{}, fmt.Errorf("%w: %s", ErrUnknownFeature, id)
	}
	return c.hover.Attributes(*f), nil
}

// ComputeTop runs a ranking query for the interval using the current selection.
func (c *Controller) ComputeTop(ctx context.Context, start, end string) (schema.RankingTable, error) {
	if c.closed() {
		return schema.RankingTable{}, ErrClosed
	}
	if c.ranking.source == nil {
		return schema.RankingTable{}, fmt.Errorf("%w: no ranking source configured", ErrQueryFailure)
	}
	startDate, err := ParseDate(start)
	if err != nil {
		return schema.RankingTable{}, err
	}
	endDate, err := ParseDate(end)
	if err != nil {
		return schema.RankingTable{}, err
	}
	if startDate.After(endDate) {
		return schema.RankingTable{}, fmt.Errorf("%w: start %s is after end %s", ErrOutOfRange, start, end)
	}
	sel := c.frames.controls.Selection().WithDefaults()
	return c.ranking.ComputeTop(ctx, schema.RankingParams{
		Metric:    sel.Variable,
		Model:     sel.Model,
		Scenario:  sel.Scenario,
		StartDate: FormatDate(startDate),
		EndDate:   FormatDate(endDate),
	})
}

// Resize forwards a viewport change to the renderer.
func (c *Controller) Resize(width, height int) {
	c.frames.renderer.Resize(width, height)
}

// Snapshot returns the current session state.
func (c *Controller) Snapshot() schema.SessionState {
	state := schema.SessionState{
		SessionID: c.id,
		Playback:  make(map[schema.StepUnit]schema.PlaybackState, len(c.schedulers)),
		Features:  c.hover.Len(),
		Ranking:   c.ranking.Current(),
		StartedAt: c.startedAt,
	}
	if f := c.hover.Hovered(); f != nil {
		state.Hovered = f.ID
	}

	p := c.frames
	p.mu.Lock()
	defer p.mu.Unlock()
	state.Date = FormatDate(p.cursor.Current())
	state.MinDate = FormatDate(p.cursor.Min())
	state.MaxDate = FormatDate(p.cursor.Max())
	state.Owner = p.cursor.Owner()
	state.Selection = p.controls.Selection().WithDefaults()
	state.FrameURL = p.frameURL
	for unit, s := range c.schedulers {
		state.Playback[unit] = s.state
	}
	return state
}

// Close tears the session down: running playback stops without committing its
// in-flight frame, and Close waits for every loop to exit.
func (c *Controller) Close() error {
	c.closeMu.Lock()
	if c.isClosed {
		c.closeMu.Unlock()
		return nil
	}
	c.isClosed = true
	c.closeMu.Unlock()

	c.cancel()
	for _, s := range c.schedulers {
		s.Wait()
	}
	return nil
}

func (c *Controller) closed() bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	return c.isClosed
}

func (c *Controller) scheduler(unit schema.StepUnit) (*Scheduler, error) {
	s, ok := c.schedulers[unit]
	if !ok {
		return nil, fmt.Errorf("unknown step unit %q", unit)
	}
	return s, nil
}
