package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/schema"
	"github.com/stretchr/testify/mock"
)

type cameraCall struct {
	Lat, Lng, Altitude float64
	DurationMs         int
}

// fakeRenderer records every call made by the controller.
type fakeRenderer struct {
	mu          sync.Mutex
	frames      []string
	polygonSets int
	features    []schema.Feature
	altitude    contract.AltitudeFunc
	fill        contract.ColorFunc
	stroke      contract.ColorFunc
	onHover     contract.FeatureHandler
	onClick     contract.FeatureHandler
	cameras     []cameraCall
	size        [2]int
	events      *eventLog
}

func (r *fakeRenderer) SetFrameImage(url string) {
	r.mu.Lock()
	r.frames = append(r.frames, url)
	r.mu.Unlock()
	r.events.add("commit " + url)
}

func (r *fakeRenderer) SetPolygonSet(features []schema.Feature, altitude contract.AltitudeFunc, fill, stroke contract.ColorFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.polygonSets++
	r.features = features
	r.altitude, r.fill, r.stroke = altitude, fill, stroke
}

func (r *fakeRenderer) OnPolygonHover(cb contract.FeatureHandler) { r.onHover = cb }
func (r *fakeRenderer) OnPolygonClick(cb contract.FeatureHandler) { r.onClick = cb }

func (r *fakeRenderer) CenterCameraOn(lat, lng, altitude float64, durationMs int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cameras = append(r.cameras, cameraCall{lat, lng, altitude, durationMs})
}

func (r *fakeRenderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.size = [2]int{width, height}
}

func (r *fakeRenderer) Frames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.frames...)
}

func (r *fakeRenderer) PolygonSets() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.polygonSets
}

func (r *fakeRenderer) Cameras() []cameraCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]cameraCall(nil), r.cameras...)
}

// fakeControls is a writable control surface.
type fakeControls struct {
	mu       sync.Mutex
	sel      schema.Selection
	labels   map[schema.StepUnit][]string
	tooltip  string
	visible  bool
	rankings []schema.RankingTable
}

func newFakeControls() *fakeControls {
	return &fakeControls{labels: map[schema.StepUnit][]string{}}
}

func (c *fakeControls) Selection() schema.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel
}

func (c *fakeControls) SetSelection(sel schema.Selection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel = sel
}

func (c *fakeControls) SetPlaybackLabel(unit schema.StepUnit, label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.labels[unit] = append(c.labels[unit], label)
}

func (c *fakeControls) ShowTooltip(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tooltip, c.visible = text, true
}

func (c *fakeControls) HideTooltip() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tooltip, c.visible = "", false
}

func (c *fakeControls) ShowRanking(table schema.RankingTable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rankings = append(c.rankings, table)
}

func (c *fakeControls) Labels(unit schema.StepUnit) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.labels[unit]...)
}

func (c *fakeControls) Tooltip() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tooltip, c.visible
}

func (c *fakeControls) Rankings() []schema.RankingTable {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]schema.RankingTable(nil), c.rankings...)
}

// eventLog records preload and commit events in order.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) All() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// fakeGate answers preloads with a fixed result. When blocking, every preload
// announces itself on started and waits for a value on release.
type fakeGate struct {
	result  bool
	block   bool
	started chan string
	release chan struct{}
	events  *eventLog
}

func (g *fakeGate) Preload(ctx context.Context, url string) bool {
	g.events.add("preload " + url)
	if g.block {
		g.started <- url
		select {
		case <-g.release:
		case <-ctx.Done():
			return false
		}
	}
	return g.result
}

func newBlockingGate() *fakeGate {
	return &fakeGate{result: true, block: true, started: make(chan string, 16), release: make(chan struct{})}
}

type fakeURLs struct{}

func (fakeURLs) FrameURL(date string, sel schema.Selection) string {
	return fmt.Sprintf("frame?date=%s&variable=%s&model=%s&scenario=%s", date, sel.Variable, sel.Model, sel.Scenario)
}

func frameURL(date string) string {
	return fakeURLs{}.FrameURL(date, schema.Selection{}.WithDefaults())
}

// fakeGeometry counts fetches.
type fakeGeometry struct {
	mu       sync.Mutex
	calls    int
	features []schema.Feature
	err      error
}

func (g *fakeGeometry) FetchCountries(context.Context) ([]schema.Feature, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.features, nil
}

// mockRankingSource is a testify mock of contract.RankingSource.
type mockRankingSource struct {
	mock.Mock
}

func (m *mockRankingSource) FetchTopChanges(ctx context.Context, params schema.RankingParams) ([]schema.RankingRow, error) {
	args := m.Called(ctx, params)
	rows, _ := args.Get(0).([]schema.RankingRow)
	return rows, args.Error(1)
}

// mockHistoryStore is a testify mock of contract.HistoryStore.
type mockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &mockHistoryStore{}

func (m *mockHistoryStore) BeginQuery(sessionID string, startTime time.Time, params schema.RankingParams) (int64, error) {
	args := m.Called(sessionID, startTime, params)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockHistoryStore) EndQuery(runID int64, endTime time.Time, status schema.QueryStatus, rowCount int, errText string) error {
	args := m.Called(runID, endTime, status, rowCount, errText)
	return args.Error(0)
}

func (m *mockHistoryStore) RecordRows(runID int64, rows []schema.RankingRow) error {
	args := m.Called(runID, rows)
	return args.Error(0)
}

func (m *mockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

func (m *mockHistoryStore) GetAllRuns() ([]schema.QueryRunRecord, error) {
	args := m.Called()
	return args.Get(0).([]schema.QueryRunRecord), args.Error(1)
}

func (m *mockHistoryStore) GetAllRows() ([]schema.QueryRowRecord, error) {
	args := m.Called()
	return args.Get(0).([]schema.QueryRowRecord), args.Error(1)
}

func (m *mockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
