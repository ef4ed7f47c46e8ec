package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/globeplay/core"
	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/internal/geo"
	"github.com/huangsam/globeplay/internal/termview"
	"github.com/huangsam/globeplay/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg   *contract.Config
	deps      Deps
	sessionID string
}

// FrameInfo is the result of get_frame_url.
type FrameInfo struct {
	URL    string `json:"url"`
	Loaded *bool  `json:"loaded,omitempty"`
}

// CountryLocation is the result of locate_country.
type CountryLocation struct {
	ID     string              `json:"id"`
	Label  string              `json:"label"`
	Camera schema.CameraTarget `json:"camera"`
}

// selection overlays request arguments on the configured selection.
func (h *toolHandler) selection(request mcp.CallToolRequest) (schema.Selection, error) {
	sel := h.baseCfg.Selection
	if v := request.GetString("variable", ""); v != "" {
		sel.Variable = v
	}
	if m := request.GetString("model", ""); m != "" {
		sel.Model = m
	}
	if s := request.GetString("scenario", ""); s != "" {
		sel.Scenario = s
	}
	sel = sel.WithDefaults()
	switch {
	case !schema.IsKnownVariable(sel.Variable):
		return sel, fmt.Errorf("unknown variable %q", sel.Variable)
	case !schema.IsKnownModel(sel.Model):
		return sel, fmt.Errorf("unknown model %q", sel.Model)
	case !schema.IsKnownScenario(sel.Scenario):
		return sel, fmt.Errorf("unknown scenario %q", sel.Scenario)
	}
	return sel, nil
}

func (h *toolHandler) handleGetTopChanges(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.deps.Ranking == nil {
		return mcp.NewToolResultError("ranking source is not configured"), nil
	}
	sel, err := h.selection(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid selection: %v", err)), nil
	}
	start, err := core.ParseDate(request.GetString("start", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid start: %v", err)), nil
	}
	end, err := core.ParseDate(request.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid end: %v", err)), nil
	}
	if start.After(end) {
		return mcp.NewToolResultError("start must not be after end"), nil
	}

	renderer := core.NewRankingRenderer(h.deps.Ranking, termview.New(sel, nil), h.deps.History, h.sessionID)
	table, err := renderer.ComputeTop(ctx, schema.RankingParams{
		Metric:    sel.Variable,
		Model:     sel.Model,
		Scenario:  sel.Scenario,
		StartDate: core.FormatDate(start),
		EndDate:   core.FormatDate(end),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	jsonData, _ := json.MarshalIndent(table, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetFrameURL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.deps.URLs == nil {
		return mcp.NewToolResultError("frame endpoint is not configured"), nil
	}
	date, err := core.ParseDate(request.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid date: %v", err)), nil
	}
	sel, err := h.selection(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid selection: %v", err)), nil
	}

	info := FrameInfo{URL: h.deps.URLs.FrameURL(core.FormatDate(date), sel)}
	if request.GetBool("preload", false) {
		if h.deps.Gate == nil {
			return mcp.NewToolResultError("frame preloading is not configured"), nil
		}
		loaded := h.deps.Gate.Preload(ctx, info.URL)
		info.Loaded = &loaded
	}

	jsonData, _ := json.MarshalIndent(info, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleLocateCountry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(request.GetString("country", ""))
	if query == "" {
		return mcp.NewToolResultError("country is required"), nil
	}
	if h.deps.Geometry == nil {
		return mcp.NewToolResultError("geometry source is not configured"), nil
	}

	features, err := h.deps.Geometry.FetchCountries(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load countries: %v", err)), nil
	}

	f, err := findFeature(features, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	coord, ok := geo.RepresentativeCoordinate(*f)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("country %s has no usable coordinate", f.ID)), nil
	}

	loc := CountryLocation{
		ID:    f.ID,
		Label: f.Label(),
		Camera: schema.CameraTarget{
			Coordinate: coord,
			Altitude:   schema.ClickAltitude,
			DurationMs: schema.ClickDurationMs,
		},
	}
	jsonData, _ := json.MarshalIndent(loc, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// findFeature matches an ID exactly, then a label case-insensitively.
func findFeature(features []schema.Feature, query string) (*schema.Feature, error) {
	for i := range features {
		if features[i].ID == query {
			return &features[i], nil
		}
	}
	for i := range features {
		if strings.EqualFold(features[i].Label(), query) {
			return &features[i], nil
		}
	}
	return nil, errors.New("no country matches " + query)
}
