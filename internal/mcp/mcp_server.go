// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/huangsam/globeplay/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Deps are the collaborators shared by all tools.
type Deps struct {
	Ranking  contract.RankingSource
	Geometry contract.GeometrySource
	URLs     contract.FrameURLBuilder
	Gate     contract.FrameGate
	History  contract.HistoryStore
}

// NewMCPServer initializes and configures the globeplay MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"Globeplay Climate Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg:   baseCfg,
		deps:      deps,
		sessionID: "mcp-" + uuid.NewString(),
	}

	// --- 1. Tool: get_top_changes ---
	s.AddTool(mcp.NewTool("get_top_changes",
		mcp.WithDescription("Rank the countries with the largest climate change between two dates."),
		mcp.WithString("start", mcp.Description("Interval start as YYYY-MM-DD."), mcp.Required()),
		mcp.WithString("end", mcp.Description("Interval end as YYYY-MM-DD."), mcp.Required()),
		mcp.WithString("variable", mcp.Description("Climate variable (defaults to the configured one).")),
		mcp.WithString("model", mcp.Description("CMIP6 model (defaults to the configured one).")),
		mcp.WithString("scenario", mcp.Description("Emission scenario (defaults to the configured one).")),
	), h.handleGetTopChanges)

	// --- 2. Tool: get_frame_url ---
	s.AddTool(mcp.NewTool("get_frame_url",
		mcp.WithDescription("Build the globe frame URL for a date and selection, optionally checking that it loads."),
		mcp.WithString("date", mcp.Description("Frame date as YYYY-MM-DD."), mcp.Required()),
		mcp.WithString("variable", mcp.Description("Climate variable.")),
		mcp.WithString("model", mcp.Description("CMIP6 model.")),
		mcp.WithString("scenario", mcp.Description("Emission scenario.")),
		mcp.WithBoolean("preload", mcp.Description("Fetch and decode the frame before answering.")),
	), h.handleGetFrameURL)

	// --- 3. Tool: locate_country ---
	s.AddTool(mcp.NewTool("locate_country",
		mcp.WithDescription("Find a country by ID or name and return the camera target used when it is clicked."),
		mcp.WithString("country", mcp.Description("Country ID (e.g. FRA) or name (e.g. France)."), mcp.Required()),
	), h.handleLocateCountry)

	return s
}

// StartMCPServer starts the globeplay MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, deps Deps) error {
	s := NewMCPServer(baseCfg, deps)
	return server.ServeStdio(s)
}
