package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/huangsam/globeplay/core"
	"github.com/huangsam/globeplay/internal/apiclient"
	"github.com/huangsam/globeplay/schema"
)

// Handler handles HTTP requests for one session.
type Handler struct {
	session Session
}

type dateRequest struct {
	Date string `json:"date" binding:"required"`
}

type featureRequest struct {
	ID string `json:"id"`
}

type topRequest struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

// PlaybackStatus is the result of a playback toggle.
type PlaybackStatus struct {
	Unit  schema.StepUnit      `json:"unit"`
	State schema.PlaybackState `json:"state"`
}

// HoverStatus is the result of a hover change.
type HoverStatus struct {
	Changed bool   `json:"changed"`
	Hovered string `json:"hovered,omitempty"`
}

// CountrySummary is one entry of the installed feature table.
type CountrySummary struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
	Label string `json:"label"`
}

// statusFor maps controller errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrParse):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrCursorOwned):
		return http.StatusConflict
	case errors.Is(err, core.ErrUnknownFeature):
		return http.StatusNotFound
	case errors.Is(err, core.ErrQueryFailure):
		return http.StatusBadGateway
	case errors.Is(err, core.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

// countriesStatus maps a failed feature load: 503 while the data server asks for a
// retry, 502 for any other upstream failure.
func countriesStatus(err error) int {
	if errors.Is(err, core.ErrClosed) {
		return http.StatusServiceUnavailable
	}
	var statusErr *apiclient.StatusError
	if errors.As(err, &statusErr) && statusErr.Temporary() {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

// GetSession returns the session snapshot.
// GET /api/session
func (h *Handler) GetSession(c *gin.Context) {
	Success(c, h.session.Snapshot())
}

// TogglePlayback starts or pauses playback of a unit.
// POST /api/playback/:unit/toggle
func (h *Handler) TogglePlayback(c *gin.Context) {
	unit, ok := schema.ParseStepUnit(c.Param("unit"))
	if !ok {
		BadRequest(c, "unknown playback unit: "+c.Param("unit"))
		return
	}
	if err := h.session.Toggle(unit); err != nil {
		Error(c, statusFor(err), err.Error())
		return
	}
	Success(c, PlaybackStatus{Unit: unit, State: h.session.State(unit)})
}

// SetDate moves the cursor.
// PUT /api/date
func (h *Handler) SetDate(c *gin.Context) {
	var req dateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := h.session.SetDate(c.Request.Context(), req.Date); err != nil {
		Error(c, statusFor(err), err.Error())
		return
	}
	Success(c, h.session.Snapshot())
}

// SetSelection changes variable, model and scenario.
// PUT /api/selection
func (h *Handler) SetSelection(c *gin.Context) {
	var sel schema.Selection
	if err := c.ShouldBindJSON(&sel); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := h.session.SetSelection(c.Request.Context(), sel); err != nil {
		Error(c, statusFor(err), err.Error())
		return
	}
	Success(c, h.session.Snapshot())
}

// Hover sets the hovered feature.
// POST /api/hover
func (h *Handler) Hover(c *gin.Context) {
	var req featureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	h.hover(c, req.ID)
}

// ClearHover clears the hovered feature.
// DELETE /api/hover
func (h *Handler) ClearHover(c *gin.Context) {
	h.hover(c, "")
}

func (h *Handler) hover(c *gin.Context, id string) {
	changed, err := h.session.Hover(id)
	if err != nil {
		Error(c, statusFor(err), err.Error())
		return
	}
	Success(c, HoverStatus{Changed: changed, Hovered: h.session.Snapshot().Hovered})
}

// Click centers the camera on a feature. An empty ID yields no camera move.
// POST /api/click
func (h *Handler) Click(c *gin.Context) {
	var req featureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	target, err := h.session.Click(req.ID)
	if err != nil {
		Error(c, statusFor(err), err.Error())
		return
	}
	if target == nil {
		Success(c, nil)
		return
	}
	Success(c, target)
}

// ComputeTop runs a ranking query over the interval.
// POST /api/top
func (h *Handler) ComputeTop(c *gin.Context) {
	var req topRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	table, err := h.session.ComputeTop(c.Request.Context(), req.Start, req.End)
	if err != nil {
		Error(c, statusFor(err), err.Error())
		return
	}
	Success(c, table)
}

// ListCountries returns the installed feature table, loading it on first use.
// GET /api/countries
func (h *Handler) ListCountries(c *gin.Context) {
	if err := h.session.LoadFeatures(c.Request.Context()); err != nil {
		Error(c, countriesStatus(err), err.Error())
		return
	}
	features := h.session.Features()
	result := make([]CountrySummary, len(features))
	for i, f := range features {
		result[i] = CountrySummary{ID: f.ID, Index: f.Index, Label: f.Label()}
	}
	Success(c, result)
}
