// Package httpapi exposes a controller session over HTTP.
package httpapi

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/huangsam/globeplay/schema"
)

// Session is the part of a controller session driven over HTTP.
type Session interface {
	Toggle(unit schema.StepUnit) error
	State(unit schema.StepUnit) schema.PlaybackState
	SetDate(ctx context.Context, text string) error
	SetSelection(ctx context.Context, sel schema.Selection) error
	LoadFeatures(ctx context.Context) error
	Features() []schema.Feature
	Hover(id string) (bool, error)
	Click(id string) (*schema.CameraTarget, error)
	ComputeTop(ctx context.Context, start, end string) (schema.RankingTable, error)
	Snapshot() schema.SessionState
}

// SetupRouter registers every route on a new engine. Request logs go to logOut;
// a nil logOut disables them.
func SetupRouter(session Session, logOut io.Writer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if logOut != nil {
		r.Use(Logger(logOut))
	}
	r.Use(CORS())

	h := &Handler{session: session}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "globeplay session is running",
		})
	})

	api := r.Group("/api")
	{
		api.GET("/session", h.GetSession)
		api.POST("/playback/:unit/toggle", h.TogglePlayback)
		api.PUT("/date", h.SetDate)
		api.PUT("/selection", h.SetSelection)
		api.POST("/hover", h.Hover)
		api.DELETE("/hover", h.ClearHover)
		api.POST("/click", h.Click)
		api.POST("/top", h.ComputeTop)
		api.GET("/countries", h.ListCountries)
	}

	return r
}
