package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/internal/httpapi"
	"github.com/spf13/cobra"
)

// serveCmd exposes one session over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the playback controls over HTTP.",
	Long: `Start an HTTP control surface driving one globe session.

Routes:
  GET    /health
  GET    /api/session
  POST   /api/playback/:unit/toggle
  PUT    /api/date
  PUT    /api/selection
  POST   /api/hover
  DELETE /api/hover
  POST   /api/click
  POST   /api/top
  GET    /api/countries

Examples:
  globeplay serve --listen :8080
  curl -X POST localhost:8080/api/playback/year/toggle`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runServe(); err != nil {
			contract.LogFatal("Cannot serve", err)
		}
	},
}

func runServe() error {
	s, err := newSession(os.Stdout, printCommit)
	if err != nil {
		return err
	}
	defer func() { _ = s.ctrl.Close() }()

	ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The data service may still be loading its geometry; /api/countries retries later
	loadCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	if err := s.ctrl.LoadFeatures(loadCtx); err != nil {
		contract.LogWarn("Countries are not available yet", err)
	}
	cancel()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           httpapi.SetupRouter(s.ctrl, os.Stderr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("🚀 Serving session %s on %s\n", s.ctrl.ID(), cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	fmt.Println("👋 Shutting down...")
	return srv.Shutdown(shutdownCtx)
}
