package core

import (
	"context"
	"image"
	_ "image/jpeg" // register JPEG frames
	_ "image/png"  // register PNG frames
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	_ "golang.org/x/image/bmp"  // register BMP frames
	_ "golang.org/x/image/tiff" // register TIFF frames
	_ "golang.org/x/image/webp" // register WebP frames
)

// maxFrameHeaderBytes bounds how much of a frame is read to confirm it decodes.
const maxFrameHeaderBytes = 1 << 20

// tracerName identifies spans started by this package.
const tracerName = "github.com/huangsam/globeplay/core"

// HTTPFrameGate confirms a frame loads by fetching it and decoding its image header.
type HTTPFrameGate struct {
	client  *http.Client
	timeout time.Duration
}

// NewHTTPFrameGate creates a gate. A nil client uses http.DefaultClient; timeout <= 0 means
// only the caller's context bounds a preload.
func NewHTTPFrameGate(client *http.Client, timeout time.Duration) *HTTPFrameGate {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFrameGate{client: client, timeout: timeout}
}

// Preload reports whether the frame at url loads and decodes. It never returns an error:
// transport failures, non-200 responses, undecodable bodies and timeouts all yield false.
func (g *HTTPFrameGate) Preload(ctx context.Context, url string) bool {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "frame.preload")
	defer span.End()
	span.SetAttributes(attribute.String("frame.url", url))

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	fail := func(err error) bool {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("frame.loaded", false))
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fail(err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return fail(err)
	}
	defer func() { _ = resp.Body.Close() }()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxFrameHeaderBytes))
		return fail(&frameStatusError{code: resp.StatusCode})
	}

	_, format, err := image.DecodeConfig(io.LimitReader(resp.Body, maxFrameHeaderBytes))
	if err != nil {
		return fail(err)
	}
	span.SetAttributes(attribute.String("frame.format", format), attribute.Bool("frame.loaded", true))
	return true
}

type frameStatusError struct{ code int }

func (e *frameStatusError) Error() string {
	return "frame request returned " + http.StatusText(e.code)
}
