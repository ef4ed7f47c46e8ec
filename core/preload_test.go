package core

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func frameServer(t *testing.T) *httptest.Server {
	t.Helper()
	frame := pngBytes(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(frame)
	})
	mux.HandleFunc("/garbage.png", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not an image"))
	})
	mux.HandleFunc("/slow.png", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	mux.HandleFunc("/missing.png", http.NotFound)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPFrameGate(t *testing.T) {
	srv := frameServer(t)
	gate := NewHTTPFrameGate(srv.Client(), 200*time.Millisecond)

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"decodable frame", srv.URL + "/ok.png", true},
		{"not found", srv.URL + "/missing.png", false},
		{"undecodable body", srv.URL + "/garbage.png", false},
		{"timeout", srv.URL + "/slow.png", false},
		{"bad url", "://nope", false},
		{"connection refused", "http://127.0.0.1:1/frame.png", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gate.Preload(context.Background(), tt.url))
		})
	}
}

func TestHTTPFrameGateHonorsCancellation(t *testing.T) {
	srv := frameServer(t)
	gate := NewHTTPFrameGate(nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, gate.Preload(ctx, srv.URL+"/ok.png"))
}

func TestHTTPFrameGateSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	srv := frameServer(t)
	gate := NewHTTPFrameGate(srv.Client(), time.Second)
	require.True(t, gate.Preload(context.Background(), srv.URL+"/ok.png"))
	require.False(t, gate.Preload(context.Background(), srv.URL+"/missing.png"))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "frame.preload", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)

	var format string
	for _, kv := range spans[0].Attributes() {
		if kv.Key == "frame.format" {
			format = kv.Value.AsString()
		}
	}
	assert.Equal(t, "png", format)
}
