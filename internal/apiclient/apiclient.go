// Package apiclient talks to the globe data server: country geometry, frame images
// and ranked top-change queries.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/internal/geo"
	"github.com/huangsam/globeplay/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Endpoint paths served by the data server.
const (
	CountriesPath  = "/api/countries"
	FramePath      = "/api/global_heatmap.png"
	TopChangesPath = "/api/top_changes"
)

const (
	tracerName   = "github.com/huangsam/globeplay/internal/apiclient"
	maxBodyBytes = 64 << 20
	maxErrBytes  = 4 << 10
)

// ErrMalformed marks a response body that could not be interpreted.
var ErrMalformed = errors.New("malformed response")

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Temporary reports whether retrying later may succeed, e.g. while the server
// is still loading country boundaries.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusServiceUnavailable || e.StatusCode == http.StatusTooManyRequests
}

// Client is the data server client.
type Client struct {
	baseURL string
	http    *http.Client
}

var (
	_ contract.GeometrySource  = &Client{}
	_ contract.RankingSource   = &Client{}
	_ contract.FrameURLBuilder = &Client{}
)

// New creates a client for baseURL with a per-request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

// NewWithHTTPClient creates a client using hc for every request.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// BaseURL returns the server base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// CountriesURL returns the geometry endpoint URL.
func (c *Client) CountriesURL() string { return c.baseURL + CountriesPath }

// FrameURL builds the frame locator with parameters in the fixed order
// date, variable, model, scenario. Empty values fall back to the control defaults.
func (c *Client) FrameURL(date string, sel schema.Selection) string {
	sel = sel.WithDefaults()
	if date == "" {
		date = schema.DefaultDate
	}
	return c.baseURL + FramePath + "?" + encodeQuery(
		"date", date,
		"variable", sel.Variable,
		"model", sel.Model,
		"scenario", sel.Scenario,
	)
}

// TopChangesURL builds the ranking query locator.
func (c *Client) TopChangesURL(params schema.RankingParams) string {
	return c.baseURL + TopChangesPath + "?" + encodeQuery(
		"metric", params.Metric,
		"model", params.Model,
		"scenario", params.Scenario,
		"start_date", params.StartDate,
		"end_date", params.EndDate,
		"quality", strconv.Itoa(params.Quality),
		"top_n", strconv.Itoa(params.TopN),
	)
}

// FetchCountries downloads and decodes the country feature collection.
func (c *Client) FetchCountries(ctx context.Context) ([]schema.Feature, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "api.countries")
	defer span.End()

	body, err := c.get(ctx, span, c.CountriesURL())
	if err != nil {
		return nil, err
	}
	features, err := geo.DecodeFeatureCollection(body)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrMalformed, err)
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("features.count", len(features)))
	return features, nil
}

type topChangeEntry struct {
	Country *string  `json:"country"`
	Change  *float64 `json:"change"`
	Damage  *float64 `json:"damage"`
}

// FetchTopChanges runs one ranking query. Rows keep the server's order.
func (c *Client) FetchTopChanges(ctx context.Context, params schema.RankingParams) ([]schema.RankingRow, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "api.top_changes")
	defer span.End()
	span.SetAttributes(
		attribute.String("ranking.metric", params.Metric),
		attribute.String("ranking.start_date", params.StartDate),
		attribute.String("ranking.end_date", params.EndDate),
		attribute.Int("ranking.top_n", params.TopN),
	)

	body, err := c.get(ctx, span, c.TopChangesURL(params))
	if err != nil {
		return nil, err
	}

	var entries []topChangeEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		err = fmt.Errorf("%w: %w", ErrMalformed, err)
		recordError(span, err)
		return nil, err
	}
	rows := make([]schema.RankingRow, 0, len(entries))
	for i, e := range entries {
		if e.Country == nil || e.Change == nil || e.Damage == nil {
			err := fmt.Errorf("%w: entry %d lacks country, change or damage", ErrMalformed, i)
			recordError(span, err)
			return nil, err
		}
		rows = append(rows, schema.RankingRow{Country: *e.Country, Change: *e.Change, Damage: *e.Damage})
	}
	span.SetAttributes(attribute.Int("ranking.rows", len(rows)))
	return rows, nil
}

// get performs a GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, span trace.Span, target string) ([]byte, error) {
	span.SetAttributes(attribute.String("http.url", target))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("request to %s failed: %w", target, err)
	}
	defer func() { _ = resp.Body.Close() }()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBytes))
		err := &StatusError{Method: http.MethodGet, URL: target, StatusCode: resp.StatusCode, Message: errorMessage(raw)}
		recordError(span, err)
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to read response from %s: %w", target, err)
	}
	return body, nil
}

// errorMessage extracts {"error": "..."} bodies, falling back to the raw text.
func errorMessage(raw []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(raw))
}

// encodeQuery joins key/value pairs in order, escaping values like encodeURIComponent.
func encodeQuery(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(pairs[i])
		b.WriteByte('=')
		b.WriteString(strings.ReplaceAll(url.QueryEscape(pairs[i+1]), "+", "%20"))
	}
	return b.String()
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
