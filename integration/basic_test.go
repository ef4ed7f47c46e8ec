//go:build basic

package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobeplayVersion(t *testing.T) {
	out, err := runGlobeplayCommand(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "globeplay")
}

func TestGlobeplayTopKeepsServerOrder(t *testing.T) {
	ds := newDataServer(t)

	out, err := runGlobeplayCommand(t, nil, "top", "--base-url", ds.URL, "--output", "csv", "--color", "no")
	require.NoError(t, err)

	kenya := strings.Index(out, "Kenya")
	peru := strings.Index(out, "Peru")
	require.NotEqual(t, -1, kenya)
	require.NotEqual(t, -1, peru)
	assert.Less(t, kenya, peru)
	assert.Contains(t, out, "1.23")
	assert.Contains(t, out, "4.56")
	assert.Equal(t, int32(1), ds.topRequests.Load())
}

func TestGlobeplayTopRejectsReversedInterval(t *testing.T) {
	ds := newDataServer(t)

	_, err := runGlobeplayCommand(t, nil, "top", "--base-url", ds.URL,
		"--start", "2050-01-01", "--end", "2020-01-01")
	require.Error(t, err)
	assert.Equal(t, int32(0), ds.topRequests.Load())
}

func TestGlobeplayCountries(t *testing.T) {
	ds := newDataServer(t)

	out, err := runGlobeplayCommand(t, nil, "countries", "--base-url", ds.URL, "--output", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"KEN"`)
	assert.Contains(t, out, `"Peru"`)
}

func TestGlobeplayFrame(t *testing.T) {
	ds := newDataServer(t)

	out, err := runGlobeplayCommand(t, nil, "frame", "--base-url", ds.URL,
		"--date", "2050-07-01", "--color", "no")
	require.NoError(t, err)
	assert.Contains(t, out, ds.URL+"/api/global_heatmap.png?date=2050-07-01")
	assert.Contains(t, out, "Frame loads")
}

func TestGlobeplayPlayStopsAtMax(t *testing.T) {
	ds := newDataServer(t)

	out, err := runGlobeplayCommand(t, nil, "play", "--base-url", ds.URL, "--color", "no",
		"--date", "2020-01-01", "--max-date", "2022-01-01", "--unit", "year")
	require.NoError(t, err)
	assert.Contains(t, out, "2021-01-01")
	assert.Contains(t, out, "2022-01-01")
	assert.NotContains(t, out, "2023-01-01")
}

func TestGlobeplayHistoryWithSQLite(t *testing.T) {
	ds := newDataServer(t)
	dir := t.TempDir()
	env := map[string]string{
		"GLOBEPLAY_HISTORY_BACKEND":    "sqlite",
		"GLOBEPLAY_HISTORY_DB_CONNECT": filepath.Join(dir, "history.db"),
	}

	_, err := runGlobeplayCommand(t, env, "history", "migrate")
	require.NoError(t, err)

	_, err = runGlobeplayCommand(t, env, "top", "--base-url", ds.URL)
	require.NoError(t, err)

	out, err := runGlobeplayCommand(t, env, "history", "status", "--color", "no")
	require.NoError(t, err)
	assert.Contains(t, out, "History Backend: sqlite")
	assert.Contains(t, out, "Total Runs: 1")

	exportBase := filepath.Join(dir, "export")
	_, err = runGlobeplayCommand(t, env, "history", "export", "--output-file", exportBase)
	require.NoError(t, err)
	assert.FileExists(t, exportBase+".query_runs.parquet")
	assert.FileExists(t, exportBase+".query_rows.parquet")

	_, err = runGlobeplayCommand(t, env, "history", "clear")
	require.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "history.db"))
	assert.True(t, os.IsNotExist(statErr))
}
