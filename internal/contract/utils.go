package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/globeplay/schema"
)

// Color variables for console output.
var (
	RunningColor = color.New(color.FgGreen, color.Bold) // RunningColor marks an active playback.
	IdleColor    = color.New(color.FgCyan)              // IdleColor marks an idle playback.
	FrameColor   = color.New(color.FgYellow)            // FrameColor marks committed frames.
	BlankColor   = color.New(color.FgRed)               // BlankColor marks frames that failed to preload.
)

// GetPlainState returns the plain text label for a playback state.
func GetPlainState(state schema.PlaybackState) string {
	if state == schema.RunningState {
		return "Running"
	}
	return "Idle"
}

// GetColorState returns a colored playback state label for console output.
func GetColorState(state schema.PlaybackState) string {
	text := GetPlainState(state)
	if state == schema.RunningState {
		return RunningColor.Sprint(text)
	}
	return IdleColor.Sprint(text)
}

// SetColorEnabled toggles colored output globally.
func SetColorEnabled(enabled bool) {
	color.NoColor = !enabled
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for query history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".globeplay_history.db"
	}
	return filepath.Join(homeDir, ".globeplay_history.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
